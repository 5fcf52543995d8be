/*
 * osimsim - System error codes.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package syscode defines the system-code namespace shared by the memory
// manager, CPU, scheduler and system façade: values 0-1 are informational,
// values 100 and above are errors reported to the caller and logged.
package syscode

import (
	"errors"
	"fmt"
)

// Informational codes, never wrapped in an error.
const (
	Success = 0
	Running = 1
)

// Error codes. Numbering matches the system-wide code table so that log
// lines, errordump entries and command results all speak the same
// vocabulary.
const (
	Unknown              = 100
	InvalidSize          = 101
	MemoryAlloc          = 102
	InvalidPath          = 103
	DivideByZero         = 104
	InvalidMemoryAccess  = 105
	StackOverflow        = 106
	StackUnderflow       = 107
	InvalidRegister      = 108
	FileNotFound         = 109
	OutOfBounds          = 110
	PageNotResident      = 111
	LengthMismatch       = 112
)

var text = map[int]string{
	Success:             "Success",
	Running:             "Running",
	Unknown:             "Unknown error",
	InvalidSize:         "No program loaded or invalid size",
	MemoryAlloc:         "Memory allocation error",
	InvalidPath:         "Invalid instruction or arguments",
	DivideByZero:        "Division by zero",
	InvalidMemoryAccess: "Invalid memory access",
	StackOverflow:       "Stack overflow",
	StackUnderflow:      "Stack underflow",
	InvalidRegister:     "Invalid register",
	FileNotFound:        "File not found",
	OutOfBounds:         "Out of bounds",
	PageNotResident:     "Page not resident",
	LengthMismatch:      "Length mismatch",
}

// Text returns the human-readable description of a system code, or
// "Unknown error" for a code not in the table.
func Text(code int) string {
	if s, ok := text[code]; ok {
		return s
	}
	return text[Unknown]
}

// SystemError is an error carrying a system code, the name of the
// program that raised it, and a free-form detail message. It satisfies
// the error interface so callers that only want error semantics need no
// special handling, while callers building an errordump report can type
// assert for the Code/Program fields.
type SystemError struct {
	Code    int
	Program string
	Message string
}

func (e *SystemError) Error() string {
	if e.Program != "" {
		return fmt.Sprintf("%s: %s (%d): %s", e.Program, Text(e.Code), e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", Text(e.Code), e.Code, e.Message)
}

// New builds a SystemError for code, attaching program (may be empty)
// and a detail message.
func New(code int, program string, message string) *SystemError {
	return &SystemError{Code: code, Program: program, Message: message}
}

// Errorf is New with a formatted message.
func Errorf(code int, program string, format string, args ...any) *SystemError {
	return New(code, program, fmt.Sprintf(format, args...))
}

// CodeOf extracts the system code from err if it is (or wraps) a
// *SystemError, otherwise returns Unknown.
func CodeOf(err error) int {
	var se *SystemError
	if errors.As(err, &se) {
		return se.Code
	}
	return Unknown
}
