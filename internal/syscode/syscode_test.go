/*
 * osimsim - System error code test cases.
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

package syscode

import (
	"errors"
	"testing"
)

func TestTextKnownAndUnknown(t *testing.T) {
	if got := Text(FileNotFound); got != "File not found" {
		t.Errorf("Text(FileNotFound) = %q", got)
	}
	if got := Text(9999); got != text[Unknown] {
		t.Errorf("Text(9999) = %q, want unknown text", got)
	}
}

func TestSystemErrorError(t *testing.T) {
	err := New(DivideByZero, "test.bin", "R0 / R1")
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestCodeOfWrapped(t *testing.T) {
	base := New(OutOfBounds, "prog", "pc past code_end")
	// wrapped only embeds base's text; it does not wrap base with %w,
	// so CodeOf must not find a code in it.
	wrapped := errors.New("while fetching: " + base.Error())
	if CodeOf(wrapped) != Unknown {
		t.Errorf("CodeOf(plain error) = %d, want Unknown", CodeOf(wrapped))
	}
	if CodeOf(base) != OutOfBounds {
		t.Errorf("CodeOf(base) = %d, want OutOfBounds", CodeOf(base))
	}
}
