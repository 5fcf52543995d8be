/*
 * osimsim - Instruction disassembler.
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

// Package disasm renders one 6-byte instruction as a mnemonic and
// operand text, for the coredump and registers reports.
package disasm

import (
	"fmt"

	"github.com/rcornwell/osimsim/internal/cpu"
)

const (
	formReg3 = 1 + iota // Rd, Rs, Rt
	formReg2            // Ra, Rb
	formImm             // Rd, #imm32
	formAddr            // off32 (branch target), no register operand
	formReg1            // single register operand
	formSyscall         // bare imm32 syscall number, no register operand
)

type opcode struct {
	name string
	form int
}

var opMap = map[byte]opcode{
	cpu.OpADR:  {"ADR", formImm},
	cpu.OpMOV:  {"MOV", formReg2},
	cpu.OpSTR:  {"STR", formReg2},
	cpu.OpSTRB: {"STRB", formReg2},
	cpu.OpLDR:  {"LDR", formReg2},
	cpu.OpLDRB: {"LDRB", formReg2},
	cpu.OpBX:   {"BX", formReg1},
	cpu.OpB:    {"B", formAddr},
	cpu.OpBNE:  {"BNE", formAddr},
	cpu.OpBGT:  {"BGT", formAddr},
	cpu.OpBLT:  {"BLT", formAddr},
	cpu.OpBEQ:  {"BEQ", formAddr},
	cpu.OpCMP:  {"CMP", formReg2},
	cpu.OpAND:  {"AND", formReg3},
	cpu.OpORR:  {"ORR", formReg2},
	cpu.OpEOR:  {"EOR", formReg2},
	cpu.OpADD:  {"ADD", formReg3},
	cpu.OpSUB:  {"SUB", formReg3},
	cpu.OpMUL:  {"MUL", formReg3},
	cpu.OpDIV:  {"DIV", formReg3},
	cpu.OpSWI:  {"SWI", formSyscall},
	cpu.OpBL:   {"BL", formAddr},
	cpu.OpMVI:  {"MVI", formImm},
}

// Disassemble decodes one 6-byte instruction into a mnemonic line. It
// never errors: an unrecognized opcode byte renders as a raw hex dump,
// mirroring the teacher's `undefined` fallback.
func Disassemble(instr [6]byte) string {
	op, ok := opMap[instr[0]]
	if !ok {
		return undefined(instr)
	}
	mnem := op.name + "      "
	mnem = mnem[:6]

	switch op.form {
	case formReg3:
		return mnem + fmt.Sprintf("R%d,R%d,R%d", instr[1], instr[2], instr[3])
	case formReg2:
		return mnem + fmt.Sprintf("R%d,R%d", instr[1], instr[2])
	case formReg1:
		return mnem + fmt.Sprintf("R%d", instr[1])
	case formImm:
		// Rd is instr[1]; the imm32 occupies the remaining four operand
		// bytes, instr[2:6].
		return mnem + fmt.Sprintf("R%d,#%d", instr[1], decodeU32(instr[2:6]))
	case formAddr:
		// No register operand: the off32/addr32 occupies instr[1:5].
		return mnem + fmt.Sprintf("0x%08x", decodeU32(instr[1:5]))
	case formSyscall:
		return mnem + fmt.Sprintf("#%d", decodeU32(instr[1:5]))
	default:
		return mnem
	}
}

func decodeU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func undefined(instr [6]byte) string {
	return fmt.Sprintf("??      %02x %02x %02x %02x %02x %02x",
		instr[0], instr[1], instr[2], instr[3], instr[4], instr[5])
}
