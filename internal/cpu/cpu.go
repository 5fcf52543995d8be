/*
 * osimsim - CPU instruction fetch and execute.
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

// Package cpu implements the fetch/decode/execute loop over 6-byte
// instructions: arithmetic, moves, memory ops, branches and the
// software-interrupt syscall family.
package cpu

import (
	"encoding/binary"

	"github.com/rcornwell/osimsim/internal/clock"
	"github.com/rcornwell/osimsim/internal/memory"
	"github.com/rcornwell/osimsim/internal/pcb"
	"github.com/rcornwell/osimsim/internal/syscode"
)

// Conventional register roles.
const (
	RLink   = 5 // return address for BL
	RSP     = 6 // stack pointer
	RFP     = 7 // frame pointer
	RSL     = 8 // stack limit
	RZ      = 9 // comparison flag
	RStatus = 10
	RPC     = 11
)

// InstructionSize is the fixed width of every instruction; the mutex
// and shared-buffer SWI handlers rewind PC by exactly this many bytes
// to retry on the next quantum.
const InstructionSize = 6

// Opcode numbers, fixed by the external program format.
const (
	OpADR  = 0
	OpMOV  = 1
	OpSTR  = 2
	OpSTRB = 3
	OpLDR  = 4
	OpLDRB = 5
	OpBX   = 6
	OpB    = 7
	OpBNE  = 8
	OpBGT  = 9
	OpBLT  = 10
	OpBEQ  = 11
	OpCMP  = 12
	OpAND  = 13
	OpORR  = 14
	OpEOR  = 15
	OpADD  = 16
	OpSUB  = 17
	OpMUL  = 18
	OpDIV  = 19
	OpSWI  = 20
	OpBL   = 21
	OpMVI  = 22

	numOpcodes = 23
)

// SWI numbers.
const (
	SWITerminate   = 1
	SWIPrint       = 2
	SWIFork        = 10
	SWIExec        = 11
	SWIWait        = 12
	SWIIOWait      = 20
	SWIYield       = 21
	SWIProduce     = 30
	SWIConsume     = 31
	SWIMutexWait   = 33
	SWIMutexSignal = 34
)

// System is the narrow handle the CPU uses to ask the kernel half of
// the simulator to perform cross-process work (fork, exec, shared
// memory, the mutex). The CPU never holds a reference to the System
// façade itself, only to this interface.
type System interface {
	// Fork creates a child of parent and returns its pid; the SWI
	// handler writes it into the parent's R0 (SWI 10's return value),
	// per the child.R0=0/parent.R0=child.pid convention.
	Fork(parent *pcb.PCB) int
	Exec(p *pcb.PCB) error
	ChildrenTerminated(p *pcb.PCB) bool
	Print(pid int, value uint32)
	Produce(name string, value uint32)
	Consume(name string) (value uint32, ok bool)
	MutexTryLock() bool
	MutexUnlock()
}

// cpu holds the live register file and the collaborators needed to
// retire one instruction; a fresh value is built per Run call.
type cpu struct {
	regs    [12]uint32
	mm      *memory.Manager
	clk     *clock.Clock
	running bool
}

// Result is the outcome of one Run call.
type Result struct {
	Instructions int   // instructions retired this call
	Err          error // non-nil on a halting runtime error (103/104/110)
}

// Run executes p for up to quantum instructions, translating every
// memory access through mm and ticking clk once per retired
// instruction. It halts early on a terminating/suspending SWI, a
// runtime error, or pc reaching p.CodeEnd.
func Run(p *pcb.PCB, quantum int, mm *memory.Manager, clk *clock.Clock, sys System) Result {
	c := &cpu{regs: p.Registers, mm: mm, clk: clk, running: true}
	c.regs[RPC] = p.PC

	timeSlice := 0
	retired := 0

	for c.running && c.regs[RPC] < p.CodeEnd {
		phys, err := mm.Translate(p, c.regs[RPC])
		if err != nil {
			commit(p, c)
			return Result{Instructions: retired, Err: err}
		}
		raw, ok := mm.Physical().Slice(phys, phys+InstructionSize)
		if !ok {
			commit(p, c)
			return Result{Instructions: retired, Err: syscode.New(syscode.OutOfBounds, p.File, "instruction fetch past physical memory")}
		}
		var instr [InstructionSize]byte
		copy(instr[:], raw)
		c.regs[RPC] += InstructionSize

		opcode := instr[0]
		var operands [5]byte
		copy(operands[:], instr[1:])

		if err := c.execute(p, opcode, operands, sys); err != nil {
			commit(p, c)
			return Result{Instructions: retired, Err: err}
		}

		clk.Tick()
		p.ExecutionTime++
		timeSlice++
		retired++

		if p.State == pcb.Terminated {
			// SWI 1 stamped the metrics before its instruction retired;
			// restamp them so the terminating instruction is counted.
			p.Terminate(clk.Now())
		}

		if c.regs[RPC] >= mm.Physical().Size() {
			commit(p, c)
			return Result{Instructions: retired, Err: syscode.New(syscode.OutOfBounds, p.File, "pc ran past physical memory")}
		}
		if timeSlice == quantum && c.running {
			preempt(p, c, clk)
			return Result{Instructions: retired}
		}
	}
	commit(p, c)
	return Result{Instructions: retired}
}

func commit(p *pcb.PCB, c *cpu) {
	p.Registers = c.regs
	p.PC = c.regs[RPC]
}

func preempt(p *pcb.PCB, c *cpu, clk *clock.Clock) {
	commit(p, c)
	p.PreemptCount++
	p.Ready(clk.Now())
}

func decodeU32(b [5]byte) uint32 {
	return binary.LittleEndian.Uint32(b[0:4])
}

// execute dispatches a single decoded instruction.
func (c *cpu) execute(p *pcb.PCB, opcode byte, ops [5]byte, sys System) error {
	if int(opcode) >= numOpcodes {
		return syscode.Errorf(syscode.InvalidPath, p.File, "unknown opcode %d", opcode)
	}
	switch opcode {
	case OpADD:
		c.regs[ops[0]] = uint32(int32(c.regs[ops[1]]) + int32(c.regs[ops[2]]))
	case OpSUB:
		c.regs[ops[0]] = uint32(int32(c.regs[ops[1]]) - int32(c.regs[ops[2]]))
	case OpMUL:
		c.regs[ops[0]] = uint32(int32(c.regs[ops[1]]) * int32(c.regs[ops[2]]))
	case OpDIV:
		if c.regs[ops[2]] == 0 {
			return syscode.New(syscode.DivideByZero, p.File, "division by zero")
		}
		c.regs[ops[0]] = uint32(int32(c.regs[ops[1]]) / int32(c.regs[ops[2]]))
	case OpMOV:
		c.regs[ops[0]] = c.regs[ops[1]]
	case OpMVI:
		c.regs[ops[0]] = binary.LittleEndian.Uint32(ops[1:5])
	case OpADR:
		c.regs[ops[0]] = binary.LittleEndian.Uint32(ops[1:5])
	case OpSTR:
		return c.store(p, ops[0], ops[1], 4)
	case OpSTRB:
		return c.store(p, ops[0], ops[1], 1)
	case OpLDR:
		return c.load(p, ops[0], ops[1], 4)
	case OpLDRB:
		return c.load(p, ops[0], ops[1], 1)
	case OpB:
		c.regs[RPC] = p.CodeStart + decodeU32(ops)
	case OpBL:
		addr := decodeU32(ops)
		c.regs[RLink] = c.regs[RPC]
		c.regs[RPC] = addr
	case OpBX:
		c.regs[RPC] = c.regs[ops[0]]
	case OpBNE:
		if int32(c.regs[RZ]) != 0 {
			c.regs[RPC] = p.CodeStart + decodeU32(ops)
		}
	case OpBGT:
		if int32(c.regs[RZ]) > 0 {
			c.regs[RPC] = p.CodeStart + decodeU32(ops)
		}
	case OpBLT:
		if int32(c.regs[RZ]) < 0 {
			c.regs[RPC] = p.CodeStart + decodeU32(ops)
		}
	case OpBEQ:
		if int32(c.regs[RZ]) == 0 {
			c.regs[RPC] = p.CodeStart + decodeU32(ops)
		}
	case OpCMP:
		c.regs[RZ] = uint32(int32(c.regs[ops[0]]) - int32(c.regs[ops[1]]))
	case OpAND:
		c.regs[ops[0]] = c.regs[ops[1]] & c.regs[ops[2]]
	case OpORR:
		c.regs[RZ] = c.regs[ops[0]] | c.regs[ops[1]]
	case OpEOR:
		c.regs[RZ] = c.regs[ops[0]] ^ c.regs[ops[1]]
	case OpSWI:
		return c.swi(p, decodeU32(ops), sys, c.clk)
	default:
		return syscode.Errorf(syscode.InvalidPath, p.File, "unimplemented opcode %d", opcode)
	}
	return nil
}

// store writes width bytes of regs[srcReg] to the translated address
// held in regs[addrReg].
func (c *cpu) store(p *pcb.PCB, srcReg, addrReg byte, width int) error {
	phys, err := c.mm.Translate(p, c.regs[addrReg])
	if err != nil {
		return err
	}
	if width == 4 {
		if !c.mm.Physical().PutWord(phys, c.regs[srcReg]) {
			return syscode.New(syscode.OutOfBounds, p.File, "STR past physical memory")
		}
		return nil
	}
	if !c.mm.Physical().PutByte(phys, byte(c.regs[srcReg])) {
		return syscode.New(syscode.OutOfBounds, p.File, "STRB past physical memory")
	}
	return nil
}

// load reads width bytes from the translated address held in
// regs[addrReg] into regs[dstReg].
func (c *cpu) load(p *pcb.PCB, dstReg, addrReg byte, width int) error {
	phys, err := c.mm.Translate(p, c.regs[addrReg])
	if err != nil {
		return err
	}
	if width == 4 {
		v, ok := c.mm.Physical().GetWord(phys)
		if !ok {
			return syscode.New(syscode.OutOfBounds, p.File, "LDR past physical memory")
		}
		c.regs[dstReg] = v
		return nil
	}
	v, ok := c.mm.Physical().GetByte(phys)
	if !ok {
		return syscode.New(syscode.OutOfBounds, p.File, "LDRB past physical memory")
	}
	c.regs[dstReg] = uint32(v)
	return nil
}
