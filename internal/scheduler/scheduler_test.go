/*
 * osimsim - Scheduler test cases.
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

package scheduler

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/osimsim/internal/clock"
	"github.com/rcornwell/osimsim/internal/cpu"
	"github.com/rcornwell/osimsim/internal/memory"
	"github.com/rcornwell/osimsim/internal/pcb"
)

func mvi(rd byte, imm uint32) [6]byte {
	var b [6]byte
	b[0] = cpu.OpMVI
	b[1] = rd
	binary.LittleEndian.PutUint32(b[2:6], imm)
	return b
}

func swi(n uint32) [6]byte {
	var b [6]byte
	b[0] = cpu.OpSWI
	binary.LittleEndian.PutUint32(b[1:5], n)
	return b
}

func jumpBack(off uint32) [6]byte {
	var b [6]byte
	b[0] = cpu.OpB
	binary.LittleEndian.PutUint32(b[1:5], off)
	return b
}

// submittedCount numbers the programs submitted so far, so each gets
// its own non-overlapping loader base: every test program in a scenario
// is resident at once and CheckMemoryAvailable rejects overlapping
// extents.
var submittedCount int

// submitProgram writes instrs to a temp file and submits a PCB for it
// at the given arrival time, at a loader base reserved just for this
// program.
func submitProgram(t *testing.T, s *Scheduler, mm *memory.Manager, arrival int, instrs [][6]byte) *pcb.PCB {
	t.Helper()
	var code []byte
	for _, i := range instrs {
		code = append(code, i[:]...)
	}
	byteSize := uint32(len(code))
	// Distinct loader bases keep CheckMemoryAvailable's physical-extent
	// overlap check from rejecting a second resident program; the
	// virtual address space used for paging is always 0-based per
	// process, independent of where its image is nominally anchored.
	base := uint32(submittedCount) * 1024
	submittedCount++
	header := memory.EncodeHeader(memory.Header{ByteSize: byteSize, EntryPC: 0, LoaderBase: base})
	path := filepath.Join(t.TempDir(), "prog.bin")
	if err := os.WriteFile(path, append(header, code...), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pid := s.AllocatePid()
	p := pcb.NewPCB(pid, path)
	p.ByteSize = byteSize
	p.LoaderBase = base
	p.CodeStart = 0
	p.CodeEnd = byteSize - 1
	p.ArrivalTime = arrival
	p.QueueLevel = 1
	s.Submit(p)
	return p
}

func runUntilIdle(s *Scheduler, maxSteps int) int {
	steps := 0
	for steps < maxSteps && !s.Idle() {
		s.Step()
		steps++
	}
	return steps
}

func TestE2RoundRobinInterleaves(t *testing.T) {
	mm := memory.NewManager(8192)
	clk := &clock.Clock{}
	s := New(clk, mm, 1)
	s.SetStrategy(RR)
	s.SetRRQuantums(2, 2)

	// A long-running spin loop (branch back to the first instruction) for two
	// processes, so round robin must interleave them rather than
	// let either run to completion first.
	a := submitProgram(t, s, mm, 0, [][6]byte{
		mvi(0, 1),
		jumpBack(0),
	})
	b := submitProgram(t, s, mm, 0, [][6]byte{
		mvi(0, 2),
		jumpBack(0),
	})

	var sawA, sawB bool
	for i := 0; i < 20; i++ {
		s.Step()
		if len(s.Gantt) >= 2 {
			if s.Gantt[len(s.Gantt)-1].Pid == a.Pid {
				sawA = true
			}
			if s.Gantt[len(s.Gantt)-1].Pid == b.Pid {
				sawB = true
			}
		}
	}
	if !sawA || !sawB {
		t.Fatalf("expected both processes to appear in the Gantt trace under RR, sawA=%v sawB=%v", sawA, sawB)
	}
}

func TestE3ForkCreatesReadyChild(t *testing.T) {
	mm := memory.NewManager(8192)
	clk := &clock.Clock{}
	s := New(clk, mm, 1)
	s.SetStrategy(FCFS)

	parent := submitProgram(t, s, mm, 0, [][6]byte{
		swi(cpu.SWIFork),
		swi(cpu.SWITerminate),
	})

	runUntilIdle(s, 50)

	if len(parent.Children) != 1 {
		t.Fatalf("parent.Children = %v, want one child", parent.Children)
	}
	child, ok := s.Lookup(parent.Children[0])
	if !ok {
		t.Fatal("forked child not tracked by scheduler")
	}
	if child.State != pcb.Terminated {
		t.Fatalf("child state = %v, want Terminated once the loop drains", child.State)
	}
	if parent.Registers[0] != uint32(child.Pid) {
		t.Fatalf("parent.R0 = %d, want child pid %d", parent.Registers[0], child.Pid)
	}
	if len(s.TerminatedQueue()) != 2 {
		t.Fatalf("terminated_queue size = %d, want 2", len(s.TerminatedQueue()))
	}
}

func TestE5MLFQPromotesCPUBoundProcess(t *testing.T) {
	mm := memory.NewManager(8192)
	clk := &clock.Clock{}
	s := New(clk, mm, 1)
	s.SetStrategy(MLFQ)

	var instrs [][6]byte
	for i := 0; i < 40; i++ {
		instrs = append(instrs, mvi(0, uint32(i)))
	}
	instrs = append(instrs, swi(cpu.SWITerminate))
	p := submitProgram(t, s, mm, 0, instrs)

	runUntilIdle(s, 200)

	if p.State != pcb.Terminated {
		t.Fatalf("state = %v, want Terminated", p.State)
	}
	// 40 instructions under Q1's quantum of 8 give five preempted runs;
	// the 5th run's ratio of 5/5 promotes the process to Q2 (and resets
	// its counters), where the final SWI 1 terminates it.
	if p.QueueLevel != 2 {
		t.Fatalf("queue level = %d, want 2 after five preempted runs in Q1", p.QueueLevel)
	}
}

func TestE6MutexContentionSerializes(t *testing.T) {
	mm := memory.NewManager(8192)
	clk := &clock.Clock{}
	s := New(clk, mm, 1)
	s.SetStrategy(RR)
	s.SetRRQuantums(5, 5)

	critical := [][6]byte{
		swi(cpu.SWIMutexWait),
		mvi(0, 1),
		swi(cpu.SWIMutexSignal),
		swi(cpu.SWITerminate),
	}
	a := submitProgram(t, s, mm, 0, critical)
	b := submitProgram(t, s, mm, 0, critical)

	runUntilIdle(s, 200)

	if a.State != pcb.Terminated || b.State != pcb.Terminated {
		t.Fatalf("both processes should terminate: a=%v b=%v", a.State, b.State)
	}
	if s.mutexLocked {
		t.Fatal("mutex left locked after both critical sections completed")
	}
}

func TestIdleAdvancesClockWhenNothingReady(t *testing.T) {
	mm := memory.NewManager(4096)
	clk := &clock.Clock{}
	s := New(clk, mm, 1)
	s.SetStrategy(FCFS)
	submitProgram(t, s, mm, 5, [][6]byte{swi(cpu.SWITerminate)})

	s.Step()
	if clk.Now() != 1 {
		t.Fatalf("clock = %d, want 1 after one idle tick", clk.Now())
	}
	if len(s.Gantt) != 1 || s.Gantt[0].Pid != 0 {
		t.Fatalf("expected an IDLE Gantt interval, got %+v", s.Gantt)
	}
}
