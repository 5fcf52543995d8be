/*
 * osimsim - Scheduler fork/exec/shared-memory/mutex support.
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
	"github.com/rcornwell/osimsim/internal/pcb"
)

// Scheduler implements cpu.System directly: it already owns pid
// allocation, the process table, and the shared-buffer/mutex state
// that fork, the producer/consumer buffer and the mutex SWIs need.

// Fork creates a child PCB from parent, registers it with the memory
// manager and drops it straight onto a ready queue (children skip
// admission: their memory is already known available, being a copy of
// the parent's). Per the fork() convention, the child starts with
// R0=0; the caller (the SWI handler) writes the returned pid into the
// parent's R0.
func (s *Scheduler) Fork(parent *pcb.PCB) int {
	childPid := s.AllocatePid()
	child := parent.MakeChild(childPid, s.clk.Now())
	child.Registers[0] = 0
	s.mm.AdoptChild(parent, child)
	s.process[child.Pid] = child
	child.Ready(s.clk.Now())
	s.putBack(child)
	return childPid
}

// Exec replaces p's program image in place with the path recorded by
// SetExecPath, keeping its pid, setting PC to the new program's entry
// point and clearing its registers. Without a recorded path, Exec
// leaves the image unchanged and returns nil.
func (s *Scheduler) Exec(p *pcb.PCB) error {
	path, ok := s.execPaths[p.Pid]
	if !ok {
		return nil
	}
	delete(s.execPaths, p.Pid)

	desc, err := s.mm.PrepareProgram(path)
	if err != nil {
		return err
	}
	s.mm.FreeMemory(p)

	p.File = path
	p.ByteSize = desc.ByteSize
	p.LoaderBase = desc.LoaderBase
	p.CodeStart = desc.CodeStart
	p.CodeEnd = desc.CodeEnd
	p.DataStart = desc.DataStart
	p.DataEnd = desc.DataEnd
	p.PC = desc.CodeStart
	p.Registers = [12]uint32{}

	return s.mm.LoadToMemory(p)
}

// SetExecPath records the program pid will switch to the next time it
// issues SWI 11. No shell command calls it.
func (s *Scheduler) SetExecPath(pid int, path string) {
	if s.execPaths == nil {
		s.execPaths = make(map[int]string)
	}
	s.execPaths[pid] = path
}

// ChildrenTerminated reports whether every child p ever forked has
// reached the Terminated state.
func (s *Scheduler) ChildrenTerminated(p *pcb.PCB) bool {
	return p.AllChildrenTerminated(func(pid int) (pcb.State, bool) {
		c, ok := s.process[pid]
		if !ok {
			return 0, false
		}
		return c.State, true
	})
}

// Print appends (pid, value) to the shared print log read back by the
// `ps`/shell reporting surface.
func (s *Scheduler) Print(pid int, value uint32) {
	s.printLog = append(s.printLog, PrintEntry{Pid: pid, Value: value})
}

// PrintLog returns every value printed via SWI 2, in emission order.
func (s *Scheduler) PrintLog() []PrintEntry {
	return append([]PrintEntry(nil), s.printLog...)
}

// Produce appends value to the named shared buffer.
func (s *Scheduler) Produce(name string, value uint32) {
	s.shared[name] = append(s.shared[name], value)
}

// Consume pops the oldest value from the named shared buffer.
func (s *Scheduler) Consume(name string) (uint32, bool) {
	buf := s.shared[name]
	if len(buf) == 0 {
		return 0, false
	}
	v := buf[0]
	s.shared[name] = buf[1:]
	return v, true
}

// MutexTryLock acquires the single named mutex, reporting whether it
// was free.
func (s *Scheduler) MutexTryLock() bool {
	if s.mutexLocked {
		return false
	}
	s.mutexLocked = true
	return true
}

// MutexUnlock releases the mutex unconditionally.
func (s *Scheduler) MutexUnlock() {
	s.mutexLocked = false
}

// PrintEntry is one SWI 2 output, in emission order.
type PrintEntry struct {
	Pid   int
	Value uint32
}
