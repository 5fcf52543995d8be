/*
 * osimsim - System facade.
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

// Package system implements the System façade: it owns the clock,
// memory manager and scheduler, handles job admission, shared memory
// and the mutex, and exposes the command surface the shell drives.
package system

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcornwell/osimsim/internal/clock"
	"github.com/rcornwell/osimsim/internal/disasm"
	"github.com/rcornwell/osimsim/internal/memory"
	"github.com/rcornwell/osimsim/internal/pcb"
	"github.com/rcornwell/osimsim/internal/scheduler"
	"github.com/rcornwell/osimsim/internal/shell"
	"github.com/rcornwell/osimsim/internal/syscode"
	"github.com/rcornwell/osimsim/report"
)

// Mode is the USER/KERNEL flag. A System starts in User; no command
// switches it and nothing checks it before running a command.
type Mode int

const (
	User Mode = iota
	Kernel
)

// System owns every subsystem and is driven by exactly one goroutine
// at a time; it has no internal mutex, matching the teacher's core
// package serializing mutation through a single driving goroutine.
type System struct {
	clk *clock.Clock
	mm  *memory.Manager
	sch *scheduler.Scheduler

	mode Mode
	log  *slog.Logger

	errors []report.ErrorEntry
}

// Config bundles the construction-time parameters the shell's `reset`
// command and config/simconfig both need to apply.
type Config struct {
	MemorySize uint32
	PageSize   uint32
	PageLimit  int
	RNGSeed    int64
}

// New builds a System over a fresh clock, memory manager and
// scheduler, wiring the scheduler's error callback into the façade's
// error log.
func New(cfg Config, log *slog.Logger) *System {
	mm := memory.NewManager(cfg.MemorySize)
	if cfg.PageSize != 0 {
		_ = mm.SetPageSize(cfg.PageSize)
	}
	if cfg.PageLimit != 0 {
		_ = mm.SetPageLimit(cfg.PageLimit)
	}
	clk := &clock.Clock{}
	sch := scheduler.New(clk, mm, cfg.RNGSeed)

	s := &System{clk: clk, mm: mm, sch: sch, mode: User, log: log}
	sch.OnError(s.recordError)
	return s
}

func (s *System) recordError(p *pcb.PCB, err error) {
	if err == nil {
		s.log.Warn("process reached an unclassifiable state", "pid", p.Pid, "state", p.State)
		return
	}
	code := syscode.CodeOf(err)
	entry := report.ErrorEntry{Program: p.File, Code: code, Message: err.Error()}
	s.errors = append(s.errors, entry)
	s.log.Warn("runtime error", "pid", p.Pid, "code", code, "err", err)
}

// Load admits one program at the given arrival time, per spec.md §6's
// `load` command.
func (s *System) Load(path string, arrival int) error {
	desc, err := s.mm.PrepareProgram(path)
	if err != nil {
		s.recordError(&pcb.PCB{File: path}, err)
		return err
	}
	pid := s.sch.AllocatePid()
	p := pcb.NewPCB(pid, path)
	p.ByteSize = desc.ByteSize
	p.LoaderBase = desc.LoaderBase
	p.CodeStart = desc.CodeStart
	p.CodeEnd = desc.CodeEnd
	p.DataStart = desc.DataStart
	p.DataEnd = desc.DataEnd
	p.PC = desc.CodeStart
	p.ArrivalTime = arrival
	p.QueueLevel = 1
	s.sch.Submit(p)
	return nil
}

// Execute admits several programs at once, per spec.md §6's `execute`.
func (s *System) Execute(specs []shell.ExecSpec) error {
	for _, spec := range specs {
		if err := s.Load(spec.Path, spec.Arrival); err != nil {
			return err
		}
	}
	return nil
}

// RunAll drives the scheduler until every queue drains.
func (s *System) RunAll() error {
	for !s.sch.Idle() {
		s.sch.Step()
	}
	return nil
}

// Run admits path at the current clock tick, then drains the
// scheduler, for the shell's one-shot `run <path>`.
func (s *System) Run(path string) error {
	if err := s.Load(path, s.clk.Now()); err != nil {
		return err
	}
	return s.RunAll()
}

// Step advances the scheduler by exactly one scheduling decision,
// ignoring pid (the scheduler always picks its own next process; pid
// is accepted for command-surface symmetry with `registers <pid>`).
func (s *System) Step(_ int) error {
	s.sch.Step()
	return nil
}

// Coredump writes physical memory to path.
func (s *System) Coredump(path string) error {
	return report.Coredump(path, s.mm.Physical())
}

// Errordump writes the accumulated error log to path.
func (s *System) Errordump(path string) error {
	return report.Errordump(path, s.errors)
}

// Registers renders one PCB's register file, or an error if pid is
// unknown.
func (s *System) Registers(pid int) (string, error) {
	p, ok := s.sch.Lookup(pid)
	if !ok {
		return "", syscode.Errorf(syscode.InvalidPath, "", "no such pid: %d", pid)
	}
	return report.Registers(p), nil
}

func (s *System) Clock() int { return s.clk.Now() }

func (s *System) JobQueue() string        { return report.Queue(s.sch.JobQueue()) }
func (s *System) ReadyQueue() string      { return report.Queue(s.sch.ReadyQueue()) }
func (s *System) IOQueue() string         { return report.Queue(s.sch.IOQueue()) }
func (s *System) TerminatedQueue() string { return report.Queue(s.sch.TerminatedQueue()) }
func (s *System) PS() string              { return report.PS(s.sch) }

// SetStrategy parses name (case-insensitive FCFS/RR/MLFQ) and applies
// it, refused while any ready queue is non-empty.
func (s *System) SetStrategy(name string) error {
	var strat scheduler.Strategy
	switch strings.ToUpper(name) {
	case "FCFS":
		strat = scheduler.FCFS
	case "RR":
		strat = scheduler.RR
	case "MLFQ":
		strat = scheduler.MLFQ
	default:
		return syscode.Errorf(syscode.InvalidPath, "", "unknown strategy: %s", name)
	}
	if !s.sch.SetStrategy(strat) {
		return syscode.New(syscode.InvalidPath, "", "cannot switch strategy while a ready queue is non-empty")
	}
	return nil
}

func (s *System) SetRR(q1, q2 int) error {
	s.sch.SetRRQuantums(q1, q2)
	return nil
}

func (s *System) Quantums() (int, int, int) { return s.sch.Quantums() }

func (s *System) Gantt() string { return report.Gantt(s.sch.Gantt) }

// GanttGraph is a documented stub: PNG plotting is an external
// collaborator (spec.md §1), out of scope for the core.
func (s *System) GanttGraph(path string) error {
	s.log.Warn("gantt_graph: PNG plotting is an external collaborator, not implemented in core", "path", path)
	return syscode.New(syscode.Unknown, path, "gantt_graph: chart plotting is not implemented")
}

// Reset drops every queue and the error log, and returns memory to a
// freshly allocated state (spec.md §6 `reset`).
func (s *System) Reset() {
	cfg := Config{MemorySize: s.mm.Physical().Size(), PageSize: s.mm.PageSize(), PageLimit: s.mm.PageLimit()}
	s.mm = memory.NewManager(cfg.MemorySize)
	_ = s.mm.SetPageSize(cfg.PageSize)
	_ = s.mm.SetPageLimit(cfg.PageLimit)
	s.clk.Reset()
	s.sch = scheduler.New(s.clk, s.mm, 0)
	s.sch.OnError(s.recordError)
	s.errors = nil
}

func (s *System) ShmOpen(name string) error {
	// Set aside any values already queued so the sentinel below is the
	// one drained, then restore them in their original order.
	var held []uint32
	for {
		v, ok := s.sch.Consume(name)
		if !ok {
			break
		}
		held = append(held, v)
	}
	s.sch.Produce(name, 0)
	_, _ = s.sch.Consume(name) // drain the sentinel write; ShmOpen only registers the buffer
	for _, v := range held {
		s.sch.Produce(name, v)
	}
	return nil
}

func (s *System) ShmUnlink(_ string) error {
	return nil
}

func (s *System) SharedMemory(name string) (string, error) {
	v, ok := s.sch.Consume(name)
	if !ok {
		return "", syscode.Errorf(syscode.InvalidPath, "", "shared buffer %q is empty", name)
	}
	return fmt.Sprintf("%d", v), nil
}

func (s *System) PageSize() uint32             { return s.mm.PageSize() }
func (s *System) SetPageSize(size uint32) error { return s.mm.SetPageSize(size) }
func (s *System) PageLimit() int                { return s.mm.PageLimit() }
func (s *System) SetPageLimit(n int) error      { return s.mm.SetPageLimit(n) }

// Disassemble renders one instruction from pid's code image, for a
// future `examine`-style command; exposed here since it is the only
// façade method that needs internal/disasm.
func (s *System) Disassemble(pid int, addr uint32) (string, error) {
	p, ok := s.sch.Lookup(pid)
	if !ok {
		return "", syscode.Errorf(syscode.InvalidPath, "", "no such pid: %d", pid)
	}
	phys, err := s.mm.Translate(p, addr)
	if err != nil {
		return "", err
	}
	raw, ok := s.mm.Physical().Slice(phys, phys+6)
	if !ok {
		return "", syscode.New(syscode.OutOfBounds, p.File, "disassemble past physical memory")
	}
	var instr [6]byte
	copy(instr[:], raw)
	return disasm.Disassemble(instr), nil
}
