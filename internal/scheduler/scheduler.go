/*
 * osimsim - Process scheduler.
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

// Package scheduler implements process admission, the FCFS/RR/MLFQ
// dispatch strategies, post-run classification, queue-level promotion
// and demotion, and fork/exec/wait.
package scheduler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rcornwell/osimsim/internal/clock"
	"github.com/rcornwell/osimsim/internal/cpu"
	"github.com/rcornwell/osimsim/internal/memory"
	"github.com/rcornwell/osimsim/internal/pcb"
)

// Strategy selects which ready queue(s) feed the CPU and with what
// quantum.
type Strategy int

const (
	FCFS Strategy = iota
	RR
	MLFQ
)

func (s Strategy) String() string {
	switch s {
	case FCFS:
		return "FCFS"
	case RR:
		return "RR"
	case MLFQ:
		return "MLFQ"
	default:
		return "UNKNOWN"
	}
}

// checkPromoteAt is the number of runs between promotion/demotion
// evaluations, per §4.3.2.
const checkPromoteAt = 5

// hugeQuantum stands in for FCFS's "infinite" quantum.
const hugeQuantum = 1_000_000

// GanttInterval is one row of the Gantt trace: a PCB ran on
// [Start, End) at the given queue level, or pid == 0 for an IDLE
// interval.
type GanttInterval struct {
	Start, End int
	Pid        int
	QueueLevel int
}

type ioWait struct {
	p         *pcb.PCB
	waitUntil int
}

// Scheduler owns the ready queues, the job/io/terminated queues, pid
// allocation, and the Gantt history. It drives the CPU and classifies
// the PCB's state after each run.
type Scheduler struct {
	clk *clock.Clock
	mm  *memory.Manager
	rng *rand.Rand

	strategy  Strategy
	mlfqIndex int

	jobQueue   []*pcb.PCB // sorted by ArrivalTime ascending
	q1, q2, q3 *pcb.Queue
	ioQueue    []ioWait
	terminated []*pcb.PCB

	process map[int]*pcb.PCB
	nextPid int

	Gantt []GanttInterval

	mutexLocked bool
	shared      map[string][]uint32
	execPaths   map[int]string
	printLog    []PrintEntry

	onError func(p *pcb.PCB, err error)
}

// New builds a Scheduler over clk/mm, defaulting to FCFS. seed fixes
// the IO-wait RNG for reproducible tests; pass 0 to seed from the
// current time instead.
func New(clk *clock.Clock, mm *memory.Manager, seed int64) *Scheduler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(seed)
	return &Scheduler{
		clk:     clk,
		mm:      mm,
		rng:     rand.New(src),
		q1:      pcb.NewQueue(hugeQuantum),
		q2:      pcb.NewQueue(16),
		q3:      pcb.NewQueue(hugeQuantum),
		process: make(map[int]*pcb.PCB),
		shared:  make(map[string][]uint32),
		nextPid: 1,
	}
}

// OnError installs a callback invoked whenever a run produces a
// runtime error (103/104/110), for the System façade's error log.
func (s *Scheduler) OnError(f func(p *pcb.PCB, err error)) {
	s.onError = f
}

// SetStrategy changes the dispatch strategy. It is refused while any
// ready queue is non-empty, matching the original scheduler's
// mid-flight guard.
func (s *Scheduler) SetStrategy(strat Strategy) bool {
	if !s.q1.IsEmpty() || !s.q2.IsEmpty() || !s.q3.IsEmpty() {
		return false
	}
	s.strategy = strat
	switch strat {
	case FCFS:
		s.q1.SetQuantum(hugeQuantum)
	case RR:
		s.q1.SetQuantum(10)
	case MLFQ:
		s.q1.SetQuantum(8)
		s.q2.SetQuantum(16)
		s.q3.SetQuantum(hugeQuantum)
	}
	s.mlfqIndex = 0
	return true
}

// Strategy reports the active strategy.
func (s *Scheduler) Strategy() Strategy { return s.strategy }

// SetRRQuantums sets Q1/Q2 quantums directly, for the `setRR` command.
func (s *Scheduler) SetRRQuantums(q1, q2 int) {
	s.q1.SetQuantum(q1)
	s.q2.SetQuantum(q2)
}

// Quantums returns the current Q1/Q2/Q3 quantums.
func (s *Scheduler) Quantums() (int, int, int) {
	return s.q1.Quantum(), s.q2.Quantum(), s.q3.Quantum()
}

// Submit enrolls a PCB for admission at its ArrivalTime, keeping
// jobQueue sorted by arrival order.
func (s *Scheduler) Submit(p *pcb.PCB) {
	s.process[p.Pid] = p
	s.jobQueue = append(s.jobQueue, p)
	sort.SliceStable(s.jobQueue, func(i, j int) bool {
		return s.jobQueue[i].ArrivalTime < s.jobQueue[j].ArrivalTime
	})
}

// AllocatePid returns the next monotonically increasing pid.
func (s *Scheduler) AllocatePid() int {
	pid := s.nextPid
	s.nextPid++
	return pid
}

// Lookup returns the PCB for pid, if tracked.
func (s *Scheduler) Lookup(pid int) (*pcb.PCB, bool) {
	p, ok := s.process[pid]
	return p, ok
}

// JobQueue, ReadyQueue (Q1 mirror outside MLFQ), IOQueue and
// TerminatedQueue expose read-only snapshots for the command surface.
func (s *Scheduler) JobQueue() []*pcb.PCB { return append([]*pcb.PCB(nil), s.jobQueue...) }

func (s *Scheduler) ReadyQueue() []*pcb.PCB {
	all := append(s.q1.All(), s.q2.All()...)
	return append(all, s.q3.All()...)
}

func (s *Scheduler) IOQueue() []*pcb.PCB {
	out := make([]*pcb.PCB, 0, len(s.ioQueue))
	for _, w := range s.ioQueue {
		out = append(out, w.p)
	}
	return out
}

func (s *Scheduler) TerminatedQueue() []*pcb.PCB {
	return append([]*pcb.PCB(nil), s.terminated...)
}

// Idle reports whether every queue the main loop watches is empty.
func (s *Scheduler) Idle() bool {
	return len(s.jobQueue) == 0 && s.q1.IsEmpty() && s.q2.IsEmpty() && s.q3.IsEmpty() && len(s.ioQueue) == 0
}

// Step runs one scheduling decision: admit arrivals, complete I/O,
// dispatch one PCB for up to one quantum (or advance the clock by one
// tick if nothing is runnable), and classify the result.
func (s *Scheduler) Step() {
	s.admit()
	s.completeIO()

	p, quantum, level := s.pick()
	if p == nil {
		s.Gantt = append(s.Gantt, GanttInterval{Start: s.clk.Now(), End: s.clk.Now() + 1, Pid: 0, QueueLevel: 0})
		s.clk.Advance(1)
		return
	}

	p.Running()
	p.RunCount++
	start := s.clk.Now()
	res := cpu.Run(p, quantum, s.mm, s.clk, s)
	s.Gantt = append(s.Gantt, GanttInterval{Start: start, End: s.clk.Now(), Pid: p.Pid, QueueLevel: level})

	if res.Err != nil && s.onError != nil {
		s.onError(p, res.Err)
	}
	s.classify(p)
}

// admit moves arrived, admissible jobs from jobQueue into Q1, stopping
// at the first job whose arrival is still in the future (jobQueue is
// kept sorted by arrival time).
func (s *Scheduler) admit() {
	i := 0
	for i < len(s.jobQueue) {
		p := s.jobQueue[i]
		if p.ArrivalTime > s.clk.Now() {
			break
		}
		if s.mm.CheckMemoryAvailable(p) && s.mm.LoadToMemory(p) == nil {
			s.jobQueue = append(s.jobQueue[:i], s.jobQueue[i+1:]...)
			p.Ready(s.clk.Now())
			s.q1.Add(p)
			continue
		}
		i++
	}
}

// completeIO moves processes whose wait has elapsed back onto a ready
// queue.
func (s *Scheduler) completeIO() {
	kept := s.ioQueue[:0]
	for _, w := range s.ioQueue {
		if s.clk.Now() >= w.waitUntil {
			w.p.Ready(s.clk.Now())
			s.putBack(w.p)
		} else {
			kept = append(kept, w)
		}
	}
	s.ioQueue = kept
}

// pick selects the next (PCB, quantum, queueLevel) to run, per the
// active strategy.
func (s *Scheduler) pick() (*pcb.PCB, int, int) {
	switch s.strategy {
	case FCFS, RR:
		if s.q1.IsEmpty() {
			return nil, 0, 0
		}
		return s.q1.Get(), s.q1.Quantum(), 1
	case MLFQ:
		queues := [3]*pcb.Queue{s.q1, s.q2, s.q3}
		for i := 0; i < 3; i++ {
			idx := (s.mlfqIndex + i) % 3
			if !queues[idx].IsEmpty() {
				s.mlfqIndex = (idx + 1) % 3
				return queues[idx].Get(), queues[idx].Quantum(), idx + 1
			}
		}
		return nil, 0, 0
	default:
		return nil, 0, 0
	}
}

// classify dispatches the PCB by its post-run state, per §4.3.1.
func (s *Scheduler) classify(p *pcb.PCB) {
	switch p.State {
	case pcb.Terminated:
		s.mm.FreeMemory(p)
		s.terminated = append(s.terminated, p)

	case pcb.Waiting:
		if p.CPUCode == cpu.SWIYield {
			p.WaitUntil = s.clk.Now()
			p.Ready(s.clk.Now())
			s.putBack(p)
			return
		}
		p.WaitUntil = s.clk.Now() + 1 + s.rng.Intn(50)
		s.ioQueue = append(s.ioQueue, ioWait{p: p, waitUntil: p.WaitUntil})

	case pcb.Ready, pcb.Running:
		s.putBack(p)

	default:
		if s.onError != nil {
			s.onError(p, nil)
		}
	}
}

// putBack enqueues p onto its queue level, applying MLFQ
// promotion/demotion first.
func (s *Scheduler) putBack(p *pcb.PCB) {
	if s.strategy == MLFQ {
		s.checkPromotion(p)
	}
	switch p.QueueLevel {
	case 2:
		s.q2.Add(p)
	case 3:
		s.q3.Add(p)
	default:
		s.q1.Add(p)
	}
}

// checkPromotion evaluates the preempt/run ratio every checkPromoteAt
// runs and promotes (ratio > 0.2) or demotes (ratio < 0.2), resetting
// both counters.
func (s *Scheduler) checkPromotion(p *pcb.PCB) {
	if p.RunCount < checkPromoteAt {
		return
	}
	ratio := float64(p.PreemptCount) / float64(p.RunCount)
	switch {
	case ratio > 0.2:
		if p.QueueLevel < 3 {
			p.QueueLevel++
		}
	case ratio < 0.2:
		if p.QueueLevel > 1 {
			p.QueueLevel--
		}
	}
	p.RunCount = 0
	p.PreemptCount = 0
}
