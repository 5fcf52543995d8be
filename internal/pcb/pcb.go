/*
 * osimsim - Process control block.
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

// Package pcb defines the process control block and the queue-level
// lifecycle/timing-metric transitions driven by the scheduler.
package pcb

// State is the process lifecycle state.
type State int

const (
	New State = iota + 1
	Ready
	Running
	Waiting
	Terminated
)

func (s State) String() string {
	switch s {
	case New:
		return "NEW"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Waiting:
		return "WAITING"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// PTE is a page table entry: a frame index valid only when Valid is
// true, plus the reference and dirty bits used by the eviction policy.
type PTE struct {
	Frame     int
	Valid     bool
	Reference bool
	Dirty     bool
}

// PCB is the fixed-shape process control block. Every field the
// simulator touches lives here as a typed member; there are no
// dynamically attached attributes.
type PCB struct {
	Pid  int
	File string

	Registers [12]uint32
	PC        uint32

	State State

	LoaderBase uint32
	ByteSize   uint32
	CodeStart  uint32
	CodeEnd    uint32
	DataStart  uint32
	DataEnd    uint32

	PageTable        map[int]*PTE
	ResidentPages    map[int]bool
	ResidentOrder    []int // vp insertion order, walked by the clock-hand evictor
	ClockHand        int
	NumPages         int
	MaxResidentPages int

	QueueLevel   int
	RunCount     int
	PreemptCount int

	ArrivalTime     int
	StartTime       int
	startTimeSet    bool
	EndTime         int
	WaitingTime     int
	ExecutionTime   int
	ResponseTime    int
	responseTimeSet bool
	TurnaroundTime  int

	Children []int

	WaitUntil int
	CPUCode   int
}

// NewPCB creates a PCB in state New with empty page/resident-page maps
// and queue level 1 (the default MLFQ entry level).
func NewPCB(pid int, file string) *PCB {
	return &PCB{
		Pid:           pid,
		File:          file,
		State:         New,
		PageTable:     make(map[int]*PTE),
		ResidentPages: make(map[int]bool),
		QueueLevel:    1,
	}
}

// Ready marks the PCB ready to run. The first transition into Ready
// also stamps StartTime and folds the admission delay into WaitingTime.
func (p *PCB) Ready(now int) {
	p.State = Ready
	if !p.startTimeSet {
		p.StartTime = now
		p.WaitingTime += now - p.ArrivalTime
		p.startTimeSet = true
	}
}

// Running marks the PCB running. The first transition into Running
// stamps ResponseTime.
func (p *PCB) Running() {
	p.State = Running
	if !p.responseTimeSet {
		p.ResponseTime = p.StartTime - p.ArrivalTime
		p.responseTimeSet = true
	}
}

// Wait marks the PCB waiting (I/O or blocked on a child).
func (p *PCB) Wait() {
	p.State = Waiting
}

// Terminate marks the PCB terminated at now and computes the final
// timing metrics: TurnaroundTime = EndTime - ArrivalTime, and
// WaitingTime is reconciled so ExecutionTime + WaitingTime ==
// TurnaroundTime.
func (p *PCB) Terminate(now int) {
	p.State = Terminated
	p.EndTime = now
	p.TurnaroundTime = p.EndTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.ExecutionTime
}

// MakeChild builds a new PCB sharing the parent's program image and
// bounds, for SWI 10 (fork). The child's file name is suffixed
// " (child)"; registers are copied verbatim and the caller is
// responsible for zeroing R0 per the fork contract.
func (p *PCB) MakeChild(childPid int, now int) *PCB {
	child := NewPCB(childPid, p.File+" (child)")
	child.Registers = p.Registers
	child.PC = p.PC
	child.LoaderBase = p.LoaderBase
	child.ByteSize = p.ByteSize
	child.CodeStart = p.CodeStart
	child.CodeEnd = p.CodeEnd
	child.DataStart = p.DataStart
	child.DataEnd = p.DataEnd
	child.NumPages = p.NumPages
	child.MaxResidentPages = p.MaxResidentPages
	child.ArrivalTime = now
	child.QueueLevel = 1
	p.Children = append(p.Children, childPid)
	return child
}

// AddResident records vp as resident, appending it to the clock-hand
// order used by the eviction scan.
func (p *PCB) AddResident(vp int) {
	p.ResidentPages[vp] = true
	p.ResidentOrder = append(p.ResidentOrder, vp)
}

// RemoveResident drops vp from the resident set and its clock order,
// adjusting ClockHand so the hand does not skip past the new
// neighbour of the removed slot.
func (p *PCB) RemoveResident(vp int) {
	delete(p.ResidentPages, vp)
	for i, v := range p.ResidentOrder {
		if v == vp {
			p.ResidentOrder = append(p.ResidentOrder[:i], p.ResidentOrder[i+1:]...)
			if p.ClockHand > i || p.ClockHand >= len(p.ResidentOrder) {
				if p.ClockHand > 0 {
					p.ClockHand--
				}
			}
			break
		}
	}
}

// AllChildrenTerminated reports whether every pid in Children has
// terminated, given a lookup function supplied by the scheduler (which
// owns the process table).
func (p *PCB) AllChildrenTerminated(stateOf func(pid int) (State, bool)) bool {
	for _, cpid := range p.Children {
		if st, ok := stateOf(cpid); ok && st != Terminated {
			return false
		}
	}
	return true
}
