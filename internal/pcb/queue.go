/*
 * osimsim - Process ready-queue.
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

package pcb

// Queue is a FIFO of PCBs with an associated quantum, backing the
// scheduler's Q1/Q2/Q3; the job, io and terminated queues are plain
// slices in the scheduler.
type Queue struct {
	items   []*PCB
	quantum int
}

// NewQueue builds a Queue with the given quantum.
func NewQueue(quantum int) *Queue {
	return &Queue{quantum: quantum}
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

func (q *Queue) Add(p *PCB) {
	q.items = append(q.items, p)
}

// Get pops and returns the head of the queue, or nil if empty.
func (q *Queue) Get() *PCB {
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p
}

// Peek returns the head of the queue without removing it, or nil.
func (q *Queue) Peek() *PCB {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// All returns the queue contents in FIFO order, for reporting (ps,
// job_queue, ready_queue, ...). The returned slice is a copy.
func (q *Queue) All() []*PCB {
	out := make([]*PCB, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Quantum() int {
	return q.quantum
}

func (q *Queue) SetQuantum(quantum int) {
	q.quantum = quantum
}

// Reset empties the queue and restores an effectively-infinite quantum,
// matching the FCFS "very large integer" quantum.
func (q *Queue) Reset() {
	q.items = nil
	q.quantum = 1_000_000
}
