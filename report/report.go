/*
 * osimsim - Coredump, errordump, Gantt and process-status text reports.
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

// Package report renders the coredump, error log, Gantt trace and
// process-status listing as plain text, the way the teacher's `show`
// command writes its device reports with fmt.Printf/os.Create rather
// than a binary or templated format.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/rcornwell/osimsim/internal/memory"
	"github.com/rcornwell/osimsim/internal/pcb"
	"github.com/rcornwell/osimsim/internal/scheduler"
	"github.com/rcornwell/osimsim/internal/syscode"
	hx "github.com/rcornwell/osimsim/util/hex"
)

const bytesPerLine = 16

// Coredump writes physical memory as a hex dump to path, 16 bytes per
// line prefixed by its address.
func Coredump(path string, mem *memory.Memory) error {
	var b strings.Builder
	size := mem.Size()
	for addr := uint32(0); addr < size; addr += bytesPerLine {
		end := addr + bytesPerLine
		if end > size {
			end = size
		}
		data, ok := mem.Slice(addr, end)
		if !ok {
			return syscode.New(syscode.OutOfBounds, path, "coredump read past physical memory")
		}
		hx.FormatAddr(&b, addr)
		b.WriteString("  ")
		hx.FormatBytes(&b, true, data)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ErrorEntry is one line of the in-memory error log: program, code,
// message and code text, per spec.md §7.
type ErrorEntry struct {
	Program string
	Code    int
	Message string
}

// Errordump writes the error log to path, one entry per line.
func Errordump(path string, entries []ErrorEntry) error {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %d %s: %s\n", e.Program, e.Code, syscode.Text(e.Code), e.Message)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Registers renders one PCB's register file and scheduling accounting
// as a single text block.
func Registers(p *pcb.PCB) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pid=%d file=%s state=%s pc=", p.Pid, p.File, p.State)
	hx.FormatAddr(&b, p.PC)
	b.WriteByte('\n')
	hx.FormatWord(&b, p.Registers[:])
	b.WriteByte('\n')
	fmt.Fprintf(&b, "queue_level=%d run_count=%d preempt_count=%d\n", p.QueueLevel, p.RunCount, p.PreemptCount)
	fmt.Fprintf(&b, "arrival=%d start=%d end=%d execution=%d waiting=%d turnaround=%d response=%d\n",
		p.ArrivalTime, p.StartTime, p.EndTime, p.ExecutionTime, p.WaitingTime, p.TurnaroundTime, p.ResponseTime)
	return b.String()
}

// Queue renders a PCB slice as one line per process: pid, state, file.
func Queue(procs []*pcb.PCB) string {
	var b strings.Builder
	for _, p := range procs {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", p.Pid, p.State, p.File)
	}
	return b.String()
}

// PS renders a `ps`-style table across every queue the scheduler
// tracks.
func PS(s *scheduler.Scheduler) string {
	var b strings.Builder
	b.WriteString("PID\tSTATE\tQLVL\tFILE\n")
	render := func(procs []*pcb.PCB) {
		for _, p := range procs {
			fmt.Fprintf(&b, "%d\t%s\t%d\t%s\n", p.Pid, p.State, p.QueueLevel, p.File)
		}
	}
	render(s.JobQueue())
	render(s.ReadyQueue())
	render(s.IOQueue())
	render(s.TerminatedQueue())
	return b.String()
}

// Gantt renders the scheduler's Gantt trace as one line per interval:
// [start,end) pid queue_level, with pid 0 meaning IDLE.
func Gantt(intervals []scheduler.GanttInterval) string {
	var b strings.Builder
	for _, iv := range intervals {
		if iv.Pid == 0 {
			fmt.Fprintf(&b, "[%d,%d) IDLE\n", iv.Start, iv.End)
			continue
		}
		fmt.Fprintf(&b, "[%d,%d) pid=%d q=%d\n", iv.Start, iv.End, iv.Pid, iv.QueueLevel)
	}
	return b.String()
}
