/*
 * osimsim - Command shell command implementations.
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

package shell

import (
	"errors"
	"fmt"

	"github.com/rcornwell/osimsim/internal/cpu"
)

func cmdLoad(line *cmdLine, eng Engine) (bool, error) {
	path := line.getWord()
	if path == "" {
		return false, errors.New("load: missing program path")
	}
	arrival := 0
	if w := line.rest(); w != "" {
		a, err := (&cmdLine{line: w}).getInt()
		if err != nil {
			return false, fmt.Errorf("load: invalid arrival time: %w", err)
		}
		arrival = a
	}
	return false, eng.Load(path, arrival)
}

func cmdExecute(line *cmdLine, eng Engine) (bool, error) {
	var specs []ExecSpec
	for {
		path := line.getWord()
		if path == "" {
			break
		}
		arrival, err := line.getInt()
		if err != nil {
			return false, fmt.Errorf("execute: %s: missing arrival time", path)
		}
		specs = append(specs, ExecSpec{Path: path, Arrival: arrival})
	}
	if len(specs) == 0 {
		return false, errors.New("execute: no programs given")
	}
	return false, eng.Execute(specs)
}

func cmdRun(line *cmdLine, eng Engine) (bool, error) {
	path := line.getWord()
	if path == "" {
		return false, eng.RunAll()
	}
	return false, eng.Run(path)
}

func cmdStep(line *cmdLine, eng Engine) (bool, error) {
	pid, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("step: %w", err)
	}
	return false, eng.Step(pid)
}

func cmdCoredump(line *cmdLine, eng Engine) (bool, error) {
	path := line.getWord()
	if path == "" {
		path = "memory.txt"
	}
	return false, eng.Coredump(path)
}

func cmdErrordump(line *cmdLine, eng Engine) (bool, error) {
	path := line.getWord()
	if path == "" {
		path = "errors.txt"
	}
	return false, eng.Errordump(path)
}

func cmdRegisters(line *cmdLine, eng Engine) (bool, error) {
	pid, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("registers: %w", err)
	}
	out, err := eng.Registers(pid)
	if err != nil {
		return false, err
	}
	fmt.Println(out)
	return false, nil
}

func cmdClock(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.Clock())
	return false, nil
}

func cmdJobQueue(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.JobQueue())
	return false, nil
}

func cmdReadyQueue(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.ReadyQueue())
	return false, nil
}

func cmdIOQueue(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.IOQueue())
	return false, nil
}

func cmdTerminatedQueue(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.TerminatedQueue())
	return false, nil
}

func cmdSetSched(line *cmdLine, eng Engine) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("setSched: expected FCFS, RR or MLFQ")
	}
	return false, eng.SetStrategy(name)
}

func cmdSetRR(line *cmdLine, eng Engine) (bool, error) {
	q1, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("setRR: %w", err)
	}
	q2, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("setRR: %w", err)
	}
	return false, eng.SetRR(q1, q2)
}

func cmdQuantums(_ *cmdLine, eng Engine) (bool, error) {
	q1, q2, q3 := eng.Quantums()
	fmt.Printf("q1=%d q2=%d q3=%d\n", q1, q2, q3)
	return false, nil
}

func cmdGantt(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.Gantt())
	return false, nil
}

func cmdGanttGraph(line *cmdLine, eng Engine) (bool, error) {
	path := line.getWord()
	if path == "" {
		path = "charts/gantt.png"
	}
	return false, eng.GanttGraph(path)
}

func cmdReset(_ *cmdLine, eng Engine) (bool, error) {
	eng.Reset()
	return false, nil
}

func cmdShmOpen(line *cmdLine, eng Engine) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("shm_open: missing name")
	}
	return false, eng.ShmOpen(name)
}

func cmdShmUnlink(line *cmdLine, eng Engine) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("shm_unlink: missing name")
	}
	return false, eng.ShmUnlink(name)
}

func cmdSharedMemory(line *cmdLine, eng Engine) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("shared_memory: missing name")
	}
	out, err := eng.SharedMemory(name)
	if err != nil {
		return false, err
	}
	fmt.Println(out)
	return false, nil
}

func cmdPS(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.PS())
	return false, nil
}

// cmdGetPageSize reports the page size in lines (instructions), the
// unit setpagesize takes, per spec.md §6.
func cmdGetPageSize(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.PageSize() / cpu.InstructionSize)
	return false, nil
}

// cmdSetPageSize takes a page size in lines (instructions) and converts
// to bytes, the unit the memory manager works in.
func cmdSetPageSize(line *cmdLine, eng Engine) (bool, error) {
	n, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("setpagesize: %w", err)
	}
	return false, eng.SetPageSize(uint32(n) * cpu.InstructionSize)
}

func cmdGetPageNumber(_ *cmdLine, eng Engine) (bool, error) {
	fmt.Println(eng.PageLimit())
	return false, nil
}

func cmdSetPageNumber(line *cmdLine, eng Engine) (bool, error) {
	n, err := line.getInt()
	if err != nil {
		return false, fmt.Errorf("setpagenumber: %w", err)
	}
	return false, eng.SetPageLimit(n)
}

func cmdHelp(_ *cmdLine, _ Engine) (bool, error) {
	for _, c := range cmdList {
		fmt.Println(c.name)
	}
	return false, nil
}

func cmdQuit(_ *cmdLine, _ Engine) (bool, error) {
	return true, nil
}
