/*
 * osimsim - Command shell dispatcher.
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

// Package shell implements the table-driven command dispatcher that
// drives the simulator interactively: one cmd entry per verb, matched
// by unique prefix the way the teacher's command parser matches device
// commands.
package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Engine is the narrow façade surface the shell drives. system.System
// implements it; the shell package never imports internal/system, so
// there is no import cycle between the command dispatcher and the
// façade it dispatches into.
type Engine interface {
	Load(path string, arrival int) error
	Execute(specs []ExecSpec) error
	Run(path string) error
	Step(pid int) error
	RunAll() error

	Coredump(path string) error
	Errordump(path string) error
	Registers(pid int) (string, error)
	Clock() int

	JobQueue() string
	ReadyQueue() string
	IOQueue() string
	TerminatedQueue() string
	PS() string

	SetStrategy(name string) error
	SetRR(q1, q2 int) error
	Quantums() (int, int, int)

	Gantt() string
	GanttGraph(path string) error

	Reset()

	ShmOpen(name string) error
	ShmUnlink(name string) error
	SharedMemory(name string) (string, error)

	PageSize() uint32
	SetPageSize(size uint32) error
	PageLimit() int
	SetPageLimit(n int) error
}

// ExecSpec is one (path, arrival-time) pair for the `execute` command,
// which admits several programs in one call.
type ExecSpec struct {
	Path    string
	Arrival int
}

type cmd struct {
	name string
	min  int
	run  func(line *cmdLine, eng Engine) (quit bool, err error)
}

var cmdList = []cmd{
	{name: "load", min: 2, run: cmdLoad},
	{name: "execute", min: 2, run: cmdExecute},
	{name: "run", min: 2, run: cmdRun},
	{name: "step", min: 3, run: cmdStep},
	{name: "coredump", min: 4, run: cmdCoredump},
	{name: "errordump", min: 4, run: cmdErrordump},
	{name: "registers", min: 3, run: cmdRegisters},
	{name: "clock", min: 3, run: cmdClock},
	{name: "job_queue", min: 4, run: cmdJobQueue},
	{name: "ready_queue", min: 6, run: cmdReadyQueue},
	{name: "io_queue", min: 3, run: cmdIOQueue},
	{name: "terminated_queue", min: 2, run: cmdTerminatedQueue},
	{name: "setSched", min: 4, run: cmdSetSched},
	{name: "setRR", min: 4, run: cmdSetRR},
	{name: "quantums", min: 2, run: cmdQuantums},
	{name: "gantt", min: 5, run: cmdGantt},
	{name: "gantt_graph", min: 6, run: cmdGanttGraph},
	{name: "reset", min: 5, run: cmdReset},
	{name: "shm_open", min: 5, run: cmdShmOpen},
	{name: "shm_unlink", min: 5, run: cmdShmUnlink},
	{name: "shared_memory", min: 8, run: cmdSharedMemory},
	{name: "ps", min: 2, run: cmdPS},
	{name: "getpagesize", min: 8, run: cmdGetPageSize},
	{name: "setpagesize", min: 8, run: cmdSetPageSize},
	{name: "getpagenumber", min: 8, run: cmdGetPageNumber},
	{name: "setpagenumber", min: 8, run: cmdSetPageNumber},
	{name: "quit", min: 4, run: cmdQuit},
}

// help is registered in init because cmdHelp reads cmdList, which the
// package-level initializer above cannot express without a cycle.
func init() {
	cmdList = append(cmdList, cmd{name: "help", min: 1, run: cmdHelp})
}

// cmdLine is a cursor over one input line, tokenized the way the
// teacher's command parser walks a device command: skip spaces,
// collect a word, stop at EOL or '#'.
type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line) || l.line[l.pos] == '#'
}

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

func (l *cmdLine) getInt() (int, error) {
	w := l.getWord()
	if w == "" {
		return 0, errors.New("expected a number")
	}
	return strconv.Atoi(w)
}

func (l *cmdLine) rest() string {
	l.skipSpace()
	if l.isEOL() {
		return ""
	}
	return strings.TrimSpace(l.line[l.pos:])
}

// matchCommand reports whether command is an unambiguous prefix (at
// least min characters) of a registered cmd's name. command arrives
// lower-cased, so the name is compared case-insensitively.
func matchCommand(c cmd, command string) bool {
	if len(command) < c.min || len(command) > len(c.name) {
		return false
	}
	return strings.ToLower(c.name[:len(command)]) == command
}

func matchList(command string) []cmd {
	if command == "" {
		return nil
	}
	var matches []cmd
	for _, c := range cmdList {
		if matchCommand(c, command) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Complete returns the command names matching the word line is
// currently positioned on, for the console's tab completion.
func Complete(line string) []string {
	l := &cmdLine{line: line}
	word := l.getWord()
	matches := matchList(strings.ToLower(word))
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// Dispatch parses and runs one command line against eng. It returns
// quit=true only for the `quit` command.
func Dispatch(line string, eng Engine) (bool, error) {
	l := &cmdLine{line: line}
	word := l.getWord()
	if word == "" {
		return false, nil
	}

	matches := matchList(strings.ToLower(word))
	switch len(matches) {
	case 0:
		return false, fmt.Errorf("unknown command: %s", word)
	case 1:
		return matches[0].run(l, eng)
	default:
		return false, fmt.Errorf("ambiguous command: %s", word)
	}
}
