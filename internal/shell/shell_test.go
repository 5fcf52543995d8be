/*
 * osimsim - Command shell test cases.
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
	"testing"
)

type fakeEngine struct {
	loadedPath    string
	loadedArrival int
	strategy      string
	rr1, rr2      int
	reset         bool
}

func (f *fakeEngine) Load(path string, arrival int) error {
	f.loadedPath = path
	f.loadedArrival = arrival
	return nil
}
func (f *fakeEngine) Execute(specs []ExecSpec) error { return nil }
func (f *fakeEngine) Run(path string) error          { return nil }
func (f *fakeEngine) Step(pid int) error              { return nil }
func (f *fakeEngine) RunAll() error                   { return nil }
func (f *fakeEngine) Coredump(path string) error      { return nil }
func (f *fakeEngine) Errordump(path string) error     { return nil }
func (f *fakeEngine) Registers(pid int) (string, error) {
	return "", nil
}
func (f *fakeEngine) Clock() int                { return 42 }
func (f *fakeEngine) JobQueue() string          { return "" }
func (f *fakeEngine) ReadyQueue() string        { return "" }
func (f *fakeEngine) IOQueue() string           { return "" }
func (f *fakeEngine) TerminatedQueue() string   { return "" }
func (f *fakeEngine) PS() string                { return "" }
func (f *fakeEngine) SetStrategy(name string) error {
	f.strategy = name
	return nil
}
func (f *fakeEngine) SetRR(q1, q2 int) error {
	f.rr1, f.rr2 = q1, q2
	return nil
}
func (f *fakeEngine) Quantums() (int, int, int)      { return 1, 2, 3 }
func (f *fakeEngine) Gantt() string                  { return "" }
func (f *fakeEngine) GanttGraph(path string) error    { return nil }
func (f *fakeEngine) Reset()                          { f.reset = true }
func (f *fakeEngine) ShmOpen(name string) error        { return nil }
func (f *fakeEngine) ShmUnlink(name string) error      { return nil }
func (f *fakeEngine) SharedMemory(name string) (string, error) {
	return "", nil
}
func (f *fakeEngine) PageSize() uint32             { return 24 }
func (f *fakeEngine) SetPageSize(size uint32) error { return nil }
func (f *fakeEngine) PageLimit() int                { return 3 }
func (f *fakeEngine) SetPageLimit(n int) error       { return nil }

func TestDispatchLoad(t *testing.T) {
	eng := &fakeEngine{}
	quit, err := Dispatch("load prog.bin 5", eng)
	if err != nil || quit {
		t.Fatalf("Dispatch: quit=%v err=%v", quit, err)
	}
	if eng.loadedPath != "prog.bin" || eng.loadedArrival != 5 {
		t.Fatalf("loadedPath=%q loadedArrival=%d", eng.loadedPath, eng.loadedArrival)
	}
}

func TestDispatchPrefixMatch(t *testing.T) {
	eng := &fakeEngine{}
	if _, err := Dispatch("setSched RR", eng); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if eng.strategy != "RR" {
		t.Fatalf("strategy = %q, want RR", eng.strategy)
	}
}

func TestDispatchAmbiguousPrefix(t *testing.T) {
	eng := &fakeEngine{}
	// "s" alone is ambiguous among step/setSched/setRR/shm_open/... below
	// their minimum match length, so it should fail to resolve uniquely.
	_, err := Dispatch("s", eng)
	if err == nil {
		t.Fatal("expected an error for an unresolvable prefix")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	eng := &fakeEngine{}
	_, err := Dispatch("frobnicate", eng)
	if err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestDispatchQuit(t *testing.T) {
	eng := &fakeEngine{}
	quit, err := Dispatch("quit", eng)
	if err != nil || !quit {
		t.Fatalf("Dispatch(quit): quit=%v err=%v", quit, err)
	}
}

func TestDispatchEmptyLine(t *testing.T) {
	eng := &fakeEngine{}
	quit, err := Dispatch("   ", eng)
	if err != nil || quit {
		t.Fatalf("Dispatch(blank): quit=%v err=%v", quit, err)
	}
}

func TestDispatchReset(t *testing.T) {
	eng := &fakeEngine{}
	if _, err := Dispatch("reset", eng); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !eng.reset {
		t.Fatal("expected Reset to be called")
	}
}
