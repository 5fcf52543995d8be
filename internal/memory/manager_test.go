/*
 * osimsim - Memory manager test cases.
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

package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/osimsim/internal/pcb"
	"github.com/rcornwell/osimsim/internal/syscode"
)

// writeProgram builds a program file with the given header and image
// bytes, returning its path.
func writeProgram(t *testing.T, dir, name string, h Header, image []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	buf := append(EncodeHeader(h), image...)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestPrepareProgramEmptyPath(t *testing.T) {
	m := NewManager(1024)
	_, err := m.PrepareProgram("")
	if syscode.CodeOf(err) != syscode.InvalidPath {
		t.Fatalf("err = %v, want InvalidPath", err)
	}
}

func TestPrepareProgramFileNotFound(t *testing.T) {
	m := NewManager(1024)
	_, err := m.PrepareProgram(filepath.Join(t.TempDir(), "missing.bin"))
	if syscode.CodeOf(err) != syscode.FileNotFound {
		t.Fatalf("err = %v, want FileNotFound", err)
	}
}

func TestPrepareProgramInvalidSize(t *testing.T) {
	m := NewManager(1024)
	dir := t.TempDir()
	path := writeProgram(t, dir, "zero.bin", Header{ByteSize: 0, EntryPC: 12, LoaderBase: 12}, nil)
	_, err := m.PrepareProgram(path)
	if syscode.CodeOf(err) != syscode.InvalidSize {
		t.Fatalf("err = %v, want InvalidSize", err)
	}
}

func TestPrepareProgramTooLarge(t *testing.T) {
	m := NewManager(64)
	dir := t.TempDir()
	path := writeProgram(t, dir, "big.bin", Header{ByteSize: 1000, EntryPC: 12, LoaderBase: 12}, make([]byte, 1000))
	_, err := m.PrepareProgram(path)
	if syscode.CodeOf(err) != syscode.MemoryAlloc {
		t.Fatalf("err = %v, want MemoryAlloc", err)
	}
}

func TestPrepareProgramDescriptor(t *testing.T) {
	m := NewManager(4096)
	dir := t.TempDir()
	image := make([]byte, 24)
	path := writeProgram(t, dir, "ok.bin", Header{ByteSize: 24, EntryPC: 24, LoaderBase: 0}, image)
	d, err := m.PrepareProgram(path)
	if err != nil {
		t.Fatalf("PrepareProgram: %v", err)
	}
	if d.CodeStart != 24 || d.CodeEnd != 23 || d.DataStart != 0 || d.DataEnd != 23 {
		t.Fatalf("descriptor = %+v", d)
	}
}

func loadedPCB(t *testing.T, m *Manager, pid int, numPages int) *pcb.PCB {
	t.Helper()
	dir := t.TempDir()
	byteSize := uint32(numPages) * DefaultPageSize
	image := make([]byte, byteSize)
	for i := range image {
		image[i] = byte(i)
	}
	path := writeProgram(t, dir, "prog.bin", Header{ByteSize: byteSize, EntryPC: 0, LoaderBase: 0}, image)

	p := pcb.NewPCB(pid, path)
	p.ByteSize = byteSize
	p.LoaderBase = 0
	p.CodeStart = 0
	p.CodeEnd = byteSize - 1
	if err := m.LoadToMemory(p); err != nil {
		t.Fatalf("LoadToMemory: %v", err)
	}
	return p
}

func TestTranslateFaultsAndCaches(t *testing.T) {
	m := NewManager(4096)
	p := loadedPCB(t, m, 1, 2)

	before := m.PageFaults
	_, err := m.Translate(p, 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if m.PageFaults != before+1 {
		t.Fatalf("PageFaults = %d, want %d", m.PageFaults, before+1)
	}

	// second access to the same page must not fault again.
	if _, err := m.Translate(p, 4); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if m.PageFaults != before+1 {
		t.Fatalf("PageFaults after repeat access = %d, want %d", m.PageFaults, before+1)
	}
}

func TestPagingEvictsAtLimit(t *testing.T) {
	m := NewManager(4096)
	p := loadedPCB(t, m, 1, 10)
	p.MaxResidentPages = 3

	for vp := 0; vp < 10; vp++ {
		addr := uint32(vp) * m.PageSize()
		if _, err := m.Translate(p, addr); err != nil {
			t.Fatalf("Translate(vp=%d): %v", vp, err)
		}
		if len(p.ResidentPages) > p.MaxResidentPages {
			t.Fatalf("resident pages = %d > limit %d", len(p.ResidentPages), p.MaxResidentPages)
		}
	}
	if m.PageFaults != 10 {
		t.Fatalf("PageFaults = %d, want 10", m.PageFaults)
	}
	if m.FreeFrameCount()+countValidFrames(m, p) != m.NumFrames() {
		t.Fatalf("free+used frames do not partition NumFrames")
	}
}

func countValidFrames(m *Manager, p *pcb.PCB) int {
	n := 0
	for _, pte := range p.PageTable {
		if pte.Valid {
			n++
		}
	}
	return n
}

func TestFreeMemoryReturnsFrames(t *testing.T) {
	m := NewManager(4096)
	p := loadedPCB(t, m, 1, 2)
	m.Translate(p, 0)
	before := m.FreeFrameCount()
	m.FreeMemory(p)
	if m.FreeFrameCount() != before+1 {
		t.Fatalf("FreeFrameCount = %d, want %d", m.FreeFrameCount(), before+1)
	}
	if len(p.PageTable) != 0 {
		t.Fatalf("PageTable not cleared: %v", p.PageTable)
	}
}

func TestCheckMemoryAvailableOverlap(t *testing.T) {
	m := NewManager(4096)
	p1 := loadedPCB(t, m, 1, 1)
	p2 := pcb.NewPCB(2, "other.bin")
	p2.LoaderBase = p1.LoaderBase
	p2.ByteSize = p1.ByteSize
	if m.CheckMemoryAvailable(p2) {
		t.Fatal("expected overlap with live process to block admission")
	}
	p1.Terminate(0)
	if !m.CheckMemoryAvailable(p2) {
		t.Fatal("expected overlap with terminated process to lazily free and allow admission")
	}
}

func TestSetPageSizeRefusedWhileLoaded(t *testing.T) {
	m := NewManager(4096)
	loadedPCB(t, m, 1, 1)
	if err := m.SetPageSize(48); err == nil {
		t.Fatal("expected SetPageSize to fail while a process is resident")
	}
}
