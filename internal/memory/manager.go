/*
 * osimsim - Memory manager.
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
	"sort"

	"github.com/rcornwell/osimsim/internal/pcb"
	"github.com/rcornwell/osimsim/internal/syscode"
)

// DefaultPageSize is page_size in bytes: 4 instructions of 6 bytes
// each.
const DefaultPageSize = 6 * 4

// DefaultPageLimit is the default max_resident_pages for a new process.
const DefaultPageLimit = 3

// ProgramDescriptor is the result of PrepareProgram: the validated
// header plus the derived code/data extents.
type ProgramDescriptor struct {
	Path       string
	ByteSize   uint32
	EntryPC    uint32
	LoaderBase uint32
	CodeStart  uint32
	CodeEnd    uint32
	DataStart  uint32
	DataEnd    uint32
}

type allocation struct {
	start uint32
	end   uint32
	pid   int
}

// Manager owns physical memory, the free-frame pool, and each
// resident process's backing store and page table.
type Manager struct {
	mem *Memory

	pageSize         uint32
	defaultPageLimit int

	numFrames  int
	freeFrames []int

	backing map[int][]byte // pid -> program image (post-header bytes)

	allocations []allocation
	residents   map[int]*pcb.PCB // pid -> pcb, for the global eviction scan

	PageFaults int
}

// NewManager builds a Manager over size bytes of physical memory with
// the default page size and page limit.
func NewManager(size uint32) *Manager {
	m := &Manager{
		mem:              NewMemory(size),
		pageSize:         DefaultPageSize,
		defaultPageLimit: DefaultPageLimit,
		backing:          make(map[int][]byte),
		residents:        make(map[int]*pcb.PCB),
	}
	m.rebuildFrames()
	return m
}

func (m *Manager) rebuildFrames() {
	m.numFrames = int(m.mem.Size() / m.pageSize)
	m.freeFrames = make([]int, m.numFrames)
	for i := range m.freeFrames {
		m.freeFrames[i] = i
	}
}

// PageSize returns the current page size in bytes.
func (m *Manager) PageSize() uint32 {
	return m.pageSize
}

// SetPageSize changes the page size; it fails while any process is
// resident, since the frame layout and every live page table would be
// invalidated mid-flight.
func (m *Manager) SetPageSize(size uint32) error {
	if size == 0 {
		return syscode.New(syscode.InvalidSize, "", "invalid page size")
	}
	if len(m.residents) > 0 {
		return syscode.New(syscode.InvalidSize, "", "cannot change page size while processes are loaded")
	}
	m.pageSize = size
	m.rebuildFrames()
	return nil
}

// PageLimit returns the default max_resident_pages for newly admitted
// processes.
func (m *Manager) PageLimit() int {
	return m.defaultPageLimit
}

// SetPageLimit changes the default max_resident_pages for processes
// admitted after the call; already-resident processes keep theirs.
func (m *Manager) SetPageLimit(limit int) error {
	if limit <= 0 {
		return syscode.New(syscode.InvalidSize, "", "invalid page limit")
	}
	m.defaultPageLimit = limit
	return nil
}

// NumFrames returns the number of physical frames.
func (m *Manager) NumFrames() int {
	return m.numFrames
}

// FreeFrameCount returns the number of unassigned frames.
func (m *Manager) FreeFrameCount() int {
	return len(m.freeFrames)
}

// Physical exposes the underlying flat memory, for coredump rendering.
func (m *Manager) Physical() *Memory {
	return m.mem
}

// PrepareProgram validates a program file's header and returns the
// derived descriptor. Validation order: empty path -> InvalidPath;
// file open failure -> FileNotFound; byte_size <= 0 -> InvalidSize;
// byte_size > physical memory size -> MemoryAlloc.
func (m *Manager) PrepareProgram(path string) (*ProgramDescriptor, error) {
	if path == "" {
		return nil, syscode.New(syscode.InvalidPath, path, "please specify the file path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, syscode.New(syscode.FileNotFound, path, err.Error())
	}
	if len(data) < HeaderSize {
		return nil, syscode.New(syscode.FileNotFound, path, "program file shorter than header")
	}

	h := DecodeHeader(data)
	if int32(h.ByteSize) <= 0 {
		return nil, syscode.Errorf(syscode.InvalidSize, path, "invalid program size: %d bytes", h.ByteSize)
	}
	if h.ByteSize > m.mem.Size() {
		return nil, syscode.Errorf(syscode.MemoryAlloc, path, "program size %d exceeds memory size %d", h.ByteSize, m.mem.Size())
	}

	return &ProgramDescriptor{
		Path:       path,
		ByteSize:   h.ByteSize,
		EntryPC:    h.EntryPC,
		LoaderBase: h.LoaderBase,
		CodeStart:  h.EntryPC,
		CodeEnd:    h.LoaderBase + h.ByteSize - 1,
		DataStart:  h.LoaderBase,
		DataEnd:    h.EntryPC - 1,
	}, nil
}

// CheckMemoryAvailable reports whether p may be admitted: true when
// p's loader_base/byte_size extent overlaps no allocation of a live
// process. A terminated owner found overlapping is lazily freed and
// admission proceeds.
func (m *Manager) CheckMemoryAvailable(p *pcb.PCB) bool {
	start := p.LoaderBase
	end := start + p.ByteSize
	for i := 0; i < len(m.allocations); i++ {
		alloc := m.allocations[i]
		if start < alloc.end && alloc.start < end {
			owner, ok := m.residents[alloc.pid]
			if ok && owner.State == pcb.Terminated {
				m.FreeMemory(owner)
				return true
			}
			if !ok {
				continue
			}
			return false
		}
	}
	return true
}

// LoadToMemory reads p's program image (the bytes after the header)
// into its backing store and resets its page table. It does not touch
// physical memory; pages are demand-loaded by Translate.
func (m *Manager) LoadToMemory(p *pcb.PCB) error {
	data, err := os.ReadFile(p.File)
	if err != nil {
		return syscode.New(syscode.FileNotFound, p.File, err.Error())
	}
	if uint32(len(data)) < HeaderSize+p.ByteSize {
		return syscode.New(syscode.LengthMismatch, p.File, "program file shorter than declared byte_size")
	}

	m.backing[p.Pid] = data[HeaderSize : HeaderSize+p.ByteSize]
	p.PageTable = make(map[int]*pcb.PTE)
	p.ResidentPages = make(map[int]bool)
	p.ResidentOrder = nil
	p.ClockHand = 0
	p.NumPages = int((p.ByteSize + m.pageSize - 1) / m.pageSize)
	p.MaxResidentPages = m.defaultPageLimit

	m.allocations = append(m.allocations, allocation{start: p.LoaderBase, end: p.LoaderBase + p.ByteSize, pid: p.Pid})
	m.residents[p.Pid] = p
	return nil
}

// CloneBackingStore duplicates the parent's program image under the
// child's pid, for SWI 10 (fork) where the child shares the parent's
// loaded program.
func (m *Manager) CloneBackingStore(parentPid, childPid int) {
	if img, ok := m.backing[parentPid]; ok {
		m.backing[childPid] = img
	}
}

// AdoptChild registers a freshly forked child in the memory manager:
// it clones the parent's backing store and gives the child its own
// empty page table, so Translate demand-loads the child's pages into
// frames independent of the parent's.
func (m *Manager) AdoptChild(parent, child *pcb.PCB) {
	m.CloneBackingStore(parent.Pid, child.Pid)
	child.PageTable = make(map[int]*pcb.PTE)
	child.ResidentPages = make(map[int]bool)
	child.ResidentOrder = nil
	child.ClockHand = 0
	m.allocations = append(m.allocations, allocation{start: child.LoaderBase, end: child.LoaderBase + child.ByteSize, pid: child.Pid})
	m.residents[child.Pid] = child
}

// Translate converts a virtual address to a physical one, demand
// loading the containing page on a fault.
func (m *Manager) Translate(p *pcb.PCB, virtualAddr uint32) (uint32, error) {
	vp := int(virtualAddr / m.pageSize)
	offset := virtualAddr % m.pageSize

	pte, ok := p.PageTable[vp]
	if !ok || !pte.Valid {
		m.PageFaults++
		if err := m.LoadPage(p, vp); err != nil {
			return 0, err
		}
		pte = p.PageTable[vp]
	}
	return uint32(pte.Frame)*m.pageSize + offset, nil
}

// LoadPage demand-loads virtual page vp of p into a free frame,
// evicting first from p itself (once its resident-page limit is hit)
// and then globally if no frame is free.
func (m *Manager) LoadPage(p *pcb.PCB, vp int) error {
	if vp < 0 || vp >= p.NumPages {
		return syscode.Errorf(syscode.OutOfBounds, p.File, "page %d out of bounds (num_pages=%d)", vp, p.NumPages)
	}
	if pte, ok := p.PageTable[vp]; ok && pte.Valid {
		return nil
	}

	if len(p.ResidentPages) >= p.MaxResidentPages {
		m.EvictPage(p)
	}
	if len(m.freeFrames) == 0 {
		m.EvictPage(nil)
	}
	if len(m.freeFrames) == 0 {
		return syscode.New(syscode.MemoryAlloc, p.File, "no free frame available after eviction")
	}

	frame := m.freeFrames[0]
	m.freeFrames = m.freeFrames[1:]

	pageStart := uint32(vp) * m.pageSize
	pageEnd := pageStart + m.pageSize
	img := m.backing[p.Pid]
	if pageEnd > uint32(len(img)) {
		pageEnd = uint32(len(img))
	}
	pageData := img[pageStart:pageEnd]

	frameStart := uint32(frame) * m.pageSize
	m.mem.Zero(frameStart, frameStart+m.pageSize)
	if !m.mem.CopyIn(frameStart, pageData) {
		return syscode.New(syscode.OutOfBounds, p.File, "frame copy ran past physical memory")
	}

	p.PageTable[vp] = &pcb.PTE{Frame: frame, Valid: true, Reference: true, Dirty: false}
	p.AddResident(vp)
	return nil
}

// EvictPage reclaims one frame. If target is non-nil, it evicts one of
// target's own pages (the per-process limit path); otherwise it scans
// every resident process, in ascending pid order, for a victim (the
// global no-free-frame path) — pid order rather than map iteration
// order keeps the global scan deterministic, per spec.md §9's call for
// a documented, repeatable eviction policy. Within a process the victim
// is chosen by a clock/second-chance scan over ResidentOrder: a page
// whose reference bit is set is given a second chance (bit cleared,
// scan continues) before being evicted.
func (m *Manager) EvictPage(target *pcb.PCB) {
	if target != nil {
		m.evictFrom(target)
		return
	}
	pids := make([]int, 0, len(m.residents))
	for pid := range m.residents {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	for _, pid := range pids {
		p := m.residents[pid]
		if len(p.ResidentOrder) == 0 {
			continue
		}
		if m.evictFrom(p) {
			return
		}
	}
}

// evictFrom runs the clock hand over p's resident pages and reports
// whether a page was evicted.
func (m *Manager) evictFrom(p *pcb.PCB) bool {
	n := len(p.ResidentOrder)
	for i := 0; i < 2*n; i++ {
		if p.ClockHand >= len(p.ResidentOrder) {
			p.ClockHand = 0
		}
		if len(p.ResidentOrder) == 0 {
			return false
		}
		vp := p.ResidentOrder[p.ClockHand]
		pte, ok := p.PageTable[vp]
		if !ok || !pte.Valid {
			p.ClockHand++
			continue
		}
		if pte.Reference {
			pte.Reference = false
			p.ClockHand++
			continue
		}
		pte.Valid = false
		m.freeFrames = append(m.freeFrames, pte.Frame)
		pte.Frame = 0
		p.RemoveResident(vp)
		return true
	}
	return false
}

// FreeMemory invalidates all of p's page table entries, returns its
// frames to the free pool, and drops its backing store and allocation
// record. Called on process termination.
func (m *Manager) FreeMemory(p *pcb.PCB) {
	for vp, pte := range p.PageTable {
		if pte.Valid {
			m.freeFrames = append(m.freeFrames, pte.Frame)
			pte.Valid = false
			pte.Frame = 0
		}
		delete(p.PageTable, vp)
	}
	p.ResidentPages = make(map[int]bool)
	p.ResidentOrder = nil
	p.ClockHand = 0

	delete(m.backing, p.Pid)
	delete(m.residents, p.Pid)

	kept := m.allocations[:0]
	for _, a := range m.allocations {
		if a.pid != p.Pid {
			kept = append(kept, a)
		}
	}
	m.allocations = kept
}
