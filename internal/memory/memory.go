/*
 * osimsim - Physical memory.
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

// Package memory implements physical memory, the program header codec,
// and the demand-paged memory manager: program admission, frame
// allocation, page-fault service and eviction.
package memory

// Memory is a flat byte array of fixed capacity, indexable by address
// and sliceable into contiguous ranges. It carries no knowledge of
// pages or processes; that is the MemoryManager's job.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a Memory of size bytes, zero filled.
func NewMemory(size uint32) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.bytes))
}

// CheckAddr reports whether addr is a valid single-byte address.
func (m *Memory) CheckAddr(addr uint32) bool {
	return addr < m.Size()
}

// GetByte reads one byte; ok is false if addr is out of range.
func (m *Memory) GetByte(addr uint32) (value byte, ok bool) {
	if !m.CheckAddr(addr) {
		return 0, false
	}
	return m.bytes[addr], true
}

// PutByte writes one byte; ok is false if addr is out of range.
func (m *Memory) PutByte(addr uint32, value byte) (ok bool) {
	if !m.CheckAddr(addr) {
		return false
	}
	m.bytes[addr] = value
	return true
}

// GetWord reads a little-endian 32-bit word starting at addr.
func (m *Memory) GetWord(addr uint32) (value uint32, ok bool) {
	if addr+4 > m.Size() {
		return 0, false
	}
	b := m.bytes[addr : addr+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, true
}

// PutWord writes a little-endian 32-bit word starting at addr.
func (m *Memory) PutWord(addr uint32, value uint32) (ok bool) {
	if addr+4 > m.Size() {
		return false
	}
	b := m.bytes[addr : addr+4]
	b[0] = byte(value)
	b[1] = byte(value >> 8)
	b[2] = byte(value >> 16)
	b[3] = byte(value >> 24)
	return true
}

// Slice returns the byte range [start, end), or ok=false if out of
// range.
func (m *Memory) Slice(start, end uint32) (data []byte, ok bool) {
	if end < start || end > m.Size() {
		return nil, false
	}
	return m.bytes[start:end], true
}

// CopyIn copies data into memory starting at start; ok is false if it
// would run past the end of memory.
func (m *Memory) CopyIn(start uint32, data []byte) (ok bool) {
	end := start + uint32(len(data))
	if end < start || end > m.Size() {
		return false
	}
	copy(m.bytes[start:end], data)
	return true
}

// Zero clears the byte range [start, end).
func (m *Memory) Zero(start, end uint32) {
	if end > m.Size() {
		end = m.Size()
	}
	for i := start; i < end; i++ {
		m.bytes[i] = 0
	}
}
