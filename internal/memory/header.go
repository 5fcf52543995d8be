/*
 * osimsim - Program file header.
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

import "encoding/binary"

// HeaderSize is the fixed size of a program file header: three
// little-endian u32 fields.
const HeaderSize = 12

// Header is the program file header: byte_size, entry_pc and
// loader_base, each a little-endian u32 per spec.
type Header struct {
	ByteSize   uint32
	EntryPC    uint32
	LoaderBase uint32
}

// DecodeHeader reads a Header from the first HeaderSize bytes of buf.
// buf must be at least HeaderSize bytes long.
func DecodeHeader(buf []byte) Header {
	return Header{
		ByteSize:   binary.LittleEndian.Uint32(buf[0:4]),
		EntryPC:    binary.LittleEndian.Uint32(buf[4:8]),
		LoaderBase: binary.LittleEndian.Uint32(buf[8:12]),
	}
}

// EncodeHeader writes h as HeaderSize little-endian bytes, for use by
// test fixtures that synthesize program files.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.ByteSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.EntryPC)
	binary.LittleEndian.PutUint32(buf[8:12], h.LoaderBase)
	return buf
}
