/*
 * osimsim - Convert Hex to strings.
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

// Package hex renders words, addresses and byte ranges as hex text for
// the coredump and registers reports.
package hex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatWord writes each of word as 8 hex digits, space separated.
func FormatWord(str *strings.Builder, word []uint32) {
	for _, full := range word {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatAddr writes a single 32-bit virtual or physical address as 8
// hex digits, no trailing space.
func FormatAddr(str *strings.Builder, addr uint32) {
	shift := 28
	for range 8 {
		str.WriteByte(hexMap[(addr>>shift)&0xf])
		shift -= 4
	}
}

// FormatBytes writes data as pairs of hex digits, optionally space
// separated.
func FormatBytes(str *strings.Builder, space bool, data []uint8) {
	for _, by := range data {
		str.WriteByte(hexMap[(by>>4)&0xf])
		str.WriteByte(hexMap[by&0xf])
		if space {
			str.WriteByte(' ')
		}
	}
}

func FormatByte(str *strings.Builder, data byte) {
	str.WriteByte(hexMap[(data>>4)&0xf])
	str.WriteByte(hexMap[data&0xf])
}

func FormatDigit(str *strings.Builder, data byte) {
	str.WriteByte(hexMap[data&0xf])
}

// FormatDecimal writes num as a decimal string with no leading zeros,
// used for pid/register-index columns in tabular reports.
func FormatDecimal(str *strings.Builder, num int) {
	if num == 0 {
		str.WriteByte('0')
		return
	}
	neg := num < 0
	if neg {
		num = -num
	}
	var digits [12]byte
	n := 0
	for num > 0 {
		digits[n] = byte('0' + num%10)
		num /= 10
		n++
	}
	if neg {
		str.WriteByte('-')
	}
	for n > 0 {
		n--
		str.WriteByte(digits[n])
	}
}
