/*
 * CMPSC - Compression call test helpers
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

package cmpsc

import (
	"github.com/rcornwell/cmpsc/emu/irc"
)

const (
	testOrigin uint32 = 0x10000
	testSource uint32 = 0x40000
	testDest   uint32 = 0x60000
	testOut    uint32 = 0x80000
)

// Flat storage with identity translation.
type testMem struct {
	data  []byte
	fault map[uint32]bool // Pages that fail translation
	reads []uint32        // Address of each fetch
}

func newTestMem() *testMem {
	return &testMem{data: make([]byte, 1<<20), fault: make(map[uint32]bool)}
}

func (m *testMem) Translate(va uint32, _ bool) (uint32, uint16) {
	if m.fault[va] {
		return 0, irc.Page
	}
	return va, 0
}

func (m *testMem) Fetch(pa uint32, buf []byte) bool {
	if int(pa)+len(buf) > len(m.data) {
		return true
	}
	m.reads = append(m.reads, pa)
	copy(buf, m.data[pa:])
	return false
}

func (m *testMem) Store(pa uint32, buf []byte) bool {
	if int(pa)+len(buf) > len(m.data) {
		return true
	}
	copy(m.data[pa:], buf)
	return false
}

func (m *testMem) AddrMask() uint32 {
	return 0x7fffffff
}

func (m *testMem) PageSize() uint32 {
	return 2048
}

// Fetches made from [lo, hi).
func (m *testMem) fetchesIn(lo, hi uint32) int {
	n := 0
	for _, addr := range m.reads {
		if addr >= lo && addr < hi {
			n++
		}
	}
	return n
}

// Set dictionary entry of index.
func (m *testMem) entry(origin uint32, index uint16, raw ...byte) {
	copy(m.data[origin+uint32(index)*8:][:8], raw)
}

// Pack indexes starting at bit cbn.
func packIndexes(width, cbn uint8, idx []uint16) []byte {
	out := make([]byte, (uint32(cbn)+uint32(width)*uint32(len(idx))+7)/8+3)
	var c Cursor
	c.Length = uint32(len(out))
	for _, v := range idx {
		putIndex(out[c.Addr:], cbn, width, v)
		skipIndex(&c, &cbn, width)
	}
	if cbn != 0 {
		c.Addr++
	}
	return out[:c.Addr]
}

// Unpack count indexes starting at bit cbn.
func unpackIndexes(data []byte, width, cbn uint8, count int) []uint16 {
	idx := make([]uint16, 0, count)
	var c Cursor
	c.Length = uint32(len(data))
	for range count {
		if c.Length < indexSpan(cbn, width) {
			break
		}
		idx = append(idx, getIndex(data[c.Addr:], cbn, width))
		skipIndex(&c, &cbn, width)
	}
	return idx
}
