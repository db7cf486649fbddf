/*
 * CMPSC - Two page storage window tests
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

package window

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rcornwell/cmpsc/emu/irc"
)

// Small paged memory, page n of the virtual space maps to frame
// frames[n]. Frame 0xff is invalid.
type testMemory struct {
	store     []byte
	frames    []uint32
	translate int
	lastWrite bool
}

const testPage = 16

func newTestMemory() *testMemory {
	return &testMemory{
		store:  make([]byte, 8*testPage),
		frames: []uint32{3, 1, 6, 0xff, 2, 7, 0, 5},
	}
}

func (m *testMemory) Translate(va uint32, write bool) (uint32, uint16) {
	m.translate++
	m.lastWrite = write
	page := va / testPage
	if page >= uint32(len(m.frames)) {
		return 0, irc.Addr
	}
	frame := m.frames[page]
	if frame == 0xff {
		return 0, irc.Page
	}
	return frame*testPage + va%testPage, 0
}

func (m *testMemory) Fetch(pa uint32, buf []byte) bool {
	if int(pa)+len(buf) > len(m.store) {
		return true
	}
	copy(buf, m.store[pa:])
	return false
}

func (m *testMemory) Store(pa uint32, buf []byte) bool {
	if int(pa)+len(buf) > len(m.store) {
		return true
	}
	copy(m.store[pa:], buf)
	return false
}

func (m *testMemory) AddrMask() uint32 { return 0x7f }

func (m *testMemory) PageSize() uint32 { return testPage }

// Virtual byte at va holds va.
func (m *testMemory) fill() {
	for page, frame := range m.frames {
		if frame == 0xff {
			continue
		}
		for i := range testPage {
			m.store[int(frame)*testPage+i] = byte(page*testPage + i)
		}
	}
}

func TestFetchCrossPage(t *testing.T) {
	m := newTestMemory()
	m.fill()
	w := New(m, false)

	buf := make([]byte, 20)
	if err := w.Fetch(10, buf); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	for i, by := range buf {
		if by != byte(10+i) {
			t.Errorf("Fetch byte %d got: %02x expected: %02x", i, by, 10+i)
		}
	}
	if m.translate != 2 {
		t.Errorf("Translations got: %d expected: %d", m.translate, 2)
	}

	// Same two pages, no more translation.
	if err := w.Fetch(16, buf[:16]); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if m.translate != 2 {
		t.Errorf("Translations got: %d expected: %d", m.translate, 2)
	}
}

func TestFetchSlide(t *testing.T) {
	m := newTestMemory()
	m.fill()
	w := New(m, false)
	buf := make([]byte, 4)

	// Walk through pages 0, 1, 2 one word at a time.
	for addr := uint32(0); addr < 3*testPage; addr += 4 {
		if err := w.Fetch(addr, buf); err != nil {
			t.Fatalf("Fetch %02x failed: %v", addr, err)
		}
		if buf[0] != byte(addr) {
			t.Errorf("Fetch %02x got: %02x", addr, buf[0])
		}
	}
	if m.translate != 3 {
		t.Errorf("Translations got: %d expected: %d", m.translate, 3)
	}
	if w.base != testPage {
		t.Errorf("Window base got: %d expected: %d", w.base, testPage)
	}

	// Going backwards re-resolves the window.
	if err := w.Fetch(0, buf); err != nil || buf[0] != 0 {
		t.Errorf("Fetch backward got: %v %02x", err, buf[0])
	}
	if w.base != 0 || w.valid[1] {
		t.Errorf("Window not reset got base: %d valid: %v", w.base, w.valid[1])
	}
}

func TestFetchFault(t *testing.T) {
	m := newTestMemory()
	m.fill()
	w := New(m, false)
	buf := make([]byte, 8)
	err := w.Fetch(2*testPage+12, buf)
	var e *irc.Exception
	if !errors.As(err, &e) {
		t.Fatalf("Fetch over invalid page got: %v", err)
	}
	if e.Code != irc.Page || e.Addr != 3*testPage {
		t.Errorf("Fault got: %04x at %02x expected: %04x at %02x", e.Code, e.Addr, irc.Page, 3*testPage)
	}
}

func TestStoreWrap(t *testing.T) {
	m := newTestMemory()
	w := New(m, true)
	data := []byte{1, 2, 3, 4, 5, 6}
	// Wraps from the last page to page zero.
	if err := w.Store(0x7d, data); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !m.lastWrite {
		t.Error("Store window did not translate for write")
	}
	if !bytes.Equal(m.store[5*testPage+13:5*testPage+16], data[:3]) {
		t.Errorf("Store end of space got: %v", m.store[5*testPage+13:5*testPage+16])
	}
	if !bytes.Equal(m.store[3*testPage:3*testPage+3], data[3:]) {
		t.Errorf("Store wrapped got: %v", m.store[3*testPage:3*testPage+3])
	}

	w.Reset()
	n := m.translate
	buf := make([]byte, 1)
	_ = w.Fetch(0, buf)
	if m.translate != n+1 {
		t.Error("Reset did not drop translations")
	}
}
