/*
 * CMPSC - Address translation tests
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

package dat

import (
	"testing"

	"github.com/rcornwell/cmpsc/emu/irc"
	mem "github.com/rcornwell/cmpsc/emu/memory"
)

// Build a 4K page, 64K segment table at 0x1000 with page table at 0x2000.
func setupTables(t *testing.T) *Space {
	t.Helper()
	mem.SetSize(64)
	mem.Clear()
	// Segment 0 valid, 16 pages, segment 1 invalid.
	_ = mem.PutWord(0x1000, 0xf0002000)
	_ = mem.PutWord(0x1004, 0x00000001)
	// Page 0 -> frame 4, page 1 -> frame 5, page 2 invalid, page 3 bad bits,
	// pages 4 and 5 invalid.
	_ = mem.PutWord(0x2000, 0x00400050)
	_ = mem.PutWord(0x2004, 0x00080062)
	_ = mem.PutWord(0x2008, 0x00080008)

	space := New(false)
	if err := space.SetControl(0x00800000, 0x00001000); err != nil {
		t.Fatalf("SetControl failed: %v", err)
	}
	return space
}

func TestTranslateReal(t *testing.T) {
	space := New(false)
	mem.SetSize(64)
	pa, e := space.Translate(0x81001234, false)
	if e != 0 || pa != 0x001234 {
		t.Errorf("Real translate got: %08x %04x expected: %08x", pa, e, 0x1234)
	}
	if space.PageSize() != 2048 {
		t.Errorf("Real page size got: %d expected: %d", space.PageSize(), 2048)
	}

	space = New(true)
	_, e = space.Translate(0x01001234, false)
	if e != irc.Addr {
		t.Errorf("31 bit address past storage got: %04x expected: %04x", e, irc.Addr)
	}
	if space.AddrMask() != AMASK31 {
		t.Errorf("Address mask got: %08x expected: %08x", space.AddrMask(), AMASK31)
	}
}

func TestTranslatePaged(t *testing.T) {
	space := setupTables(t)

	tests := []struct {
		va  uint32
		pa  uint32
		irc uint16
	}{
		{0x0000, 0x4000, 0},
		{0x0fff, 0x4fff, 0},
		{0x1234, 0x5234, 0},
		{0x2000, 0, irc.Page},
		{0x3010, 0, irc.Trans},
		{0x4000, 0, irc.Page},
		{0x10000, 0, irc.Seg},
		{0x200000, 0, irc.Seg},
	}
	for i := range 2 {
		for _, test := range tests {
			pa, e := space.Translate(test.va, false)
			if e != test.irc {
				t.Errorf("Pass %d translate %08x error got: %04x expected: %04x", i, test.va, e, test.irc)
				continue
			}
			if e == 0 && pa != test.pa {
				t.Errorf("Pass %d translate %08x got: %08x expected: %08x", i, test.va, pa, test.pa)
			}
		}
	}
	if space.PageSize() != 2048 {
		t.Errorf("Paged page size got: %d expected: %d", space.PageSize(), 2048)
	}

	// Purge on return to real mode.
	space.Real()
	pa, e := space.Translate(0x1234, false)
	if e != 0 || pa != 0x1234 {
		t.Errorf("Real after paging got: %08x %04x expected: %08x", pa, e, 0x1234)
	}
}

func TestSetControlInvalid(t *testing.T) {
	space := New(false)
	if err := space.SetControl(0x00000000, 0); err == nil {
		t.Error("SetControl accepted invalid page size")
	}
	if err := space.SetControl(0x00880000, 0); err == nil {
		t.Error("SetControl accepted invalid segment size")
	}
}

func TestProtection(t *testing.T) {
	mem.SetSize(64)
	mem.Clear()
	space := New(false)
	mem.PutKey(0x800, 0x30)
	mem.PutKey(0x1000, 0x38)
	mem.PutKey(0x1800, 0x20)

	tests := []struct {
		addr  uint32
		write bool
		irc   uint16
	}{
		{0x800, false, 0},
		{0x800, true, irc.Prot},
		{0x1000, false, irc.Prot},
		{0x1800, true, 0},
		{0x1800, false, 0},
	}
	space.Key = 0x20
	for _, test := range tests {
		_, e := space.Translate(test.addr, test.write)
		if e != test.irc {
			t.Errorf("Protect %04x write %v got: %04x expected: %04x", test.addr, test.write, e, test.irc)
		}
	}

	// Key zero can access everything.
	space.Key = 0
	for _, test := range tests {
		if _, e := space.Translate(test.addr, test.write); e != 0 {
			t.Errorf("Key 0 access %04x got: %04x", test.addr, e)
		}
	}
}

func TestFetchStore(t *testing.T) {
	mem.SetSize(16)
	mem.Clear()
	space := New(false)
	if space.Store(0x100, []byte{1, 2, 3}) {
		t.Fatal("Store failed")
	}
	buf := make([]byte, 3)
	if space.Fetch(0x100, buf) || buf[0] != 1 || buf[2] != 3 {
		t.Errorf("Fetch got: %v expected: [1 2 3]", buf)
	}
	if !space.Fetch(16*1024-1, buf) {
		t.Error("Fetch did not fail past end of storage")
	}
}

func TestDebugOption(t *testing.T) {
	if err := Debug("TLB"); err != nil {
		t.Errorf("Debug TLB got: %v", err)
	}
	if err := Debug("BOGUS"); err == nil {
		t.Error("Debug accepted invalid option")
	}
	debugMsk = 0
}
