/*
 * CMPSC - Two page storage window
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
	"github.com/rcornwell/cmpsc/emu/irc"
)

// Memory is the address space seen through a window.
type Memory interface {
	// Translate virtual address for fetch or store, returns real address
	// or a program interruption code.
	Translate(va uint32, write bool) (uint32, uint16)
	// Fetch and Store real storage, return true on addressing error.
	Fetch(pa uint32, buf []byte) bool
	Store(pa uint32, buf []byte) bool
	// Mask of valid address bits.
	AddrMask() uint32
	// Size of a page, must be a power of two.
	PageSize() uint32
}

// Window keeps the translation of two adjacent pages starting at base.
// Accesses move forward through an operand, so when an access runs off
// the second page the window slides one page forward.
type Window struct {
	mem   Memory
	write bool
	mask  uint32
	size  uint32
	base  uint32    // Virtual address of first page
	real  [2]uint32 // Real address of each page
	valid [2]bool
}

// Create window over mem, write windows translate for store access.
func New(mem Memory, write bool) *Window {
	return &Window{
		mem:   mem,
		write: write,
		mask:  mem.AddrMask(),
		size:  mem.PageSize(),
	}
}

// Read len(buf) bytes starting at virtual address addr.
func (w *Window) Fetch(addr uint32, buf []byte) error {
	return w.access(addr, buf, false)
}

// Write buf starting at virtual address addr.
func (w *Window) Store(addr uint32, buf []byte) error {
	return w.access(addr, buf, true)
}

// Drop any translations held.
func (w *Window) Reset() {
	w.valid[0] = false
	w.valid[1] = false
}

func (w *Window) access(addr uint32, buf []byte, store bool) error {
	for len(buf) > 0 {
		addr &= w.mask
		off := addr & (w.size - 1)
		n := min(len(buf), int(w.size-off))
		pa, code := w.resolve(addr - off)
		if code != 0 {
			return irc.Access(code, addr)
		}
		var fail bool
		if store {
			fail = w.mem.Store(pa+off, buf[:n])
		} else {
			fail = w.mem.Fetch(pa+off, buf[:n])
		}
		if fail {
			return irc.Access(irc.Addr, addr)
		}
		buf = buf[n:]
		addr += uint32(n)
	}
	return nil
}

// Return real address of page, moving window if needed.
func (w *Window) resolve(page uint32) (uint32, uint16) {
	next := (w.base + w.size) & w.mask
	if w.valid[0] && page == w.base {
		return w.real[0], 0
	}
	if w.valid[0] && page == next {
		if !w.valid[1] {
			pa, code := w.mem.Translate(page, w.write)
			if code != 0 {
				return 0, code
			}
			w.real[1] = pa
			w.valid[1] = true
		}
		return w.real[1], 0
	}

	pa, code := w.mem.Translate(page, w.write)
	if code != 0 {
		return 0, code
	}
	// Slide forward one page when walking off the end.
	if w.valid[1] && page == (next+w.size)&w.mask {
		w.base = next
		w.real[0] = w.real[1]
		w.real[1] = pa
		return pa, 0
	}
	w.base = page
	w.real[0] = pa
	w.valid[0] = true
	w.valid[1] = false
	return pa, 0
}
