/*
 * CMPSC - Address space, dynamic address translation
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
	"errors"

	"github.com/rcornwell/cmpsc/emu/irc"
	mem "github.com/rcornwell/cmpsc/emu/memory"
	"github.com/rcornwell/cmpsc/util/debug"
)

const (
	AMASK24 uint32 = 0x00ffffff // 24 bit addressing
	AMASK31 uint32 = 0x7fffffff // 31 bit addressing

	keyBlock uint32 = 2048 // Size of storage key block

	// DAT masks definitions
	pteAddr  uint32 = 0x00fffff8 // Address of page table
	segValid uint32 = 0x00000001 // Segment invalid bit
)

const (
	// Debug options.
	debugTLB = 1 << iota
	debugFault
)

var debugOption = map[string]int{
	"TLB":   debugTLB,
	"FAULT": debugFault,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("DAT debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

type tlbEntry struct {
	page  uint32 // Virtual page number
	frame uint32 // Real page frame number
	valid bool
}

// Space is one address space as seen by an instruction: storage key,
// addressing mode and, when enabled, the segment and page tables.
type Space struct {
	Key     uint8 // Current storage key
	amask   uint32
	pageEnb bool // Paging enabled

	pageShift   uint32 // Amount to shift for page
	pageMask    uint32 // Mask of bits in page address
	pageIndex   uint32 // PTE index mask
	segShift    uint32 // Amount to shift for segment
	segMask     uint32 // Mask bits for segment
	segLen      uint32 // Length of segment table
	segAddr     uint32 // Address of segment table
	pteLenShift uint32 // Shift to Check if out out page table
	pteAvail    uint32 // Mask of available bit in PTE
	pteMBZ      uint32 // Bits that must be zero in PTE
	pteShift    uint32 // Bits to shift a PTE entry

	tlb [256]tlbEntry // Translation Lookaside Buffer
}

// Create a real address space.
func New(amode31 bool) *Space {
	space := &Space{amask: AMASK24}
	if amode31 {
		space.amask = AMASK31
	}
	return space
}

// Address mask for current addressing mode.
func (space *Space) AddrMask() uint32 {
	if space.pageEnb {
		return AMASK24
	}
	return space.amask
}

// Size of the smallest unit with a single translation and storage key.
func (space *Space) PageSize() uint32 {
	return keyBlock
}

// Turn off translation.
func (space *Space) Real() {
	space.pageEnb = false
	space.purgeTLB()
}

/* CR0 values
	|    |     |     |   |   |   |   |
0 0 0 00000 00 1 11 111 1111222222222231|
0 1 2 34567 89 0 12 345 6789012345678901|
b s t xxxxx ps 0 ss xxx iiiiiixxiiixxxxx|
m s d                   mmmmct  iIE     |
*/

// Load translation format from CR0 and the segment table from CR1 and
// enable translation.
func (space *Space) SetControl(cr0, cr1 uint32) error {
	switch (cr0 >> 22) & 3 {
	case 1: // 2K page
		space.pageShift = 11
		space.pageMask = 0x7ff
		space.pteAvail = 4
		space.pteMBZ = 2
		space.pteShift = 3
		space.pteLenShift = 1
	case 2: // 4K page
		space.pageShift = 12
		space.pageMask = 0xfff
		space.pteAvail = 8
		space.pteMBZ = 6
		space.pteShift = 4
		space.pteLenShift = 0
	default:
		return errors.New("invalid page size in CR0")
	}

	switch (cr0 >> 19) & 0x7 {
	case 0: // 64K segments
		space.segShift = 16
		space.segMask = AMASK24 >> 16
	case 2: // 1M segments
		space.segShift = 20
		space.segMask = AMASK24 >> 20
		space.pteLenShift += 4
	default:
		return errors.New("invalid segment size in CR0")
	}

	// Generate PTE index mask
	space.pageIndex = ((^(space.segMask << space.segShift) &
		^space.pageMask) & AMASK24) >> space.pageShift

	space.segAddr = cr1 & AMASK24
	space.segLen = (((cr1 >> 24) & 0xff) + 1) << 4
	space.pageEnb = true
	space.purgeTLB()
	return nil
}

func (space *Space) purgeTLB() {
	for i := range space.tlb {
		space.tlb[i] = tlbEntry{}
	}
}

// Translate an address from virtual to real and check the storage key.
func (space *Space) Translate(va uint32, write bool) (uint32, uint16) {
	pa, e := space.transAddr(va)
	if e != 0 {
		debug.Debugf("DAT", debugMsk, debugFault, "fault %04x at %08x", e, va)
		return 0, e
	}
	if !mem.CheckAddr(pa) {
		return 0, irc.Addr
	}
	if space.checkProtect(pa, write) {
		debug.Debugf("DAT", debugMsk, debugFault, "protect %08x key %02x", va, space.Key)
		return 0, irc.Prot
	}
	return pa, 0
}

func (space *Space) transAddr(va uint32) (uint32, uint16) {
	// If paging not enabled, return address.
	if !space.pageEnb {
		return va & space.amask, 0
	}

	addr := va & AMASK24
	page := addr >> space.pageShift

	// Quick check if TLB correct
	entry := &space.tlb[page&0xff]
	if entry.valid && entry.page == page {
		return (addr & space.pageMask) | (entry.frame << space.pageShift), 0
	}

	// TLB not correct, try loading correct entry
	// Segment and page number to word address
	seg := (addr >> space.segShift) & space.segMask
	pidx := (addr >> space.pageShift) & space.pageIndex

	// Check address against length of segment table
	if seg >= space.segLen {
		return 0, irc.Seg
	}

	// Get segment table entry.
	ste, err := mem.GetWord(((seg << 2) + space.segAddr) & AMASK24)
	if err {
		return 0, irc.Addr
	}

	// Check if entry valid and in correct length
	if (ste&segValid) != 0 || (pidx>>space.pteLenShift) >= (ste>>28)+1 {
		if (ste & segValid) != 0 {
			return 0, irc.Seg
		}
		return 0, irc.Page
	}

	// Now we need to fetch the actual entry, page table entries are
	// half words.
	pteaddr := ((ste & pteAddr) + (pidx << 1)) & AMASK24
	word, err := mem.GetWord(pteaddr &^ 3)
	if err {
		return 0, irc.Addr
	}
	if (pteaddr & 2) == 0 {
		word >>= 16
	}
	pte := word & 0xffff

	if (pte & space.pteMBZ) != 0 {
		return 0, irc.Trans
	}
	if (pte & space.pteAvail) != 0 {
		return 0, irc.Page
	}

	// Compute correct entry
	frame := pte >> space.pteShift
	*entry = tlbEntry{page: page, frame: frame, valid: true}
	debug.Debugf("DAT", debugMsk, debugTLB, "load page %05x frame %05x", page, frame)
	return (addr & space.pageMask) | (frame << space.pageShift), 0
}

// Check for protection violation.
func (space *Space) checkProtect(pa uint32, write bool) bool {
	if space.Key == 0 {
		return false
	}
	k := mem.GetKey(pa)
	if write {
		return (k & 0xf0) != space.Key
	}
	return (k&0x8) != 0 && (k&0xf0) != space.Key
}

// Read real storage.
func (space *Space) Fetch(pa uint32, buf []byte) bool {
	return mem.GetBytes(pa, buf)
}

// Write real storage.
func (space *Space) Store(pa uint32, buf []byte) bool {
	return mem.PutBytes(pa, buf)
}
