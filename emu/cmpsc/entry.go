/*
 * CMPSC - Dictionary entry formats
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

/* Compression character entry
   byte 0     byte 1        byte 2
   cct:3 x:5  act:3 cptr:13          cct <= 1
   cct:3 x:5  y:2 d:1 cptr:13        cct > 1
   bytes 3..  additional extension characters then child characters
*/

// CCE is a compression character entry.
type CCE struct {
	CCT   uint8  // Child count
	X     uint8  // Examine child bits, 0x10 for first child
	Y     uint8  // Examine sibling bits, 0x80 and 0x40, only when CCT > 1
	D     bool   // Double character entry, only when CCT > 1
	ACT   uint8  // Additional extension character count, only when CCT <= 1
	Child uint16 // Index of first child
	More  bool   // Last child slot is a sibling descriptor
	Ext   []byte // Additional extension characters
	Chars []byte // Child characters
}

// DecodeCCE returns the compression character entry held in raw.
func DecodeCCE(raw [8]byte) (CCE, error) {
	cce := CCE{
		CCT:   raw[0] >> 5,
		X:     raw[0] & 0x1f,
		Child: uint16(raw[1]&0x1f)<<8 | uint16(raw[2]),
	}
	ecs := 0
	ccs := int(cce.CCT)
	if cce.CCT <= 1 {
		cce.ACT = raw[1] >> 5
		if cce.ACT > 4 {
			return cce, irc.New(irc.Data, "additional extension count %d", cce.ACT)
		}
		ecs = int(cce.ACT)
	} else {
		cce.Y = raw[1] & 0xc0
		cce.D = raw[1]&0x20 != 0
		if cce.D {
			ecs = 1
		}
		switch {
		case ccs+ecs > 6:
			return cce, irc.New(irc.Data, "child count %d with extension", cce.CCT)
		case ccs+ecs == 6:
			cce.More = true
			ccs--
		}
	}
	cce.Ext = raw[3 : 3+ecs : 3+ecs]
	cce.Chars = raw[3+ecs : 3+ecs+ccs : 3+ecs+ccs]
	return cce, nil
}

// Examine bit of child i.
func (cce *CCE) examine(i int) bool {
	return cce.X&(0x10>>i) != 0
}

// Examine bit for sibling i of the first sibling descriptor taken from
// the parent.
func (cce *CCE) examineSibling(i int) bool {
	return cce.Y&(0x80>>i) != 0
}

// Number of index slots used by the children, descriptor included.
func (cce *CCE) slots() int {
	if cce.More {
		return len(cce.Chars) + 1
	}
	return len(cce.Chars)
}

/* Expansion character entry
   byte 0         byte 1
   psl:3 0:2 csl:3 chars[7]                     unpreceded
   psl:3 pptr:13   chars[5]          ofst:8     preceded
*/

// ECE is an expansion character entry.
type ECE struct {
	PSL    uint8  // Partial symbol length
	CSL    uint8  // Complete symbol length, only when PSL is zero
	Pred   uint16 // Predecessor index
	Offset uint8  // Position of Chars in the symbol
	Chars  []byte
}

// DecodeECE returns the expansion character entry held in raw.
func DecodeECE(raw [8]byte) (ECE, error) {
	ece := ECE{PSL: raw[0] >> 5}
	switch {
	case ece.PSL > 5:
		return ece, irc.New(irc.Data, "partial symbol length %d", ece.PSL)
	case ece.PSL != 0:
		ece.Pred = uint16(raw[0]&0x1f)<<8 | uint16(raw[1])
		ece.Offset = raw[7]
		ece.Chars = raw[2 : 2+ece.PSL : 2+ece.PSL]
	case raw[0]&0x18 != 0:
		return ece, irc.New(irc.Data, "unpreceded entry %02x", raw[0])
	default:
		ece.CSL = raw[0] & 7
		if ece.CSL == 0 {
			return ece, irc.New(irc.Data, "zero symbol length")
		}
		ece.Chars = raw[1 : 1+ece.CSL : 1+ece.CSL]
	}
	return ece, nil
}

// Preceded entries hold the tail of a symbol.
func (ece *ECE) Preceded() bool {
	return ece.PSL != 0
}

// Length of the symbol the entry ends.
func (ece *ECE) Len() int {
	if ece.PSL != 0 {
		return int(ece.Offset) + int(ece.PSL)
	}
	return int(ece.CSL)
}

// SD is a sibling descriptor.
type SD struct {
	Count uint8  // Siblings described
	More  bool   // Another descriptor follows the siblings
	X     uint16 // Examine bits, one per sibling from bit 15-n
	Chars []byte // Sibling characters
	bits  int    // Number of examine bits held in X
}

/* Format 0: sct:3 x:5 chars[7], sct of 0 is seven siblings and more. */

// DecodeSD0 returns the format-0 sibling descriptor held in raw.
func DecodeSD0(raw [8]byte) SD {
	sd := SD{Count: raw[0] >> 5, X: uint16(raw[0]&0x1f) << 11, bits: 5}
	if sd.Count == 0 {
		sd.Count = 7
		sd.More = true
	}
	sd.Chars = raw[1 : 1+sd.Count : 1+sd.Count]
	return sd
}

/* Format 1: sct:4 x:12 chars[6], sct of 15 is fourteen siblings and more.
   Characters 7 to 14 are in the entry of the same index of the expansion
   dictionary. */

// SD1Count returns the number of siblings of the format-1 descriptor.
func SD1Count(raw [8]byte) uint8 {
	count := raw[0] >> 4
	if count == 15 {
		count = 14
	}
	return count
}

// DecodeSD1 returns the format-1 sibling descriptor held in raw and ext.
// ext is only used when there are more than six siblings.
func DecodeSD1(raw, ext [8]byte) SD {
	sd := SD{Count: raw[0] >> 4, X: (uint16(raw[0]&0xf)<<8 | uint16(raw[1])) << 4, bits: 12}
	if sd.Count == 15 {
		sd.Count = 14
		sd.More = true
	}
	chars := make([]byte, 0, sd.Count)
	chars = append(chars, raw[2:2+min(sd.Count, 6)]...)
	if sd.Count > 6 {
		chars = append(chars, ext[:sd.Count-6]...)
	}
	sd.Chars = chars
	return sd
}

// Examine bit of sibling j. Siblings past the examine bits take theirs
// from the parent for the first descriptor and are always examined
// after that.
func (sd *SD) examine(j int, parent *CCE, first bool) bool {
	if j < sd.bits {
		return sd.X&(0x8000>>j) != 0
	}
	if first {
		return parent.examineSibling(j - sd.bits)
	}
	return true
}
