/*
 * CMPSC - Compression call instruction
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
	"errors"

	"github.com/rcornwell/cmpsc/emu/irc"
	"github.com/rcornwell/cmpsc/emu/window"
)

// General register 0 and 1 fields.
const (
	gr0ST   uint32 = 0x00010000 // Symbol translation
	gr0CDSS uint32 = 0x0000f000 // Compressed data symbol size
	gr0F1   uint32 = 0x00000200 // Format-1 sibling descriptors
	gr0E    uint32 = 0x00000100 // Expansion
	gr1Dict uint32 = 0xfffff000 // Dictionary origin
	gr1STT  uint32 = 0x00000ff8 // Translation table offset
	gr1CBN  uint32 = 0x00000007 // Compressed data bit number
)

// Params described by general registers 0 and 1.
func ParamsFromRegs(gr0, gr1 uint32) Params {
	return Params{
		SymbolSize:  uint8((gr0 & gr0CDSS) >> 12),
		Format1:     gr0&gr0F1 != 0,
		Translate:   gr0&gr0ST != 0,
		TransOffset: (gr1 & gr1STT) >> 3,
		Origin:      gr1 & gr1Dict,
	}
}

// Registers loads general registers 0 and 1 for p.
func (p *Params) Registers(expand bool, cbn uint8) (uint32, uint32) {
	gr0 := uint32(p.SymbolSize) << 12 & gr0CDSS
	if p.Format1 {
		gr0 |= gr0F1
	}
	if p.Translate {
		gr0 |= gr0ST
	}
	if expand {
		gr0 |= gr0E
	}
	gr1 := p.Origin&gr1Dict | (p.TransOffset<<3)&gr1STT | uint32(cbn)&gr1CBN
	return gr0, gr1
}

// Execute CMPSC R1,R2. R1 is the first operand pair, R2 the second.
// Registers are updated to the last index boundary reached, also when
// the call ends in a data or access exception. Returns the condition
// code.
func Execute(regs *[16]uint32, r1, r2 uint8, mem window.Memory, budget int) (uint8, error) {
	if r1 == 0 || r1&1 != 0 || r1 > 14 || r2 == 0 || r2&1 != 0 || r2 > 14 {
		return 0, irc.New(irc.Spec, "registers %d,%d", r1, r2)
	}
	p := ParamsFromRegs(regs[0], regs[1])
	p.Budget = budget
	mask := mem.AddrMask()
	p.Origin &= mask
	if err := p.Validate(); err != nil {
		return 0, err
	}
	expand := regs[0]&gr0E != 0
	st := State{
		Dest:   Cursor{Addr: regs[r1] & mask, Length: regs[r1+1]},
		Source: Cursor{Addr: regs[r2] & mask, Length: regs[r2+1]},
		CBN:    uint8(regs[1] & gr1CBN),
	}

	var res Result
	var err error
	if expand {
		res, err = Expand(mem, &p, st)
	} else {
		res, err = Compress(mem, &p, st)
	}
	var e *irc.Exception
	if err != nil && (!errors.As(err, &e) || e.Code == irc.Spec) {
		return 0, err
	}
	regs[r1] = res.Dest.Addr & mask
	regs[r1+1] = res.Dest.Length
	regs[r2] = res.Source.Addr & mask
	regs[r2+1] = res.Source.Length
	regs[1] = regs[1]&^gr1CBN | uint32(res.CBN)
	return res.Status.CC(), err
}
