/*
 * CMPSC - Dictionary access
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
	"encoding/binary"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rcornwell/cmpsc/emu/irc"
	"github.com/rcornwell/cmpsc/emu/window"
)

// Dictionaries as seen by one call. Raw entries are kept by address
// since the dictionary can't change during a call.
type dictionary struct {
	win      *window.Window
	origin   uint32
	expand   uint32 // Origin of expansion dictionary
	table    uint32 // Origin of translation table
	maxIndex uint16
	format1  bool
	raw      *simplelru.LRU[uint32, [8]byte]
	cce      map[uint16]*CCE
	fetches  int // Storage fetches
}

func newDictionary(mem window.Memory, p *Params) *dictionary {
	entries := 2*int(p.MaxIndex()+1) + 256
	raw, err := simplelru.NewLRU[uint32, [8]byte](entries, nil)
	if err != nil {
		panic(err)
	}
	return &dictionary{
		win:      window.New(mem, false),
		origin:   p.Origin,
		expand:   p.Origin + p.DictSize(),
		table:    p.Origin + p.TransOffset<<7,
		maxIndex: p.MaxIndex(),
		format1:  p.Format1,
		raw:      raw,
		cce:      make(map[uint16]*CCE),
	}
}

// Read eight byte entry at addr.
func (d *dictionary) fetch(addr uint32) ([8]byte, error) {
	if raw, ok := d.raw.Get(addr); ok {
		return raw, nil
	}
	var raw [8]byte
	if err := d.win.Fetch(addr, raw[:]); err != nil {
		return raw, err
	}
	d.fetches++
	d.raw.Add(addr, raw)
	return raw, nil
}

// Compression character entry of index.
func (d *dictionary) getCCE(index uint16) (*CCE, error) {
	if cce, ok := d.cce[index]; ok {
		return cce, nil
	}
	raw, err := d.fetch(d.origin + uint32(index)*8)
	if err != nil {
		return nil, err
	}
	traceEntry(debugCCE, "cce", index, raw)
	cce, err := DecodeCCE(raw)
	if err != nil {
		return nil, err
	}
	if index < 256 && len(cce.Ext) != 0 {
		return nil, irc.New(irc.Data, "alphabet entry %02x has extension characters", index)
	}
	if cce.CCT != 0 && int(cce.Child)+cce.slots()-1 > int(d.maxIndex) {
		return nil, irc.New(irc.Data, "entry %04x children past end of dictionary", index)
	}
	d.cce[index] = &cce
	return &cce, nil
}

// Sibling descriptor at index.
func (d *dictionary) getSD(index uint16) (SD, error) {
	if index > d.maxIndex {
		return SD{}, irc.New(irc.Data, "descriptor %04x past end of dictionary", index)
	}
	raw, err := d.fetch(d.origin + uint32(index)*8)
	if err != nil {
		return SD{}, err
	}
	traceEntry(debugCCE, "sd", index, raw)
	var sd SD
	if d.format1 {
		var ext [8]byte
		if SD1Count(raw) > 6 {
			ext, err = d.fetch(d.expand + uint32(index)*8)
			if err != nil {
				return SD{}, err
			}
		}
		sd = DecodeSD1(raw, ext)
	} else {
		sd = DecodeSD0(raw)
	}
	if int(index)+int(sd.Count) > int(d.maxIndex) {
		return SD{}, irc.New(irc.Data, "descriptor %04x siblings past end of dictionary", index)
	}
	return sd, nil
}

// Expansion character entry of index.
func (d *dictionary) getECE(index uint16) (ECE, error) {
	raw, err := d.fetch(d.origin + uint32(index)*8)
	if err != nil {
		return ECE{}, err
	}
	traceEntry(debugECE, "ece", index, raw)
	ece, err := DecodeECE(raw)
	if err != nil {
		return ece, err
	}
	if ece.Pred > d.maxIndex {
		return ece, irc.New(irc.Data, "entry %04x predecessor %04x past end of dictionary", index, ece.Pred)
	}
	return ece, nil
}

// Translated value of index.
func (d *dictionary) translate(index uint16) (uint16, error) {
	addr := d.table + uint32(index)*2
	raw, err := d.fetch(addr &^ 7)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(raw[addr&7:]) & d.maxIndex, nil
}
