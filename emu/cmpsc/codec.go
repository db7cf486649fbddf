/*
 * CMPSC - Compressed data index codec
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
	"bytes"

	"github.com/icza/bitio"
	"github.com/rcornwell/cmpsc/emu/window"
)

// Number of bytes touched by an index of width bits starting at bit cbn.
func indexSpan(cbn, width uint8) uint32 {
	return (uint32(cbn) + uint32(width) + 7) >> 3
}

// Return the index of width bits starting at bit cbn of data, bit 0 is
// the most significant bit of data[0].
func getIndex(data []byte, cbn, width uint8) uint16 {
	span := indexSpan(cbn, width)
	var acc uint32
	for _, by := range data[:span] {
		acc = acc<<8 | uint32(by)
	}
	acc >>= span*8 - uint32(cbn) - uint32(width)
	return uint16(acc) & (uint16(1)<<width - 1)
}

// Place index at bit cbn of data. The cbn leading bits of data[0] are
// kept, bits after the index in the last byte are cleared.
func putIndex(data []byte, cbn, width uint8, index uint16) {
	span := indexSpan(cbn, width)
	shift := span*8 - uint32(cbn) - uint32(width)
	acc := uint32(data[0]&^(0xff>>cbn)) << ((span - 1) * 8)
	acc |= uint32(index&(uint16(1)<<width-1)) << shift
	for i := int(span) - 1; i >= 0; i-- {
		data[i] = byte(acc)
		acc >>= 8
	}
}

// Move cursor and bit number past one index, returns bytes passed.
func skipIndex(c *Cursor, cbn *uint8, width uint8) uint32 {
	bits := uint32(*cbn) + uint32(width)
	c.advance(bits >> 3)
	*cbn = uint8(bits & 7)
	return bits >> 3
}

// Reads indexes from the compressed data operand.
type indexReader struct {
	win   *window.Window
	c     *Cursor
	cbn   *uint8
	width uint8
	buf   [16]byte
}

// Return next index without moving the cursor, ok is false when the
// operand does not hold a whole index.
func (r *indexReader) next() (uint16, bool, error) {
	span := indexSpan(*r.cbn, r.width)
	if r.c.Length < span {
		return 0, false, nil
	}
	if err := r.win.Fetch(r.c.Addr, r.buf[:span]); err != nil {
		return 0, false, err
	}
	return getIndex(r.buf[:], *r.cbn, r.width), true, nil
}

// Step over index returned by next.
func (r *indexReader) skip() uint32 {
	return skipIndex(r.c, r.cbn, r.width)
}

// Batch of eight indexes is available when on a byte boundary with at
// least width bytes left.
func (r *indexReader) batch() bool {
	return *r.cbn == 0 && r.c.Length >= uint32(r.width)
}

// Read eight indexes, the cursor is not moved. Caller calls skip after
// each index is used.
func (r *indexReader) next8() ([8]uint16, error) {
	var idx [8]uint16
	data := r.buf[:r.width]
	if err := r.win.Fetch(r.c.Addr, data); err != nil {
		return idx, err
	}
	br := bitio.NewReader(bytes.NewReader(data))
	for i := range idx {
		v, err := br.ReadBits(r.width)
		if err != nil {
			return idx, err
		}
		idx[i] = uint16(v)
	}
	return idx, nil
}

// Writes indexes to the compressed data operand.
type indexWriter struct {
	win   *window.Window
	c     *Cursor
	cbn   *uint8
	width uint8
	buf   [3]byte
}

// Store index and move past it. full is true when there is no room,
// nothing is stored then.
func (w *indexWriter) put(index uint16) (bool, error) {
	span := indexSpan(*w.cbn, w.width)
	if w.c.Length < span {
		return true, nil
	}
	data := w.buf[:span]
	data[0] = 0
	if *w.cbn != 0 {
		if err := w.win.Fetch(w.c.Addr, data[:1]); err != nil {
			return false, err
		}
	}
	putIndex(data, *w.cbn, w.width, index)
	if err := w.win.Store(w.c.Addr, data); err != nil {
		return false, err
	}
	skipIndex(w.c, w.cbn, w.width)
	return false, nil
}

// Room for eight indexes at a byte boundary.
func (w *indexWriter) batch() bool {
	return *w.cbn == 0 && w.c.Length >= uint32(w.width)
}

// Store eight indexes, only valid when batch is true.
func (w *indexWriter) put8(idx *[8]uint16) error {
	var out bytes.Buffer
	bw := bitio.NewWriter(&out)
	for _, v := range idx {
		if err := bw.WriteBits(uint64(v), w.width); err != nil {
			return err
		}
	}
	if err := bw.Close(); err != nil {
		return err
	}
	if err := w.win.Store(w.c.Addr, out.Bytes()); err != nil {
		return err
	}
	w.c.advance(uint32(w.width))
	return nil
}
