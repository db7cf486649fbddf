/*
 * CMPSC - Expansion
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
	"github.com/rcornwell/cmpsc/util/debug"
)

// Expanded symbols of one call. Symbols are never evicted, once the
// scratch space is used up new symbols are not kept.
type symbolCache struct {
	spans map[uint16]span
	buf   []byte
}

type span struct {
	off uint32
	len uint16
}

func (sc *symbolCache) get(index uint16) ([]byte, bool) {
	s, ok := sc.spans[index]
	if !ok {
		return nil, false
	}
	return sc.buf[s.off : s.off+uint32(s.len)], true
}

func (sc *symbolCache) put(index uint16, sym []byte) {
	if len(sc.buf)+len(sym) > cap(sc.buf) {
		return
	}
	if sc.spans == nil {
		sc.spans = make(map[uint16]span)
	}
	sc.spans[index] = span{off: uint32(len(sc.buf)), len: uint16(len(sym))}
	sc.buf = append(sc.buf, sym...)
}

type expander struct {
	*operation
	cache   symbolCache
	scratch [maxSymbolLen]byte
	lit     [1]byte
	rd      indexReader
}

func (op *operation) expand() (Result, error) {
	ex := &expander{operation: op}
	ex.cache.buf = make([]byte, 0, symCacheSize)
	ex.rd = indexReader{win: op.src, c: &op.st.Source, cbn: &op.st.CBN, width: op.width}
	for {
		if op.st.Source.Length < indexSpan(op.st.CBN, op.width) {
			return op.stop(SourceExhausted)
		}
		if op.overBudget() {
			return op.stop(BudgetExhausted)
		}

		if ex.rd.batch() {
			idx, err := ex.rd.next8()
			if err != nil {
				return op.fail(err)
			}
			for i, index := range idx {
				if i != 0 && op.overBudget() {
					return op.stop(BudgetExhausted)
				}
				full, err := ex.index(index)
				if err != nil {
					return op.fail(err)
				}
				if full {
					return op.stop(DestinationFull)
				}
			}
			continue
		}

		index, _, err := ex.rd.next()
		if err != nil {
			return op.fail(err)
		}
		full, err := ex.index(index)
		if err != nil {
			return op.fail(err)
		}
		if full {
			return op.stop(DestinationFull)
		}
	}
}

// Store symbol of index at the destination and step over the index.
// Returns true when the destination can't hold the symbol.
func (ex *expander) index(index uint16) (bool, error) {
	sym, err := ex.symbol(index)
	if err != nil {
		return false, err
	}
	if uint32(len(sym)) > ex.st.Dest.Length {
		return true, nil
	}
	if err := ex.dst.Store(ex.st.Dest.Addr, sym); err != nil {
		return false, err
	}
	ex.st.Dest.advance(uint32(len(sym)))
	ex.used += int(ex.rd.skip())
	debug.Debugf("CMPSC", debugMsk, debugIndex, "expand %04x len %d", index, len(sym))
	return false, nil
}

// Return the symbol of index. Preceded entries are walked from the end
// of the symbol toward the start, each filling its part of the scratch
// buffer.
func (ex *expander) symbol(index uint16) ([]byte, error) {
	if index < 256 {
		ex.lit[0] = byte(index)
		return ex.lit[:], nil
	}
	if sym, ok := ex.cache.get(index); ok {
		return sym, nil
	}

	ece, err := ex.dict.getECE(index)
	if err != nil {
		return nil, err
	}
	length := ece.Len()
	if length > maxSymbolLen {
		return nil, irc.New(irc.Data, "entry %04x symbol length %d", index, length)
	}
	buf := ex.scratch[:length]
	for hops := 0; ece.Preceded(); hops++ {
		if hops == maxPreceded {
			return nil, irc.New(irc.Data, "entry %04x too many preceded entries", index)
		}
		end := int(ece.Offset) + len(ece.Chars)
		if end > length {
			return nil, irc.New(irc.Data, "entry %04x offset %d past symbol end", index, ece.Offset)
		}
		copy(buf[ece.Offset:], ece.Chars)
		if ece.Pred < 256 {
			ece = ECE{CSL: 1, Chars: []byte{byte(ece.Pred)}}
			break
		}
		ece, err = ex.dict.getECE(ece.Pred)
		if err != nil {
			return nil, err
		}
	}
	if len(ece.Chars) > length {
		return nil, irc.New(irc.Data, "entry %04x symbol shorter than prefix", index)
	}
	copy(buf, ece.Chars)
	ex.cache.put(index, buf)
	return buf, nil
}
