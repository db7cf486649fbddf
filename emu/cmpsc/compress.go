/*
 * CMPSC - Compression
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
	"github.com/rcornwell/cmpsc/emu/window"
	"github.com/rcornwell/cmpsc/util/debug"
)

// Source bytes already fetched. Refills never cross a page so nothing
// past the page holding the byte asked for is touched.
type lookahead struct {
	win  *window.Window
	page uint32
	base uint32
	buf  []byte
	data [4096]byte
}

// Byte i of operand c.
func (l *lookahead) at(c *Cursor, i uint32) (byte, error) {
	addr := c.Addr + i
	if off := addr - l.base; addr >= l.base && off < uint32(len(l.buf)) {
		return l.buf[off], nil
	}
	n := min(c.Length-i, l.page-(addr&(l.page-1)), uint32(len(l.data)))
	if err := l.win.Fetch(addr, l.data[:n]); err != nil {
		l.buf = nil
		return 0, err
	}
	l.base = addr
	l.buf = l.data[:n]
	return l.buf[0], nil
}

type matchState int

const (
	stateParent   matchState = iota // Parent entry fetched, look at next byte
	stateChildren                   // Search children of parent
	stateSiblings                   // Search sibling descriptors of parent
	stateEmit                       // Parent is the longest match
)

// Symbol being matched.
type matcher struct {
	op       *operation
	src      *Cursor
	index    uint16 // Current parent
	cce      *CCE
	length   uint32 // Source bytes matched
	next     byte   // Byte following the match
	examined int    // Children looked at
	sd       uint16 // Current sibling descriptor
	firstSD  bool
}

func (op *operation) compress() (Result, error) {
	wr := indexWriter{win: op.dst, c: &op.st.Dest, cbn: &op.st.CBN, width: op.width}
	var idx [8]uint16
	for {
		if op.st.Source.Length == 0 {
			return op.stop(SourceExhausted)
		}
		if op.overBudget() {
			return op.stop(BudgetExhausted)
		}

		if wr.batch() {
			// Match up to eight symbols then write them together. The
			// source only moves past symbols whose index was stored.
			start, used := op.st.Source, op.used
			var lens [8]uint32
			n := 0
			var status Status = -1
			var err error
			for n < len(idx) {
				if n != 0 {
					if op.st.Source.Length == 0 {
						status = SourceExhausted
						break
					}
					if op.overBudget() {
						status = BudgetExhausted
						break
					}
				}
				var index uint16
				var length uint32
				index, length, err = op.match()
				if err != nil {
					break
				}
				op.st.Source.advance(length)
				op.used += int(length)
				idx[n] = index
				lens[n] = length
				n++
			}
			op.st.Source, op.used = start, used
			if n == len(idx) {
				if err := wr.put8(&idx); err != nil {
					return op.fail(err)
				}
				op.commit(lens[:])
				continue
			}
			for i, index := range idx[:n] {
				if _, perr := wr.put(index); perr != nil {
					return op.fail(perr)
				}
				op.commit(lens[i : i+1])
			}
			if err != nil {
				return op.fail(err)
			}
			return op.stop(status)
		}

		if op.st.Dest.Length < indexSpan(op.st.CBN, op.width) {
			return op.stop(DestinationFull)
		}
		index, length, err := op.match()
		if err != nil {
			return op.fail(err)
		}
		if _, err := wr.put(index); err != nil {
			return op.fail(err)
		}
		op.st.Source.advance(length)
		op.used += int(length)
	}
}

// Move source past symbols whose indexes are stored.
func (op *operation) commit(lens []uint32) {
	for _, length := range lens {
		op.st.Source.advance(length)
		op.used += int(length)
	}
}

// Find longest symbol at the source, returns the index to emit and the
// source bytes it covers. The source cursor is not moved.
func (op *operation) match() (uint16, uint32, error) {
	first, err := op.in.at(&op.st.Source, 0)
	if err != nil {
		return 0, 0, err
	}
	m := matcher{op: op, src: &op.st.Source, index: uint16(first), length: 1}
	m.cce, err = op.dict.getCCE(m.index)
	if err != nil {
		return 0, 0, err
	}

	state := stateParent
	for {
		switch state {
		case stateParent:
			state, err = m.parent()
		case stateChildren:
			state, err = m.children()
		case stateSiblings:
			state, err = m.siblings()
		case stateEmit:
			return m.emit()
		}
		if err != nil {
			return 0, 0, err
		}
	}
}

// Decide if parent can be extended.
func (m *matcher) parent() (matchState, error) {
	if m.cce.CCT == 0 || m.length >= m.src.Length {
		return stateEmit, nil
	}
	var err error
	m.next, err = m.op.in.at(m.src, m.length)
	if err != nil {
		return stateEmit, err
	}
	return stateChildren, nil
}

func (m *matcher) children() (matchState, error) {
	for i, ch := range m.cce.Chars {
		if err := m.count(); err != nil {
			return stateEmit, err
		}
		if ch != m.next {
			continue
		}
		ok, err := m.descend(m.cce.Child+uint16(i), m.cce.examine(i))
		if err != nil || ok {
			return m.after(), err
		}
	}
	if m.cce.More {
		m.sd = m.cce.Child + uint16(len(m.cce.Chars))
		m.firstSD = true
		return stateSiblings, nil
	}
	return stateEmit, nil
}

func (m *matcher) siblings() (matchState, error) {
	sd, err := m.op.dict.getSD(m.sd)
	if err != nil {
		return stateEmit, err
	}
	for j, ch := range sd.Chars {
		if err := m.count(); err != nil {
			return stateEmit, err
		}
		if ch != m.next {
			continue
		}
		ok, err := m.descend(m.sd+1+uint16(j), sd.examine(j, m.cce, m.firstSD))
		if err != nil || ok {
			return m.after(), err
		}
	}
	if sd.More {
		m.sd += 1 + uint16(sd.Count)
		m.firstSD = false
		return stateSiblings, nil
	}
	return stateEmit, nil
}

func (m *matcher) count() error {
	m.examined++
	if m.examined > maxChildren {
		return irc.New(irc.Data, "more than %d children examined", maxChildren)
	}
	return nil
}

// Try child whose character matched next. A child that is not examined
// ends the symbol. An examined child matches when its extension
// characters follow in the source.
func (m *matcher) descend(child uint16, examine bool) (bool, error) {
	if !examine {
		if m.length+1 > maxSymbolLen {
			return false, irc.New(irc.Data, "symbol longer than %d", maxSymbolLen)
		}
		m.index = child
		m.cce = nil
		m.length++
		return true, nil
	}
	cce, err := m.op.dict.getCCE(child)
	if err != nil {
		return false, err
	}
	length := m.length + 1 + uint32(len(cce.Ext))
	if length > m.src.Length {
		return false, nil
	}
	for k, ch := range cce.Ext {
		by, err := m.op.in.at(m.src, m.length+1+uint32(k))
		if err != nil {
			return false, err
		}
		if by != ch {
			return false, nil
		}
	}
	if length > maxSymbolLen {
		return false, irc.New(irc.Data, "symbol longer than %d", maxSymbolLen)
	}
	m.index = child
	m.cce = cce
	m.length = length
	return true, nil
}

// State after a successful descend.
func (m *matcher) after() matchState {
	if m.cce == nil {
		return stateEmit
	}
	return stateParent
}

func (m *matcher) emit() (uint16, uint32, error) {
	index := m.index
	if m.op.p.Translate {
		var err error
		index, err = m.op.dict.translate(m.index)
		if err != nil {
			return 0, 0, err
		}
	}
	debug.Debugf("CMPSC", debugMsk, debugIndex, "compress %04x -> %04x len %d", m.index, index, m.length)
	return index, m.length, nil
}
