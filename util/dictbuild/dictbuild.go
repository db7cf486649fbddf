/*
 * CMPSC - Dictionary builder
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


// Package dictbuild makes a compression and expansion dictionary pair
// from training data. Symbols are grown LZW style: each time the longest
// known symbol is followed by a new character a child is added, until
// the dictionary is full.
package dictbuild

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	alphabet         = 256
	maxDirect        = 5   // Children held in a character entry
	maxExamined      = 260 // Children looked at while matching one symbol
	defaultMaxSymbol = 64
	maxSymbol        = 255 // Offset of a preceded entry is one byte
	entrySize        = 8
)

// Options for Build.
type Options struct {
	SymbolSize uint8 // Compressed data symbol size 1-5
	Format1    bool  // Use format-1 sibling descriptors
	MaxSymbol  int   // Longest symbol, zero for default
}

// Dictionary is a compression dictionary followed by its expansion
// dictionary.
type Dictionary struct {
	SymbolSize  uint8
	Format1     bool
	Compression []byte
	Expansion   []byte
	Entries     int // Indexes used, alphabet included
}

type node struct {
	ch       byte
	parent   *node
	children []*node
	depth    int    // Length of symbol
	cost     int    // Children examined to reach node
	index    uint16 // Assigned by layout
	sds      []uint16
}

// Child of n for ch.
func (n *node) child(ch byte) *node {
	for _, c := range n.children {
		if c.ch == ch {
			return c
		}
	}
	return nil
}

// Symbol of n.
func (n *node) symbol() []byte {
	sym := make([]byte, n.depth)
	for p := n; p != nil; p = p.parent {
		sym[p.depth-1] = p.ch
	}
	return sym
}

type builder struct {
	opt      Options
	root     [alphabet]*node
	capacity int // Indexes past the alphabet
	used     int
	perSD    int // Siblings per descriptor
	xbits    int // Examine bits in a descriptor
}

// Build reads training data from r.
func Build(r io.Reader, opt Options) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return BuildBytes(data, opt)
}

// BuildBytes makes dictionaries from data.
func BuildBytes(data []byte, opt Options) (*Dictionary, error) {
	if opt.SymbolSize < 1 || opt.SymbolSize > 5 {
		return nil, fmt.Errorf("symbol size %d not between 1 and 5", opt.SymbolSize)
	}
	if opt.MaxSymbol == 0 {
		opt.MaxSymbol = defaultMaxSymbol
	}
	if opt.MaxSymbol < 1 || opt.MaxSymbol > maxSymbol {
		return nil, fmt.Errorf("symbol length %d not between 1 and %d", opt.MaxSymbol, maxSymbol)
	}
	b := &builder{
		opt:      opt,
		capacity: 1<<(8+opt.SymbolSize) - alphabet,
		perSD:    7,
		xbits:    5,
	}
	if opt.Format1 {
		b.perSD = 14
		b.xbits = 12
	}
	for i := range b.root {
		b.root[i] = &node{ch: byte(i), depth: 1, index: uint16(i)}
	}
	b.train(data)
	dict := b.layout()
	slog.Debug("dictionary built", "symbolsize", opt.SymbolSize, "format1", opt.Format1,
		"entries", dict.Entries, "training", len(data))
	return dict, nil
}

// Index slots used by k children.
func (b *builder) slots(k int) int {
	if k <= maxDirect {
		return k
	}
	rest := k - maxDirect
	return k + (rest+b.perSD-1)/b.perSD
}

func (b *builder) train(data []byte) {
	for i := 0; i < len(data); {
		n := b.root[data[i]]
		j := i + 1
		for j < len(data) {
			c := n.child(data[j])
			if c == nil {
				break
			}
			n = c
			j++
		}
		if j < len(data) && n.depth < b.opt.MaxSymbol {
			b.add(n, data[j])
		}
		i = j
	}
}

// Add child ch to n when there is room.
func (b *builder) add(n *node, ch byte) {
	k := len(n.children)
	extra := b.slots(k+1) - b.slots(k)
	if b.used+extra > b.capacity || n.cost+k+1 > maxExamined {
		return
	}
	b.used += extra
	n.children = append(n.children, &node{
		ch:     ch,
		parent: n,
		depth:  n.depth + 1,
		cost:   n.cost + k + 1,
	})
}

// Assign indexes breadth first then encode entries.
func (b *builder) layout() *Dictionary {
	size := entrySize << (8 + b.opt.SymbolSize)
	dict := &Dictionary{
		SymbolSize:  b.opt.SymbolSize,
		Format1:     b.opt.Format1,
		Compression: make([]byte, size),
		Expansion:   make([]byte, size),
	}
	queue := make([]*node, 0, alphabet)
	queue = append(queue, b.root[:]...)
	next := uint16(alphabet)
	var all []*node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		all = append(all, n)
		if len(n.children) == 0 {
			continue
		}
		direct := min(len(n.children), maxDirect)
		for _, c := range n.children[:direct] {
			c.index = next
			next++
		}
		for rest := n.children[direct:]; len(rest) > 0; {
			cnt := min(len(rest), b.perSD)
			n.sds = append(n.sds, next)
			next++
			for _, c := range rest[:cnt] {
				c.index = next
				next++
			}
			rest = rest[cnt:]
		}
		queue = append(queue, n.children...)
	}
	dict.Entries = int(next)

	for _, n := range all {
		b.encodeCCE(dict, n)
		b.encodeSDs(dict, n)
		encodeECE(dict, n)
	}
	return dict
}

func hasChildren(n *node) bool {
	return len(n.children) != 0
}

func (b *builder) encodeCCE(dict *Dictionary, n *node) {
	k := len(n.children)
	if k == 0 {
		return
	}
	raw := dict.Compression[int(n.index)*entrySize:][:entrySize]
	direct := n.children[:min(k, maxDirect)]
	cct := len(direct)
	if k > maxDirect {
		cct = maxDirect + 1
	}
	cptr := direct[0].index
	raw[0] = byte(cct) << 5
	raw[1] = byte(cptr>>8) & 0x1f
	raw[2] = byte(cptr)
	for i, c := range direct {
		if hasChildren(c) {
			raw[0] |= 0x10 >> i
		}
		raw[3+i] = c.ch
	}
	if k <= maxDirect {
		return
	}
	// Examine bits of the first descriptor past its own bits.
	first := n.children[maxDirect:][:min(k-maxDirect, b.perSD)]
	for i, c := range first[min(len(first), b.xbits):] {
		if hasChildren(c) {
			raw[1] |= 0x80 >> i
		}
	}
}

func (b *builder) encodeSDs(dict *Dictionary, n *node) {
	if len(n.sds) == 0 {
		return
	}
	rest := n.children[maxDirect:]
	for _, sd := range n.sds {
		cnt := min(len(rest), b.perSD)
		more := len(rest) > b.perSD
		raw := dict.Compression[int(sd)*entrySize:][:entrySize]
		var x uint16
		for j, c := range rest[:min(cnt, b.xbits)] {
			if hasChildren(c) {
				x |= 0x8000 >> j
			}
		}
		if b.opt.Format1 {
			sct := byte(cnt)
			if more {
				sct = 15
			}
			x >>= 4
			raw[0] = sct<<4 | byte(x>>8)
			raw[1] = byte(x)
			ext := dict.Expansion[int(sd)*entrySize:][:entrySize]
			for j, c := range rest[:cnt] {
				if j < 6 {
					raw[2+j] = c.ch
				} else {
					ext[j-6] = c.ch
				}
			}
		} else {
			sct := byte(cnt)
			if more {
				sct = 0
			}
			raw[0] = sct<<5 | byte(x>>11)
			for j, c := range rest[:cnt] {
				raw[1+j] = c.ch
			}
		}
		rest = rest[cnt:]
	}
}

// Symbols up to seven bytes are held whole, longer ones keep their last
// five bytes and point to the ancestor holding the rest.
func encodeECE(dict *Dictionary, n *node) {
	raw := dict.Expansion[int(n.index)*entrySize:][:entrySize]
	sym := n.symbol()
	if len(sym) <= 7 {
		raw[0] = byte(len(sym))
		copy(raw[1:], sym)
		return
	}
	psl := 5
	pred := n
	for range psl {
		pred = pred.parent
	}
	raw[0] = byte(psl)<<5 | byte(pred.index>>8)&0x1f
	raw[1] = byte(pred.index)
	copy(raw[2:2+psl], sym[len(sym)-psl:])
	raw[7] = byte(len(sym) - psl)
}

// Bytes returns the compression dictionary followed by the expansion
// dictionary, the layout expected at the dictionary origin.
func (dict *Dictionary) Bytes() []byte {
	out := make([]byte, 0, len(dict.Compression)+len(dict.Expansion))
	out = append(out, dict.Compression...)
	return append(out, dict.Expansion...)
}

// WriteTo writes Bytes to w.
func (dict *Dictionary) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(dict.Bytes())
	return int64(n), err
}

// Load a dictionary pair written by WriteTo. The symbol size follows
// from the length.
func Load(data []byte, format1 bool) (*Dictionary, error) {
	for cdss := uint8(1); cdss <= 5; cdss++ {
		size := entrySize << (8 + cdss)
		if len(data) == 2*size {
			return &Dictionary{
				SymbolSize:  cdss,
				Format1:     format1,
				Compression: data[:size:size],
				Expansion:   data[size:],
			}, nil
		}
	}
	return nil, errors.New("dictionary size does not match any symbol size")
}
