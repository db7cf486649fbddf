/*
 * CMPSC - Compression call parameters and results
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

const (
	maxPreceded  = 127     // Preceded entries walked for one symbol
	maxChildren  = 260     // Children examined for one index
	maxSymbolLen = 260     // Bytes in one symbol
	symCacheSize = 1 << 16 // Scratch space for expanded symbols

	// DefaultBudget is the source bytes processed by one call before it
	// stops with condition code 3.
	DefaultBudget = 16384
)

// ErrData matches any data exception with errors.Is.
var ErrData = &irc.Exception{Code: irc.Data}

// Params are the controls for one call.
type Params struct {
	SymbolSize  uint8  // Compressed data symbol size, index width is 8+SymbolSize
	Format1     bool   // Format-1 sibling descriptors
	Translate   bool   // Symbol translation during compression
	TransOffset uint32 // Translation table offset in 128 byte units
	Origin      uint32 // Dictionary origin
	Budget      int    // Source bytes per call, zero for default
}

// Width of one index in bits.
func (p *Params) Width() uint8 {
	return 8 + p.SymbolSize
}

// MaxIndex is the largest index of the dictionary.
func (p *Params) MaxIndex() uint16 {
	return uint16(1)<<p.Width() - 1
}

// DictSize is the size in bytes of one dictionary.
func (p *Params) DictSize() uint32 {
	return 2048 << p.SymbolSize
}

// Validate returns a specification exception for an invalid symbol size.
func (p *Params) Validate() error {
	if p.SymbolSize < 1 || p.SymbolSize > 5 {
		return irc.New(irc.Spec, "symbol size %d", p.SymbolSize)
	}
	if p.Budget < 0 {
		return errors.New("negative budget")
	}
	return nil
}

// Cursor is an operand, an address and the bytes remaining.
type Cursor struct {
	Addr   uint32
	Length uint32
}

func (c *Cursor) advance(n uint32) {
	c.Addr += n
	c.Length -= n
}

// State is everything needed to resume an operation.
type State struct {
	Dest   Cursor // First operand
	Source Cursor // Second operand
	CBN    uint8  // Bit number in the compressed data operand
}

// Status tells why a call stopped.
type Status int

const (
	SourceExhausted Status = iota // Source operand processed
	DestinationFull               // Not enough room for the next unit
	BudgetExhausted               // Call again to continue
	Exception                     // Stopped by a program interruption
)

var statusNames = [...]string{"source exhausted", "destination full", "budget exhausted", "exception"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// CC returns the condition code set for status.
func (s Status) CC() uint8 {
	switch s {
	case DestinationFull:
		return 1
	case BudgetExhausted:
		return 3
	default:
		return 0
	}
}

// Result is the state at the last index boundary and why the call stopped.
type Result struct {
	State
	Status Status
}

// Per call context, dropped on return.
type operation struct {
	p      *Params
	st     State
	width  uint8
	mask   uint16
	dict   *dictionary
	src    *window.Window
	dst    *window.Window
	in     lookahead
	budget int
	used   int // Source bytes consumed
}

func newOperation(mem window.Memory, p *Params, st State) *operation {
	op := &operation{
		p:      p,
		st:     st,
		width:  p.Width(),
		mask:   p.MaxIndex(),
		dict:   newDictionary(mem, p),
		src:    window.New(mem, false),
		dst:    window.New(mem, true),
		budget: p.Budget,
	}
	op.st.CBN &= 7
	op.in.win = op.src
	op.in.page = mem.PageSize()
	if op.budget == 0 {
		op.budget = DefaultBudget
	}
	return op
}

// Stop with status, state is already at the last boundary.
func (op *operation) stop(status Status) (Result, error) {
	traceCC(op, status)
	return Result{State: op.st, Status: status}, nil
}

func (op *operation) fail(err error) (Result, error) {
	traceCC(op, Exception)
	return Result{State: op.st, Status: Exception}, err
}

// Budget check, only after some progress in this call.
func (op *operation) overBudget() bool {
	return op.used > 0 && op.used >= op.budget
}

// Compress source into indexes at the destination.
func Compress(mem window.Memory, p *Params, st State) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{State: st, Status: Exception}, err
	}
	return newOperation(mem, p, st).compress()
}

// Expand indexes at the source into symbols at the destination.
func Expand(mem window.Memory, p *Params, st State) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{State: st, Status: Exception}, err
	}
	return newOperation(mem, p, st).expand()
}
