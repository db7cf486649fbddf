/*
 * CMPSC - Compression driver
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

package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rcornwell/cmpsc/emu/cmpsc"
	"github.com/rcornwell/cmpsc/emu/window"
)

// Registers used for the operands.
const (
	regDest   = 2
	regSource = 4
)

// Smallest area for operands.
const minArea = 1024

// Core runs compression calls against an address space. Operands are
// staged in two areas starting at Work, input first.
type Core struct {
	Params  cmpsc.Params
	Space   window.Memory
	Work    uint32 // Address of operand areas
	Area    uint32 // Size of each area
	Budget  int    // Source bytes per call, zero for default
	Resumes int    // Calls restarted after condition code 3
	regs    [16]uint32
}

// New creates a driver using the storage after the dictionaries, up to
// size bytes.
func New(space window.Memory, p cmpsc.Params, size uint32) (*Core, error) {
	core := &Core{Params: p, Space: space}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	// Work area starts at the next 4K after both dictionaries and any
	// translation table.
	end := p.Origin + 2*p.DictSize()
	if p.Translate {
		end = max(end, p.Origin+p.TransOffset<<7+2<<(8+p.SymbolSize))
	}
	core.Work = (end + 0xfff) &^ 0xfff
	if core.Work >= size || (size-core.Work)/2 < minArea {
		return nil, fmt.Errorf("storage %dK too small for dictionary", size/1024)
	}
	core.Area = min((size-core.Work)/2, 1<<20) &^ 0xff
	return core, nil
}

// Load stores data at addr.
func (core *Core) Load(addr uint32, data []byte) error {
	return window.New(core.Space, true).Store(addr, data)
}

// Read fetches len(buf) bytes at addr.
func (core *Core) Read(addr uint32, buf []byte) error {
	return window.New(core.Space, false).Fetch(addr, buf)
}

// LoadDictionary places the compression and expansion dictionaries at
// the origin.
func (core *Core) LoadDictionary(data []byte) error {
	if uint32(len(data)) != 2*core.Params.DictSize() {
		return fmt.Errorf("dictionary of %d bytes, symbol size %d needs %d",
			len(data), core.Params.SymbolSize, 2*core.Params.DictSize())
	}
	return core.Load(core.Params.Origin, data)
}

// Run one operation to completion. The instruction is issued again after
// condition code 3 until it ends or ctx is done.
func (core *Core) Run(ctx context.Context, expand bool, st cmpsc.State) (cmpsc.Result, error) {
	p := core.Params
	if expand {
		// Expansion dictionary follows the compression dictionary.
		p.Origin += p.DictSize()
	}
	core.regs[0], core.regs[1] = p.Registers(expand, st.CBN)
	core.regs[regDest], core.regs[regDest+1] = st.Dest.Addr, st.Dest.Length
	core.regs[regSource], core.regs[regSource+1] = st.Source.Addr, st.Source.Length
	for {
		cc, err := cmpsc.Execute(&core.regs, regDest, regSource, core.Space, core.Budget)
		res := core.result(cc, err)
		if err != nil {
			return res, fmt.Errorf("cmpsc: %w", err)
		}
		if cc != 3 {
			slog.Debug("cmpsc done", "expand", expand, "cc", cc, "resumes", core.Resumes)
			return res, nil
		}
		core.Resumes++
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
}

func (core *Core) result(cc uint8, err error) cmpsc.Result {
	res := cmpsc.Result{
		State: cmpsc.State{
			Dest:   cmpsc.Cursor{Addr: core.regs[regDest], Length: core.regs[regDest+1]},
			Source: cmpsc.Cursor{Addr: core.regs[regSource], Length: core.regs[regSource+1]},
			CBN:    uint8(core.regs[1] & 7),
		},
	}
	switch {
	case err != nil:
		res.Status = cmpsc.Exception
	case cc == 1:
		res.Status = cmpsc.DestinationFull
	case cc == 3:
		res.Status = cmpsc.BudgetExhausted
	default:
		res.Status = cmpsc.SourceExhausted
	}
	return res
}

// Read up to len(buf) bytes, returns io.EOF only when nothing was read.
func fill(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || (errors.Is(err, io.EOF) && n > 0) {
		err = nil
	}
	return n, err
}

// Compress r to w. Returns the number of bits used in the last byte
// written, zero when it is full.
func (core *Core) Compress(ctx context.Context, r io.Reader, w io.Writer) (uint8, error) {
	in := core.Work
	out := core.Work + core.Area
	buf := make([]byte, core.Area)
	var st cmpsc.State
	var carry [1]byte
	core.Resumes = 0
	for {
		n, err := fill(r, buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if err := core.Load(in, buf[:n]); err != nil {
			return 0, err
		}
		st.Source = cmpsc.Cursor{Addr: in, Length: uint32(n)}
		for st.Source.Length > 0 {
			// Partial byte moves to the start of the area.
			if err := core.Load(out, carry[:]); err != nil {
				return 0, err
			}
			st.Dest = cmpsc.Cursor{Addr: out, Length: core.Area}
			res, err := core.Run(ctx, false, st)
			if err != nil {
				return 0, err
			}
			done := res.Dest.Addr - out
			part := done
			if res.CBN != 0 {
				part++
			}
			if err := core.Read(out, buf[:part]); err != nil {
				return 0, err
			}
			if _, err := w.Write(buf[:done]); err != nil {
				return 0, err
			}
			carry[0] = 0
			if res.CBN != 0 {
				carry[0] = buf[done]
			}
			st = res.State
		}
	}
	if st.CBN != 0 {
		if _, err := w.Write(carry[:]); err != nil {
			return 0, err
		}
	}
	return st.CBN, nil
}

// Expand r to w. Trailing bits too short for an index are ignored.
func (core *Core) Expand(ctx context.Context, r io.Reader, w io.Writer) error {
	in := core.Work
	out := core.Work + core.Area
	buf := make([]byte, core.Area)
	var st cmpsc.State
	var left []byte
	core.Resumes = 0
	for {
		copy(buf, left)
		n, err := fill(r, buf[len(left):])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		n += len(left)
		if err := core.Load(in, buf[:n]); err != nil {
			return err
		}
		st.Source = cmpsc.Cursor{Addr: in, Length: uint32(n)}
		for {
			st.Dest = cmpsc.Cursor{Addr: out, Length: core.Area}
			res, err := core.Run(ctx, true, st)
			if err != nil {
				return err
			}
			done := res.Dest.Addr - out
			if err := core.Read(out, buf[:done]); err != nil {
				return err
			}
			if _, err := w.Write(buf[:done]); err != nil {
				return err
			}
			st = res.State
			if res.Status != cmpsc.DestinationFull {
				break
			}
		}
		left = make([]byte, st.Source.Length)
		if err := core.Read(st.Source.Addr, left); err != nil {
			return err
		}
	}
	return nil
}
