/*
 * CMPSC - Compression driver test
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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rcornwell/cmpsc/emu/cmpsc"
	"github.com/rcornwell/cmpsc/emu/dat"
	mem "github.com/rcornwell/cmpsc/emu/memory"
	"github.com/rcornwell/cmpsc/util/dictbuild"
)

var text = bytes.Repeat([]byte("Compression call turns bytes into dictionary indexes, expansion turns them back. "), 80)

func newCore(t *testing.T, space *dat.Space, p cmpsc.Params, size uint32) *Core {
	t.Helper()
	dict, err := dictbuild.BuildBytes(text, dictbuild.Options{SymbolSize: p.SymbolSize, Format1: p.Format1})
	if err != nil {
		t.Fatal(err)
	}
	core, err := New(space, p, size)
	if err != nil {
		t.Fatal(err)
	}
	if err := core.LoadDictionary(dict.Bytes()); err != nil {
		t.Fatal(err)
	}
	return core
}

func roundTrip(t *testing.T, core *Core) []byte {
	t.Helper()
	var packed bytes.Buffer
	if _, err := core.Compress(context.Background(), bytes.NewReader(text), &packed); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if packed.Len() >= len(text) {
		t.Errorf("Compressed %d bytes to %d", len(text), packed.Len())
	}
	var out bytes.Buffer
	if err := core.Expand(context.Background(), bytes.NewReader(packed.Bytes()), &out); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !bytes.Equal(out.Bytes(), text) {
		t.Errorf("Round trip got %d bytes expected %d\n%s", out.Len(), len(text),
			cmp.Diff(string(text), out.String()))
	}
	return packed.Bytes()
}

func TestNew(t *testing.T) {
	mem.SetSize(64)
	p := cmpsc.Params{SymbolSize: 5, Origin: 0x1000}
	if _, err := New(dat.New(false), p, 64*1024); err == nil {
		t.Error("New accepted storage smaller than dictionary")
	}
	p.SymbolSize = 0
	if _, err := New(dat.New(false), p, 64*1024); err == nil {
		t.Error("New accepted symbol size 0")
	}
	p = cmpsc.Params{SymbolSize: 1, Origin: 0x1000, Translate: true, TransOffset: 0x100}
	core, err := New(dat.New(false), p, 64*1024)
	if err != nil {
		t.Fatal(err)
	}
	if core.Work != 0xa000 {
		t.Errorf("Work area got: %08x expected: %08x", core.Work, 0xa000)
	}
	if err := core.LoadDictionary(make([]byte, 100)); err == nil {
		t.Error("LoadDictionary accepted wrong size")
	}
}

func TestRoundTrip(t *testing.T) {
	mem.SetSize(1024)
	mem.Clear()
	for _, format1 := range []bool{false, true} {
		p := cmpsc.Params{SymbolSize: 2, Format1: format1, Origin: 0x10000}
		core := newCore(t, dat.New(false), p, 1024*1024)
		roundTrip(t, core)

		// Small areas and budgets split the work over many calls.
		core.Area = minArea
		core.Budget = 100
		roundTrip(t, core)
		if core.Resumes == 0 {
			t.Errorf("Format1 %v budget did not cause a resume", format1)
		}
	}
}

func TestCancel(t *testing.T) {
	mem.SetSize(1024)
	mem.Clear()
	core := newCore(t, dat.New(false), cmpsc.Params{SymbolSize: 1, Origin: 0x10000}, 1024*1024)
	core.Budget = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := core.Compress(ctx, bytes.NewReader(text), &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Cancel got: %v expected: %v", err, context.Canceled)
	}
	if core.Resumes != 1 {
		t.Errorf("Cancel resumes got: %d expected: 1", core.Resumes)
	}
}

// Segment 1 mapped backward onto real 0x20000-0x2ffff.
func pagedSpace(t *testing.T) *dat.Space {
	t.Helper()
	_ = mem.PutWord(0x1000, 0x00000001)
	_ = mem.PutWord(0x1004, 0xf0003000)
	for i := uint32(0); i < 16; i += 2 {
		hi := (0x2f - i) << 4
		lo := (0x2f - i - 1) << 4
		_ = mem.PutWord(0x3000+i*2, hi<<16|lo)
	}
	space := dat.New(false)
	if err := space.SetControl(0x00800000, 0x00001000); err != nil {
		t.Fatal(err)
	}
	return space
}

func TestPaged(t *testing.T) {
	mem.SetSize(1024)
	mem.Clear()
	p := cmpsc.Params{SymbolSize: 1, Origin: 0x10000}
	flat := newCore(t, dat.New(false), p, 0x20000)
	want := roundTrip(t, flat)

	mem.Clear()
	space := pagedSpace(t)
	paged := newCore(t, space, p, 0x20000)
	got := roundTrip(t, paged)
	if !bytes.Equal(got, want) {
		t.Error("Paged compression differs from real")
	}

	// Dictionary is in the last real page frames.
	var raw [8]byte
	if mem.GetBytes(0x2f000+'C'*8, raw[:]) {
		t.Fatal("GetBytes failed")
	}
	cce, err := cmpsc.DecodeCCE(raw)
	if err != nil || cce.CCT == 0 {
		t.Errorf("Dictionary entry for C not at paged address: %+v %v", cce, err)
	}

	// Storage past the mapped segment faults.
	paged.Area = 0x10000
	_, err = paged.Compress(context.Background(), bytes.NewReader(text), &bytes.Buffer{})
	if err == nil {
		t.Error("Compress outside mapped storage did not fail")
	}
}
