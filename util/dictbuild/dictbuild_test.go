/*
 * CMPSC - Dictionary builder test
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

package dictbuild

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rcornwell/cmpsc/emu/cmpsc"
)

func entry(data []byte, index int) [8]byte {
	var raw [8]byte
	copy(raw[:], data[index*entrySize:])
	return raw
}

// Rebuild symbol of index from the expansion dictionary.
func expandIndex(t *testing.T, dict *Dictionary, index int) []byte {
	t.Helper()
	if index < alphabet {
		return []byte{byte(index)}
	}
	ece, err := cmpsc.DecodeECE(entry(dict.Expansion, index))
	if err != nil {
		t.Fatalf("index %04x: %v", index, err)
	}
	sym := make([]byte, ece.Len())
	for ece.Preceded() {
		copy(sym[ece.Offset:], ece.Chars)
		ece, err = cmpsc.DecodeECE(entry(dict.Expansion, int(ece.Pred)))
		if err != nil {
			t.Fatalf("index %04x: %v", index, err)
		}
	}
	copy(sym, ece.Chars)
	return sym
}

func TestOptions(t *testing.T) {
	for _, opt := range []Options{{SymbolSize: 0}, {SymbolSize: 6}, {SymbolSize: 1, MaxSymbol: 300}} {
		if _, err := BuildBytes([]byte("abc"), opt); err == nil {
			t.Errorf("Options %+v did not fail", opt)
		}
	}
}

func TestSimple(t *testing.T) {
	dict, err := Build(bytes.NewReader([]byte("abababab")), Options{SymbolSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	// ab, ba, aba and abab are added.
	if dict.Entries != 260 {
		t.Errorf("Entries got: %d expected: %d", dict.Entries, 260)
	}
	cce, err := cmpsc.DecodeCCE(entry(dict.Compression, 'a'))
	if err != nil {
		t.Fatal(err)
	}
	if cce.CCT != 1 || cce.Child != 256 || !bytes.Equal(cce.Chars, []byte{'b'}) {
		t.Errorf("CCE a got: %+v", cce)
	}
	if cce.X != 0x10 {
		t.Errorf("CCE a examine got: %02x expected: %02x", cce.X, 0x10)
	}
	if sym := expandIndex(t, dict, 256); string(sym) != "ab" {
		t.Errorf("Symbol 256 got: %q expected: %q", sym, "ab")
	}
	ece, err := cmpsc.DecodeECE(entry(dict.Expansion, 'z'))
	if err != nil || ece.CSL != 1 || ece.Chars[0] != 'z' {
		t.Errorf("Alphabet ECE got: %+v %v", ece, err)
	}
}

// Every symbol in the dictionary can be rebuilt, and the compression
// tree leads to the same symbol.
func checkTree(t *testing.T, dict *Dictionary) {
	t.Helper()
	var walk func(index int, prefix []byte, depth int)
	walk = func(index int, prefix []byte, depth int) {
		if depth > 300 {
			t.Fatalf("tree too deep at %04x", index)
		}
		if got := expandIndex(t, dict, index); !bytes.Equal(got, prefix) {
			t.Errorf("Symbol %04x got: %q expected: %q", index, got, prefix)
		}
		cce, err := cmpsc.DecodeCCE(entry(dict.Compression, index))
		if err != nil {
			t.Fatalf("CCE %04x: %v", index, err)
		}
		if cce.CCT == 0 {
			return
		}
		for i, ch := range cce.Chars {
			walk(int(cce.Child)+i, append(bytes.Clone(prefix), ch), depth+1)
		}
		if !cce.More {
			return
		}
		for sd := int(cce.Child) + len(cce.Chars); ; {
			var desc cmpsc.SD
			if dict.Format1 {
				desc = cmpsc.DecodeSD1(entry(dict.Compression, sd), entry(dict.Expansion, sd))
			} else {
				desc = cmpsc.DecodeSD0(entry(dict.Compression, sd))
			}
			for j, ch := range desc.Chars {
				walk(sd+1+j, append(bytes.Clone(prefix), ch), depth+1)
			}
			if !desc.More {
				break
			}
			sd += 1 + int(desc.Count)
		}
	}
	for i := range alphabet {
		walk(i, []byte{byte(i)}, 0)
	}
}

func TestSiblings(t *testing.T) {
	// 'a' followed by twenty different characters needs descriptors.
	var train []byte
	for i := range 20 {
		train = append(train, 'a', byte('A'+i))
	}
	for _, format1 := range []bool{false, true} {
		dict, err := BuildBytes(train, Options{SymbolSize: 2, Format1: format1})
		if err != nil {
			t.Fatal(err)
		}
		cce, err := cmpsc.DecodeCCE(entry(dict.Compression, 'a'))
		if err != nil {
			t.Fatal(err)
		}
		if !cce.More || len(cce.Chars) != 5 {
			t.Errorf("Format1 %v CCE a got: %+v", format1, cce)
		}
		checkTree(t, dict)
	}
}

func TestLongSymbols(t *testing.T) {
	train := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	for cdss := uint8(1); cdss <= 5; cdss++ {
		for _, format1 := range []bool{false, true} {
			t.Run(fmt.Sprintf("cdss%d-f%v", cdss, format1), func(t *testing.T) {
				dict, err := BuildBytes(train, Options{SymbolSize: cdss, Format1: format1, MaxSymbol: 40})
				if err != nil {
					t.Fatal(err)
				}
				if dict.Entries > 1<<(8+cdss) {
					t.Errorf("Entries got: %d more than %d", dict.Entries, 1<<(8+cdss))
				}
				checkTree(t, dict)
			})
		}
	}
}

func TestLoad(t *testing.T) {
	dict, err := BuildBytes([]byte("mississippi"), Options{SymbolSize: 3, Format1: true})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := dict.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(buf.Bytes(), true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(dict.Compression, got.Compression); diff != "" {
		t.Errorf("Compression dictionary mismatch (-want +got):\n%s", diff)
	}
	if got.SymbolSize != 3 {
		t.Errorf("Load symbol size got: %d expected: %d", got.SymbolSize, 3)
	}
	if _, err := Load(buf.Bytes()[1:], true); err == nil {
		t.Error("Load of short dictionary did not fail")
	}
}
