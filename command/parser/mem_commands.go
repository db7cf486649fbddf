/*
 * CMPSC - Examine dictionary entries and dump storage.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kr/pretty"
	command "github.com/rcornwell/cmpsc/command/command"
	config "github.com/rcornwell/cmpsc/config/cmpscconfig"
	"github.com/rcornwell/cmpsc/emu/cmpsc"
	"github.com/rcornwell/cmpsc/util/hex"
)

// Kinds of entry examine can decode.
var entryKinds = []string{"cce", "ece", "sd"}

// Default bytes shown by dump.
const dumpSize = 0x40

// Decode one entry of kind at index.
func decodeEntry(session *command.Session, kind string, index uint16) (string, error) {
	c, err := session.Loaded()
	if err != nil {
		return "", err
	}
	p := c.Params
	entry := func(base uint32) ([8]byte, error) {
		var raw [8]byte
		err := c.Read(base+uint32(index)*8, raw[:])
		return raw, err
	}

	var str strings.Builder
	var raw [8]byte
	var value any
	switch kind {
	case "cce":
		raw, err = entry(p.Origin)
		if err == nil {
			value, err = cmpsc.DecodeCCE(raw)
		}
	case "ece":
		raw, err = entry(p.Origin + p.DictSize())
		if err == nil {
			value, err = cmpsc.DecodeECE(raw)
		}
	case "sd":
		raw, err = entry(p.Origin)
		if err != nil {
			break
		}
		if !p.Format1 {
			value = cmpsc.DecodeSD0(raw)
			break
		}
		var ext [8]byte
		ext, err = entry(p.Origin + p.DictSize())
		if err == nil {
			value = cmpsc.DecodeSD1(raw, ext)
		}
	default:
		return "", errors.New("entry type must be cce, ece or sd: " + kind)
	}
	if err != nil && value == nil {
		return "", err
	}

	fmt.Fprintf(&str, "%s %03X: ", strings.ToUpper(kind), index)
	hex.FormatBytes(&str, true, raw[:])
	str.WriteByte('\n')
	if err != nil {
		fmt.Fprintf(&str, "invalid: %v\n", err)
	} else {
		str.WriteString(pretty.Sprint(value))
		str.WriteByte('\n')
	}
	return str.String(), nil
}

// Examine dictionary entries: examine cce|ece|sd index [count].
func examine(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Examine")
	kind := line.getWord(false)
	if kind == "" {
		return false, errors.New("examine needs entry type")
	}
	index, err := line.getHex()
	if err != nil {
		return false, errors.New("examine needs hex index")
	}
	count := uint32(1)
	line.skipSpace()
	if !line.isEOL() {
		if count, err = line.getHex(); err != nil {
			return false, err
		}
	}

	p := config.Current.Params
	maxIndex := uint32(p.MaxIndex())
	for i := index; i < index+count; i++ {
		if i > maxIndex {
			return false, fmt.Errorf("index %X beyond %X", i, maxIndex)
		}
		out, err := decodeEntry(session, kind, uint16(i))
		if err != nil {
			return false, err
		}
		fmt.Fprint(session.Out, out)
	}
	return false, nil
}

// Complete entry type for examine.
func examineComplete(line *cmdLine) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	kind := line.scanList()
	matches := []string{}
	for _, k := range entryKinds {
		if strings.HasPrefix(k, kind) {
			matches = append(matches, leading+k+" ")
		}
	}
	return matches
}

// Dump storage: dump address [length].
func dump(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Dump")
	addr, err := line.getHex()
	if err != nil {
		return false, errors.New("dump needs hex address")
	}
	size := uint32(dumpSize)
	line.skipSpace()
	if !line.isEOL() {
		if size, err = line.getHex(); err != nil {
			return false, err
		}
	}
	if size == 0 || size > 0x10000 {
		return false, errors.New("dump length must be 1 to 10000")
	}

	c, err := session.Ready()
	if err != nil {
		return false, err
	}
	buf := make([]byte, size)
	if err := c.Read(addr, buf); err != nil {
		return false, err
	}
	fmt.Fprint(session.Out, hex.Dump(addr, buf))
	return false, nil
}
