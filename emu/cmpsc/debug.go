/*
 * CMPSC - Compression call debug options
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
	"strings"

	"github.com/rcornwell/cmpsc/util/debug"
	"github.com/rcornwell/cmpsc/util/hex"
)

const (
	debugCCE = 1 << iota
	debugECE
	debugIndex
	debugCC
)

var debugOption = map[string]int{
	"CCE":   debugCCE,
	"ECE":   debugECE,
	"INDEX": debugIndex,
	"CC":    debugCC,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("CMPSC debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

func traceEntry(level int, kind string, index uint16, raw [8]byte) {
	if !debug.Enabled(debugMsk, level) {
		return
	}
	var str strings.Builder
	hex.FormatBytes(&str, true, raw[:])
	debug.Debugf("CMPSC", debugMsk, level, "%s %04x %s", kind, index, str.String())
}

func traceCC(op *operation, status Status) {
	debug.Debugf("CMPSC", debugMsk, debugCC, "cc %d %s dst %08x/%x src %08x/%x cbn %d",
		status.CC(), status, op.st.Dest.Addr, op.st.Dest.Length,
		op.st.Source.Addr, op.st.Source.Length, op.st.CBN)
}
