/*
 * CMPSC - Program interruption codes
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

package irc

import "fmt"

// Operator trap values.
const (
	Prot  uint16 = 0x0004 // Protection violation
	Addr  uint16 = 0x0005 // Address error
	Spec  uint16 = 0x0006 // Specification error
	Data  uint16 = 0x0007 // Data exception
	Seg   uint16 = 0x0010 // Segment translation
	Page  uint16 = 0x0011 // Page translation
	Trans uint16 = 0x0012 // Translation special
)

var names = map[uint16]string{
	Prot:  "protection",
	Addr:  "addressing",
	Spec:  "specification",
	Data:  "data",
	Seg:   "segment translation",
	Page:  "page translation",
	Trans: "translation specification",
}

// Exception is a program interruption raised while executing an
// instruction. Addr holds the failing virtual address for access
// exceptions.
type Exception struct {
	Code   uint16
	Addr   uint32
	Reason string
}

// New returns an exception for code with a reason.
func New(code uint16, format string, a ...interface{}) *Exception {
	return &Exception{Code: code, Reason: fmt.Sprintf(format, a...)}
}

// Access returns an access exception for the virtual address.
func Access(code uint16, addr uint32) *Exception {
	return &Exception{Code: code, Addr: addr}
}

func (e *Exception) Error() string {
	name, ok := names[e.Code]
	if !ok {
		name = fmt.Sprintf("code %04x", e.Code)
	}
	switch {
	case e.Reason != "":
		return name + " exception: " + e.Reason
	case e.Code == Data || e.Code == Spec:
		return name + " exception"
	default:
		return fmt.Sprintf("%s exception at %08x", name, e.Addr)
	}
}

// Is matches any exception with the same interruption code.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	return ok && t.Code == e.Code
}
