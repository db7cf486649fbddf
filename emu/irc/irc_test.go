/*
 * CMPSC - Program interruption code tests
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

import (
	"errors"
	"fmt"
	"testing"
)

func TestExceptionIs(t *testing.T) {
	err := fmt.Errorf("expand: %w", New(Data, "predecessor chain too long"))
	if !errors.Is(err, &Exception{Code: Data}) {
		t.Error("wrapped data exception did not match")
	}
	if errors.Is(err, &Exception{Code: Addr}) {
		t.Error("data exception matched addressing")
	}
	var e *Exception
	if !errors.As(err, &e) || e.Code != Data {
		t.Errorf("errors.As did not find exception got: %v", e)
	}
}

func TestExceptionString(t *testing.T) {
	tests := []struct {
		err    *Exception
		expect string
	}{
		{Access(Page, 0x12345), "page translation exception at 00012345"},
		{New(Data, "bad entry %d", 300), "data exception: bad entry 300"},
		{&Exception{Code: Spec}, "specification exception"},
		{&Exception{Code: 0x99, Addr: 1}, "code 0099 exception at 00000001"},
	}
	for _, test := range tests {
		if s := test.err.Error(); s != test.expect {
			t.Errorf("Error() got: %q expected: %q", s, test.expect)
		}
	}
}
