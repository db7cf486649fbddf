/*
 * CMPSC - Console session and command options.
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

package command

import (
	"errors"
	"io"
	"log/slog"

	config "github.com/rcornwell/cmpsc/config/cmpscconfig"
	"github.com/rcornwell/cmpsc/emu/core"
	"github.com/rcornwell/cmpsc/emu/window"
	"github.com/rcornwell/cmpsc/util/dictbuild"
)

// List of options to pass to set or show function
type CmdOption struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
	Value    uint32 // Numberic value.
}

// List of option types.
const (
	OptionSwitch = 1 + iota
	OptionFile
	OptionNumber
	OptionHex
	OptionList
)

const (
	ValidSet = 1 << iota
	ValidShow
	ValidUnset
)

type Options struct {
	Name        string   // Name of option.
	OptionType  int      // Type of argument.
	OptionValid int      // Option valid for command type.
	OptionList  []string // List of valid options for this options.
}

// Settings that can be changed from the console.
var Settings = []Options{
	{Name: "symbolsize", OptionType: OptionNumber, OptionValid: ValidSet | ValidShow},
	{Name: "format1", OptionType: OptionSwitch, OptionValid: ValidSet | ValidUnset | ValidShow},
	{Name: "translate", OptionType: OptionHex, OptionValid: ValidSet | ValidUnset | ValidShow},
	{Name: "origin", OptionType: OptionHex, OptionValid: ValidSet | ValidShow},
	{Name: "budget", OptionType: OptionNumber, OptionValid: ValidSet | ValidShow},
	{Name: "memory", OptionType: OptionNumber, OptionValid: ValidShow},
	{Name: "dictionary", OptionType: OptionFile, OptionValid: ValidShow},
}

// ErrNoDictionary is returned by operations that need a dictionary in storage.
var ErrNoDictionary = errors.New("no dictionary loaded")

// Session is the state commands work on. Storage is laid out from the
// current settings the first time it is needed.
type Session struct {
	Space      window.Memory
	Out        io.Writer
	Core       *core.Core
	Dictionary *dictbuild.Dictionary // Dictionary in storage, nil if none
}

// New session over space, command output goes to out.
func New(space window.Memory, out io.Writer) *Session {
	return &Session{Space: space, Out: out}
}

// Reset drops the storage layout after a setting that moves it changed.
func (s *Session) Reset() {
	if s.Dictionary != nil {
		slog.Info("dictionary unloaded")
	}
	s.Core = nil
	s.Dictionary = nil
}

// Ready returns the core, creating it from the current settings.
func (s *Session) Ready() (*core.Core, error) {
	if s.Core != nil {
		s.Core.Budget = config.Current.Params.Budget
		return s.Core, nil
	}
	c, err := core.New(s.Space, config.Current.Params, uint32(config.Current.MemoryK)*1024)
	if err != nil {
		return nil, err
	}
	c.Budget = config.Current.Params.Budget
	s.Core = c
	return c, nil
}

// Loaded returns the core when a dictionary is in storage.
func (s *Session) Loaded() (*core.Core, error) {
	if s.Dictionary == nil {
		return nil, ErrNoDictionary
	}
	return s.Ready()
}

// Install dict at the dictionary origin. The symbol size and sibling
// format follow the dictionary.
func (s *Session) Install(dict *dictbuild.Dictionary) error {
	p := &config.Current.Params
	if p.SymbolSize != dict.SymbolSize || p.Format1 != dict.Format1 {
		p.SymbolSize = dict.SymbolSize
		p.Format1 = dict.Format1
		s.Reset()
	}
	c, err := s.Ready()
	if err != nil {
		return err
	}
	if err := c.LoadDictionary(dict.Bytes()); err != nil {
		return err
	}
	s.Dictionary = dict
	slog.Info("dictionary loaded", "symbolsize", dict.SymbolSize, "format1", dict.Format1,
		"origin", p.Origin)
	return nil
}
