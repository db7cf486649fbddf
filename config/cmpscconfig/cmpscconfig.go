/*
 * CMPSC - Compression configuration options
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

package cmpscconfig

import (
	"errors"
	"strconv"
	"strings"

	config "github.com/rcornwell/cmpsc/config/configparser"
	"github.com/rcornwell/cmpsc/emu/cmpsc"
)

// Settings collected from the configuration file and command line.
type Settings struct {
	MemoryK    int          // Storage size in K
	Dictionary string       // Dictionary file to load
	Params     cmpsc.Params // Call parameters
}

// Current settings.
var Current = Defaults()

// Defaults returns settings before any option is applied.
func Defaults() Settings {
	return Settings{
		MemoryK: 1024,
		Params:  cmpsc.Params{SymbolSize: 1, Origin: 0x10000},
	}
}

// register options on initialize.
func init() {
	config.RegisterOption("MEMORY", setMemory)
	config.RegisterOption("DICTIONARY", setDictionary)
	config.RegisterOption("SYMBOLSIZE", setSymbolSize)
	config.RegisterSwitch("FORMAT1", setFormat1)
	config.RegisterOption("TRANSLATE", setTranslate)
	config.RegisterOption("ORIGIN", setOrigin)
	config.RegisterOption("BUDGET", setBudget)
}

// ParseSize takes a number followed by optional K or M, result in K.
func ParseSize(value string) (int, error) {
	value = strings.ToUpper(value)
	shift := 0
	switch {
	case strings.HasSuffix(value, "M"):
		shift = 10
		value = value[:len(value)-1]
	case strings.HasSuffix(value, "K"):
		value = value[:len(value)-1]
	}
	size, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.New("invalid size: " + value)
	}
	size <<= shift
	if size == 0 || size > 16*1024 {
		return 0, errors.New("size must be between 1K and 16M")
	}
	return int(size), nil
}

// ParseHex takes a hex number with optional 0x or X prefix.
func ParseHex(value string) (uint32, error) {
	value = strings.TrimPrefix(strings.ToUpper(value), "0X")
	value = strings.TrimPrefix(value, "X")
	num, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, errors.New("invalid hex number: " + value)
	}
	return uint32(num), nil
}

func setMemory(value string, _ []config.Option) error {
	size, err := ParseSize(value)
	if err != nil {
		return err
	}
	Current.MemoryK = size
	return nil
}

func setDictionary(value string, _ []config.Option) error {
	Current.Dictionary = value
	return nil
}

// SetSymbolSize sets the compressed data symbol size, 1 to 5.
func SetSymbolSize(value string) error {
	cdss, err := strconv.ParseUint(value, 10, 8)
	if err != nil || cdss < 1 || cdss > 5 {
		return errors.New("symbol size must be 1 to 5: " + value)
	}
	Current.Params.SymbolSize = uint8(cdss)
	return nil
}

func setSymbolSize(value string, _ []config.Option) error {
	return SetSymbolSize(value)
}

func setFormat1(_ string, _ []config.Option) error {
	Current.Params.Format1 = true
	return nil
}

// SetTranslate enables translation with the table at a byte offset from
// the origin, a multiple of 128.
func SetTranslate(value string) error {
	off, err := ParseHex(value)
	if err != nil {
		return err
	}
	if off&0x7f != 0 || off>>7 > 0x1ff {
		return errors.New("translate offset must be multiple of 80 below 10000: " + value)
	}
	Current.Params.Translate = true
	Current.Params.TransOffset = off >> 7
	return nil
}

func setTranslate(value string, _ []config.Option) error {
	return SetTranslate(value)
}

// SetOrigin sets the dictionary origin, a multiple of 4K.
func SetOrigin(value string) error {
	origin, err := ParseHex(value)
	if err != nil {
		return err
	}
	if origin&0xfff != 0 {
		return errors.New("origin must be on a 4K boundary: " + value)
	}
	Current.Params.Origin = origin
	return nil
}

func setOrigin(value string, _ []config.Option) error {
	return SetOrigin(value)
}

// SetBudget sets the source bytes processed per call.
func SetBudget(value string) error {
	budget, err := strconv.Atoi(value)
	if err != nil || budget < 0 {
		return errors.New("invalid budget: " + value)
	}
	Current.Params.Budget = budget
	return nil
}

func setBudget(value string, _ []config.Option) error {
	return SetBudget(value)
}
