/*
 * CMPSC - Command completion functions.
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
	"slices"
	"strings"
	"unicode"

	command "github.com/rcornwell/cmpsc/command/command"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if !line.isEOL() {
		// See if there is a completer for this command.
		match := matchList(name)
		if len(match) != 1 || match[0].Complete == nil {
			return nil
		}
		return match[0].Complete(&line)
	}

	// Try and match one command.
	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name)
		}
	}
	slices.Sort(matches)
	return matches
}

// Scan a word, letters then digits.
func (line *cmdLine) scanWord(equal bool) string {
	value := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || (equal && by == '=') {
			break
		}
		if !unicode.IsLetter(rune(by)) && !unicode.IsDigit(rune(by)) {
			break
		}
		value += string([]byte{by})
		line.pos++
	}
	return strings.ToLower(value)
}

// Scan a option list element.
func (line *cmdLine) scanList() string {
	return line.scanWord(false)
}

// Skip over an option value, return true if more follows.
func (line *cmdLine) scanValue() bool {
	for !line.isEOL() {
		if unicode.IsSpace(rune(line.line[line.pos])) {
			return true
		}
		line.pos++
	}
	return false
}

// Scan a string for an option.
func scanOpt(name string, opts []command.Options, cmdType int) []command.Options {
	matches := []command.Options{}
	for _, opt := range opts {
		if (opt.OptionValid & cmdType) == 0 {
			continue
		}
		if opt.Name == name {
			return []command.Options{opt}
		}

		if name == "" || strings.HasPrefix(opt.Name, name) {
			matches = append(matches, opt)
		}
	}

	return matches
}

// Scan to find last option and offer the names that can follow.
func (line *cmdLine) scanOptions(opts []command.Options, cmdType int) []string {
	for {
		line.skipSpace()
		leading := line.line[:line.pos]
		name := line.scanWord(true)
		if name == "" && !line.isEOL() {
			return nil
		}

		matchOpts := scanOpt(name, opts, cmdType)
		if len(matchOpts) == 0 {
			return nil
		}

		// Still typing the name.
		if line.isEOL() {
			matches := []string{}
			for _, opt := range matchOpts {
				eq := " "
				if opt.OptionType != command.OptionSwitch && cmdType == command.ValidSet {
					eq = "="
				}
				matches = append(matches, leading+opt.Name+eq)
			}
			return matches
		}

		if len(matchOpts) > 1 || matchOpts[0].Name != name {
			return nil
		}

		if matchOpts[0].OptionType != command.OptionSwitch && cmdType == command.ValidSet {
			if line.line[line.pos] != '=' {
				return nil
			}
			line.pos++
			if !line.scanValue() {
				return nil
			}
		}
	}
}
