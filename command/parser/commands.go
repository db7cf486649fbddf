/*
 * CMPSC - Console commands.
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
	"strconv"
	"strings"

	command "github.com/rcornwell/cmpsc/command/command"
	config "github.com/rcornwell/cmpsc/config/cmpscconfig"
)

var cmdList = []cmd{
	{Name: "load", Min: 2, Process: load},
	{Name: "build", Min: 1, Process: build},
	{Name: "compress", Min: 1, Process: compress},
	{Name: "expand", Min: 3, Process: expand},
	{Name: "examine", Min: 3, Process: examine, Complete: examineComplete},
	{Name: "dump", Min: 1, Process: dump},
	{Name: "set", Min: 3, Process: set, Complete: setComplete},
	{Name: "unset", Min: 4, Process: unset, Complete: unsetComplete},
	{Name: "show", Min: 2, Process: show, Complete: showComplete},
	{Name: "quit", Min: 4, Process: quit},
}

// Handle set commands.
func set(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Set")

	optlist, err := line.getOptions(command.Settings, command.ValidSet)
	if err != nil {
		return false, err
	}
	if len(optlist) == 0 {
		return false, errors.New("no options give to set command")
	}

	for _, opt := range optlist {
		relayout := true
		switch opt.Name {
		case "symbolsize":
			err = config.SetSymbolSize(strconv.FormatUint(uint64(opt.Value), 10))
		case "format1":
			config.Current.Params.Format1 = true
		case "translate":
			err = config.SetTranslate(strconv.FormatUint(uint64(opt.Value), 16))
		case "origin":
			err = config.SetOrigin(strconv.FormatUint(uint64(opt.Value), 16))
		case "budget":
			relayout = false
			err = config.SetBudget(strconv.FormatUint(uint64(opt.Value), 10))
		}
		if err != nil {
			return false, err
		}
		if relayout {
			session.Reset()
		}
	}
	return false, nil
}

// Set command completion.
func setComplete(line *cmdLine) []string {
	return line.scanOptions(command.Settings, command.ValidSet)
}

// Handle unset commands.
func unset(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Unset")

	optlist, err := line.getOptions(command.Settings, command.ValidUnset)
	if err != nil {
		return false, err
	}
	if len(optlist) == 0 {
		return false, errors.New("no options give to unset command")
	}

	for _, opt := range optlist {
		switch opt.Name {
		case "format1":
			config.Current.Params.Format1 = false
		case "translate":
			config.Current.Params.Translate = false
			config.Current.Params.TransOffset = 0
		}
	}
	session.Reset()
	return false, nil
}

// Unset command completion.
func unsetComplete(line *cmdLine) []string {
	return line.scanOptions(command.Settings, command.ValidUnset)
}

// Format one setting.
func showOption(session *command.Session, name string) string {
	p := config.Current.Params
	switch name {
	case "symbolsize":
		return fmt.Sprintf("symbolsize=%d", p.SymbolSize)
	case "format1":
		if p.Format1 {
			return "format1"
		}
		return "noformat1"
	case "translate":
		if p.Translate {
			return fmt.Sprintf("translate=%x", p.TransOffset<<7)
		}
		return "notranslate"
	case "origin":
		return fmt.Sprintf("origin=%x", p.Origin)
	case "budget":
		if p.Budget == 0 {
			return "budget=default"
		}
		return fmt.Sprintf("budget=%d", p.Budget)
	case "memory":
		return fmt.Sprintf("memory=%dK", config.Current.MemoryK)
	case "dictionary":
		if session.Dictionary == nil {
			return "dictionary=none"
		}
		name := config.Current.Dictionary
		if name == "" {
			name = "built"
		}
		return fmt.Sprintf("dictionary=%s entries=%d", name, session.Dictionary.Entries)
	}
	return ""
}

// Process the show command.
func show(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Show")

	optlist, err := line.getOptions(command.Settings, command.ValidShow)
	if err != nil {
		return false, err
	}

	names := []string{}
	for _, opt := range optlist {
		names = append(names, opt.Name)
	}
	if len(names) == 0 {
		for _, opt := range command.Settings {
			names = append(names, opt.Name)
		}
	}

	out := []string{}
	for _, name := range names {
		out = append(out, showOption(session, name))
	}
	fmt.Fprintln(session.Out, strings.Join(out, " "))
	return false, nil
}

// Show command completion.
func showComplete(line *cmdLine) []string {
	return line.scanOptions(command.Settings, command.ValidShow)
}

// Handle commands that quit.
func quit(_ *cmdLine, _ *command.Session) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}
