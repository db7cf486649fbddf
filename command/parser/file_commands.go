/*
 * CMPSC - Dictionary and data file commands.
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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	command "github.com/rcornwell/cmpsc/command/command"
	config "github.com/rcornwell/cmpsc/config/cmpscconfig"
	"github.com/rcornwell/cmpsc/util/dictbuild"
	"github.com/rcornwell/cmpsc/util/input"
)

// Count bytes passing through.
type counter struct {
	r io.Reader
	w io.Writer
	n int64
}

func (c *counter) Read(buf []byte) (int, error) {
	n, err := c.r.Read(buf)
	c.n += int64(n)
	return n, err
}

func (c *counter) Write(buf []byte) (int, error) {
	n, err := c.w.Write(buf)
	c.n += int64(n)
	return n, err
}

// Get input and output file names.
func (line *cmdLine) getInOut() (string, string, error) {
	in, err := line.getFile()
	if err != nil {
		return "", "", err
	}
	out, err := line.getFile()
	if err != nil {
		return "", "", err
	}
	return in, out, nil
}

// Load a dictionary file into storage.
func load(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Load")
	name, err := line.getFile()
	if err != nil {
		return false, err
	}
	data, err := input.ReadFile(name)
	if err != nil {
		return false, err
	}
	dict, err := dictbuild.Load(data, config.Current.Params.Format1)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	if err := session.Install(dict); err != nil {
		return false, err
	}
	config.Current.Dictionary = name
	return false, nil
}

// Build a dictionary from training data, optionally saving it.
func build(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Build")
	name, err := line.getFile()
	if err != nil {
		return false, err
	}
	save := ""
	line.skipSpace()
	if !line.isEOL() {
		if save, err = line.getFile(); err != nil {
			return false, err
		}
	}

	rd, err := input.Open(name)
	if err != nil {
		return false, err
	}
	defer rd.Close()
	p := config.Current.Params
	dict, err := dictbuild.Build(rd, dictbuild.Options{SymbolSize: p.SymbolSize, Format1: p.Format1})
	if err != nil {
		return false, err
	}

	if save != "" {
		file, err := os.Create(save)
		if err != nil {
			return false, err
		}
		_, err = dict.WriteTo(file)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return false, err
		}
	}

	if err := session.Install(dict); err != nil {
		return false, err
	}
	config.Current.Dictionary = save
	fmt.Fprintf(session.Out, "%d entries, symbol size %d\n", dict.Entries, dict.SymbolSize)
	return false, nil
}

// Run compression or expansion from file in to file out.
func transfer(session *command.Session, in, out string, expand bool) error {
	c, err := session.Loaded()
	if err != nil {
		return err
	}
	rd, err := input.Open(in)
	if err != nil {
		return err
	}
	defer rd.Close()
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	src := &counter{r: rd}
	dst := &counter{w: file}

	var bits uint8
	if expand {
		err = c.Expand(context.Background(), src, dst)
	} else {
		bits, err = c.Compress(context.Background(), src, dst)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(session.Out, "%d bytes in, %d bytes out", src.n, dst.n)
	if bits != 0 {
		fmt.Fprintf(session.Out, ", %d bits in last byte", bits)
	}
	fmt.Fprintf(session.Out, ", %d resumes\n", c.Resumes)
	return nil
}

// Compress a file.
func compress(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Compress")
	in, out, err := line.getInOut()
	if err != nil {
		return false, err
	}
	return false, transfer(session, in, out, false)
}

// Expand a file.
func expand(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Expand")
	in, out, err := line.getInOut()
	if err != nil {
		return false, err
	}
	return false, transfer(session, in, out, true)
}
