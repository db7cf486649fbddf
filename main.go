/*
 * CMPSC - Main program.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	command "github.com/rcornwell/cmpsc/command/command"
	parser "github.com/rcornwell/cmpsc/command/parser"
	reader "github.com/rcornwell/cmpsc/command/reader"
	settings "github.com/rcornwell/cmpsc/config/cmpscconfig"
	config "github.com/rcornwell/cmpsc/config/configparser"
	"github.com/rcornwell/cmpsc/emu/dat"
	"github.com/rcornwell/cmpsc/emu/memory"
	logger "github.com/rcornwell/cmpsc/util/logger"

	_ "github.com/rcornwell/cmpsc/config/debugconfig"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optDict := getopt.StringLong("dictionary", 'D', "", "Dictionary file to load")
	optSymbol := getopt.StringLong("symbolsize", 's', "", "Compressed data symbol size 1-5")
	optFormat1 := getopt.BoolLong("format1", 'f', "Format-1 sibling descriptors")
	optCompress := getopt.StringLong("compress", 'z', "", "Compress file")
	optExpand := getopt.StringLong("expand", 'x', "", "Expand file")
	optBuild := getopt.StringLong("build", 'b', "", "Build dictionary from training file")
	optOutput := getopt.StringLong("output", 'o', "", "Output file for compress, expand or build")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logOut io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer file.Close()
		logOut = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(logOut, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	if *optConfig != "" {
		if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
			Logger.Error("Configuration file " + *optConfig + " can't be found")
			os.Exit(1)
		}
		if err := config.LoadConfigFile(*optConfig); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	// Command line overrides configuration file.
	if *optSymbol != "" {
		if err := settings.SetSymbolSize(*optSymbol); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if *optFormat1 {
		settings.Current.Params.Format1 = true
	}
	if *optDict != "" {
		settings.Current.Dictionary = *optDict
	}

	memory.SetSize(settings.Current.MemoryK)
	session := command.New(dat.New(false), os.Stdout)

	var commands []string
	if settings.Current.Dictionary != "" && *optBuild == "" {
		commands = append(commands, "load "+parser.Quote(settings.Current.Dictionary))
	}

	oneShot := false
	for _, op := range []struct {
		name string
		file string
	}{{"build", *optBuild}, {"compress", *optCompress}, {"expand", *optExpand}} {
		if op.file == "" {
			continue
		}
		if oneShot {
			Logger.Error("Only one of build, compress or expand can be given")
			os.Exit(1)
		}
		oneShot = true
		line := op.name + " " + parser.Quote(op.file)
		if *optOutput != "" {
			line += " " + parser.Quote(*optOutput)
		} else if op.name != "build" {
			Logger.Error(op.name + " needs an output file")
			os.Exit(1)
		}
		commands = append(commands, line)
	}

	for _, line := range commands {
		if _, err := parser.ProcessCommand(line, session); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if oneShot {
		return
	}

	Logger.Info("CMPSC console started")
	reader.ConsoleReader(session)
	Logger.Info("CMPSC console stopped")
}
