/*
 * CMPSC - Configuration file parser tests
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

package configparser

import (
	"strings"
	"testing"
)

var testOptions []Option
var testValue string
var testType string

func resetTest() {
	testOptions = []Option{}
	testValue = "error"
	testType = ""
}

func cleanUpConfig() {
	models = map[string]modelDef{}
	resetTest()
}

// Create a switch.
func modSwitch(value string, options []Option) error {
	testValue = value
	testType = "switch"
	testOptions = options
	return nil
}

// Create a Option type.
func modOption(value string, options []Option) error {
	testValue = value
	testType = "option"
	testOptions = options
	return nil
}

// Create a Options type.
func modOptions(value string, options []Option) error {
	testValue = value
	testType = "options"
	testOptions = options
	return nil
}

// Test register a switch
func TestRegisterSwitch(t *testing.T) {
	cleanUpConfig()

	RegisterSwitch("testswitch", modSwitch)
	err := create("test", TypeSwitch, "", nil)
	if err == nil {
		t.Errorf("Create non existent switch succeeded")
	}
	err = create("testswitch", TypeSwitch, "", nil)
	if err != nil {
		t.Errorf("Unable to create switch")
	}
	if testType != "switch" || testValue != "" {
		t.Errorf("Switch value not valid: %s %s", testType, testValue)
	}
	err = create("testswitch", TypeOption, "x", nil)
	if err == nil {
		t.Errorf("Create switch as option succeeded")
	}
}

// Test register an option.
func TestRegisterOption(t *testing.T) {
	cleanUpConfig()

	RegisterOption("testoption", modOption)
	err := create("test", TypeOption, "test", nil)
	if err == nil {
		t.Errorf("Create non existent option succeeded")
	}
	err = create("TestOption", TypeOption, "test", nil)
	if err != nil {
		t.Errorf("Unable to create option: %v", err)
	}
	if testValue != "test" {
		t.Errorf("Option value not valid: %s", testValue)
	}
}

func TestLoadConfig(t *testing.T) {
	cleanUpConfig()
	RegisterOption("memory", modOption)
	RegisterOptions("debug", modOptions)
	RegisterSwitch("format1", modSwitch)

	tests := []struct {
		line    string
		ty      string
		value   string
		options []string
		err     bool
	}{
		{"memory 1M\n", "option", "1M", nil, false},
		{"  MEMORY   64K   # comment\n", "option", "64K", nil, false},
		{"memory \"my file.dict\"\n", "option", "my file.dict", nil, false},
		{"memory \"say \"\"hi\"\"\"\n", "option", "say \"hi\"", nil, false},
		{"memory \"open\n", "", "", nil, true},
		{"memory\n", "", "", nil, true},
		{"memory 1M 2M\n", "", "", nil, true},
		{"format1\n", "switch", "", nil, false},
		{"format1 yes\n", "", "", nil, true},
		{"debug cmpsc cce,ece index\n", "options", "cmpsc", []string{"cce:ece", "index"}, false},
		{"debug cmpsc file=\"a b\" level=3\n", "options", "cmpsc", []string{"file=a b", "level=3"}, false},
		{"debug\n", "", "", nil, true},
		{"unknown 1\n", "", "", nil, true},
		{"# only a comment\n", "", "error", nil, false},
		{"\n", "", "error", nil, false},
	}

	for _, test := range tests {
		resetTest()
		err := LoadConfig(strings.NewReader(test.line))
		if test.err {
			if err == nil {
				t.Errorf("Line %q did not fail", test.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("Line %q failed: %v", test.line, err)
			continue
		}
		if testType != test.ty {
			t.Errorf("Line %q type got: %s expected: %s", test.line, testType, test.ty)
		}
		if testValue != test.value {
			t.Errorf("Line %q value got: %q expected: %q", test.line, testValue, test.value)
		}
		if len(testOptions) != len(test.options) {
			t.Errorf("Line %q options got: %d expected: %d", test.line, len(testOptions), len(test.options))
			continue
		}
		for i, opt := range testOptions {
			s := opt.Name
			if opt.EqualOpt != "" {
				s += "=" + opt.EqualOpt
			}
			for _, v := range opt.Value {
				s += ":" + *v
			}
			if s != test.options[i] {
				t.Errorf("Line %q option %d got: %q expected: %q", test.line, i, s, test.options[i])
			}
		}
	}
}

func TestLoadConfigLineNumber(t *testing.T) {
	cleanUpConfig()
	RegisterOption("memory", modOption)
	err := LoadConfig(strings.NewReader("memory 1M\n\nbogus\n"))
	if err == nil {
		t.Fatal("Bad line not reported")
	}
	if !strings.Contains(err.Error(), "line: 3") {
		t.Errorf("Error does not name line 3: %v", err)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if err := LoadConfigFile("/nonexistent/cmpsc.cfg"); err == nil {
		t.Error("Missing configuration file not reported")
	}
}
