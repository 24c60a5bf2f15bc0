// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that diagnostics
// are reported in the appropriate places.
//
// A chunked file consists of several chunks of input text separated by
// "---" lines. Each chunk is an input to the program under test, such
// as a scope trace. Lines containing "###" are interpreted as
// expectations of failure: the following text is a sequence of Go
// string literals, each denoting a regular expression that should
// match one diagnostic reported on that line, in order.
//
// A chunk may also carry options, written "option:NAME" anywhere in
// its text, typically inside a comment.
//
// Example:
//
//	var x
//	var x ### "Name 'x' already defined"
//	---
//	# option:nearest
//	use lem ### "is not defined" "did you mean 'len'"
//
// A client test feeds each chunk of text into the program under test,
// then calls chunk.GotError for each error that actually occurred. Any
// discrepancy between the actual and expected errors is reported using
// the client's reporter, which is typically a testing.T.
package chunkedfile // import "github.com/pyscope/pyscope/internal/chunkedfile"

import (
	"os"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// A Chunk is a portion of a source file.
// It contains a set of expected errors.
type Chunk struct {
	Source   string
	filename string
	report   Reporter
	wantErrs map[int][]*regexp.Regexp
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file:line: ..." are prefixed by a
// newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line.
func Read(filename string, report Reporter) []Chunk {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	return readBytes(filename, data, report, eol)
}

func readBytes(filename string, data []byte, report Reporter, eol string) (chunks []Chunk) {
	linenum := 1
	for _, chunk := range strings.Split(string(data), eol+"---"+eol) {
		// Pad with newlines so the line numbers match the original file.
		src := strings.Repeat("\n", linenum-1) + chunk

		wantErrs := make(map[int][]*regexp.Regexp)
		lines := strings.Split(chunk, "\n")
		for j := 0; j < len(lines); j, linenum = j+1, linenum+1 {
			hashes := strings.Index(lines[j], "###")
			if hashes < 0 {
				continue
			}
			rest := strings.TrimSpace(lines[j][hashes+len("###"):])
			for rest != "" {
				lit, err := strconv.QuotedPrefix(rest)
				if err != nil {
					report.Errorf("\n%s:%d: not a quoted regexp: %s", filename, linenum, rest)
					break
				}
				rest = strings.TrimSpace(rest[len(lit):])
				pattern, _ := strconv.Unquote(lit)
				rx, err := regexp.Compile(pattern)
				if err != nil {
					report.Errorf("\n%s:%d: %v", filename, linenum, err)
					continue
				}
				wantErrs[linenum] = append(wantErrs[linenum], rx)
			}
		}
		linenum++

		chunks = append(chunks, Chunk{src, filename, report, wantErrs})
	}
	return chunks
}

var optionRx = regexp.MustCompile(`option:(\w+)`)

// Options returns the names of the options the chunk sets.
func (chunk *Chunk) Options() map[string]bool {
	opts := make(map[string]bool)
	for _, m := range optionRx.FindAllStringSubmatch(chunk.Source, -1) {
		opts[m[1]] = true
	}
	return opts
}

// GotError should be called by the client to report an error at a
// particular line. Errors on the same line must be reported in the
// order of their expectations. GotError reports unexpected errors to
// the chunk's reporter.
func (chunk *Chunk) GotError(linenum int, msg string) {
	want := chunk.wantErrs[linenum]
	if len(want) == 0 {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
		return
	}
	rx := want[0]
	if len(want) == 1 {
		delete(chunk.wantErrs, linenum)
	} else {
		chunk.wantErrs[linenum] = want[1:]
	}
	if !rx.MatchString(msg) {
		chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, rx)
	}
}

// Done should be called by the client to indicate that the chunk has
// no more errors. Done reports expected errors that did not occur to
// the chunk's reporter.
func (chunk *Chunk) Done() {
	lines := make([]int, 0, len(chunk.wantErrs))
	for linenum := range chunk.wantErrs {
		lines = append(lines, linenum)
	}
	sort.Ints(lines)
	for _, linenum := range lines {
		for _, rx := range chunk.wantErrs[linenum] {
			chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, rx)
		}
	}
}
