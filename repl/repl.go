// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/exec/print loop over a scope trace
// session.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// Each input item is one statement. A line that opens a block (ends
// with ':') or is a decorator is continued until a blank line. After
// executing an item the REPL prints the diagnostics it produced; if
// the item is a single use statement, it also prints the binding each
// simple name resolved to.
package repl // import "github.com/pyscope/pyscope/repl"

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pyscope/pyscope/scopescript"
)

var interrupted = make(chan os.Signal, 1)

// REPL executes a read, exec, print loop in session s.
func REPL(s *scopescript.Session) {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	r := &reader{rl: rl, session: s}
	for {
		if err := r.rep(); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

type reader struct {
	rl      *readline.Instance
	session *scopescript.Session
	lines   int // lines consumed so far, for diagnostic positions
}

// rep reads, executes, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Trace errors are printed.
func (r *reader) rep() error {
	// Each item gets its own context, which is cancelled by a SIGINT.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupted:
			cancel()
		case <-ctx.Done():
		}
	}()

	text, err := r.readItem()
	if err != nil {
		return err
	}
	start := r.lines
	r.lines += strings.Count(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Pad with newlines so that line numbers count from the start of
	// the session.
	stmts, err := scopescript.ParseFile("<stdin>", strings.Repeat("\n", start)+text)
	if err != nil {
		PrintError(err)
		return nil
	}
	for _, e := range r.session.Exec(ctx, stmts) {
		fmt.Fprintf(os.Stderr, "<stdin>:%s\n", e)
	}
	if len(stmts) == 1 {
		if use, ok := stmts[0].(*scopescript.NameStmt); ok && use.Op == "use" {
			for _, name := range use.Names {
				if n := r.session.Scope().Lookup(name); n != nil {
					fmt.Printf("%s: %s\n", name, n)
				}
			}
		}
	}
	return nil
}

// readItem reads one item: a single line, or a block header and the
// lines that follow it up to a blank line.
func (r *reader) readItem() (string, error) {
	r.rl.SetPrompt(">>> ")
	first, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	text := first + "\n"
	trimmed := strings.TrimSpace(first)
	if !strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, "@") {
		return text, nil
	}
	r.rl.SetPrompt("... ")
	for {
		line, err := r.rl.Readline()
		if err == io.EOF {
			return text, nil
		}
		if err != nil {
			return "", err
		}
		text += line + "\n"
		if strings.TrimSpace(line) == "" {
			return text, nil
		}
	}
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
