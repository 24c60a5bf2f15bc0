// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"sort"
	"strings"
)

// A Reporter receives binding diagnostics.
// Report must not panic; every call records one diagnostic.
type Reporter interface {
	Report(line int, msg string)
}

// An Error describes the nature and line of a binding error.
type Error struct {
	Line int
	Msg  string
}

func (e Error) Error() string { return fmt.Sprintf("%d: %s", e.Line, e.Msg) }

// An ErrorList is an append-only list of binding errors.
// *ErrorList is the usual Reporter.
type ErrorList []Error

// Report implements Reporter.
func (l *ErrorList) Report(line int, msg string) {
	*l = append(*l, Error{line, msg})
}

// Err returns l as an error, or nil if l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Sort orders the list by line, keeping the report order of errors
// on the same line.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Line < l[j].Line })
}

// Diagnostic kinds, used to label the diagnostics counter.
const (
	kindRedefinition = "redefinition"
	kindConflict     = "conflicting_declaration"
	kindMalformed    = "malformed_method"
	kindUnresolved   = "unresolved"
	kindOther        = "other"
)
