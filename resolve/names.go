// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pyscope/pyscope/internal/spell"
	"github.com/pyscope/pyscope/syntax"
)

// ObsoleteNames maps the full names of renamed or removed identifiers to
// their current spelling. It is consulted only to enrich "not defined"
// diagnostics, never to resolve a name.
var ObsoleteNames = map[string]string{
	"typing.Function": "typing.Callable",
	"typing.typevar":  "typing.TypeVar",
}

// NameNotDefined reports that name has no binding visible from s.
func NameNotDefined(s Scope, name string, ctx syntax.Context) {
	notDefined(s, name, name, ctx)
}

// notDefined reports that name is not defined. fullname is the name
// with its leading module resolved, used to match ObsoleteNames.
func notDefined(s Scope, name, fullname string, ctx syntax.Context) {
	msg := fmt.Sprintf("Name '%s' is not defined", name)
	if extra := renameHint(fullname); extra != "" {
		msg += " " + extra
	} else if SuggestNearest && !strings.Contains(name, ".") {
		if n := spell.Nearest(name, visibleNames(s)); n != "" {
			msg += fmt.Sprintf(" (did you mean '%s'?)", n)
		}
	}
	s.failf(kindUnresolved, ctx, "%s", msg)
}

// renameHint returns the rename suggestion for fullname, if any.
// An exact match names the new spelling; otherwise a table entry whose
// last components equal fullname is offered as a guess.
func renameHint(fullname string) string {
	if current, ok := ObsoleteNames[fullname]; ok {
		return fmt.Sprintf("(it's now called '%s')", current)
	}
	obsolete := make([]string, 0, len(ObsoleteNames))
	for old := range ObsoleteNames {
		obsolete = append(obsolete, old)
	}
	sort.Strings(obsolete)
	for _, old := range obsolete {
		if strings.HasSuffix(old, "."+fullname) {
			return fmt.Sprintf("(did you mean '%s'?)", ObsoleteNames[old])
		}
	}
	return ""
}

// visibleNames returns the names a read in s could resolve to, in
// sorted order.
func visibleNames(s Scope) []string {
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.Parent() {
		if _, isClass := sc.(*ClassScope); isClass && sc != s {
			continue // class bodies are invisible from nested scopes
		}
		for name := range sc.Names() {
			seen[name] = true
		}
	}
	if b := s.GlobalScope().builtins(); b != nil {
		for name, n := range b.Names {
			if visibleBuiltin(name, n) {
				seen[name] = true
			}
		}
	}
	delete(seen, syntax.BuiltinsKey)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
