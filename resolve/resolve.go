// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve binds identifier references to the declarations they
// denote, following the scoping rules of a dynamically-typed language
// with module, function and class namespaces.
//
// The analyzer that walks a module's syntax tree pushes one Scope per
// module, function and class body it enters, and calls into the current
// scope for every identifier it meets: Resolve for a read, Assign or
// AddVariable for a binding occurrence, AddFunction for a def, AddSymbol
// for imports and classes. The scope fills in the NameExpr, or reports a
// diagnostic through the Reporter shared by every scope of the walk.
// Diagnostics never stop the walk.
package resolve // import "github.com/pyscope/pyscope/resolve"

// The scope chain is a linked list of scopes, innermost first, whose
// tail is the module's GlobalScope. Three lookup tiers exist:
//
//   - Lookup resolves a read. Function scopes honor their global and
//     nonlocal declarations, then search their own table and the tables
//     of enclosing functions, then the module, then builtins.
//   - LookupLocal searches the "locals" tier only: function tables,
//     innermost first. Class bodies do not contribute to this tier, so a
//     method cannot see the names of its class body unqualified.
//     The module has no locals tier.
//   - LookupTarget finds the binding an assignment would update. It never
//     falls back to builtins.
//
// Only the innermost class whose body is being analyzed has its type
// parameters bound. Entering a class body unbinds the type variables of
// the enclosing class and binds those of the new one; leaving it reverses
// both steps.

import (
	"strings"

	"github.com/golang/glog"
	"github.com/pyscope/pyscope/syntax"
)

// global options
var (
	// SuggestNearest enriches "not defined" diagnostics with the nearest
	// visible name when no obsolete-name entry applies.
	SuggestNearest = true
)

// A Scope is one lexical region of the program: a module, a function
// body or a class body.
//
// The implementations are *GlobalScope, *FunctionScope and *ClassScope.
type Scope interface {
	// Lookup returns the binding a read of name refers to, or nil.
	Lookup(name string) *syntax.SymbolTableNode
	// LookupTarget returns the binding an assignment to name would
	// update, or nil if the assignment would create one.
	LookupTarget(name string) *syntax.SymbolTableNode
	// LookupLocal searches this scope and enclosing function scopes only.
	LookupLocal(name string) *syntax.SymbolTableNode

	// AddSymbol binds name at the top level of this scope.
	AddSymbol(name string, n *syntax.SymbolTableNode, ctx syntax.Context)
	// AddVariable declares, or completes the declaration of, the
	// variable named by id, and fills in id.
	AddVariable(id *syntax.NameExpr, forwardReference bool)
	// AddFunction declares a function or method.
	AddFunction(fn *syntax.FuncDef)

	GlobalScope() *GlobalScope
	Parent() Scope // nil for the global scope
	Names() syntax.SymbolTable

	// Type returns the innermost enclosing class, or nil.
	Type() *syntax.TypeInfo
	// TypeVarNames returns the names of the type variables that are
	// bound in this scope.
	TypeVarNames() map[string]bool
	EnableTypeVars()
	DisableTypeVars()

	BlockDepth() int
	IncreaseBlockDepth()
	DecreaseBlockDepth()

	// Fail reports a diagnostic at the line of ctx.
	Fail(msg string, ctx syntax.Context)

	bindingKind() syntax.Kind
	qualify(name string) string
	failf(kind string, ctx syntax.Context, format string, args ...interface{})
}

var (
	_ Scope = (*GlobalScope)(nil)
	_ Scope = (*FunctionScope)(nil)
	_ Scope = (*ClassScope)(nil)
)

// NewBinding returns a node binding decl in scope s, with the kind a
// definition in s gets (global, local or member).
func NewBinding(s Scope, decl syntax.SymbolNode) *syntax.SymbolTableNode {
	return &syntax.SymbolTableNode{
		Kind:   s.bindingKind(),
		Node:   decl,
		Module: s.GlobalScope().ModuleName(),
	}
}

// QualifiedName returns the full name a definition of name in s gets.
func QualifiedName(s Scope, name string) string { return s.qualify(name) }

// Resolve binds a read occurrence of id in scope s.
// Dotted names are resolved with LookupQualified.
// If no binding exists, a diagnostic is reported and Resolve returns false.
func Resolve(s Scope, id *syntax.NameExpr) bool {
	var n *syntax.SymbolTableNode
	if strings.Contains(id.Name, ".") {
		n = LookupQualified(s, id.Name, id)
	} else if n = s.Lookup(id.Name); n == nil {
		NameNotDefined(s, id.Name, id)
	}
	result := "found"
	if n == nil {
		result = "missing"
	}
	Lookups.WithLabelValues(scopeLabel(s), result).Inc()
	if n == nil {
		return false
	}
	id.Bind(n, false)
	glog.V(3).Infof("resolved %s at line %s to %s", id.Name, id.NamePos, n)
	return true
}

// Assign binds an assignment target id in scope s.
//
// If the target already exists the occurrence is a plain rebinding;
// otherwise, or if the existing variable was only forward-declared, the
// occurrence defines the variable.
func Assign(s Scope, id *syntax.NameExpr) {
	n := s.LookupTarget(id.Name)
	if n == nil {
		s.AddVariable(id, false)
		return
	}
	if v, ok := n.Node.(*syntax.Var); ok && !v.IsReady {
		s.AddVariable(id, false)
		return
	}
	id.Bind(n, false)
}

// LookupQualified resolves a possibly dotted name such as "typing.List"
// starting from scope s and descending through module and class member
// tables. It reports a diagnostic and returns nil if any component is
// missing.
func LookupQualified(s Scope, name string, ctx syntax.Context) *syntax.SymbolTableNode {
	parts := strings.Split(name, ".")
	n := s.Lookup(parts[0])
	if n == nil {
		NameNotDefined(s, parts[0], ctx)
		return nil
	}
	for i, part := range parts[1:] {
		var members syntax.SymbolTable
		switch decl := n.Node.(type) {
		case *syntax.Module:
			members = decl.Names
		case *syntax.TypeInfo:
			members = decl.Names
		}
		next := members.Lookup(part)
		if next == nil {
			fullname := name
			if n.Node != nil {
				fullname = n.Node.FullName() + "." + strings.Join(parts[i+1:], ".")
			}
			notDefined(s, name, fullname, ctx)
			return nil
		}
		n = next
	}
	return n
}

// defineVariable implements the variable-definition state machine
// shared by all scopes: absent, forward-declared, complete.
func defineVariable(s Scope, table syntax.SymbolTable, id *syntax.NameExpr, forwardReference bool, info *syntax.TypeInfo) {
	existing := table.Lookup(id.Name)
	if existing == nil {
		v := &syntax.Var{
			VarName:  id.Name,
			Fullname: s.qualify(id.Name),
			IsReady:  !forwardReference,
		}
		if info != nil {
			v.Info = info
			v.IsInitializedInClass = !forwardReference
		}
		n := NewBinding(s, v)
		table.Insert(id.Name, n)
		id.Bind(n, true)
		return
	}
	if v, ok := existing.Node.(*syntax.Var); ok && !v.IsReady && !forwardReference {
		v.IsReady = true
		if v.Info != nil {
			v.IsInitializedInClass = true
		}
		id.Bind(existing, true)
		return
	}
	s.failf(kindRedefinition, id, "Name '%s' already defined", id.Name)
	id.Bind(existing, false)
}

// addSymbol binds name in table, reporting a collision with a distinct
// binding. Importing the same module twice under one name is allowed.
func addSymbol(s Scope, table syntax.SymbolTable, name string, n *syntax.SymbolTableNode, ctx syntax.Context) {
	if existing := table.Lookup(name); existing != nil && existing != n {
		if _, isModule := n.Node.(*syntax.Module); !isModule || existing.Node != n.Node {
			s.failf(kindRedefinition, ctx, "Name '%s' already defined", name)
		}
	}
	table.Insert(name, n)
}

// addFunction binds fn in table, allowing a conditional definition to
// replace an earlier conditional definition of the same name.
func addFunction(s Scope, table syntax.SymbolTable, fn *syntax.FuncDef) {
	if s.BlockDepth() > 0 {
		fn.IsConditional = true
	}
	fn.Fullname = s.qualify(fn.FuncName)
	if !fn.IsDecorated && !fn.IsOverload {
		if existing := table.Lookup(fn.FuncName); existing != nil {
			prev, isFunc := existing.Node.(*syntax.FuncDef)
			switch {
			case isFunc && prev.IsConditional && fn.IsConditional:
				fn.OriginalDef = prev
			case isFunc:
				s.failf(kindRedefinition, fn.Pos, "Name '%s' already defined (overload variants must be contiguous)", fn.FuncName)
			default:
				s.failf(kindRedefinition, fn.Pos, "Name '%s' already defined", fn.FuncName)
			}
		}
	}
	table.Insert(fn.FuncName, NewBinding(s, fn))
}
