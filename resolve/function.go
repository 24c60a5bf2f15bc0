// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"github.com/golang/glog"
	"github.com/pyscope/pyscope/syntax"
)

// nonGlobal holds the state common to function and class scopes.
type nonGlobal struct {
	sink
	parent Scope
	names  syntax.SymbolTable
	depth  int
}

func newNonGlobal(parent Scope, names syntax.SymbolTable) nonGlobal {
	g := parent.GlobalScope()
	if names == nil {
		names = syntax.NewSymbolTable()
	}
	return nonGlobal{
		sink:   sink{errors: g.errors, module: g.sink.module},
		parent: parent,
		names:  names,
	}
}

func (s *nonGlobal) GlobalScope() *GlobalScope { return s.parent.GlobalScope() }
func (s *nonGlobal) Parent() Scope             { return s.parent }
func (s *nonGlobal) Names() syntax.SymbolTable { return s.names }
func (s *nonGlobal) BlockDepth() int           { return s.depth }
func (s *nonGlobal) IncreaseBlockDepth()       { s.depth++ }
func (s *nonGlobal) DecreaseBlockDepth()       { s.depth-- }

// A FunctionScope is the local namespace of a function body.
// Its block depth counts from the function's own entry.
type FunctionScope struct {
	nonGlobal
	Func *syntax.FuncDef // nil for anonymous functions

	nonlocalDecls map[string]bool
	globalDecls   map[string]bool
}

// NewFunctionScope returns the scope for the body of fn, nested in parent.
func NewFunctionScope(parent Scope, fn *syntax.FuncDef) *FunctionScope {
	if fn != nil {
		glog.V(2).Infof("Created function scope for %s", fn.Fullname)
	}
	return &FunctionScope{
		nonGlobal:     newNonGlobal(parent, nil),
		Func:          fn,
		nonlocalDecls: make(map[string]bool),
		globalDecls:   make(map[string]bool),
	}
}

// IsGlobal reports whether name was declared global in this function.
func (f *FunctionScope) IsGlobal(name string) bool { return f.globalDecls[name] }

// IsNonlocal reports whether name was declared nonlocal in this function.
func (f *FunctionScope) IsNonlocal(name string) bool { return f.nonlocalDecls[name] }

// AddGlobalDecl records a global declaration of name.
// Declaring a name both global and nonlocal is reported; the
// declaration is recorded regardless.
func (f *FunctionScope) AddGlobalDecl(name string, ctx syntax.Context) {
	if f.names.Contains(name) {
		f.failf(kindOther, ctx, "Name '%s' is already defined in local scope before global declaration", name)
	}
	if f.nonlocalDecls[name] {
		f.failf(kindConflict, ctx, "Name '%s' is nonlocal and global", name)
	}
	f.globalDecls[name] = true
}

// AddNonlocalDecl records a nonlocal declaration of name.
// The name must be bound by an enclosing function.
func (f *FunctionScope) AddNonlocalDecl(name string, ctx syntax.Context) {
	if f.parent.LookupLocal(name) == nil {
		f.failf(kindOther, ctx, "No binding for nonlocal '%s' found", name)
	}
	if f.names.Contains(name) {
		f.failf(kindOther, ctx, "Name '%s' is already defined in local scope before nonlocal declaration", name)
	}
	if f.globalDecls[name] {
		f.failf(kindConflict, ctx, "Name '%s' is nonlocal and global", name)
	}
	f.nonlocalDecls[name] = true
}

func (f *FunctionScope) Lookup(name string) *syntax.SymbolTableNode {
	if f.globalDecls[name] {
		return f.GlobalScope().Lookup(name)
	}
	if f.nonlocalDecls[name] {
		return f.parent.LookupLocal(name)
	}
	if n := f.names.Lookup(name); n != nil {
		return n
	}
	if n := f.parent.LookupLocal(name); n != nil {
		return n
	}
	return f.GlobalScope().Lookup(name)
}

func (f *FunctionScope) LookupTarget(name string) *syntax.SymbolTableNode {
	if f.globalDecls[name] {
		return f.GlobalScope().LookupTarget(name)
	}
	if f.nonlocalDecls[name] {
		return f.parent.LookupLocal(name)
	}
	return f.names.Lookup(name)
}

func (f *FunctionScope) LookupLocal(name string) *syntax.SymbolTableNode {
	if f.globalDecls[name] {
		return nil
	}
	if f.nonlocalDecls[name] {
		return f.parent.LookupLocal(name)
	}
	if n := f.names.Lookup(name); n != nil {
		return n
	}
	return f.parent.LookupLocal(name)
}

func (f *FunctionScope) AddSymbol(name string, n *syntax.SymbolTableNode, ctx syntax.Context) {
	if f.globalDecls[name] {
		f.GlobalScope().AddSymbol(name, n, ctx)
		return
	}
	addSymbol(f, f.names, name, n, ctx)
}

func (f *FunctionScope) AddVariable(id *syntax.NameExpr, forwardReference bool) {
	switch {
	case f.globalDecls[id.Name]:
		f.GlobalScope().AddVariable(id, forwardReference)
	case f.nonlocalDecls[id.Name]:
		// A missing binding was reported at the declaration.
		if n := f.parent.LookupLocal(id.Name); n != nil {
			id.Bind(n, false)
		}
	default:
		defineVariable(f, f.names, id, forwardReference, nil)
	}
}

func (f *FunctionScope) AddFunction(fn *syntax.FuncDef) {
	if f.globalDecls[fn.FuncName] {
		f.GlobalScope().AddFunction(fn)
		return
	}
	addFunction(f, f.names, fn)
}

// Type returns the class enclosing the function, if any.
func (f *FunctionScope) Type() *syntax.TypeInfo { return f.parent.Type() }

// A function has no type parameters of its own here; the type variables
// visible in it are those of the enclosing class.

func (f *FunctionScope) TypeVarNames() map[string]bool { return f.parent.TypeVarNames() }
func (f *FunctionScope) EnableTypeVars()               { f.parent.EnableTypeVars() }
func (f *FunctionScope) DisableTypeVars()              { f.parent.DisableTypeVars() }

func (f *FunctionScope) bindingKind() syntax.Kind   { return syntax.Local }
func (f *FunctionScope) qualify(name string) string { return name }
