// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"github.com/golang/glog"
	"github.com/pyscope/pyscope/syntax"
)

// A GlobalScope is the namespace of a module.
// Names not bound by the module fall back to the builtins module bound
// under "__builtins__" in the module's table.
type GlobalScope struct {
	sink
	mod   *syntax.Module
	names syntax.SymbolTable
	depth int
}

// NewGlobalScope returns the scope for the top level of module.
// The module's table should already bind "__builtins__".
func NewGlobalScope(module *syntax.Module, errors Reporter) *GlobalScope {
	if module.Names == nil {
		module.Names = syntax.NewSymbolTable()
	}
	glog.V(2).Infof("Created global scope for module %s", module.Fullname)
	return &GlobalScope{
		sink:   sink{errors: errors, module: module.Fullname},
		mod:    module,
		names:  module.Names,
	}
}

// Module returns the module this scope belongs to.
func (g *GlobalScope) Module() *syntax.Module { return g.mod }

func (g *GlobalScope) Lookup(name string) *syntax.SymbolTableNode {
	if n := g.names.Lookup(name); n != nil {
		return n
	}
	return g.lookupBuiltin(name)
}

// lookupBuiltin returns the builtins binding of name, unless name is
// private or the binding is an alias whose target is spelled
// differently (such as List for list, which must be imported from the
// typing module).
func (g *GlobalScope) lookupBuiltin(name string) *syntax.SymbolTableNode {
	builtins := g.builtins()
	if builtins == nil {
		return nil
	}
	n := builtins.Names.Lookup(name)
	if n == nil || !visibleBuiltin(name, n) {
		return nil
	}
	return n
}

func (g *GlobalScope) builtins() *syntax.Module {
	if n := g.names.Lookup(syntax.BuiltinsKey); n != nil {
		if m, ok := n.Node.(*syntax.Module); ok {
			return m
		}
	}
	return nil
}

func visibleBuiltin(name string, n *syntax.SymbolTableNode) bool {
	if isPrivate(name) {
		return false
	}
	return n.Node == nil || n.Node.Name() == name
}

// isPrivate reports whether name has a single leading underscore.
// Dunder names such as __import__ are public.
func isPrivate(name string) bool {
	return len(name) > 0 && name[0] == '_' && (len(name) == 1 || name[1] != '_')
}

func (g *GlobalScope) LookupTarget(name string) *syntax.SymbolTableNode {
	return g.names.Lookup(name)
}

// LookupLocal always returns nil: the module has no locals tier.
func (g *GlobalScope) LookupLocal(name string) *syntax.SymbolTableNode { return nil }

func (g *GlobalScope) AddSymbol(name string, n *syntax.SymbolTableNode, ctx syntax.Context) {
	addSymbol(g, g.names, name, n, ctx)
}

func (g *GlobalScope) AddVariable(id *syntax.NameExpr, forwardReference bool) {
	defineVariable(g, g.names, id, forwardReference, nil)
}

func (g *GlobalScope) AddFunction(fn *syntax.FuncDef) { addFunction(g, g.names, fn) }

func (g *GlobalScope) GlobalScope() *GlobalScope     { return g }
func (g *GlobalScope) Parent() Scope                 { return nil }
func (g *GlobalScope) Names() syntax.SymbolTable     { return g.names }
func (g *GlobalScope) Type() *syntax.TypeInfo        { return nil }
func (g *GlobalScope) TypeVarNames() map[string]bool { return map[string]bool{} }
func (g *GlobalScope) EnableTypeVars()               {}
func (g *GlobalScope) DisableTypeVars()              {}
func (g *GlobalScope) BlockDepth() int               { return g.depth }
func (g *GlobalScope) IncreaseBlockDepth()           { g.depth++ }
func (g *GlobalScope) DecreaseBlockDepth()           { g.depth-- }
func (g *GlobalScope) bindingKind() syntax.Kind      { return syntax.Global }

func (g *GlobalScope) qualify(name string) string {
	if g.sink.module == "" {
		return name
	}
	return g.sink.module + "." + name
}
