// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/pyscope/pyscope/syntax"
)

// A LookupFunc resolves a possibly dotted name to its binding,
// reporting a diagnostic if there is none.
type LookupFunc func(name string, ctx syntax.Context) *syntax.SymbolTableNode

// A ClassScope is the namespace of a class body: the class's member
// table. Its block depth starts at -1 so that the body block itself is
// at depth 0.
type ClassScope struct {
	nonGlobal
	Info *syntax.TypeInfo

	lookupQualified LookupFunc

	// type variables bound by BindTypeVars, with their indices
	tvars   []*syntax.SymbolTableNode
	tvarIDs []int
}

// NewClassScope returns the scope for the body of the class described
// by info, nested in parent. lookup resolves the names of the class's
// type parameters; if nil, LookupQualified from parent is used.
func NewClassScope(parent Scope, info *syntax.TypeInfo, lookup LookupFunc) *ClassScope {
	if info.Names == nil {
		info.Names = syntax.NewSymbolTable()
	}
	if lookup == nil {
		lookup = func(name string, ctx syntax.Context) *syntax.SymbolTableNode {
			return LookupQualified(parent, name, ctx)
		}
	}
	glog.V(2).Infof("Created class scope for %s", info.Fullname)
	c := &ClassScope{
		nonGlobal:       newNonGlobal(parent, info.Names),
		Info:            info,
		lookupQualified: lookup,
	}
	c.depth = -1
	return c
}

func (c *ClassScope) Lookup(name string) *syntax.SymbolTableNode {
	if n := c.names.Lookup(name); n != nil {
		return n
	}
	if n := c.parent.LookupLocal(name); n != nil {
		return n
	}
	return c.GlobalScope().Lookup(name)
}

func (c *ClassScope) LookupTarget(name string) *syntax.SymbolTableNode {
	return c.names.Lookup(name)
}

// LookupLocal skips the class body: its names are not visible
// unqualified in nested functions.
func (c *ClassScope) LookupLocal(name string) *syntax.SymbolTableNode {
	return c.parent.LookupLocal(name)
}

func (c *ClassScope) AddSymbol(name string, n *syntax.SymbolTableNode, ctx syntax.Context) {
	addSymbol(c, c.names, name, n, ctx)
}

func (c *ClassScope) AddVariable(id *syntax.NameExpr, forwardReference bool) {
	defineVariable(c, c.names, id, forwardReference, c.Info)
}

// AddFunction declares a method. Non-static methods must take at least
// one argument; the declared type of that argument is replaced by the
// self type (Any for class methods) unless the method is decorated.
func (c *ClassScope) AddFunction(fn *syntax.FuncDef) {
	fn.Info = c.Info
	if !fn.IsStatic {
		if len(fn.Arguments) == 0 {
			c.failf(kindMalformed, fn.Pos, "Method must have at least one argument")
		} else if fn.Type != nil && !fn.IsDecorated {
			var leading syntax.Type = syntax.SelfType(c.Info)
			if fn.IsClass {
				leading = syntax.AnyType{}
			}
			fn.Type = fn.Type.WithFirstArg(leading)
		}
	}
	addFunction(c, c.names, fn)
}

func (c *ClassScope) Type() *syntax.TypeInfo { return c.Info }

func (c *ClassScope) TypeVarNames() map[string]bool {
	names := make(map[string]bool, len(c.tvars))
	for _, n := range c.tvars {
		if n.Kind == syntax.BoundTypeVar && n.Node != nil {
			names[n.Node.Name()] = true
		}
	}
	return names
}

// BindTypeVars unbinds the type variables bound in the enclosing scope
// and binds the type parameters of this class, numbering them from 1
// in declaration order.
func (c *ClassScope) BindTypeVars(ctx syntax.Context) {
	c.parent.DisableTypeVars()
	c.tvars, c.tvarIDs = nil, nil
	for i, name := range c.Info.TypeVars {
		n := c.lookupQualified(name, ctx)
		if n == nil {
			continue
		}
		if !n.Kind.IsTypeVar() {
			c.failf(kindOther, ctx, "'%s' is not a type variable", name)
			continue
		}
		n.Kind = syntax.BoundTypeVar
		n.TypeVarID = i + 1
		c.tvars = append(c.tvars, n)
		c.tvarIDs = append(c.tvarIDs, i+1)
		TypeVarToggles.WithLabelValues("bind").Inc()
	}
	glog.V(3).Infof("%s: bound type variables [%s]", c.Info.Fullname, strings.Join(c.Info.TypeVars, ", "))
}

// UnbindTypeVars undoes BindTypeVars when leaving the class body.
func (c *ClassScope) UnbindTypeVars() {
	c.DisableTypeVars()
	c.parent.EnableTypeVars()
}

func (c *ClassScope) EnableTypeVars() {
	for i, n := range c.tvars {
		mustBeTypeVar(n)
		n.Kind = syntax.BoundTypeVar
		n.TypeVarID = c.tvarIDs[i]
		TypeVarToggles.WithLabelValues("bind").Inc()
	}
}

func (c *ClassScope) DisableTypeVars() {
	for _, n := range c.tvars {
		mustBeTypeVar(n)
		n.Kind = syntax.UnboundTypeVar
		TypeVarToggles.WithLabelValues("unbind").Inc()
	}
}

// BoundTypeVars returns the type-variable bindings tracked by this class.
func (c *ClassScope) BoundTypeVars() []*syntax.SymbolTableNode { return c.tvars }

func mustBeTypeVar(n *syntax.SymbolTableNode) {
	if !n.Kind.IsTypeVar() {
		panic(fmt.Sprintf("internal error: type variable binding %v has kind %s", n, n.Kind))
	}
}

func (c *ClassScope) bindingKind() syntax.Kind { return syntax.Member }

func (c *ClassScope) qualify(name string) string { return c.Info.Fullname + "." + name }
