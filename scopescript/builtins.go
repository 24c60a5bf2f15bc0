// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scopescript

import "github.com/pyscope/pyscope/syntax"

// NewBuiltins returns a fresh builtins module.
//
// Besides the public classes, functions and variables, it binds the
// private helper _sentinel and the alias List, whose target is the
// class list. Neither is visible as a builtin.
func NewBuiltins() *syntax.Module {
	m := syntax.NewModule("builtins")
	for _, name := range []string{
		"object", "type", "int", "float", "bool", "str", "bytes",
		"list", "dict", "tuple", "set",
		"staticmethod", "classmethod", "property",
	} {
		defineClass(m, name)
	}
	for _, name := range []string{"len", "print", "isinstance", "range", "id", "repr", "__import__"} {
		defineFunc(m, name)
	}
	for _, name := range []string{"__name__", "__doc__", "__debug__", "_sentinel"} {
		defineVar(m, name)
	}
	m.Names.Insert("List", m.Names.Lookup("list"))
	return m
}

// NewTyping returns a fresh typing module.
func NewTyping() *syntax.Module {
	m := syntax.NewModule("typing")
	for _, name := range []string{"Generic", "Callable", "Any", "List", "Dict"} {
		defineClass(m, name)
	}
	for _, name := range []string{"TypeVar", "cast", "overload"} {
		defineFunc(m, name)
	}
	return m
}

func define(m *syntax.Module, name string, decl syntax.SymbolNode) {
	m.Names.Insert(name, &syntax.SymbolTableNode{Kind: syntax.Global, Node: decl, Module: m.Fullname})
}

func defineClass(m *syntax.Module, name string) {
	define(m, name, syntax.NewTypeInfo(name, m.Fullname+"."+name))
}

func defineFunc(m *syntax.Module, name string) {
	define(m, name, &syntax.FuncDef{FuncName: name, Fullname: m.Fullname + "." + name})
}

func defineVar(m *syntax.Module, name string) {
	define(m, name, &syntax.Var{VarName: name, Fullname: m.Fullname + "." + name, IsReady: true})
}
