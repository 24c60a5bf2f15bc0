// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scopescript drives the name resolver from a scope trace: a
// small indentation-structured language in which each line is one
// binding event of a module under analysis (a definition, a read, an
// assignment, a global or nonlocal declaration, a def or class header).
//
// A Session plays the part of a semantic-analysis pass: it pushes and
// pops scopes as it enters and leaves function and class bodies and
// blocks, and calls into the current scope for every name.
//
//	typevar T
//	class Box[T]:
//	    def get(self) -> T:
//	        use self
//	if cond:
//	    def f():
//	        pass
//	else:
//	    def f():
//	        pass
//	use f, len
//
// See ParseFile for the complete grammar.
package scopescript // import "github.com/pyscope/pyscope/scopescript"

import "github.com/pyscope/pyscope/syntax"

// A Stmt is one statement of a trace.
type Stmt interface {
	syntax.Context
	stmt()
}

func (*NameStmt) stmt()   {}
func (*ImportStmt) stmt() {}
func (*FromStmt) stmt()   {}
func (*DefStmt) stmt()    {}
func (*ClassStmt) stmt()  {}
func (*BlockStmt) stmt()  {}

// A NameStmt applies one operation to a list of names:
//
//	var x | forward x | typevar T
//	assign x, y | use x, a.b | return x
//	global x, y | nonlocal x
//	pass
type NameStmt struct {
	Line  int
	Op    string
	Names []string
}

// An ImportStmt imports a module: import a.b [as c].
type ImportStmt struct {
	Line   int
	Module string
	As     string // optional
}

// A FromStmt binds members of a module: from a.b import x, y.
type FromStmt struct {
	Line   int
	Module string
	Names  []string
}

// A Decorator is an @name line preceding a def or class.
type Decorator struct {
	Line int
	Name string
}

// A Param is a parameter of a def, with its optional annotation.
type Param struct {
	Name       string
	Annotation string
}

// A DefStmt is a function definition: def f(x, y: T) -> R:
type DefStmt struct {
	Line       int
	Decorators []Decorator
	Name       string
	Params     []Param
	Result     string // optional
	Body       []Stmt
}

// A ClassStmt is a class definition: class C[T, U](Base):
type ClassStmt struct {
	Line       int
	Decorators []Decorator
	Name       string
	TypeVars   []string
	Bases      []string
	Body       []Stmt
}

// A BlockStmt is a compound statement that opens a nested block:
//
//	if|elif|while|with [x, y]:
//	else: | try: | finally: | except [E]:
//	for x, y in xs, ys:
type BlockStmt struct {
	Line    int
	Keyword string
	Targets []string // for loops only
	Reads   []string
	Body    []Stmt
}

func (x *NameStmt) Pos() syntax.Position   { return syntax.At(x.Line) }
func (x *ImportStmt) Pos() syntax.Position { return syntax.At(x.Line) }
func (x *FromStmt) Pos() syntax.Position   { return syntax.At(x.Line) }
func (x *DefStmt) Pos() syntax.Position    { return syntax.At(x.Line) }
func (x *ClassStmt) Pos() syntax.Position  { return syntax.At(x.Line) }
func (x *BlockStmt) Pos() syntax.Position  { return syntax.At(x.Line) }
