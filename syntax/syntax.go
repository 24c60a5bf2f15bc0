// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax defines the declarations and identifier references
// that the name resolver binds together.
//
// The parser that builds these nodes lives outside this module; the
// types here carry only the fields the resolver reads or fills in.
package syntax // import "github.com/pyscope/pyscope/syntax"

import "fmt"

// A Position describes a location in a source file.
// Line numbers are 1-based; a zero Line means "unknown".
type Position struct {
	Line int32
	Col  int32
}

// At returns the position of the start of the given line.
func At(line int) Position { return Position{Line: int32(line)} }

// IsValid reports whether the position is known.
func (p Position) IsValid() bool { return p.Line > 0 }

// Pos implements Context, so a bare Position may be used wherever
// a diagnostic needs a location.
func (p Position) Pos() Position { return p }

func (p Position) String() string {
	if p.Col > 0 {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprint(p.Line)
}

// A Context is anything a diagnostic can be attached to.
type Context interface {
	Pos() Position
}

// LineOf returns the line of ctx, or 0 if ctx is nil.
func LineOf(ctx Context) int {
	if ctx == nil {
		return 0
	}
	return int(ctx.Pos().Line)
}

// A SymbolNode is a declaration that a name may be bound to:
// *Var, *FuncDef, *TypeInfo, *Module, or *TypeVarExpr.
type SymbolNode interface {
	Name() string
	FullName() string
	symbolNode()
}

func (*Var) symbolNode()         {}
func (*FuncDef) symbolNode()     {}
func (*TypeInfo) symbolNode()    {}
func (*Module) symbolNode()      {}
func (*TypeVarExpr) symbolNode() {}

// A Var is a variable declaration: a module global, a function local
// or parameter, or a class attribute.
type Var struct {
	VarName  string
	Fullname string

	// IsReady is false while the variable is only forward-declared.
	IsReady bool

	// Class members only.
	Info                 *TypeInfo
	IsInitializedInClass bool
}

func (v *Var) Name() string     { return v.VarName }
func (v *Var) FullName() string { return v.Fullname }

// A FuncDef is a function or method declaration.
type FuncDef struct {
	FuncName  string
	Fullname  string
	Pos       Position
	Arguments []*Var
	Type      *Signature // nil if the function is unannotated

	IsStatic    bool // @staticmethod
	IsClass     bool // @classmethod
	IsOverload  bool // @overload
	IsDecorated bool // any other decorator

	// IsConditional is set for definitions nested in a block
	// (if/while/try...). Two conditional definitions of the same
	// name may coexist; the later one records the earlier in
	// OriginalDef.
	IsConditional bool
	OriginalDef   *FuncDef

	Info *TypeInfo // enclosing class, for methods
}

func (f *FuncDef) Name() string     { return f.FuncName }
func (f *FuncDef) FullName() string { return f.Fullname }

// A TypeInfo describes a class.
type TypeInfo struct {
	ClassName string
	Fullname  string
	Pos       Position

	// TypeVars lists the (possibly dotted) names of the class's type
	// parameters, in declaration order.
	TypeVars []string
	Bases    []*TypeInfo

	// Names is the class body namespace.
	Names SymbolTable
}

// NewTypeInfo returns a class descriptor with an empty member table.
func NewTypeInfo(name, fullname string, typeVars ...string) *TypeInfo {
	return &TypeInfo{
		ClassName: name,
		Fullname:  fullname,
		TypeVars:  typeVars,
		Names:     NewSymbolTable(),
	}
}

func (t *TypeInfo) Name() string     { return t.ClassName }
func (t *TypeInfo) FullName() string { return t.Fullname }

// A Module is a parsed source file together with its top-level
// namespace.
type Module struct {
	ModName  string
	Fullname string
	Path     string
	Names    SymbolTable
}

// NewModule returns a module with an empty symbol table.
func NewModule(fullname string) *Module {
	name := fullname
	for i := len(fullname) - 1; i >= 0; i-- {
		if fullname[i] == '.' {
			name = fullname[i+1:]
			break
		}
	}
	return &Module{ModName: name, Fullname: fullname, Names: NewSymbolTable()}
}

func (m *Module) Name() string     { return m.ModName }
func (m *Module) FullName() string { return m.Fullname }

// A TypeVarExpr is the declaration of a type variable, as in
// T = TypeVar('T').
type TypeVarExpr struct {
	VarName  string
	Fullname string
}

func (t *TypeVarExpr) Name() string     { return t.VarName }
func (t *TypeVarExpr) FullName() string { return t.Fullname }

// A NameExpr is an occurrence of an identifier.
type NameExpr struct {
	NamePos Position
	Name    string

	// set by resolver:

	Node     SymbolNode // declaration the name denotes; nil if unresolved
	IsDef    bool       // whether this occurrence defines Node
	Kind     Kind
	FullName string
}

// Pos implements Context.
func (x *NameExpr) Pos() Position { return x.NamePos }

// NewName returns an unresolved reference to name at the given line.
func NewName(name string, line int) *NameExpr {
	return &NameExpr{NamePos: At(line), Name: name}
}

// Bind records that x denotes the declaration held by n.
func (x *NameExpr) Bind(n *SymbolTableNode, isDef bool) {
	x.Node = n.Node
	x.Kind = n.Kind
	x.IsDef = isDef
	if n.Node != nil {
		x.FullName = n.Node.FullName()
	}
}
