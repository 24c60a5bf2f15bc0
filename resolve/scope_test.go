// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pyscope/pyscope/syntax"
)

func builtinNode(decl syntax.SymbolNode) *syntax.SymbolTableNode {
	return &syntax.SymbolTableNode{Kind: syntax.Global, Node: decl, Module: "builtins"}
}

// newModule returns the global scope of a module m whose builtins bind
// len, list (also under the stale alias List), _private and __dunder__.
func newModule() (*GlobalScope, *ErrorList) {
	builtins := syntax.NewModule("builtins")
	list := builtinNode(syntax.NewTypeInfo("list", "builtins.list"))
	builtins.Names.Insert("list", list)
	builtins.Names.Insert("List", list)
	builtins.Names.Insert("len", builtinNode(&syntax.FuncDef{FuncName: "len", Fullname: "builtins.len"}))
	builtins.Names.Insert("_private", builtinNode(&syntax.Var{VarName: "_private", Fullname: "builtins._private", IsReady: true}))
	builtins.Names.Insert("__dunder__", builtinNode(&syntax.Var{VarName: "__dunder__", Fullname: "builtins.__dunder__", IsReady: true}))

	mod := syntax.NewModule("m")
	mod.Names.SeedBuiltins(builtins)
	errs := new(ErrorList)
	return NewGlobalScope(mod, errs), errs
}

func checkErrors(t *testing.T, got *ErrorList, want ...Error) {
	t.Helper()
	if diff := cmp.Diff(ErrorList(want), *got); diff != "" {
		t.Errorf("diagnostics differ (-want +got):\n%s", diff)
	}
	*got = nil
}

func TestVariableStateMachine(t *testing.T) {
	g, errs := newModule()

	fwd := syntax.NewName("x", 1)
	g.AddVariable(fwd, true)
	checkErrors(t, errs)
	v := fwd.Node.(*syntax.Var)
	if v.IsReady || !fwd.IsDef || fwd.Kind != syntax.Global || fwd.FullName != "m.x" {
		t.Fatalf("forward declaration: got %+v, var %+v", fwd, v)
	}

	complete := syntax.NewName("x", 2)
	g.AddVariable(complete, false)
	checkErrors(t, errs)
	if !v.IsReady || complete.Node != v || !complete.IsDef {
		t.Fatalf("completion: got %+v, var %+v", complete, v)
	}

	g.AddVariable(syntax.NewName("x", 3), true)
	again := syntax.NewName("x", 4)
	g.AddVariable(again, false)
	checkErrors(t, errs,
		Error{3, "Name 'x' already defined"},
		Error{4, "Name 'x' already defined"},
	)
	if again.Node != v || again.IsDef {
		t.Errorf("redefinition should bind the existing variable as a use: %+v", again)
	}
}

func TestForwardTwice(t *testing.T) {
	g, errs := newModule()
	g.AddVariable(syntax.NewName("x", 1), true)
	g.AddVariable(syntax.NewName("x", 2), true)
	checkErrors(t, errs, Error{2, "Name 'x' already defined"})
}

func TestVariableOverNonVariable(t *testing.T) {
	g, errs := newModule()
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(1)})
	g.AddVariable(syntax.NewName("f", 2), true)
	checkErrors(t, errs, Error{2, "Name 'f' already defined"})
}

func TestConditionalRedefinition(t *testing.T) {
	g, errs := newModule()

	// if c: def f(); else: def f()
	first := &syntax.FuncDef{FuncName: "f", Pos: syntax.At(2)}
	second := &syntax.FuncDef{FuncName: "f", Pos: syntax.At(4)}
	g.IncreaseBlockDepth()
	g.AddFunction(first)
	g.DecreaseBlockDepth()
	g.IncreaseBlockDepth()
	g.AddFunction(second)
	g.DecreaseBlockDepth()

	checkErrors(t, errs)
	if !first.IsConditional || !second.IsConditional {
		t.Errorf("definitions in blocks should be conditional")
	}
	if second.OriginalDef != first {
		t.Errorf("OriginalDef = %v, want first definition", second.OriginalDef)
	}
	if n := g.Lookup("f"); n == nil || n.Node != second {
		t.Errorf("f resolves to %v, want second definition", n)
	}
	if second.Fullname != "m.f" {
		t.Errorf("Fullname = %q", second.Fullname)
	}
}

func TestFunctionRedefinition(t *testing.T) {
	g, errs := newModule()
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(1)})
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(2)})
	g.AddVariable(syntax.NewName("x", 3), false)
	g.AddFunction(&syntax.FuncDef{FuncName: "x", Pos: syntax.At(4)})
	// Decorated and overloaded definitions are not checked.
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(5), IsDecorated: true})
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(6), IsOverload: true})
	// Only one of the two definitions is conditional.
	g.IncreaseBlockDepth()
	g.AddFunction(&syntax.FuncDef{FuncName: "f", Pos: syntax.At(8)})
	g.DecreaseBlockDepth()

	checkErrors(t, errs,
		Error{2, "Name 'f' already defined (overload variants must be contiguous)"},
		Error{4, "Name 'x' already defined"},
		Error{8, "Name 'f' already defined (overload variants must be contiguous)"},
	)
}

func TestAddSymbolReimport(t *testing.T) {
	g, errs := newModule()
	typing := syntax.NewModule("typing")
	ref := func(m *syntax.Module) *syntax.SymbolTableNode {
		return &syntax.SymbolTableNode{Kind: syntax.ModuleRef, Node: m, Module: m.Fullname}
	}
	g.AddSymbol("typing", ref(typing), syntax.At(1))
	g.AddSymbol("typing", ref(typing), syntax.At(2))
	checkErrors(t, errs)

	g.AddSymbol("typing", ref(syntax.NewModule("typing")), syntax.At(3))
	g.AddVariable(syntax.NewName("v", 4), false)
	g.AddSymbol("v", ref(typing), syntax.At(5))
	checkErrors(t, errs,
		Error{3, "Name 'typing' already defined"},
		Error{5, "Name 'v' already defined"},
	)
}

func TestNonlocalAndGlobal(t *testing.T) {
	g, errs := newModule()
	outer := NewFunctionScope(g, nil)
	outer.AddVariable(syntax.NewName("x", 2), false)
	inner := NewFunctionScope(outer, nil)

	inner.AddNonlocalDecl("x", syntax.At(4))
	checkErrors(t, errs)
	inner.AddGlobalDecl("x", syntax.At(5))
	checkErrors(t, errs, Error{5, "Name 'x' is nonlocal and global"})
	if !inner.IsGlobal("x") || !inner.IsNonlocal("x") {
		t.Errorf("both declarations should be recorded")
	}

	// The other order.
	f := NewFunctionScope(outer, nil)
	f.AddGlobalDecl("x", syntax.At(7))
	f.AddNonlocalDecl("x", syntax.At(8))
	checkErrors(t, errs, Error{8, "Name 'x' is nonlocal and global"})
}

func TestDeclarationChecks(t *testing.T) {
	g, errs := newModule()
	f := NewFunctionScope(g, nil)
	f.AddNonlocalDecl("y", syntax.At(2))
	f.AddVariable(syntax.NewName("z", 3), false)
	f.AddGlobalDecl("z", syntax.At(4))
	f.AddVariable(syntax.NewName("w", 5), false)
	f.AddNonlocalDecl("w", syntax.At(6))
	checkErrors(t, errs,
		Error{2, "No binding for nonlocal 'y' found"},
		Error{4, "Name 'z' is already defined in local scope before global declaration"},
		Error{6, "No binding for nonlocal 'w' found"},
		Error{6, "Name 'w' is already defined in local scope before nonlocal declaration"},
	)
}

func TestFunctionLookup(t *testing.T) {
	g, errs := newModule()
	g.AddVariable(syntax.NewName("x", 1), false)
	gx := g.Lookup("x")

	outer := NewFunctionScope(g, nil)
	outer.AddVariable(syntax.NewName("x", 3), false)
	outer.AddVariable(syntax.NewName("y", 4), false)
	ox, oy := outer.Lookup("x"), outer.Lookup("y")
	if ox == gx || ox.Kind != syntax.Local {
		t.Fatalf("outer x = %v", ox)
	}

	inner := NewFunctionScope(outer, nil)
	if n := inner.Lookup("x"); n != ox {
		t.Errorf("inner x = %v, want enclosing local", n)
	}
	if n := inner.Lookup("len"); n == nil || n.Node.FullName() != "builtins.len" {
		t.Errorf("inner len = %v, want builtin", n)
	}
	if n := inner.LookupTarget("x"); n != nil {
		t.Errorf("LookupTarget(x) = %v, want nil", n)
	}

	inner.AddGlobalDecl("x", syntax.At(6))
	inner.AddNonlocalDecl("y", syntax.At(7))
	if n := inner.Lookup("x"); n != gx {
		t.Errorf("global x = %v", n)
	}
	if n := inner.LookupLocal("x"); n != nil {
		t.Errorf("LookupLocal of a global name = %v, want nil", n)
	}
	if n := inner.LookupTarget("y"); n != oy {
		t.Errorf("nonlocal target y = %v", n)
	}

	// Definitions follow the declarations.
	gy := syntax.NewName("x", 8)
	inner.AddVariable(gy, false)
	ny := syntax.NewName("y", 9)
	inner.AddVariable(ny, false)
	inner.AddFunction(&syntax.FuncDef{FuncName: "x", Pos: syntax.At(10)})
	checkErrors(t, errs,
		Error{8, "Name 'x' already defined"},
		Error{10, "Name 'x' already defined"},
	)
	if ny.Node != oy.Node || ny.IsDef {
		t.Errorf("nonlocal y bound to %+v", ny)
	}
	if inner.Names().Contains("x") || inner.Names().Contains("y") {
		t.Errorf("redirected names were defined locally: %v", inner.Names().Keys())
	}
}

func TestClassOpaqueToLocals(t *testing.T) {
	g, errs := newModule()
	fn := NewFunctionScope(g, nil)
	fn.AddVariable(syntax.NewName("y", 2), false)

	c := NewClassScope(fn, syntax.NewTypeInfo("C", "m.C"), nil)
	c.AddVariable(syntax.NewName("z", 4), false)
	method := NewFunctionScope(c, nil)

	if n := method.LookupLocal("z"); n != nil {
		t.Errorf("LookupLocal(z) through class = %v, want nil", n)
	}
	if n := method.Lookup("z"); n != nil {
		t.Errorf("Lookup(z) in method = %v, want nil", n)
	}
	if n := c.LookupLocal("z"); n != nil {
		t.Errorf("class LookupLocal(z) = %v, want nil", n)
	}
	if n := c.Lookup("z"); n == nil || n.Kind != syntax.Member || n.Node.FullName() != "m.C.z" {
		t.Errorf("class Lookup(z) = %v", n)
	}
	if method.LookupLocal("y") == nil || c.Lookup("y") == nil {
		t.Errorf("enclosing function local y should be visible")
	}
	if c.Type() == nil || method.Type() != c.Info {
		t.Errorf("Type() should pierce function scopes")
	}
	if fn.Type() != nil {
		t.Errorf("Type() outside class = %v", fn.Type())
	}
	checkErrors(t, errs)
}

func TestBuiltinsFallback(t *testing.T) {
	g, errs := newModule()
	for _, test := range []struct {
		name  string
		found bool
	}{
		{"len", true},
		{"list", true},
		{"List", false}, // stale alias
		{"_private", false},
		{"__dunder__", true},
		{"missing", false},
	} {
		if got := g.Lookup(test.name) != nil; got != test.found {
			t.Errorf("Lookup(%s) found = %t, want %t", test.name, got, test.found)
		}
	}
	if n := g.LookupTarget("len"); n != nil {
		t.Errorf("LookupTarget(len) = %v, want nil", n)
	}
	// Module bindings shadow builtins.
	g.AddVariable(syntax.NewName("len", 1), false)
	if n := g.Lookup("len"); n.Node.FullName() != "m.len" {
		t.Errorf("Lookup(len) = %v", n)
	}
	checkErrors(t, errs)
}

func TestBlockDepth(t *testing.T) {
	g, _ := newModule()
	g.IncreaseBlockDepth()
	g.IncreaseBlockDepth()
	c := NewClassScope(g, syntax.NewTypeInfo("C", "m.C"), nil)
	if d := c.BlockDepth(); d != -1 {
		t.Errorf("class depth = %d, want -1", d)
	}
	c.IncreaseBlockDepth()
	if d := c.BlockDepth(); d != 0 {
		t.Errorf("class body depth = %d, want 0", d)
	}
	f := NewFunctionScope(g, nil)
	if d := f.BlockDepth(); d != 0 {
		t.Errorf("function depth = %d, want 0", d)
	}
	if d := g.BlockDepth(); d != 2 {
		t.Errorf("global depth = %d, want 2", d)
	}
}

func addTypeVar(g *GlobalScope, name string) *syntax.SymbolTableNode {
	n := &syntax.SymbolTableNode{
		Kind:   syntax.UnboundTypeVar,
		Node:   &syntax.TypeVarExpr{VarName: name, Fullname: "m." + name},
		Module: "m",
	}
	g.AddSymbol(name, n, syntax.At(1))
	return n
}

func TestTypeVarNesting(t *testing.T) {
	g, errs := newModule()
	T := addTypeVar(g, "T")
	U := addTypeVar(g, "U")

	a := NewClassScope(g, syntax.NewTypeInfo("A", "m.A", "T"), nil)
	a.BindTypeVars(syntax.At(3))
	if T.Kind != syntax.BoundTypeVar || T.TypeVarID != 1 {
		t.Fatalf("after binding A: T = %v", T)
	}
	if diff := cmp.Diff(map[string]bool{"T": true}, a.TypeVarNames()); diff != "" {
		t.Errorf("A.TypeVarNames (-want +got):\n%s", diff)
	}

	b := NewClassScope(a, syntax.NewTypeInfo("B", "m.A.B", "U", "T"), nil)
	b.BindTypeVars(syntax.At(4))
	if U.Kind != syntax.BoundTypeVar || U.TypeVarID != 1 || T.TypeVarID != 2 {
		t.Errorf("after binding B: T = %v, U = %v", T, U)
	}

	// A method of B sees B's type variables.
	m := NewFunctionScope(b, nil)
	if diff := cmp.Diff(map[string]bool{"T": true, "U": true}, m.TypeVarNames()); diff != "" {
		t.Errorf("method TypeVarNames (-want +got):\n%s", diff)
	}

	b.UnbindTypeVars()
	if U.Kind != syntax.UnboundTypeVar {
		t.Errorf("after unbinding B: U = %v", U)
	}
	if T.Kind != syntax.BoundTypeVar || T.TypeVarID != 1 {
		t.Errorf("after unbinding B: T = %v, want A's binding restored", T)
	}

	a.UnbindTypeVars()
	if T.Kind != syntax.UnboundTypeVar {
		t.Errorf("after unbinding A: T = %v", T)
	}
	checkErrors(t, errs)
}

func TestBindTypeVarsErrors(t *testing.T) {
	g, errs := newModule()
	g.AddVariable(syntax.NewName("v", 1), false)
	c := NewClassScope(g, syntax.NewTypeInfo("C", "m.C", "v", "S"), nil)
	c.BindTypeVars(syntax.At(2))
	checkErrors(t, errs,
		Error{2, "'v' is not a type variable"},
		Error{2, "Name 'S' is not defined"},
	)
	if len(c.BoundTypeVars()) != 0 {
		t.Errorf("bound %v", c.BoundTypeVars())
	}
}

func TestInjectedTypeVarLookup(t *testing.T) {
	g, errs := newModule()
	other := &syntax.SymbolTableNode{Kind: syntax.UnboundTypeVar, Node: &syntax.TypeVarExpr{VarName: "K", Fullname: "lib.K"}}
	var asked []string
	lookup := func(name string, ctx syntax.Context) *syntax.SymbolTableNode {
		asked = append(asked, name)
		return other
	}
	c := NewClassScope(g, syntax.NewTypeInfo("C", "m.C", "lib.K"), lookup)
	c.BindTypeVars(syntax.At(1))
	if diff := cmp.Diff([]string{"lib.K"}, asked); diff != "" {
		t.Errorf("lookups (-want +got):\n%s", diff)
	}
	if other.Kind != syntax.BoundTypeVar || other.TypeVarID != 1 {
		t.Errorf("K = %v", other)
	}
	checkErrors(t, errs)
}

func TestToggleNonTypeVarPanics(t *testing.T) {
	g, _ := newModule()
	T := addTypeVar(g, "T")
	c := NewClassScope(g, syntax.NewTypeInfo("C", "m.C", "T"), nil)
	c.BindTypeVars(syntax.At(1))
	T.Kind = syntax.Global
	defer func() {
		if recover() == nil {
			t.Errorf("DisableTypeVars did not panic")
		}
	}()
	c.DisableTypeVars()
}

func TestMethods(t *testing.T) {
	g, errs := newModule()
	addTypeVar(g, "T")
	info := syntax.NewTypeInfo("C", "m.C", "T")
	c := NewClassScope(g, info, nil)
	c.IncreaseBlockDepth()
	c.BindTypeVars(syntax.At(1))

	sig := func() *syntax.Signature {
		return &syntax.Signature{ArgNames: []string{"self", "x"}, ArgTypes: []syntax.Type{syntax.AnyType{}, syntax.AnyType{}}}
	}
	arg := func(name string) *syntax.Var { return &syntax.Var{VarName: name, IsReady: true} }

	noArgs := &syntax.FuncDef{FuncName: "m0", Pos: syntax.At(2)}
	static := &syntax.FuncDef{FuncName: "s", Pos: syntax.At(3), IsStatic: true}
	method := &syntax.FuncDef{FuncName: "m", Pos: syntax.At(4), Arguments: []*syntax.Var{arg("self"), arg("x")}, Type: sig()}
	class := &syntax.FuncDef{FuncName: "k", Pos: syntax.At(5), Arguments: []*syntax.Var{arg("cls"), arg("x")}, Type: sig(), IsClass: true}
	decorated := &syntax.FuncDef{FuncName: "d", Pos: syntax.At(6), Arguments: []*syntax.Var{arg("self"), arg("x")}, Type: sig(), IsDecorated: true}
	for _, fn := range []*syntax.FuncDef{noArgs, static, method, class, decorated} {
		c.AddFunction(fn)
	}
	checkErrors(t, errs, Error{2, "Method must have at least one argument"})

	if got := method.Type.ArgTypes[0].String(); got != "m.C[T]" {
		t.Errorf("self type = %s, want m.C[T]", got)
	}
	self := method.Type.ArgTypes[0].(*syntax.Instance)
	if self.Info != info || self.Args[0].(*syntax.TypeVarType).ID != 1 {
		t.Errorf("self type = %+v", self)
	}
	if _, ok := class.Type.ArgTypes[0].(syntax.AnyType); !ok {
		t.Errorf("cls type = %s, want Any", class.Type.ArgTypes[0])
	}
	if got := decorated.Type.String(); got != "def (self: Any, x: Any)" {
		t.Errorf("decorated signature = %s", got)
	}
	if method.Fullname != "m.C.m" || method.Info != info || method.IsConditional {
		t.Errorf("method = %+v", method)
	}
	if n := c.Lookup("m"); n == nil || n.Kind != syntax.Member {
		t.Errorf("Lookup(m) = %v", n)
	}
}

func TestClassVariable(t *testing.T) {
	g, _ := newModule()
	info := syntax.NewTypeInfo("C", "m.C")
	c := NewClassScope(g, info, nil)
	id := syntax.NewName("attr", 2)
	c.AddVariable(id, false)
	v := id.Node.(*syntax.Var)
	if v.Info != info || !v.IsInitializedInClass || v.Fullname != "m.C.attr" {
		t.Errorf("class variable = %+v", v)
	}
	if !info.Names.Contains("attr") {
		t.Errorf("member table lacks attr")
	}
}

func TestAssign(t *testing.T) {
	g, errs := newModule()
	g.AddVariable(syntax.NewName("f", 1), true)

	def := syntax.NewName("x", 2)
	Assign(g, def)
	use := syntax.NewName("x", 3)
	Assign(g, use)
	complete := syntax.NewName("f", 4)
	Assign(g, complete)
	checkErrors(t, errs)

	if !def.IsDef || use.IsDef || use.Node != def.Node {
		t.Errorf("assignments: def %+v, use %+v", def, use)
	}
	if !complete.IsDef || !complete.Node.(*syntax.Var).IsReady {
		t.Errorf("forward completion: %+v", complete)
	}
}

func TestNotDefined(t *testing.T) {
	g, errs := newModule()
	typing := syntax.NewModule("typing")
	typing.Names.Insert("Callable", &syntax.SymbolTableNode{Kind: syntax.Global, Node: syntax.NewTypeInfo("Callable", "typing.Callable")})
	g.AddSymbol("typing", &syntax.SymbolTableNode{Kind: syntax.ModuleRef, Node: typing}, syntax.At(1))
	g.AddVariable(syntax.NewName("counter", 1), false)

	for i, name := range []string{"typing.Function", "Function", "lem", "countr", "typing.Missing", "zzz", "_privat"} {
		if Resolve(g, syntax.NewName(name, i+2)) {
			t.Errorf("%s resolved", name)
		}
	}
	if !Resolve(g, syntax.NewName("typing.Callable", 10)) {
		t.Errorf("typing.Callable did not resolve")
	}
	checkErrors(t, errs,
		Error{2, "Name 'typing.Function' is not defined (it's now called 'typing.Callable')"},
		Error{3, "Name 'Function' is not defined (did you mean 'typing.Callable'?)"},
		Error{4, "Name 'lem' is not defined (did you mean 'len'?)"},
		Error{5, "Name 'countr' is not defined (did you mean 'counter'?)"},
		Error{6, "Name 'typing.Missing' is not defined"},
		Error{7, "Name 'zzz' is not defined"},
		Error{8, "Name '_privat' is not defined"},
	)

	defer func(prev bool) { SuggestNearest = prev }(SuggestNearest)
	SuggestNearest = false
	Resolve(g, syntax.NewName("lem", 11))
	checkErrors(t, errs, Error{11, "Name 'lem' is not defined"})
}

func TestResolveBinds(t *testing.T) {
	g, _ := newModule()
	f := NewFunctionScope(g, nil)
	f.AddVariable(syntax.NewName("x", 1), false)
	id := syntax.NewName("x", 2)
	if !Resolve(f, id) {
		t.Fatal("x did not resolve")
	}
	want := &syntax.NameExpr{NamePos: syntax.At(2), Name: "x", Node: id.Node, Kind: syntax.Local, FullName: "x"}
	if diff := cmp.Diff(want, id); diff != "" {
		t.Errorf("NameExpr (-want +got):\n%s", diff)
	}
}

func TestLookupMetrics(t *testing.T) {
	g, _ := newModule()
	found := Lookups.WithLabelValues("global", "found")
	missing := Lookups.WithLabelValues("global", "missing")
	unresolved := Diagnostics.WithLabelValues(kindUnresolved)
	f0, m0, u0 := testutil.ToFloat64(found), testutil.ToFloat64(missing), testutil.ToFloat64(unresolved)

	Resolve(g, syntax.NewName("len", 1))
	Resolve(g, syntax.NewName("nope", 2))

	if d := testutil.ToFloat64(found) - f0; d != 1 {
		t.Errorf("found lookups += %v, want 1", d)
	}
	if d := testutil.ToFloat64(missing) - m0; d != 1 {
		t.Errorf("missing lookups += %v, want 1", d)
	}
	if d := testutil.ToFloat64(unresolved) - u0; d != 1 {
		t.Errorf("unresolved diagnostics += %v, want 1", d)
	}
}

func TestErrorList(t *testing.T) {
	var l ErrorList
	if l.Err() != nil {
		t.Errorf("empty list Err() = %v", l.Err())
	}
	l.Report(3, "c")
	l.Report(1, "a")
	l.Report(3, "d")
	l.Report(2, "b")
	l.Sort()
	if got, want := l.Error(), "1: a\n2: b\n3: c\n3: d"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if l.Err() == nil {
		t.Errorf("Err() = nil")
	}
}
