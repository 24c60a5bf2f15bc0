// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scopescript

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pyscope/pyscope/resolve"
	"github.com/pyscope/pyscope/syntax"
	"go.opencensus.io/trace"
)

// Options configures a Session.
// The zero value is ready to use.
type Options struct {
	// Builtins is the module that unbound names fall back to.
	// If nil, NewBuiltins is used.
	Builtins *syntax.Module

	// Modules holds the modules available to import, by full name.
	// typing is always available. Importing any other name yields an
	// empty module.
	Modules map[string]*syntax.Module

	// OnResolve, if non-nil, is called for every name occurrence after
	// the resolver has filled it in, whether or not it was resolved.
	OnResolve func(id *syntax.NameExpr)
}

// A Session analyzes one module. Statements may be executed in
// several batches, as the REPL does; bindings persist between them.
type Session struct {
	Module *syntax.Module
	Errors resolve.ErrorList // all diagnostics reported so far

	opts    Options
	global  *resolve.GlobalScope
	scope   resolve.Scope
	modules map[string]*syntax.Module
}

// NewSession returns a session for the module with the given full name.
// opts may be nil.
func NewSession(moduleName string, opts *Options) *Session {
	s := &Session{
		Module:  syntax.NewModule(moduleName),
		modules: make(map[string]*syntax.Module),
	}
	if opts != nil {
		s.opts = *opts
	}
	builtins := s.opts.Builtins
	if builtins == nil {
		builtins = NewBuiltins()
	}
	s.modules[builtins.Fullname] = builtins
	s.modules["typing"] = NewTyping()
	for name, m := range s.opts.Modules {
		s.modules[name] = m
	}
	s.Module.Names.SeedBuiltins(builtins)
	s.global = resolve.NewGlobalScope(s.Module, &s.Errors)
	s.scope = s.global
	return s
}

// Global returns the scope of the module's top level.
func (s *Session) Global() *resolve.GlobalScope { return s.global }

// Scope returns the current scope. Between calls to Exec this is
// always the global scope.
func (s *Session) Scope() resolve.Scope { return s.scope }

// Exec executes stmts in the current scope and returns the diagnostics
// they produced, in report order.
func (s *Session) Exec(ctx context.Context, stmts []Stmt) resolve.ErrorList {
	_, span := trace.StartSpan(ctx, "scopescript.Exec")
	defer span.End()

	before := len(s.Errors)
	s.block(stmts)
	errs := append(resolve.ErrorList(nil), s.Errors[before:]...)
	span.AddAttributes(
		trace.StringAttribute("module", s.Module.Fullname),
		trace.Int64Attribute("statements", int64(len(stmts))),
		trace.Int64Attribute("diagnostics", int64(len(errs))),
	)
	return errs
}

// RunFile parses and executes a trace as a new module named after the
// file. src is interpreted as by ParseFile.
//
// If the trace cannot be parsed, RunFile returns a nil Session and the
// syntax error. Otherwise it returns the Session and, if any
// diagnostics were reported, the session's ErrorList as the error.
func RunFile(ctx context.Context, filename string, src interface{}, opts *Options) (*Session, error) {
	ctx, span := trace.StartSpan(ctx, "scopescript.RunFile")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("file", filename))

	stmts, err := ParseFile(filename, src)
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: err.Error()})
		return nil, err
	}
	s := NewSession(ModuleName(filename), opts)
	s.Exec(ctx, stmts)
	return s, s.Errors.Err()
}

// ModuleName returns the module name for a trace file: its base name
// without extension, or __main__ if that is not an identifier.
func ModuleName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if !isIdent(name) || strings.Contains(name, ".") {
		return "__main__"
	}
	for i := 1; i < len(name); i++ {
		if !isIdentStart(name[i]) && !isDigit(name[i]) {
			return "__main__"
		}
	}
	return name
}

// block executes a statement list. group is the name of the overload
// group currently open in the list: the definitions that follow an
// @overload definition of the same name belong to it.
func (s *Session) block(stmts []Stmt) {
	group := ""
	for _, stmt := range stmts {
		if glog.V(1) {
			glog.Infof("%s:%d: %T", s.Module.Fullname, stmt.Pos().Line, stmt)
		}
		if def, ok := stmt.(*DefStmt); ok {
			group = s.def(def, group)
			continue
		}
		group = ""
		switch stmt := stmt.(type) {
		case *NameStmt:
			s.nameStmt(stmt)
		case *ImportStmt:
			s.importStmt(stmt)
		case *FromStmt:
			s.fromStmt(stmt)
		case *ClassStmt:
			s.class(stmt)
		case *BlockStmt:
			for _, name := range stmt.Reads {
				s.read(name, stmt.Line)
			}
			for _, name := range stmt.Targets {
				s.assign(name, stmt.Line)
			}
			s.scope.IncreaseBlockDepth()
			s.block(stmt.Body)
			s.scope.DecreaseBlockDepth()
		default:
			panic(fmt.Sprintf("unexpected statement %T", stmt))
		}
	}
}

func (s *Session) nameStmt(stmt *NameStmt) {
	switch stmt.Op {
	case "var", "forward":
		id := syntax.NewName(stmt.Names[0], stmt.Line)
		s.scope.AddVariable(id, stmt.Op == "forward")
		s.resolved(id)

	case "typevar":
		name := stmt.Names[0]
		tv := &syntax.TypeVarExpr{VarName: name, Fullname: resolve.QualifiedName(s.scope, name)}
		n := &syntax.SymbolTableNode{Kind: syntax.UnboundTypeVar, Node: tv, Module: s.Module.Fullname}
		s.scope.AddSymbol(name, n, stmt)

	case "assign":
		for _, name := range stmt.Names {
			s.assign(name, stmt.Line)
		}

	case "use", "return":
		for _, name := range stmt.Names {
			s.read(name, stmt.Line)
		}

	case "global", "nonlocal":
		fs, ok := s.scope.(*resolve.FunctionScope)
		if !ok {
			if stmt.Op == "nonlocal" && s.scope == s.global {
				s.scope.Fail("nonlocal declaration not allowed at module level", stmt)
			}
			return
		}
		for _, name := range stmt.Names {
			if stmt.Op == "global" {
				fs.AddGlobalDecl(name, stmt)
			} else {
				fs.AddNonlocalDecl(name, stmt)
			}
		}

	case "pass":
	}
}

// module returns the module with the given full name, creating an
// empty one if it is not known.
func (s *Session) module(name string) *syntax.Module {
	m, ok := s.modules[name]
	if !ok {
		m = syntax.NewModule(name)
		s.modules[name] = m
	}
	return m
}

// importStmt binds the imported module. import a.b binds a, with b
// as a member of a; import a.b as c binds c to a.b.
func (s *Session) importStmt(stmt *ImportStmt) {
	m := s.module(stmt.Module)
	parts := strings.Split(stmt.Module, ".")
	for i := len(parts) - 1; i > 0; i-- {
		parent := s.module(strings.Join(parts[:i], "."))
		child := s.module(strings.Join(parts[:i+1], "."))
		if !parent.Names.Contains(parts[i]) {
			parent.Names.Insert(parts[i], moduleRef(child))
		}
	}
	name := stmt.As
	if name == "" {
		name = parts[0]
		m = s.module(name)
	}
	s.scope.AddSymbol(name, moduleRef(m), stmt)
}

func moduleRef(m *syntax.Module) *syntax.SymbolTableNode {
	return &syntax.SymbolTableNode{Kind: syntax.ModuleRef, Node: m, Module: m.Fullname}
}

// fromStmt binds members of a module under their own names.
func (s *Session) fromStmt(stmt *FromStmt) {
	m := s.module(stmt.Module)
	for _, name := range stmt.Names {
		n := m.Names.Lookup(name)
		if n == nil {
			s.scope.Fail(fmt.Sprintf("Module '%s' has no attribute '%s'", stmt.Module, name), stmt)
			continue
		}
		s.scope.AddSymbol(name, &syntax.SymbolTableNode{
			Kind:      n.Kind,
			Node:      n.Node,
			Module:    n.Module,
			TypeVarID: n.TypeVarID,
		}, stmt)
	}
}

// def declares a function and executes its body in a new function
// scope. It returns the overload group open after the definition.
func (s *Session) def(stmt *DefStmt, group string) string {
	fn := &syntax.FuncDef{FuncName: stmt.Name, Pos: syntax.At(stmt.Line)}
	overload := false
	for _, d := range stmt.Decorators {
		s.read(d.Name, d.Line)
		switch lastComponent(d.Name) {
		case "staticmethod":
			fn.IsStatic = true
		case "classmethod":
			fn.IsClass = true
		case "overload":
			overload = true
		default:
			fn.IsDecorated = true
		}
	}
	for _, p := range stmt.Params {
		fn.Arguments = append(fn.Arguments, &syntax.Var{VarName: p.Name, Fullname: p.Name, IsReady: true})
	}
	fn.Type = s.signature(stmt)

	// The first definition of an overload group is checked for
	// collisions like any other; the rest of the group are not.
	fn.IsOverload = group == stmt.Name
	s.scope.AddFunction(fn)
	if overload {
		fn.IsOverload = true
		group = stmt.Name
	} else {
		group = ""
	}

	parent := s.scope
	fs := resolve.NewFunctionScope(parent, fn)
	s.scope = fs
	for _, arg := range fn.Arguments {
		id := syntax.NewName(arg.VarName, stmt.Line)
		fs.AddSymbol(arg.VarName, resolve.NewBinding(fs, arg), id)
		id.Bind(fs.Names().Lookup(arg.VarName), true)
		s.resolved(id)
	}
	s.block(stmt.Body)
	s.scope = parent
	return group
}

// signature returns the declared type of a def, or nil if it has no
// annotations. Unannotated parameters are Any.
func (s *Session) signature(stmt *DefStmt) *syntax.Signature {
	annotated := stmt.Result != ""
	for _, p := range stmt.Params {
		annotated = annotated || p.Annotation != ""
	}
	if !annotated {
		return nil
	}
	sig := new(syntax.Signature)
	for _, p := range stmt.Params {
		var t syntax.Type = syntax.AnyType{}
		if p.Annotation != "" {
			t = s.typeOf(p.Annotation, stmt)
		}
		sig.ArgNames = append(sig.ArgNames, p.Name)
		sig.ArgTypes = append(sig.ArgTypes, t)
	}
	if stmt.Result != "" {
		sig.RetType = s.typeOf(stmt.Result, stmt)
	}
	return sig
}

// typeOf analyzes a type annotation.
func (s *Session) typeOf(name string, ctx syntax.Context) syntax.Type {
	n := s.lookup(name, ctx)
	if n == nil {
		return syntax.AnyType{}
	}
	switch n.Kind {
	case syntax.BoundTypeVar:
		return &syntax.TypeVarType{Name: n.Node.Name(), ID: n.TypeVarID}
	case syntax.UnboundTypeVar:
		s.scope.Fail(fmt.Sprintf("Type variable '%s' is unbound", name), ctx)
		return syntax.AnyType{}
	}
	if info, ok := n.Node.(*syntax.TypeInfo); ok && info.Fullname != "typing.Any" {
		return &syntax.Instance{Info: info}
	}
	return syntax.AnyType{}
}

// class declares a class and executes its body in a new class scope,
// with the class's type parameters bound.
func (s *Session) class(stmt *ClassStmt) {
	for _, d := range stmt.Decorators {
		s.read(d.Name, d.Line)
	}
	info := syntax.NewTypeInfo(stmt.Name, resolve.QualifiedName(s.scope, stmt.Name), stmt.TypeVars...)
	info.Pos = syntax.At(stmt.Line)
	for _, b := range stmt.Bases {
		if n := s.lookup(b, stmt); n != nil {
			if base, ok := n.Node.(*syntax.TypeInfo); ok {
				info.Bases = append(info.Bases, base)
			}
		}
	}
	s.scope.AddSymbol(stmt.Name, resolve.NewBinding(s.scope, info), stmt)

	parent := s.scope
	cs := resolve.NewClassScope(parent, info, nil)
	s.scope = cs
	cs.IncreaseBlockDepth()
	cs.BindTypeVars(stmt)
	s.block(stmt.Body)
	cs.UnbindTypeVars()
	cs.DecreaseBlockDepth()
	s.scope = parent
}

// lookup resolves a possibly dotted name, reporting it if undefined.
func (s *Session) lookup(name string, ctx syntax.Context) *syntax.SymbolTableNode {
	if strings.Contains(name, ".") {
		return resolve.LookupQualified(s.scope, name, ctx)
	}
	n := s.scope.Lookup(name)
	if n == nil {
		resolve.NameNotDefined(s.scope, name, ctx)
	}
	return n
}

func (s *Session) read(name string, line int) {
	id := syntax.NewName(name, line)
	resolve.Resolve(s.scope, id)
	s.resolved(id)
}

func (s *Session) assign(name string, line int) {
	id := syntax.NewName(name, line)
	resolve.Assign(s.scope, id)
	s.resolved(id)
}

func (s *Session) resolved(id *syntax.NameExpr) {
	if s.opts.OnResolve != nil {
		s.opts.OnResolve(id)
	}
}

func lastComponent(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}
