// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "strings"

// A Type is a type term attached to a function signature.
// Only the terms needed to type the implicit receiver of a method are
// represented; type analysis proper lives elsewhere.
type Type interface {
	String() string
	typ()
}

func (AnyType) typ()      {}
func (*Instance) typ()    {}
func (*TypeVarType) typ() {}

// AnyType is the dynamic (untyped) type.
type AnyType struct{}

func (AnyType) String() string { return "Any" }

// An Instance is a class applied to type arguments.
type Instance struct {
	Info *TypeInfo
	Args []Type
}

func (t *Instance) String() string {
	if len(t.Args) == 0 {
		return t.Info.Fullname
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Info.Fullname + "[" + strings.Join(args, ", ") + "]"
}

// A TypeVarType is a reference to a bound type variable.
type TypeVarType struct {
	Name string
	ID   int // 1-based index among the class's type parameters
}

func (t *TypeVarType) String() string { return t.Name }

// A Signature is the declared type of a function.
type Signature struct {
	ArgNames []string
	ArgTypes []Type
	RetType  Type
}

func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString("def (")
	for i, t := range s.ArgTypes {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(s.ArgNames) && s.ArgNames[i] != "" {
			b.WriteString(s.ArgNames[i])
			b.WriteString(": ")
		}
		b.WriteString(t.String())
	}
	b.WriteString(")")
	if s.RetType != nil {
		b.WriteString(" -> ")
		b.WriteString(s.RetType.String())
	}
	return b.String()
}

// WithFirstArg returns a copy of s whose leading argument type is t.
// A signature with no arguments is returned unchanged.
func (s *Signature) WithFirstArg(t Type) *Signature {
	if len(s.ArgTypes) == 0 {
		return s
	}
	c := *s
	c.ArgTypes = append([]Type{t}, s.ArgTypes[1:]...)
	return &c
}

// SelfType returns the type of an implicit receiver of class info:
// the class applied to its own type variables.
func SelfType(info *TypeInfo) *Instance {
	args := make([]Type, len(info.TypeVars))
	for i, tv := range info.TypeVars {
		if j := strings.LastIndexByte(tv, '.'); j >= 0 {
			tv = tv[j+1:]
		}
		args[i] = &TypeVarType{Name: tv, ID: i + 1}
	}
	return &Instance{Info: info, Args: args}
}
