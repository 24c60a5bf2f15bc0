// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symdump renders a symbol table as a protocol message, for
// inspecting the bindings a run of the resolver produced.
//
// Each name maps to a struct with the fields kind, decl (the
// declaration's node type), fullname and module. Type variables add
// id, variables add ready, and functions add conditional and
// original. Classes nest their member table under members.
package symdump // import "github.com/pyscope/pyscope/internal/symdump"

import (
	"github.com/pkg/errors"
	"github.com/pyscope/pyscope/syntax"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot returns the bindings of table as a Struct.
func Snapshot(table syntax.SymbolTable) (*structpb.Struct, error) {
	m, err := structpb.NewStruct(tableFields(table, make(map[*syntax.TypeInfo]bool)))
	if err != nil {
		return nil, errors.Wrap(err, "snapshot of symbol table")
	}
	return m, nil
}

func tableFields(table syntax.SymbolTable, seen map[*syntax.TypeInfo]bool) map[string]interface{} {
	fields := make(map[string]interface{}, len(table))
	for _, name := range table.Keys() {
		fields[name] = nodeFields(table[name], seen)
	}
	return fields
}

func nodeFields(n *syntax.SymbolTableNode, seen map[*syntax.TypeInfo]bool) map[string]interface{} {
	f := map[string]interface{}{
		"kind":   n.Kind.String(),
		"module": n.Module,
	}
	if n.Kind.IsTypeVar() {
		f["id"] = float64(n.TypeVarID)
	}
	if n.Node == nil {
		return f
	}
	f["fullname"] = n.Node.FullName()
	switch decl := n.Node.(type) {
	case *syntax.Var:
		f["decl"] = "var"
		f["ready"] = decl.IsReady
	case *syntax.FuncDef:
		f["decl"] = "func"
		f["conditional"] = decl.IsConditional
		if decl.OriginalDef != nil {
			f["original"] = decl.OriginalDef.Pos.String()
		}
		if decl.Type != nil {
			f["type"] = decl.Type.String()
		}
	case *syntax.TypeInfo:
		f["decl"] = "class"
		// A class may be bound under several names; expand it once.
		if !seen[decl] {
			seen[decl] = true
			f["members"] = tableFields(decl.Names, seen)
		}
	case *syntax.Module:
		f["decl"] = "module"
	case *syntax.TypeVarExpr:
		f["decl"] = "typevar"
	}
	return f
}

// Marshal encodes the snapshot of table in the given format:
// "text" (prototext), "json" (protojson) or "wire".
func Marshal(table syntax.SymbolTable, format string) ([]byte, error) {
	var marshal func(protoreflect.ProtoMessage) ([]byte, error)
	switch format {
	case "text":
		marshal = prototext.MarshalOptions{Multiline: true, Indent: "\t"}.Marshal
	case "json":
		marshal = protojson.MarshalOptions{Multiline: true, Indent: "\t"}.Marshal
	case "wire":
		marshal = proto.MarshalOptions{Deterministic: true}.Marshal
	default:
		return nil, errors.Errorf("unsupported dump format: %s", format)
	}
	m, err := Snapshot(table)
	if err != nil {
		return nil, err
	}
	data, err := marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "marshalling %s dump", format)
	}
	return data, nil
}
