package syntax

// This file defines resolver data types referenced by declarations.
// We cannot guarantee API stability for these types
// as they are closely tied to the implementation.

import (
	"fmt"
	"sort"
)

// The Kind of a SymbolTableNode indicates how the binding resolves.
type Kind uint8

const (
	Undefined      Kind = iota // name is not defined
	Local                      // name is local to its function
	Global                     // name is global to its module
	Member                     // name is a class member
	ModuleRef                  // name refers to an imported module
	UnboundTypeVar             // type variable not usable unqualified here
	BoundTypeVar               // type variable of the class being analyzed
)

var kindNames = [...]string{
	Undefined:      "undefined",
	Local:          "local",
	Global:         "global",
	Member:         "member",
	ModuleRef:      "module",
	UnboundTypeVar: "unbound-tvar",
	BoundTypeVar:   "bound-tvar",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsTypeVar reports whether k is one of the two type-variable kinds.
func (k Kind) IsTypeVar() bool { return k == UnboundTypeVar || k == BoundTypeVar }

// A SymbolTableNode binds one name to the declaration it denotes.
type SymbolTableNode struct {
	Kind   Kind
	Node   SymbolNode
	Module string // full name of the module the binding belongs to

	// TypeVarID is the 1-based position of a bound type variable among
	// the type parameters of its class. Zero otherwise.
	TypeVarID int
}

func (n *SymbolTableNode) String() string {
	if n.Node == nil {
		return n.Kind.String() + " <nil>"
	}
	if n.Kind.IsTypeVar() {
		return fmt.Sprintf("%s %s/%d", n.Kind, n.Node.FullName(), n.TypeVarID)
	}
	return n.Kind.String() + " " + n.Node.FullName()
}

// A SymbolTable maps names to their bindings.
// Uniqueness of names is checked by whoever inserts, not by the table.
type SymbolTable map[string]*SymbolTableNode

// NewSymbolTable returns an empty table.
func NewSymbolTable() SymbolTable { return make(SymbolTable) }

// Insert binds name to n, replacing any previous binding.
func (t SymbolTable) Insert(name string, n *SymbolTableNode) { t[name] = n }

// Lookup returns the binding of name, or nil.
func (t SymbolTable) Lookup(name string) *SymbolTableNode { return t[name] }

// Contains reports whether name is bound in t.
func (t SymbolTable) Contains(name string) bool {
	_, ok := t[name]
	return ok
}

// Keys returns the bound names in sorted order.
func (t SymbolTable) Keys() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinsKey is the name under which a module table holds its
// reference to the builtins module.
const BuiltinsKey = "__builtins__"

// SeedBuiltins binds __builtins__ in t to the builtins module.
func (t SymbolTable) SeedBuiltins(builtins *Module) {
	t.Insert(BuiltinsKey, &SymbolTableNode{Kind: ModuleRef, Node: builtins, Module: builtins.Fullname})
}
