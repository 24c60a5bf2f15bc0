// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import "github.com/prometheus/client_golang/prometheus"

var (
	// Lookups counts identifier resolutions by the kind of scope the
	// reference occurred in and whether a binding was found.
	Lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pyscope",
		Name:      "lookups_total",
		Help:      "Identifier resolutions, by scope kind and result.",
	}, []string{"scope", "result"})

	// Diagnostics counts binding diagnostics by kind.
	Diagnostics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pyscope",
		Name:      "diagnostics_total",
		Help:      "Binding diagnostics reported, by kind.",
	}, []string{"kind"})

	// TypeVarToggles counts bound/unbound transitions of type-variable
	// bindings.
	TypeVarToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pyscope",
		Name:      "typevar_toggles_total",
		Help:      "Type-variable binding state changes, by direction.",
	}, []string{"direction"})
)

// RegisterMetrics registers the resolver's counters with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Lookups, Diagnostics, TypeVarToggles} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func scopeLabel(s Scope) string {
	switch s.(type) {
	case *GlobalScope:
		return "global"
	case *FunctionScope:
		return "function"
	case *ClassScope:
		return "class"
	}
	return "other"
}
