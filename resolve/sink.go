// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pyscope/pyscope/syntax"
)

// sink holds the state every scope shares with the rest of its walk:
// the diagnostic reporter and the name of the module being analyzed.
type sink struct {
	errors Reporter
	module string
}

// ModuleName returns the full name of the module the scope belongs to.
func (s *sink) ModuleName() string { return s.module }

// Fail reports msg at the line of ctx.
func (s *sink) Fail(msg string, ctx syntax.Context) { s.report(kindOther, ctx, msg) }

func (s *sink) failf(kind string, ctx syntax.Context, format string, args ...interface{}) {
	s.report(kind, ctx, fmt.Sprintf(format, args...))
}

func (s *sink) report(kind string, ctx syntax.Context, msg string) {
	Diagnostics.WithLabelValues(kind).Inc()
	line := syntax.LineOf(ctx)
	glog.V(2).Infof("%s:%d: %s", s.module, line, msg)
	if s.errors != nil {
		s.errors.Report(line, msg)
	}
}
