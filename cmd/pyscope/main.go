// Copyright 2026 The pyscope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The pyscope command resolves the names of a scope trace and prints
// the binding diagnostics it produces.
// With no arguments and a terminal on stdin, it starts a read-exec-print
// loop (REPL); otherwise a trace is read from stdin.
//
// The exit status is 1 if the trace could not be read or parsed, or if
// any diagnostic was reported.
package main // import "github.com/pyscope/pyscope/cmd/pyscope"

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"github.com/pyscope/pyscope/internal/symdump"
	"github.com/pyscope/pyscope/repl"
	"github.com/pyscope/pyscope/resolve"
	"github.com/pyscope/pyscope/scopescript"
	"github.com/pyscope/pyscope/syntax"
	"go.opencensus.io/trace"
	"golang.org/x/term"
)

// flags
var (
	execprog    = flag.String("c", "", "execute trace `prog`")
	dumpFormat  = flag.String("dump", "", "on completion, print the module's symbol table in this format: text, json or wire")
	resolutions = flag.Bool("resolutions", false, "print the binding of every name occurrence")
	showMetrics = flag.Bool("metrics", false, "on exit, print resolver metrics in Prometheus text format to stderr")
	watch       = flag.Bool("watch", false, "re-run the trace file whenever it is written")
	showVersion = flag.Bool("version", false, "print version information")

	traceSpans = flag.Bool("trace", false, "log a span for every parse and execution (to INFO log)")
)

func init() {
	flag.BoolVar(&resolve.SuggestNearest, "nearest", resolve.SuggestNearest, "suggest the nearest visible name for undefined names")
}

func main() {
	os.Exit(doMain())
}

func doMain() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nUsage: pyscope [flags] [file]\n", version.Print("pyscope"))
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if *showVersion {
		fmt.Println(version.Print("pyscope"))
		return 0
	}
	glog.Infof("Commandline: %q", os.Args)

	reg := prometheus.NewRegistry()
	if err := resolve.RegisterMetrics(reg); err != nil {
		glog.Exitf("registering metrics: %v", err)
	}
	if *showMetrics {
		defer func() {
			if err := writeMetrics(os.Stderr, reg); err != nil {
				glog.Error(err)
			}
		}()
	}
	if *traceSpans {
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
		trace.RegisterExporter(logExporter{})
		defer trace.UnregisterExporter(logExporter{})
	}

	opts := &scopescript.Options{}
	if *resolutions {
		opts.OnResolve = printResolution
	}

	switch {
	case flag.NArg() == 1 || *execprog != "":
		var (
			filename string
			src      interface{}
		)
		if *execprog != "" {
			// Execute provided trace.
			filename = "cmdline"
			src = *execprog
		} else {
			// Execute specified file.
			filename = flag.Arg(0)
		}
		status := run(filename, src, opts)
		if *watch && src == nil {
			if err := watchFile(filename, func() { run(filename, nil, opts) }); err != nil {
				repl.PrintError(err)
				return 1
			}
		}
		return status
	case flag.NArg() == 0 && !term.IsTerminal(int(os.Stdin.Fd())):
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			repl.PrintError(errors.Wrap(err, "reading stdin"))
			return 1
		}
		return run("<stdin>", data, opts)
	case flag.NArg() == 0:
		fmt.Println("Welcome to pyscope (github.com/pyscope/pyscope)")
		s := scopescript.NewSession("__main__", opts)
		repl.REPL(s)
		return dump(s)
	default:
		glog.Warning("want at most one trace file name")
		return 1
	}
}

// run executes one trace and prints its diagnostics.
func run(filename string, src interface{}, opts *scopescript.Options) int {
	s, err := scopescript.RunFile(context.Background(), filename, src, opts)
	if s == nil {
		repl.PrintError(err)
		return 1
	}
	s.Errors.Sort()
	for _, e := range s.Errors {
		fmt.Fprintf(os.Stderr, "%s:%s\n", filename, e)
	}
	if status := dump(s); status != 0 {
		return status
	}
	if err != nil {
		return 1
	}
	return 0
}

func dump(s *scopescript.Session) int {
	if *dumpFormat == "" {
		return 0
	}
	data, err := symdump.Marshal(s.Module.Names, *dumpFormat)
	if err != nil {
		repl.PrintError(err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func printResolution(id *syntax.NameExpr) {
	if id.Node == nil {
		fmt.Printf("%d: %s unresolved\n", id.NamePos.Line, id.Name)
		return
	}
	def := ""
	if id.IsDef {
		def = " (def)"
	}
	fmt.Printf("%d: %s -> %s %s%s\n", id.NamePos.Line, id.Name, id.Kind, id.FullName, def)
}

// logExporter writes finished spans to the INFO log.
type logExporter struct{}

func (logExporter) ExportSpan(sd *trace.SpanData) {
	glog.Infof("span %s (%s): %v", sd.Name, sd.EndTime.Sub(sd.StartTime), sd.Attributes)
}
