// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/c2j/czi/internal/output"
	"github.com/c2j/czi/internal/ui"
	"github.com/c2j/czi/pkg/query"
)

// edgeQuery is either Surface.Dependencies or Surface.Dependents.
type edgeQuery func(*query.Surface, string, bool) ([]query.EdgeTarget, error)

func queryDependencies(s *query.Surface, id string, indirect bool) ([]query.EdgeTarget, error) {
	return s.Dependencies(id, indirect)
}

func queryDependents(s *query.Surface, id string, indirect bool) ([]query.EdgeTarget, error) {
	return s.Dependents(id, indirect)
}

type edgeTargetJSON struct {
	Symbol     string  `json:"symbol"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	Distance   int     `json:"distance"`
}

func runDependencyQuery(args []string, globals GlobalFlags, q edgeQuery) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	indirect := fs.Bool("indirect", false, "Include the transitive closure, not just direct edges")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: czi %s [options] <symbol> [path]\n\nOptions:\n", os.Args[1])
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)
	root := "."
	if fs.NArg() > 1 {
		root = fs.Arg(1)
	}

	report, err := runPipeline(context.Background(), root, globals)
	if err != nil {
		fatal(err, globals)
	}
	sym, err := resolveSymbol(report.Graph, name)
	if err != nil {
		fatal(err, globals)
	}
	surface := query.New(report.Graph, report.Reachable)
	targets, err := q(surface, sym.ID, *indirect)
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		var out []edgeTargetJSON
		for _, t := range targets {
			out = append(out, edgeTargetJSON{Symbol: t.Target.QualifiedName, Kind: string(t.Edge.Kind), Confidence: t.Edge.Confidence, Distance: t.Distance})
		}
		_ = output.JSON(out)
		return
	}

	ui.Header(fmt.Sprintf("%s (%d)", sym.QualifiedName, len(targets)))
	for _, t := range targets {
		fmt.Printf("  [%s] %s (confidence=%.2f, distance=%d)\n", t.Edge.Kind, t.Target.QualifiedName, t.Edge.Confidence, t.Distance)
	}
}

func runPathQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	maxDepth := fs.Int("max-depth", 20, "Maximum number of hops to search")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: czi path [options] <from> <to> [path]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 2 {
		fs.Usage()
		os.Exit(1)
	}
	from, to := fs.Arg(0), fs.Arg(1)
	root := "."
	if fs.NArg() > 2 {
		root = fs.Arg(2)
	}

	report, err := runPipeline(context.Background(), root, globals)
	if err != nil {
		fatal(err, globals)
	}
	fromSym, err := resolveSymbol(report.Graph, from)
	if err != nil {
		fatal(err, globals)
	}
	toSym, err := resolveSymbol(report.Graph, to)
	if err != nil {
		fatal(err, globals)
	}
	surface := query.New(report.Graph, report.Reachable)
	result, err := surface.PathBetween(fromSym.ID, toSym.ID, *maxDepth)
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	if !result.Found {
		ui.Warning(fmt.Sprintf("no path found from %s to %s within %d hops", from, to, *maxDepth))
		return
	}
	ui.Header(fmt.Sprintf("Path (%d hops)", len(result.Path)-1))
	for i, step := range result.Path {
		sym, _ := report.Graph.Symbol(step.Vertex)
		name := step.Vertex
		if sym != nil {
			name = sym.QualifiedName
		}
		if i == 0 {
			fmt.Printf("  %s\n", name)
			continue
		}
		fmt.Printf("  --[%s]--> %s\n", step.Kind, name)
	}
}

func runIsolateQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("isolate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: czi isolate <symbol> [path]\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)
	root := "."
	if fs.NArg() > 1 {
		root = fs.Arg(1)
	}

	report, err := runPipeline(context.Background(), root, globals)
	if err != nil {
		fatal(err, globals)
	}
	sym, err := resolveSymbol(report.Graph, name)
	if err != nil {
		fatal(err, globals)
	}
	surface := query.New(report.Graph, report.Reachable)
	boundary, err := surface.IsolationBoundary(sym.ID)
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		_ = output.JSON(boundary)
		return
	}
	if boundary.Distance == 0 {
		ui.Success(fmt.Sprintf("%s is already reachable from an active root", sym.QualifiedName))
		return
	}
	ui.Header(fmt.Sprintf("Isolation distance: %d", boundary.Distance))
	for _, s := range boundary.BoundarySymbols {
		fmt.Printf("  %s\n", s.QualifiedName)
	}
}

func runInfoQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: czi info <symbol> [path]\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)
	root := "."
	if fs.NArg() > 1 {
		root = fs.Arg(1)
	}

	report, err := runPipeline(context.Background(), root, globals)
	if err != nil {
		fatal(err, globals)
	}
	sym, err := resolveSymbol(report.Graph, name)
	if err != nil {
		fatal(err, globals)
	}
	surface := query.New(report.Graph, report.Reachable)
	info, err := surface.SymbolInfo(sym.ID)
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		_ = output.JSON(info)
		return
	}
	ui.Header(sym.Signature())
	fmt.Printf("  %s %s\n", ui.Label("Location:"), sym.Location())
	fmt.Printf("  %s %v\n", ui.Label("Root:"), sym.RootMark)
	fmt.Printf("  %s\n", ui.Label("Incoming:"))
	for k, n := range info.InByKind {
		fmt.Printf("    %s: %d\n", k, n)
	}
	fmt.Printf("  %s\n", ui.Label("Outgoing:"))
	for k, n := range info.OutByKind {
		fmt.Printf("    %s: %d\n", k, n)
	}
}
