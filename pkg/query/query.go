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

// Package query implements the read-only query surface
// over a frozen Graph: dependencies, dependents, path-between, isolation
// boundary, and symbol lookup.
package query

import (
	"sort"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/reachability"
	"github.com/c2j/czi/pkg/symbol"
)

// Surface is the read-only query surface over a frozen Graph and its
// reachable set. Every method is safe for concurrent use by any number of
// readers, since it never mutates the underlying graph.
type Surface struct {
	g *graph.Graph
	r reachability.Set
}

// New returns a Surface over g (which must already be frozen) and its
// reachable set r.
func New(g *graph.Graph, r reachability.Set) *Surface {
	return &Surface{g: g, r: r}
}

// EdgeTarget pairs an edge with the Symbol it points at (or originates
// from, for dependents), plus the BFS distance at which it was found (1
// for direct edges).
type EdgeTarget struct {
	Edge     *graph.DependencyEdge
	Target   *symbol.Symbol
	Distance int
}

// Dependencies returns symbolID's outgoing edges. When includeIndirect is
// true, the transitive closure is appended after the direct edges,
// ordered by BFS distance then target qualified name; direct edges sort
// by target qualified name. Fails with NotFound if symbolID is absent.
func (s *Surface) Dependencies(symbolID string, includeIndirect bool) ([]EdgeTarget, error) {
	return s.traverse(symbolID, includeIndirect, s.g.Outgoing, func(e *graph.DependencyEdge) string { return e.Target })
}

// Dependents is the symmetric query over incoming edges.
func (s *Surface) Dependents(symbolID string, includeIndirect bool) ([]EdgeTarget, error) {
	return s.traverse(symbolID, includeIndirect, s.g.Incoming, func(e *graph.DependencyEdge) string { return e.Source })
}

func (s *Surface) traverse(symbolID string, includeIndirect bool, edgesOf func(string) []*graph.DependencyEdge, endpoint func(*graph.DependencyEdge) string) ([]EdgeTarget, error) {
	if _, ok := s.g.Symbol(symbolID); !ok {
		return nil, cerrors.NewNotFoundError(symbolID)
	}

	seen := map[string]bool{} // distinct (target,kind) dedup key
	var direct []EdgeTarget
	for _, e := range edgesOf(symbolID) {
		key := endpoint(e) + "\x00" + string(e.Kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		target, _ := s.g.Symbol(endpoint(e))
		direct = append(direct, EdgeTarget{Edge: e, Target: target, Distance: 1})
	}
	sort.Slice(direct, func(i, j int) bool {
		return direct[i].Target.QualifiedName < direct[j].Target.QualifiedName
	})

	if !includeIndirect {
		return direct, nil
	}

	visited := map[string]bool{symbolID: true}
	for _, d := range direct {
		visited[d.Target.ID] = true
	}
	queue := make([]string, 0, len(direct))
	for _, d := range direct {
		queue = append(queue, d.Target.ID)
	}
	distance := 1
	var indirect []EdgeTarget
	for len(queue) > 0 {
		distance++
		var next []string
		for _, cur := range queue {
			for _, e := range edgesOf(cur) {
				tid := endpoint(e)
				if visited[tid] {
					continue
				}
				visited[tid] = true
				target, _ := s.g.Symbol(tid)
				key := tid + "\x00" + string(e.Kind)
				if seen[key] {
					continue
				}
				seen[key] = true
				indirect = append(indirect, EdgeTarget{Edge: e, Target: target, Distance: distance})
				next = append(next, tid)
			}
		}
		queue = next
	}
	sort.SliceStable(indirect, func(i, j int) bool {
		if indirect[i].Distance != indirect[j].Distance {
			return indirect[i].Distance < indirect[j].Distance
		}
		return indirect[i].Target.QualifiedName < indirect[j].Target.QualifiedName
	})

	return append(direct, indirect...), nil
}

// PathStep is one (vertex, edge-kind) hop in a path_between result.
type PathStep struct {
	Vertex string
	Kind   symbol.EdgeKind // empty for the first vertex
}

// PathResult is the path_between result.
type PathResult struct {
	Found bool
	Path  []PathStep
}

// PathBetween finds the shortest path from `from` to `to` via outgoing
// edges, bounded by maxDepth hops, tie-broken by ascending edge-kind
// identifier at each step. Fails with NotFound if either endpoint is
// absent from the graph.
func (s *Surface) PathBetween(from, to string, maxDepth int) (PathResult, error) {
	if _, ok := s.g.Symbol(from); !ok {
		return PathResult{}, cerrors.NewNotFoundError(from)
	}
	if _, ok := s.g.Symbol(to); !ok {
		return PathResult{}, cerrors.NewNotFoundError(to)
	}
	if from == to {
		return PathResult{Found: true, Path: []PathStep{{Vertex: from}}}, nil
	}

	type frame struct {
		vertex string
		path   []PathStep
	}
	visited := map[string]bool{from: true}
	queue := []frame{{vertex: from, path: []PathStep{{Vertex: from}}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []frame
		for _, f := range queue {
			edges := append([]*graph.DependencyEdge(nil), s.g.Outgoing(f.vertex)...)
			sort.Slice(edges, func(i, j int) bool { return edges[i].Kind < edges[j].Kind })
			for _, e := range edges {
				if visited[e.Target] {
					continue
				}
				visited[e.Target] = true
				path := append(append([]PathStep(nil), f.path...), PathStep{Vertex: e.Target, Kind: e.Kind})
				if e.Target == to {
					return PathResult{Found: true, Path: path}, nil
				}
				next = append(next, frame{vertex: e.Target, path: path})
			}
		}
		queue = next
	}
	return PathResult{Found: false}, nil
}

// IsolationBoundary is the isolation_boundary query result.
type IsolationBoundary struct {
	Distance            int
	BoundarySymbols     []*symbol.Symbol
	NearestActiveSymbol *symbol.Symbol
}

// IsolationBoundary computes the shortest undirected-projection distance
// from symbolID to the reachable set, and every reachable symbol at
// exactly that distance.
func (s *Surface) IsolationBoundary(symbolID string) (IsolationBoundary, error) {
	if _, ok := s.g.Symbol(symbolID); !ok {
		return IsolationBoundary{}, cerrors.NewNotFoundError(symbolID)
	}
	if s.r.Contains(symbolID) {
		return IsolationBoundary{Distance: 0, BoundarySymbols: nil}, nil
	}

	visited := map[string]bool{symbolID: true}
	frontier := []string{symbolID}
	dist := 0

	for len(frontier) > 0 {
		var boundary []*symbol.Symbol
		var next []string
		for _, cur := range frontier {
			for _, n := range s.g.Neighbors(cur) {
				if s.r.Contains(n) {
					if sym, ok := s.g.Symbol(n); ok {
						boundary = append(boundary, sym)
					}
					continue
				}
				if visited[n] {
					continue
				}
				visited[n] = true
				next = append(next, n)
			}
		}
		if len(boundary) > 0 {
			sort.Slice(boundary, func(i, j int) bool { return boundary[i].ID < boundary[j].ID })
			dedup := boundary[:0]
			seen := map[string]bool{}
			for _, sym := range boundary {
				if seen[sym.ID] {
					continue
				}
				seen[sym.ID] = true
				dedup = append(dedup, sym)
			}
			return IsolationBoundary{Distance: dist + 1, BoundarySymbols: dedup, NearestActiveSymbol: dedup[0]}, nil
		}
		frontier = next
		dist++
	}
	return IsolationBoundary{Distance: -1}, nil
}

// SymbolInfo is the symbol_info query result.
type SymbolInfo struct {
	Symbol    *symbol.Symbol
	InByKind  map[symbol.EdgeKind]int
	OutByKind map[symbol.EdgeKind]int
}

// SymbolInfo returns symbolID's Symbol plus summary in/out edge counts
// grouped by kind. Fails with NotFound if absent.
func (s *Surface) SymbolInfo(symbolID string) (SymbolInfo, error) {
	sym, ok := s.g.Symbol(symbolID)
	if !ok {
		return SymbolInfo{}, cerrors.NewNotFoundError(symbolID)
	}
	in := map[symbol.EdgeKind]int{}
	for _, e := range s.g.Incoming(symbolID) {
		in[e.Kind]++
	}
	out := map[symbol.EdgeKind]int{}
	for _, e := range s.g.Outgoing(symbolID) {
		out[e.Kind]++
	}
	return SymbolInfo{Symbol: sym, InByKind: in, OutByKind: out}, nil
}
