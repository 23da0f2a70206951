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

package graph

import (
	"sort"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/pkg/symbol"
)

// Graph is a directed multigraph over Symbols (vertices) and
// DependencyEdges (edges). It owns all Symbols and Edges for the duration
// of a run. Once frozen, it is immutable: all mutating methods fail with
// InvalidState.
type Graph struct {
	frozen bool

	symbols map[string]*symbol.Symbol
	edges   map[string]*DependencyEdge // by edge id

	out map[string][]string // source id -> edge ids, insertion order
	in  map[string][]string // target id -> edge ids, insertion order
}

// New returns an empty, writable Graph.
func New() *Graph {
	return &Graph{
		symbols: make(map[string]*symbol.Symbol),
		edges:   make(map[string]*DependencyEdge),
		out:     make(map[string][]string),
		in:      make(map[string][]string),
	}
}

// Frozen reports whether the graph has been frozen and is now read-only.
func (g *Graph) Frozen() bool { return g.frozen }

// Freeze marks the graph immutable. Subsequent writes fail with
// InvalidState.
func (g *Graph) Freeze() { g.frozen = true }

func (g *Graph) checkWritable() error {
	if g.frozen {
		return cerrors.NewInvalidStateError("write attempted on a frozen graph")
	}
	return nil
}

// Symbol returns the vertex with the given id, or (nil, false).
func (g *Graph) Symbol(id string) (*symbol.Symbol, bool) {
	s, ok := g.symbols[id]
	return s, ok
}

// NumSymbols returns the vertex count.
func (g *Graph) NumSymbols() int { return len(g.symbols) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Symbols returns every vertex, in ascending id order, so callers iterate
// deterministically.
func (g *Graph) Symbols() []*symbol.Symbol {
	out := make([]*symbol.Symbol, 0, len(g.symbols))
	for _, s := range g.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpsertSymbol interns s: if a vertex with the same id already exists, its
// metadata is unioned (later wins on conflicting keys) but its identity is
// preserved; otherwise s is inserted as a new vertex.
func (g *Graph) UpsertSymbol(s *symbol.Symbol) error {
	if err := g.checkWritable(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if existing, ok := g.symbols[s.ID]; ok {
		unionMetadata(existing.Metadata, s.Metadata)
		if !existing.IsRoot() && s.IsRoot() {
			existing.RootMark = s.RootMark
		} else if existing.IsRoot() && s.IsRoot() && symbol.HigherPrecedence(s.RootMark, existing.RootMark) {
			existing.RootMark = s.RootMark
		}
		return nil
	}
	cp := *s
	if cp.Metadata == nil {
		cp.Metadata = map[string]string{}
	}
	g.symbols[cp.ID] = &cp
	return nil
}

func unionMetadata(dst, src map[string]string) {
	if dst == nil || src == nil {
		return
	}
	for k, v := range src {
		dst[k] = v
	}
}

// AddEdge inserts e, prohibiting self-edges, and coalescing with any
// existing edge sharing (source, target, kind) by keeping the maximum
// confidence and unioning metadata (later wins on key conflicts).
// Returns the edge id actually stored (which may be an existing edge's id
// when coalesced) and whether a new edge was created.
func (g *Graph) AddEdge(e *DependencyEdge) (string, bool, error) {
	if err := g.checkWritable(); err != nil {
		return "", false, err
	}
	if e.Source == e.Target {
		return "", false, nil // self-edges silently dropped
	}
	if _, ok := g.symbols[e.Source]; !ok {
		return "", false, cerrors.NewValidationError("edge source not present in graph", nil)
	}
	if _, ok := g.symbols[e.Target]; !ok {
		return "", false, cerrors.NewValidationError("edge target not present in graph", nil)
	}
	e.SetConfidence(e.Confidence)

	key := coalesceKey(e.Source, e.Target, e.Kind)
	for _, eid := range g.out[e.Source] {
		existing := g.edges[eid]
		if coalesceKey(existing.Source, existing.Target, existing.Kind) != key {
			continue
		}
		if e.Confidence > existing.Confidence {
			existing.SetConfidence(e.Confidence)
		}
		unionMetadata(existing.Metadata, e.Metadata)
		if existing.File == "" {
			existing.File = e.File
			existing.Line = e.Line
		}
		return existing.ID, false, nil
	}

	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	g.edges[e.ID] = e
	g.out[e.Source] = append(g.out[e.Source], e.ID)
	g.in[e.Target] = append(g.in[e.Target], e.ID)
	return e.ID, true, nil
}

// Edge returns the edge with the given id, or (nil, false).
func (g *Graph) Edge(id string) (*DependencyEdge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Outgoing returns the edges leaving symbolID, in insertion order.
func (g *Graph) Outgoing(symbolID string) []*DependencyEdge {
	ids := g.out[symbolID]
	result := make([]*DependencyEdge, 0, len(ids))
	for _, id := range ids {
		result = append(result, g.edges[id])
	}
	return result
}

// Incoming returns the edges arriving at symbolID, in insertion order.
func (g *Graph) Incoming(symbolID string) []*DependencyEdge {
	ids := g.in[symbolID]
	result := make([]*DependencyEdge, 0, len(ids))
	for _, id := range ids {
		result = append(result, g.edges[id])
	}
	return result
}

// InDegree returns len(Incoming(symbolID)).
func (g *Graph) InDegree(symbolID string) int { return len(g.in[symbolID]) }

// OutDegree returns len(Outgoing(symbolID)).
func (g *Graph) OutDegree(symbolID string) int { return len(g.out[symbolID]) }

// Neighbors returns the set of distinct symbol ids reachable by exactly
// one edge in either direction — the undirected projection used by
// isolation-distance BFS.
func (g *Graph) Neighbors(symbolID string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.out[symbolID] {
		edge := g.edges[e]
		if !seen[edge.Target] {
			seen[edge.Target] = true
			out = append(out, edge.Target)
		}
	}
	for _, e := range g.in[symbolID] {
		edge := g.edges[e]
		if !seen[edge.Source] {
			seen[edge.Source] = true
			out = append(out, edge.Source)
		}
	}
	return out
}
