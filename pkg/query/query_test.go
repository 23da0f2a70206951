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

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/reachability"
	"github.com/c2j/czi/pkg/symbol"
)

func mk(id, name string) *symbol.Symbol {
	return &symbol.Symbol{ID: id, Name: name, QualifiedName: name, Kind: symbol.KindFunction, FilePath: "a.go", Line: 1, RepositoryID: "repo1"}
}

func buildChain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.UpsertSymbol(mk("a", "a")))
	require.NoError(t, g.UpsertSymbol(mk("b", "b")))
	require.NoError(t, g.UpsertSymbol(mk("c", "c")))
	_, _, err := g.AddEdge(&graph.DependencyEdge{ID: "e1", Source: "a", Target: "b", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	_, _, err = g.AddEdge(&graph.DependencyEdge{ID: "e2", Source: "b", Target: "c", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	g.Freeze()
	return g
}

func TestDependenciesDirectAndIndirect(t *testing.T) {
	g := buildChain(t)
	s := New(g, reachability.Set{})

	direct, err := s.Dependencies("a", false)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, "b", direct[0].Target.ID)

	all, err := s.Dependencies("a", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Target.ID)
	assert.Equal(t, "c", all[1].Target.ID)
	assert.Equal(t, 2, all[1].Distance)
}

func TestDependenciesNotFound(t *testing.T) {
	g := buildChain(t)
	s := New(g, reachability.Set{})
	_, err := s.Dependencies("missing", false)
	assert.Error(t, err)
}

func TestPathBetweenShortestPath(t *testing.T) {
	g := buildChain(t)
	s := New(g, reachability.Set{})

	res, err := s.PathBetween("a", "c", 5)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Len(t, res.Path, 3)
	assert.Equal(t, "c", res.Path[2].Vertex)
}

func TestPathBetweenBoundedByMaxDepth(t *testing.T) {
	g := buildChain(t)
	s := New(g, reachability.Set{})

	res, err := s.PathBetween("a", "c", 1)
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestSymbolInfoCountsByKind(t *testing.T) {
	g := buildChain(t)
	s := New(g, reachability.Set{})

	info, err := s.SymbolInfo("b")
	require.NoError(t, err)
	assert.Equal(t, 1, info.InByKind[symbol.EdgeCalls])
	assert.Equal(t, 1, info.OutByKind[symbol.EdgeCalls])
}

func TestIsolationBoundary(t *testing.T) {
	g := buildChain(t)
	r := reachability.Set{"c": true}
	s := New(g, r)

	b, err := s.IsolationBoundary("a")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Distance)
	require.Len(t, b.BoundarySymbols, 1)
	assert.Equal(t, "c", b.BoundarySymbols[0].ID)
}

// TestIsolationBoundaryCollectsWholeLayer builds a root with two branches
// of equal length, each bordering a distinct reachable symbol at the same
// hop count. Both boundary symbols must be reported, not just the one
// found via whichever branch the BFS happens to pop first.
func TestIsolationBoundaryCollectsWholeLayer(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.UpsertSymbol(mk("root", "root")))
	require.NoError(t, g.UpsertSymbol(mk("left", "left")))
	require.NoError(t, g.UpsertSymbol(mk("right", "right")))
	require.NoError(t, g.UpsertSymbol(mk("leftActive", "leftActive")))
	require.NoError(t, g.UpsertSymbol(mk("rightActive", "rightActive")))
	_, _, err := g.AddEdge(&graph.DependencyEdge{ID: "e1", Source: "root", Target: "left", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	_, _, err = g.AddEdge(&graph.DependencyEdge{ID: "e2", Source: "root", Target: "right", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	_, _, err = g.AddEdge(&graph.DependencyEdge{ID: "e3", Source: "left", Target: "leftActive", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	_, _, err = g.AddEdge(&graph.DependencyEdge{ID: "e4", Source: "right", Target: "rightActive", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	g.Freeze()

	r := reachability.Set{"leftActive": true, "rightActive": true}
	s := New(g, r)

	b, err := s.IsolationBoundary("root")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Distance)
	require.Len(t, b.BoundarySymbols, 2)
	assert.Equal(t, "leftActive", b.BoundarySymbols[0].ID)
	assert.Equal(t, "rightActive", b.BoundarySymbols[1].ID)
}
