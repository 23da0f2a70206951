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

package reachability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/symbol"
)

func mk(id, name string) *symbol.Symbol {
	return &symbol.Symbol{ID: id, Name: name, QualifiedName: name, Kind: symbol.KindFunction, FilePath: "a.go", Line: 1, RepositoryID: "repo1"}
}

func TestComputeTransitiveClosure(t *testing.T) {
	g := graph.New()
	main := mk("main", "main")
	main.RootMark = symbol.ActiveRootMark{Tag: symbol.RootMain}
	a := mk("a", "a")
	b := mk("b", "b")
	orphan := mk("orphan", "orphan")
	require.NoError(t, g.UpsertSymbol(main))
	require.NoError(t, g.UpsertSymbol(a))
	require.NoError(t, g.UpsertSymbol(b))
	require.NoError(t, g.UpsertSymbol(orphan))

	_, _, err := g.AddEdge(&graph.DependencyEdge{ID: "e1", Source: "main", Target: "a", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)
	_, _, err = g.AddEdge(&graph.DependencyEdge{ID: "e2", Source: "a", Target: "b", Kind: symbol.EdgeCalls, Confidence: 1})
	require.NoError(t, err)

	r := Compute(g, nil)
	assert.True(t, r.Contains("main"))
	assert.True(t, r.Contains("a"))
	assert.True(t, r.Contains("b"))
	assert.False(t, r.Contains("orphan"))
}

func TestComputeNoRootsYieldsEmptySet(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.UpsertSymbol(mk("a", "a")))
	r := Compute(g, nil)
	assert.Empty(t, r)
}

func TestComputeRespectsIgnoredKinds(t *testing.T) {
	g := graph.New()
	main := mk("main", "main")
	main.RootMark = symbol.ActiveRootMark{Tag: symbol.RootMain}
	other := mk("other", "other")
	require.NoError(t, g.UpsertSymbol(main))
	require.NoError(t, g.UpsertSymbol(other))
	_, _, err := g.AddEdge(&graph.DependencyEdge{ID: "e1", Source: "main", Target: "other", Kind: symbol.EdgeReferences, Confidence: 1})
	require.NoError(t, err)

	r := Compute(g, map[symbol.EdgeKind]bool{symbol.EdgeReferences: true})
	assert.False(t, r.Contains("other"))
}
