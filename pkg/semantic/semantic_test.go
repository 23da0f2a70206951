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

package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/symbol"
)

func sym(id, name, qn, file string) *symbol.Symbol {
	return &symbol.Symbol{ID: id, Name: name, QualifiedName: qn, Kind: symbol.KindFunction, FilePath: file, Line: 1, RepositoryID: "repo1"}
}

func TestFileColocationAddsWeakImplementsEdge(t *testing.T) {
	g := graph.New()
	a := sym("s1", "A", "pkg.A", "x.go")
	b := sym("s2", "B", "pkg.B", "x.go")
	require.NoError(t, g.UpsertSymbol(a))
	require.NoError(t, g.UpsertSymbol(b))

	aug := NewAugmenter(DefaultConfig())
	require.NoError(t, aug.Augment(g))

	edges := g.Outgoing("s1")
	require.Len(t, edges, 1)
	assert.Equal(t, symbol.EdgeImplements, edges[0].Kind)
	assert.LessOrEqual(t, edges[0].Confidence, 0.5)
}

func TestNamingConventionFactoryLink(t *testing.T) {
	g := graph.New()
	factory := sym("s1", "createWidget", "pkg.createWidget", "a.go")
	product := sym("s2", "WidgetFactory", "pkg.WidgetFactory", "b.go")
	require.NoError(t, g.UpsertSymbol(factory))
	require.NoError(t, g.UpsertSymbol(product))

	aug := NewAugmenter(Config{Naming: true})
	require.NoError(t, aug.Augment(g))

	edges := g.Outgoing("s1")
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.LessOrEqual(t, e.Confidence, 0.6)
	}
}

func TestSemanticEdgesNeverOverwriteStrongerRealEdge(t *testing.T) {
	g := graph.New()
	a := sym("s1", "A", "pkg.A", "x.go")
	b := sym("s2", "B", "pkg.B", "x.go")
	require.NoError(t, g.UpsertSymbol(a))
	require.NoError(t, g.UpsertSymbol(b))
	_, _, err := g.AddEdge(&graph.DependencyEdge{ID: "real", Source: "s1", Target: "s2", Kind: symbol.EdgeImplements, Confidence: 0.95})
	require.NoError(t, err)

	aug := NewAugmenter(DefaultConfig())
	require.NoError(t, aug.Augment(g))

	edges := g.Outgoing("s1")
	require.Len(t, edges, 1)
	assert.Equal(t, 0.95, edges[0].Confidence, "weak semantic edge must not downgrade a stronger real edge")
}

func TestFrameworkAndAnnotationHooksExposedEmpty(t *testing.T) {
	aug := NewAugmenter(DefaultConfig())
	assert.Empty(t, aug.frameworkRules)
	assert.Empty(t, aug.annotationRules)

	called := false
	aug.RegisterFrameworkRule(func(symbols []*symbol.Symbol) []InferredLink {
		called = true
		return nil
	})
	g := graph.New()
	require.NoError(t, aug.Augment(g))
	assert.True(t, called)
}
