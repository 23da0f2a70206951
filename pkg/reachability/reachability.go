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

// Package reachability implements the forward BFS reachability engine:
// starting from every active-root symbol, follow outgoing edges
// regardless of kind (unless explicitly ignored) and regardless of
// confidence, producing the reachable set R.
package reachability

import (
	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/symbol"
)

// Set is the reachable set R: the ids of every Symbol reached by forward
// traversal from an active root.
type Set map[string]bool

// Contains reports whether id is in R.
func (s Set) Contains(id string) bool { return s[id] }

// Roots returns every Symbol in g carrying an ActiveRootMark.
func Roots(g *graph.Graph) []*symbol.Symbol {
	var roots []*symbol.Symbol
	for _, s := range g.Symbols() {
		if s.IsRoot() {
			roots = append(roots, s)
		}
	}
	return roots
}

// Compute runs forward BFS from every root in g, following outgoing edges
// whose kind is not in ignoredKinds. R is empty (not an error) when g has
// no roots — every symbol then becomes a zombie candidate.
func Compute(g *graph.Graph, ignoredKinds map[symbol.EdgeKind]bool) Set {
	reached := Set{}
	queue := make([]string, 0)

	for _, root := range Roots(g) {
		if !reached[root.ID] {
			reached[root.ID] = true
			queue = append(queue, root.ID)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g.Outgoing(current) {
			if ignoredKinds[edge.Kind] {
				continue
			}
			if reached[edge.Target] {
				continue
			}
			reached[edge.Target] = true
			queue = append(queue, edge.Target)
		}
	}

	return reached
}
