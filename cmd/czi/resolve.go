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
	"fmt"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/symbol"
)

// resolveSymbol looks up name against g: first as an exact qualified name,
// then as a unique simple name. An absent name fails with a NotFound
// error; a simple name shared by several symbols fails with a
// ValidationError giving the match count, so a CLI user sees why their
// query didn't resolve rather than a bare "not found".
func resolveSymbol(g *graph.Graph, name string) (*symbol.Symbol, error) {
	var bySimpleName []*symbol.Symbol
	for _, s := range g.Symbols() {
		if s.QualifiedName == name {
			return s, nil
		}
		if s.Name == name {
			bySimpleName = append(bySimpleName, s)
		}
	}
	switch len(bySimpleName) {
	case 0:
		return nil, cerrors.NewNotFoundError(name)
	case 1:
		return bySimpleName[0], nil
	default:
		return nil, cerrors.NewValidationError(fmt.Sprintf("%q matches %d symbols; use a fully qualified name", name, len(bySimpleName)), nil)
	}
}
