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

// Package graph implements the dependency multigraph: DependencyEdge, the
// frozen Graph value, and the single-writer Builder that interns
// Symbols, resolves RawReferences into edges, coalesces duplicates, and
// freezes the result.
package graph

import (
	"fmt"
	"time"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/pkg/symbol"
)

// strongThreshold is the confidence floor at or above which an edge is
// considered strong.
const strongThreshold = 0.7

// DependencyEdge is a typed, confidence-weighted directed link between two
// Symbols, present only in the built graph.
type DependencyEdge struct {
	ID         string
	Source     string
	Target     string
	Kind       symbol.EdgeKind
	Confidence float64
	Strong     bool
	File       string
	Line       int
	Metadata   map[string]string
	Discovered time.Time
}

// SetConfidence clamps c to [0,1] and recomputes Strong, matching
// czi_core's edge.set_confidence behaviour.
func (e *DependencyEdge) SetConfidence(c float64) {
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	e.Confidence = c
	e.Strong = e.Confidence >= strongThreshold
}

// MarkStrong forces the edge to strong by raising confidence to the
// threshold, never lowering an already-higher confidence.
func (e *DependencyEdge) MarkStrong() {
	if e.Confidence < strongThreshold {
		e.SetConfidence(strongThreshold)
	} else {
		e.Strong = true
	}
}

// MarkWeak forces the edge below the strong threshold.
func (e *DependencyEdge) MarkWeak() {
	if e.Confidence >= strongThreshold {
		e.SetConfidence(strongThreshold - 0.01)
	} else {
		e.Strong = false
	}
}

// IsCritical reports whether this edge represents a structural
// relationship that should survive any edge-pruning pass: Extends and
// Implements edges always are; Calls and Uses edges are critical only
// when strong.
func (e *DependencyEdge) IsCritical() bool {
	switch e.Kind {
	case symbol.EdgeExtends, symbol.EdgeImplements:
		return true
	case symbol.EdgeCalls, symbol.EdgeUses:
		return e.Strong
	default:
		return false
	}
}

// IsTransitive reports whether this edge may be elided from a direct-edge
// view in favour of an equivalent transitive path: DataFlow and
// ControlFlow edges are never considered transitive (they carry
// information no path replaces); Imports, Extends and Implements are
// always kept as direct edges; every other kind is transitive only when
// weak.
func (e *DependencyEdge) IsTransitive() bool {
	switch e.Kind {
	case symbol.EdgeDataFlow, symbol.EdgeControlFlow:
		return false
	case symbol.EdgeImports, symbol.EdgeExtends, symbol.EdgeImplements:
		return false
	default:
		return !e.Strong
	}
}

// Validate checks the edge invariants: distinct endpoints and clamped
// confidence consistent with Strong.
func (e *DependencyEdge) Validate() error {
	if e.Source == e.Target {
		return cerrors.NewValidationError("edge source and target must differ", nil)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return cerrors.NewValidationError("edge confidence must be in [0,1]", nil)
	}
	if e.Strong != (e.Confidence >= strongThreshold) {
		return cerrors.NewValidationError("edge strong flag inconsistent with confidence", nil)
	}
	return nil
}

// DisplayName renders "source -kind-> target" for human-readable output.
func (e *DependencyEdge) DisplayName() string {
	return fmt.Sprintf("%s -%s-> %s", e.Source, e.Kind, e.Target)
}

// Location renders "file:line" when known, else empty.
func (e *DependencyEdge) Location() string {
	if e.File == "" {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	return e.File
}

func coalesceKey(source, target string, kind symbol.EdgeKind) string {
	return source + "\x00" + target + "\x00" + string(kind)
}
