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

// Package zombie implements the zombie classifier:
// categorising every symbol outside the reachable set by kind, scoring
// its confidence, and computing its isolation distance.
package zombie

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/reachability"
	"github.com/c2j/czi/pkg/symbol"
)

// Kind is one of the three zombie classifications, a function of
// (indeg, outdeg, reachability).
type Kind string

const (
	// DeadCode: no outgoing and no incoming edges.
	DeadCode Kind = "DeadCode"
	// Orphaned: has outgoing edges but no incoming edges.
	Orphaned Kind = "Orphaned"
	// Unreachable: has incoming edges but is not transitively reachable.
	Unreachable Kind = "Unreachable"
)

// Infinite is the isolation-distance sentinel used when no reachable
// symbol exists in the undirected projection.
const Infinite = math.MaxInt32

// Finding is a ZombieFinding: a symbol outside R, with its kind,
// confidence, and isolation distance.
type Finding struct {
	ID                string
	Symbol            *symbol.Symbol
	Kind              Kind
	Confidence        float64
	IsolationDistance int
	Generated         time.Time

	// Metadata mirrors the symbol's own metadata at classification time
	// (e.g. "last_modified_unix" when the caller supplied a git-blame
	// derived timestamp via the source-provider interface). It is
	// read-only enrichment, never a scoring input — the scoring weights are
	// the full confidence contract.
	Metadata map[string]string
}

// Config exposes the confidence weights as named values; they default to
// the contract values and are not altered by any optional enrichment field
// (e.g. LastModified).
type Config struct {
	LongOrUnderscoredNamePenalty float64
	TestPathPenalty              float64
	FullyIsolatedBonus           float64
	LongNameThreshold            int
	// ApproximateIsolationDistance switches isolation distance to the
	// cheaper |out| approximation instead of true BFS. Default false;
	// whichever metric runs is recorded in the run's Stats.
	ApproximateIsolationDistance bool
}

// DefaultConfig returns the default contract weights.
func DefaultConfig() Config {
	return Config{
		LongOrUnderscoredNamePenalty: 0.1,
		TestPathPenalty:              0.3,
		FullyIsolatedBonus:           0.2,
		LongNameThreshold:            20,
	}
}

// Classify emits a ZombieFinding for every symbol in g not present in r,
// ordered by descending confidence with ties broken by ascending
// qualified name. It never fails: an empty graph yields an empty list.
func Classify(g *graph.Graph, r reachability.Set, cfg Config) []Finding {
	var findings []Finding
	for _, s := range g.Symbols() {
		if r.Contains(s.ID) {
			continue
		}
		in := g.InDegree(s.ID)
		out := g.OutDegree(s.ID)
		kind := classifyKind(in, out)
		dist := isolationDistance(g, r, s.ID, out, cfg.ApproximateIsolationDistance)
		confidence := scoreConfidence(s, kind, in, out, cfg)

		findings = append(findings, Finding{
			ID:                "finding:" + s.ID,
			Symbol:            s,
			Kind:              kind,
			Confidence:        confidence,
			IsolationDistance: dist,
			Generated:         time.Now(),
			Metadata:          s.Metadata,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		return findings[i].Symbol.QualifiedName < findings[j].Symbol.QualifiedName
	})

	return findings
}

func classifyKind(in, out int) Kind {
	switch {
	case in == 0 && out == 0:
		return DeadCode
	case in == 0 && out > 0:
		return Orphaned
	default:
		return Unreachable
	}
}

// isolationDistance computes the shortest undirected-projection hop count
// from symbolID to any symbol in r, or Infinite if none exists.
func isolationDistance(g *graph.Graph, r reachability.Set, symbolID string, outDegree int, approximate bool) int {
	if approximate {
		return outDegree
	}
	if len(r) == 0 {
		return Infinite
	}

	visited := map[string]bool{symbolID: true}
	queue := []struct {
		id   string
		dist int
	}{{symbolID, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if r.Contains(cur.id) {
			return cur.dist
		}
		for _, next := range g.Neighbors(cur.id) {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, struct {
				id   string
				dist int
			}{next, cur.dist + 1})
		}
	}
	return Infinite
}

func scoreConfidence(s *symbol.Symbol, kind Kind, in, out int, cfg Config) float64 {
	confidence := 1.0
	if len(s.Name) > cfg.LongNameThreshold || strings.Contains(s.Name, "_") {
		confidence -= cfg.LongOrUnderscoredNamePenalty
	}
	lowerPath := strings.ToLower(s.FilePath)
	if strings.Contains(lowerPath, "test") || strings.Contains(lowerPath, "spec") {
		confidence -= cfg.TestPathPenalty
	}
	if kind == DeadCode && in == 0 && out == 0 {
		confidence += cfg.FullyIsolatedBonus
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return confidence
}
