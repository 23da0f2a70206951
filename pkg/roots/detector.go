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

package roots

import (
	"strconv"
	"strings"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/symbol"
)

// customPattern is a user-supplied textual pattern attaching a Custom(tag)
// mark, scoped to one language (or every language when Language == "").
type customPattern struct {
	Language lang.Language
	Needle   string
	Tag      string
}

// Detector applies the built-in catalogue plus any user-registered custom
// patterns to a symbol's source span, and finalises the resulting
// ActiveRootMark — resolving multiple matches by precedence
// (Controller > Scheduler > Listener > Main > CommandLine > Test >
// Library; named tags always outrank Custom tags).
type Detector struct {
	custom []customPattern
}

// NewDetector returns a Detector with only the built-in catalogue active.
func NewDetector() *Detector {
	return &Detector{}
}

// RegisterCustomPattern adds a user-supplied pattern. An empty language
// applies the pattern across every language.
func (d *Detector) RegisterCustomPattern(language lang.Language, needle, tag string) {
	d.custom = append(d.custom, customPattern{Language: language, Needle: needle, Tag: tag})
}

// DetectSpan evaluates every pattern (built-in plus custom) against
// sourceSpan and returns the single highest-precedence mark, or the zero
// mark if nothing matched. fileSize is the enclosing source file's byte
// length, recorded on the winning mark as debugging metadata alongside
// the pattern text that matched — textual matching can fire on e.g. a
// comment mentioning an annotation, and the context helps diagnose that.
func (d *Detector) DetectSpan(l lang.Language, sourceSpan string, fileSize int) (symbol.ActiveRootMark, bool) {
	var best symbol.ActiveRootMark
	found := false

	for _, p := range MatchPatterns(l, sourceSpan) {
		candidate := symbol.ActiveRootMark{Tag: p.Tag, Metadata: matchMetadata(p.Needle, fileSize)}
		if !found || symbol.HigherPrecedence(candidate, best) {
			best, found = candidate, true
		}
	}

	for _, p := range d.custom {
		if p.Language != "" && p.Language != l {
			continue
		}
		if !strings.Contains(sourceSpan, p.Needle) {
			continue
		}
		candidate := symbol.ActiveRootMark{Custom: p.Tag, Metadata: matchMetadata(p.Needle, fileSize)}
		if !found || symbol.HigherPrecedence(candidate, best) {
			best, found = candidate, true
		}
	}

	return best, found
}

func matchMetadata(needle string, fileSize int) map[string]string {
	return map[string]string{
		"matched_pattern": needle,
		"file_size":       strconv.Itoa(fileSize),
	}
}

// MatchShellTopLevel marks functions that are invoked as part of the
// file's top-level command sequence (i.e. outside any function body) as
// Main. Shell has no textual main pattern, so this rule is structural.
func MatchShellTopLevel(topLevelInvokedNames map[string]bool, functionName string) (symbol.ActiveRootMark, bool) {
	if topLevelInvokedNames[functionName] {
		return symbol.ActiveRootMark{Tag: symbol.RootMain}, true
	}
	return symbol.ActiveRootMark{}, false
}

// Finalize applies every CandidateRoot produced by the extractor onto
// its Symbol in the (still writable) graph, resolving duplicate marks on
// the same symbol by precedence. The pipeline runs this after the graph
// merge and before semantic augmentation.
func Finalize(g *graph.Graph, candidates []symbol.CandidateRoot) {
	best := map[string]symbol.ActiveRootMark{}
	for _, c := range candidates {
		current, ok := best[c.SymbolFingerprint]
		if !ok || symbol.HigherPrecedence(c.Mark, current) {
			best[c.SymbolFingerprint] = c.Mark
		}
	}
	for fingerprint, mark := range best {
		if s, ok := g.Symbol(fingerprint); ok {
			s.RootMark = mark
		}
	}
}
