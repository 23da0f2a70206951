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

// Package semantic implements the semantic link augmenter:
// edges inferred from naming conventions, file co-location, and
// package-level name segments, plus empty-but-exposed framework and
// annotation extension points. Every edge added here goes through the
// graph's coalescing so it can never overwrite a stronger real edge.
package semantic

import (
	"sort"
	"strings"
	"time"

	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/symbol"
)

// Config toggles the four link families, all default-on.
type Config struct {
	Naming     bool
	Framework  bool
	Annotation bool
	FileBased  bool
}

// DefaultConfig returns the default: every family enabled.
func DefaultConfig() Config {
	return Config{Naming: true, Framework: true, Annotation: true, FileBased: true}
}

const (
	fileColocationConfidence = 0.5
	namingConfidence         = 0.6
	packageLevelConfidence   = 0.3
)

// LinkRule is the framework/annotation extension point, kept exposed even
// though the seed catalogue is empty: a rule receives every interned
// symbol and may return additional (source, target, kind, confidence)
// links to add.
type LinkRule func(symbols []*symbol.Symbol) []InferredLink

// InferredLink is a semantic-layer edge candidate before it is turned
// into a DependencyEdge and merged via the graph's coalescing.
type InferredLink struct {
	Source     string
	Target     string
	Kind       symbol.EdgeKind
	Confidence float64
}

// Augmenter runs the configured link families over a graph's interned
// symbols and adds the resulting edges.
type Augmenter struct {
	cfg             Config
	frameworkRules  []LinkRule
	annotationRules []LinkRule
}

// NewAugmenter returns an Augmenter configured per cfg. The framework and
// annotation hooks start empty; RegisterFrameworkRule /
// RegisterAnnotationRule let a caller seed one.
func NewAugmenter(cfg Config) *Augmenter {
	return &Augmenter{cfg: cfg}
}

// RegisterFrameworkRule adds a framework-specific link rule (e.g. Spring
// bean wiring, Express route tables). Seeded empty by default.
func (a *Augmenter) RegisterFrameworkRule(r LinkRule) { a.frameworkRules = append(a.frameworkRules, r) }

// RegisterAnnotationRule adds an annotation-driven link rule (e.g.
// @Autowired). Seeded empty by default.
func (a *Augmenter) RegisterAnnotationRule(r LinkRule) {
	a.annotationRules = append(a.annotationRules, r)
}

// Augment adds every enabled family's inferred edges to g, which must
// still be writable (Augment runs after the builder's resolution pass
// and before the graph is frozen).
func (a *Augmenter) Augment(g *graph.Graph) error {
	symbols := g.Symbols()

	if a.cfg.FileBased {
		for _, link := range fileColocationLinks(symbols) {
			if err := addLink(g, link, fileColocationConfidence); err != nil {
				return err
			}
		}
	}
	if a.cfg.Naming {
		for _, link := range namingConventionLinks(symbols) {
			if err := addLink(g, link, namingConfidence); err != nil {
				return err
			}
		}
		for _, link := range packageLevelLinks(symbols) {
			if err := addLink(g, link, packageLevelConfidence); err != nil {
				return err
			}
		}
	}
	if a.cfg.Framework {
		for _, rule := range a.frameworkRules {
			for _, link := range rule(symbols) {
				if err := addLink(g, link, namingConfidence); err != nil {
					return err
				}
			}
		}
	}
	if a.cfg.Annotation {
		for _, rule := range a.annotationRules {
			for _, link := range rule(symbols) {
				if err := addLink(g, link, namingConfidence); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addLink clamps the link to its family's confidence ceiling (the
// ceilings are part of the contract, enforced here rather than trusted)
// and merges it through the graph's coalescing so it can never overwrite
// a stronger real edge.
func addLink(g *graph.Graph, link InferredLink, ceiling float64) error {
	if link.Confidence > ceiling {
		link.Confidence = ceiling
	}
	edge := &graph.DependencyEdge{
		ID:         "semantic:" + link.Source + ":" + link.Target + ":" + string(link.Kind),
		Source:     link.Source,
		Target:     link.Target,
		Kind:       link.Kind,
		Confidence: link.Confidence,
		Discovered: time.Now(),
	}
	_, _, err := g.AddEdge(edge)
	return err
}

// fileColocationLinks implements the file-co-location rule: every pair of
// symbols in the same (repository_id, file_path) gets a weak Implements
// edge. Deliberately loose; a dedicated co-located edge kind would be a
// more honest label and is a candidate replacement.
func fileColocationLinks(symbols []*symbol.Symbol) []InferredLink {
	byFile := map[string][]*symbol.Symbol{}
	for _, s := range symbols {
		key := s.RepositoryID + "\x00" + s.FilePath
		byFile[key] = append(byFile[key], s)
	}
	var links []InferredLink
	for _, key := range sortedKeys(byFile) {
		group := byFile[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				links = append(links,
					InferredLink{Source: group[i].ID, Target: group[j].ID, Kind: symbol.EdgeImplements, Confidence: fileColocationConfidence},
					InferredLink{Source: group[j].ID, Target: group[i].ID, Kind: symbol.EdgeImplements, Confidence: fileColocationConfidence},
				)
			}
		}
	}
	return links
}

// namingConventionLinks implements the pairwise naming-convention rule:
// shared prefix > 2 chars, or factory/util/helper patterns.
func namingConventionLinks(symbols []*symbol.Symbol) []InferredLink {
	var links []InferredLink
	for i := 0; i < len(symbols); i++ {
		for j := 0; j < len(symbols); j++ {
			if i == j {
				continue
			}
			a, b := symbols[i], symbols[j]
			if kind, ok := namingRelation(a.Name, b.Name); ok {
				links = append(links, InferredLink{Source: a.ID, Target: b.ID, Kind: kind, Confidence: namingConfidence})
			}
		}
	}
	return links
}

func namingRelation(a, b string) (symbol.EdgeKind, bool) {
	if isFactoryOf(a, b) || isUtilOf(a, b) || isHelperOf(a, b) {
		return symbol.EdgeImplements, true
	}
	if commonPrefixLen(a, b) > 2 {
		return symbol.EdgeCalls, true
	}
	return "", false
}

func isFactoryOf(factory, product string) bool {
	return strings.HasPrefix(factory, "create") && strings.HasSuffix(product, "Factory")
}

func isUtilOf(util, other string) bool {
	isUtilName := strings.HasSuffix(util, "Util") || strings.HasSuffix(util, "Utils")
	return isUtilName && strings.Contains(other, "Util")
}

func isHelperOf(helper, peer string) bool {
	return strings.HasPrefix(helper, "helper") && !strings.HasPrefix(peer, "helper")
}

// sortedKeys pins group-iteration order so edge insertion into the graph
// is deterministic run to run, not map-iteration-ordered.
func sortedKeys(m map[string][]*symbol.Symbol) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// packageLevelLinks implements the `::`-segment rule: names sharing their
// first `::`-delimited segment get a low-confidence link.
func packageLevelLinks(symbols []*symbol.Symbol) []InferredLink {
	byFirstSegment := map[string][]*symbol.Symbol{}
	for _, s := range symbols {
		segs := strings.SplitN(s.QualifiedName, "::", 2)
		if len(segs) < 2 {
			continue
		}
		byFirstSegment[segs[0]] = append(byFirstSegment[segs[0]], s)
	}
	var links []InferredLink
	for _, seg := range sortedKeys(byFirstSegment) {
		group := byFirstSegment[seg]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				links = append(links, InferredLink{Source: group[i].ID, Target: group[j].ID, Kind: symbol.EdgeReferences, Confidence: packageLevelConfidence})
			}
		}
	}
	return links
}
