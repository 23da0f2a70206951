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
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/c2j/czi/pkg/symbol"
)

// pendingRef buffers a RawReference plus enough context (repository,
// file, line order) to resolve it deterministically once every file has
// been interned.
type pendingRef struct {
	ref  *symbol.RawReference
	repo string
	file string
	line int
}

// Builder is the single-writer graph-merge phase. Callers
// feed it one file's extraction output at a time (AddFile), in any order;
// call ResolveReferences once every file has been added to turn buffered
// RawReferences into DependencyEdges, then Freeze the underlying Graph.
//
// Builder is not safe for concurrent use; the pipeline (pkg/analysis) runs
// a single merge goroutine consuming a queue of per-file outputs.
// Every index below is scoped by repository id: a graph may span several
// input repositories, and a reference in one repository must never
// resolve to a symbol in another just because the two share a relative
// file path or a simple name.
type Builder struct {
	g *Graph

	byQualifiedName     map[string][]string            // (repo, qualified name) -> symbol ids
	byFileSimpleName    map[string]map[string][]string // (repo, file) -> simple name -> symbol ids
	byPackageSimpleName map[string]map[string][]string // package key -> simple name -> symbol ids
	byGlobalSimpleName  map[string][]string            // (repo, simple name) -> symbol ids
	fileImports         map[string]map[string]string   // (repo, file) -> local alias -> qualified name or package path

	pending []pendingRef

	resolutionMisses int
	ambiguousDrops   int
	edgesCoalesced   int
}

// NewBuilder returns an empty Builder over a fresh writable Graph.
func NewBuilder() *Builder {
	return &Builder{
		g:                   New(),
		byQualifiedName:     make(map[string][]string),
		byFileSimpleName:    make(map[string]map[string][]string),
		byPackageSimpleName: make(map[string]map[string][]string),
		byGlobalSimpleName:  make(map[string][]string),
		fileImports:         make(map[string]map[string]string),
	}
}

// Graph returns the (possibly still unfrozen) underlying graph.
func (b *Builder) Graph() *Graph { return b.g }

// ResolutionMisses returns the count of RawReferences dropped unresolved.
func (b *Builder) ResolutionMisses() int { return b.resolutionMisses }

// AmbiguousDrops returns how many of the resolution misses were dropped
// specifically because more than one symbol shared the referenced simple
// name in the final, global rule — the "ambiguous, dropped with a note"
// case, kept distinct from plain no-match-anywhere misses.
func (b *Builder) AmbiguousDrops() int { return b.ambiguousDrops }

// EdgesCoalesced returns the count of resolved references merged into an
// existing (source, target, kind) edge instead of creating a new one.
func (b *Builder) EdgesCoalesced() int { return b.edgesCoalesced }

func packageKey(s *symbol.Symbol) string {
	if pkg, ok := s.Metadata["package"]; ok && pkg != "" {
		return s.RepositoryID + "\x00" + pkg
	}
	return s.RepositoryID + "\x00" + filepath.Dir(s.FilePath)
}

// scoped prefixes an index key with its repository id.
func scoped(repo, key string) string {
	return repo + "\x00" + key
}

// AddFile interns one file's Symbols, indexes them for reference
// resolution, and buffers its RawReferences and import table for the
// later resolution pass. repositoryID is the repository the file (and so
// every buffered reference) belongs to; imports maps a local alias/name
// (as written in source) to the qualified name or package path it refers
// to.
func (b *Builder) AddFile(repositoryID string, symbols_ []*symbol.Symbol, refs []*symbol.RawReference, imports map[string]string) error {
	for _, s := range symbols_ {
		if err := b.g.UpsertSymbol(s); err != nil {
			return fmt.Errorf("intern symbol %q: %w", s.ID, err)
		}
		qnKey := scoped(s.RepositoryID, s.QualifiedName)
		b.byQualifiedName[qnKey] = appendUnique(b.byQualifiedName[qnKey], s.ID)
		b.indexSimpleName(b.byFileSimpleName, scoped(s.RepositoryID, s.FilePath), s)
		b.indexSimpleName(b.byPackageSimpleName, packageKey(s), s)
		nameKey := scoped(s.RepositoryID, s.Name)
		b.byGlobalSimpleName[nameKey] = appendUnique(b.byGlobalSimpleName[nameKey], s.ID)

		if len(imports) > 0 {
			fileKey := scoped(s.RepositoryID, s.FilePath)
			if b.fileImports[fileKey] == nil {
				b.fileImports[fileKey] = map[string]string{}
			}
			for k, v := range imports {
				b.fileImports[fileKey][k] = v
			}
		}
	}
	for _, r := range refs {
		b.pending = append(b.pending, pendingRef{ref: r, repo: repositoryID, file: r.SourceFile, line: r.SourceLine})
	}
	return nil
}

func (b *Builder) indexSimpleName(index map[string]map[string][]string, key string, s *symbol.Symbol) {
	if index[key] == nil {
		index[key] = map[string][]string{}
	}
	index[key][s.Name] = appendUnique(index[key][s.Name], s.ID)
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

// ResolveReferences applies the five resolution rules to every
// buffered RawReference, in order, first success wins, and adds a
// DependencyEdge for each resolved reference. References are processed in
// deterministic order (repository, file, then line) so that an
// output-determinism violation in rule 5's "exactly one global match"
// tie-break cannot creep in via map iteration order.
func (b *Builder) ResolveReferences() error {
	sort.SliceStable(b.pending, func(i, j int) bool {
		if b.pending[i].repo != b.pending[j].repo {
			return b.pending[i].repo < b.pending[j].repo
		}
		if b.pending[i].file != b.pending[j].file {
			return b.pending[i].file < b.pending[j].file
		}
		return b.pending[i].line < b.pending[j].line
	})

	for _, p := range b.pending {
		targetID, ok := b.resolve(p.repo, p.ref)
		if !ok {
			b.resolutionMisses++
			continue
		}
		if targetID == p.ref.SourceFingerprint {
			continue // resolved self-reference, dropped
		}
		edge := &DependencyEdge{
			ID:         fmt.Sprintf("edge:%s:%s:%s:%d", p.ref.SourceFingerprint, targetID, p.ref.Kind, len(b.g.edges)),
			Source:     p.ref.SourceFingerprint,
			Target:     targetID,
			Kind:       p.ref.Kind,
			Confidence: p.ref.ConfidenceHint,
			File:       p.ref.SourceFile,
			Line:       p.ref.SourceLine,
			Discovered: time.Now(),
		}
		if _, created, err := b.g.AddEdge(edge); err != nil {
			return err
		} else if !created {
			b.edgesCoalesced++
		}
	}
	b.pending = nil
	return nil
}

// resolve applies the five rules in order, all of them scoped to the
// reference's own repository; the first rule to produce a match wins.
func (b *Builder) resolve(repo string, r *symbol.RawReference) (string, bool) {
	// Rule 1: exact qualified-name match.
	if ids, ok := b.byQualifiedName[scoped(repo, r.TargetIdentifier)]; ok && len(ids) > 0 {
		return ids[0], true
	}

	// Rule 2: import-qualified match ("X" or "X.m").
	if id, ok := b.resolveImportQualified(repo, r); ok {
		return id, true
	}

	// Rule 3: same-file simple-name match.
	if names, ok := b.byFileSimpleName[scoped(repo, r.SourceFile)]; ok {
		if ids, ok := names[r.TargetIdentifier]; ok && len(ids) > 0 {
			return ids[0], true
		}
	}

	// Rule 4: same-package simple-name match.
	if id, ok := b.resolveSamePackage(repo, r); ok {
		return id, true
	}

	// Rule 5: unique global simple-name match; more than one holder of
	// the name is ambiguous and is dropped with its own note.
	if ids, ok := b.byGlobalSimpleName[scoped(repo, r.TargetIdentifier)]; ok {
		if len(ids) == 1 {
			return ids[0], true
		}
		if len(ids) > 1 {
			b.ambiguousDrops++
		}
	}

	return "", false
}

func (b *Builder) resolveImportQualified(repo string, r *symbol.RawReference) (string, bool) {
	imports, ok := b.fileImports[scoped(repo, r.SourceFile)]
	if !ok {
		return "", false
	}
	target := r.TargetIdentifier
	member := ""
	if idx := indexOfDot(target); idx >= 0 {
		target, member = target[:idx], target[idx+1:]
	}
	imported, ok := imports[target]
	if !ok {
		return "", false
	}
	if member == "" {
		if ids, ok := b.byQualifiedName[scoped(repo, imported)]; ok && len(ids) > 0 {
			return ids[0], true
		}
		return "", false
	}
	qualifiedMember := imported + "." + member
	if ids, ok := b.byQualifiedName[scoped(repo, qualifiedMember)]; ok && len(ids) > 0 {
		return ids[0], true
	}
	return "", false
}

func (b *Builder) resolveSamePackage(repo string, r *symbol.RawReference) (string, bool) {
	// The caller (source symbol) determines which package to search; we
	// derive the candidate package keys from the symbols indexed under the
	// reference's own source file, in sorted order so the lookup is
	// deterministic even when a file's symbols span package keys.
	for _, pkgKey := range b.packageKeysForFile(repo, r.SourceFile) {
		if ids, ok := b.byPackageSimpleName[pkgKey][r.TargetIdentifier]; ok && len(ids) > 0 {
			return ids[0], true
		}
	}
	return "", false
}

// packageKeysForFile returns the distinct package keys of sourceFile's own
// symbols, sorted ascending.
func (b *Builder) packageKeysForFile(repo, sourceFile string) []string {
	names, ok := b.byFileSimpleName[scoped(repo, sourceFile)]
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var keys []string
	for _, ids := range names {
		for _, id := range ids {
			if s, ok := b.g.Symbol(id); ok {
				if k := packageKey(s); !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func indexOfDot(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
