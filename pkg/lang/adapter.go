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

package lang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	cerrors "github.com/c2j/czi/internal/errors"
)

// QueryKind names one of the five pattern-query bundles. The Java,
// JavaScript and Python adapters expose all five; Shell has no
// class-definitions bundle.
type QueryKind string

const (
	QueryFunctionDefinitions  QueryKind = "function-definitions"
	QueryClassDefinitions     QueryKind = "class-definitions"
	QueryImports              QueryKind = "imports"
	QueryFunctionCalls        QueryKind = "function-calls"
	QueryVariableDeclarations QueryKind = "variable-declarations"
)

// ParseTree wraps a tree-sitter parse tree together with the source bytes
// it was parsed from, since node text is a byte-range view over content.
type ParseTree struct {
	Tree    *sitter.Tree
	Content []byte
}

// Root returns the tree's root node.
func (t *ParseTree) Root() *sitter.Node { return t.Tree.RootNode() }

// Close releases the underlying tree-sitter tree.
func (t *ParseTree) Close() {
	if t.Tree != nil {
		t.Tree.Close()
	}
}

// Adapter is the per-language capability record: detect, parse, and named
// queries. Implementations are registered once per Language tag; there is
// no class hierarchy, only this record of functions.
type Adapter interface {
	Language() Language
	// Parse produces a concrete syntax tree supporting node-kind and
	// text-span queries.
	Parse(ctx context.Context, content []byte) (*ParseTree, error)
	// Query returns the compiled tree-sitter query source for kind, or
	// ("", false) if this adapter does not implement that bundle.
	Query(kind QueryKind) (string, bool)
	// SitterLanguage exposes the underlying grammar for query compilation.
	SitterLanguage() *sitter.Language
}

// Registry maps a Language tag to its Adapter.
type Registry struct {
	adapters map[Language]Adapter
}

// NewRegistry returns a Registry pre-populated with the four built-in
// adapters (Java, JavaScript, Python, Shell).
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[Language]Adapter)}
	r.Register(newJavaAdapter())
	r.Register(newJavaScriptAdapter())
	r.Register(newPythonAdapter())
	r.Register(newShellAdapter())
	return r
}

// Register adds or replaces the adapter for its Language tag — used both
// by NewRegistry and by callers wishing to plug in a Custom(tag) adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Language()] = a
}

// Get returns the adapter registered for lang, or (nil, false).
func (r *Registry) Get(lang Language) (Adapter, bool) {
	a, ok := r.adapters[lang]
	return a, ok
}

// Detect runs lang.Detect and looks up the resulting adapter. An
// unregistered/Unknown language is not an error: callers must treat
// (nil, false) as "extract nothing for this file".
func (r *Registry) Detect(path string, content []byte) (Adapter, bool) {
	return r.Get(Detect(path, content))
}

// Parse parses content with the adapter for forced, or for path's detected
// language when forced is empty, returning UnsupportedLanguage if that
// language has no registered adapter.
func (r *Registry) Parse(ctx context.Context, path string, content []byte, forced Language) (*ParseTree, error) {
	l := forced
	if l == "" {
		l = Detect(path, content)
	}
	a, ok := r.Get(l)
	if !ok {
		return nil, cerrors.NewUnsupportedLanguageError(path)
	}
	tree, err := a.Parse(ctx, content)
	if err != nil {
		return nil, cerrors.NewParseError(path, err)
	}
	return tree, nil
}
