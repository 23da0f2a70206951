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

// Package extract implements the symbol extractor: walking
// an adapter's parse tree with its named pattern queries to produce typed
// Symbol records, RawReferences, and CandidateRoots for one file.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/roots"
	"github.com/c2j/czi/pkg/symbol"
)

// MaxFileSizeBytes is the default size ceiling: content larger
// than this must be rejected by the caller before reaching Extract.
const MaxFileSizeBytes = 1 << 20

// Result is one file's extraction output: {Symbols, RawReferences,
// CandidateRoots}, plus the file's import table for the graph builder's
// import-qualified resolution rule.
type Result struct {
	Symbols        []*symbol.Symbol
	RawReferences  []*symbol.RawReference
	CandidateRoots []symbol.CandidateRoot
	Imports        map[string]string
}

// definition pairs an extracted Symbol with its AST node, so calls can be
// attributed to the nearest enclosing definition.
type definition struct {
	sym  *symbol.Symbol
	node *sitter.Node
}

// Extract turns one file's content into {Symbols, RawReferences,
// CandidateRoots} plus the file's import table. content must already satisfy
// len(content) <= MaxFileSizeBytes; Extract does not re-check it (the
// pipeline enforces this boundary, see pkg/analysis).
func Extract(ctx context.Context, adapter lang.Adapter, content []byte, filePath, repositoryID string) (*Result, error) {
	tree, err := adapter.Parse(ctx, content)
	if err != nil {
		return nil, cerrors.NewParseError(filePath, err)
	}
	defer tree.Close()

	l := adapter.Language()
	root := tree.Root()

	fileModule := fileModuleSymbol(filePath, repositoryID)

	var defs []definition
	defs = append(defs, extractByQuery(adapter, tree, lang.QueryFunctionDefinitions, filePath, repositoryID, l, functionKind)...)
	defs = append(defs, extractByQuery(adapter, tree, lang.QueryClassDefinitions, filePath, repositoryID, l, classKind)...)
	defs = append(defs, extractByQuery(adapter, tree, lang.QueryVariableDeclarations, filePath, repositoryID, l, symbol.KindProperty)...)

	coalesceDuplicates(defs)

	sortedDefs := sortDefsByStart(defs)

	imports, importRefs := extractImports(adapter, tree, l, sortedDefs, fileModule, filePath)
	callRefs, topLevelInvoked := extractCalls(adapter, tree, sortedDefs, fileModule, filePath)
	heritageRefs := extractInheritanceReferences(l, defs, tree.Content, filePath)
	fieldRefs := extractFieldTypeReferences(defs, tree.Content, filePath)
	assignRefs := extractAssignmentReferences(sortedDefs, fileModule, filePath)

	refs := append(callRefs, importRefs...)
	refs = append(refs, heritageRefs...)
	refs = append(refs, fieldRefs...)
	refs = append(refs, assignRefs...)

	detector := roots.NewDetector()
	var candidateRoots []symbol.CandidateRoot
	for _, d := range defs {
		span := nodeText(content, rootSpanNode(d.node))
		if mark, ok := detector.DetectSpan(l, span, len(content)); ok {
			candidateRoots = append(candidateRoots, symbol.CandidateRoot{SymbolFingerprint: d.sym.ID, Mark: mark})
		}
		if l == lang.Shell {
			if mark, ok := roots.MatchShellTopLevel(topLevelInvoked, d.sym.Name); ok {
				candidateRoots = append(candidateRoots, symbol.CandidateRoot{SymbolFingerprint: d.sym.ID, Mark: mark})
			}
		}
	}

	// The `if __name__ == "__main__"` guard lives at module top level,
	// outside every definition span, so it marks the file-module symbol:
	// the guard's body is the file's entry point, and top-level calls are
	// already attributed to the file module.
	if l == lang.Python && strings.Contains(string(content), `if __name__ == "__main__"`) {
		candidateRoots = append(candidateRoots, symbol.CandidateRoot{
			SymbolFingerprint: fileModule.ID,
			Mark:              symbol.ActiveRootMark{Tag: symbol.RootMain},
		})
	}

	symbols := []*symbol.Symbol{fileModule}
	for _, d := range defs {
		symbols = append(symbols, d.sym)
	}

	_ = root // root retained for callers wishing to do their own traversal
	return &Result{Symbols: symbols, RawReferences: refs, CandidateRoots: candidateRoots, Imports: imports}, nil
}

func fileModuleSymbol(filePath, repositoryID string) *symbol.Symbol {
	qn := filePath
	return &symbol.Symbol{
		ID:            symbol.Fingerprint(repositoryID, filePath, qn, symbol.KindModule),
		Name:          filePath,
		QualifiedName: qn,
		Kind:          symbol.KindModule,
		FilePath:      filePath,
		Line:          1,
		Visibility:    symbol.VisibilityFile,
		RepositoryID:  repositoryID,
		Metadata:      map[string]string{},
		ExtractedAt:   time.Now(),
	}
}

func functionKind(node *sitter.Node) symbol.Kind {
	switch node.Type() {
	case "method_declaration", "method_definition":
		return symbol.KindMethod
	case "constructor_declaration":
		return symbol.KindConstructor
	default:
		return symbol.KindFunction
	}
}

func classKind(node *sitter.Node) symbol.Kind {
	switch node.Type() {
	case "interface_declaration":
		return symbol.KindInterface
	case "enum_declaration":
		return symbol.KindEnum
	default:
		return symbol.KindClass
	}
}

// extractByQuery runs the named query bundle and builds one Symbol per
// match, using kindOf to resolve the definition-node type to a Kind.
func extractByQuery(adapter lang.Adapter, tree *lang.ParseTree, kind lang.QueryKind, filePath, repositoryID string, l lang.Language, kindOf interface{}) []definition {
	src, ok := adapter.Query(kind)
	if !ok || src == "" {
		return nil
	}
	q, err := sitter.NewQuery([]byte(src), adapter.SitterLanguage())
	if err != nil {
		return nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.Root())

	var defs []definition
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		var nameNode, defNode *sitter.Node
		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			switch name {
			case "name":
				nameNode = c.Node
			case "definition":
				defNode = c.Node
			}
		}
		if nameNode == nil {
			continue
		}
		if defNode == nil {
			defNode = nameNode
		}

		name := nodeText(tree.Content, nameNode)
		if name == "" {
			continue
		}

		var k symbol.Kind
		switch fn := kindOf.(type) {
		case symbol.Kind:
			k = fn
		case func(*sitter.Node) symbol.Kind:
			k = fn(defNode)
		}

		qn := qualifiedName(l, filePath, name)
		line := int(defNode.StartPoint().Row) + 1
		col := int(defNode.StartPoint().Column)

		s := &symbol.Symbol{
			ID:            symbol.Fingerprint(repositoryID, filePath, qn, k),
			Name:          name,
			QualifiedName: qn,
			Kind:          k,
			Language:      string(l),
			FilePath:      filePath,
			Line:          line,
			Column:        col,
			Visibility:    visibilityOf(name),
			Exported:      isExported(l, name),
			RepositoryID:  repositoryID,
			Metadata:      map[string]string{},
			ExtractedAt:   time.Now(),
		}
		defs = append(defs, definition{sym: s, node: defNode})
	}
	return defs
}

// qualifiedName builds the language-specific qualified name:
// Java uses package+outer-type+simple name (approximated here by
// file-derived package path, since full outer-type chaining requires a
// symbol table this extractor does not retain across matches); Python
// uses a dotted module path derived from the file path; JavaScript and
// Shell always use "file_path :: name" (no module/export chain is built
// for JavaScript).
func qualifiedName(l lang.Language, filePath, name string) string {
	switch l {
	case lang.Python:
		return dottedModulePath(filePath) + "." + name
	case lang.Java:
		return dottedModulePath(filePath) + "." + name
	default:
		return filePath + " :: " + name
	}
}

func dottedModulePath(filePath string) string {
	trimmed := strings.TrimSuffix(filePath, pathExt(filePath))
	return strings.ReplaceAll(trimmed, "/", ".")
}

func pathExt(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '.' {
			return filePath[i:]
		}
		if filePath[i] == '/' {
			break
		}
	}
	return ""
}

func visibilityOf(name string) symbol.Visibility {
	if name == "" {
		return symbol.VisibilityUnknown
	}
	r := name[0]
	if r >= 'A' && r <= 'Z' {
		return symbol.VisibilityPublic
	}
	if strings.HasPrefix(name, "_") {
		return symbol.VisibilityPrivate
	}
	return symbol.VisibilityInternal
}

func isExported(l lang.Language, name string) bool {
	if name == "" {
		return false
	}
	switch l {
	case lang.Python:
		return !strings.HasPrefix(name, "_")
	default:
		return name[0] >= 'A' && name[0] <= 'Z'
	}
}

// coalesceDuplicates merges definitions sharing a qualified name (e.g.
// overloads) by appending a parameter-count-free disambiguator; since
// this extractor does not retain parameter lists, every occurrence after
// the first gets an incrementing "#N" suffix instead, preserving the
// duplicates-are-coalesced guarantee without inventing a signature it
// cannot observe.
func coalesceDuplicates(defs []definition) {
	seen := map[string]int{}
	for _, d := range defs {
		seen[d.sym.QualifiedName]++
		if n := seen[d.sym.QualifiedName]; n > 1 {
			d.sym.QualifiedName = fmt.Sprintf("%s#%d", d.sym.QualifiedName, n)
			d.sym.ID = symbol.Fingerprint(d.sym.RepositoryID, d.sym.FilePath, d.sym.QualifiedName, d.sym.Kind)
		}
	}
}

// extractImports runs the imports query, building both the alias table
// the builder's import-qualified resolution rule consumes and an
// EdgeImports RawReference per import/require/source statement.
// Each reference is attributed to the nearest enclosing definition
// (a local/conditional import), falling back to the synthetic file-module
// symbol, exactly like extractCalls.
func extractImports(adapter lang.Adapter, tree *lang.ParseTree, l lang.Language, sortedDefs []definition, fileModule *symbol.Symbol, filePath string) (map[string]string, []*symbol.RawReference) {
	src, ok := adapter.Query(lang.QueryImports)
	if !ok || src == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(src), adapter.SitterLanguage())
	if err != nil {
		return nil, nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.Root())

	imports := map[string]string{}
	var refs []*symbol.RawReference
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if q.CaptureNameForId(c.Index) != "import" {
				continue
			}
			text := strings.Trim(nodeText(tree.Content, c.Node), `"'`)
			if text == "" {
				continue
			}
			alias := text
			if idx := strings.LastIndex(text, "/"); idx >= 0 {
				alias = text[idx+1:]
			}
			if idx := strings.LastIndex(text, "."); idx >= 0 && l == lang.Python {
				alias = text[idx+1:]
			}
			imports[alias] = text
			imports[text] = text

			sourceID := fileModule.ID
			if enclosing := enclosingDefinition(sortedDefs, c.Node); enclosing != nil {
				sourceID = enclosing.sym.ID
			}
			refs = append(refs, &symbol.RawReference{
				SourceFingerprint: sourceID,
				TargetIdentifier:  text,
				Kind:              symbol.EdgeImports,
				SourceFile:        filePath,
				SourceLine:        int(c.Node.StartPoint().Row) + 1,
				ConfidenceHint:    1.0,
			})
		}
	}
	return imports, refs
}

// sortDefsByStart returns defs sorted by ascending node start byte, the
// order enclosingDefinition's containment search expects.
func sortDefsByStart(defs []definition) []definition {
	sorted := append([]definition(nil), defs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].node.StartByte() < sorted[j].node.StartByte()
	})
	return sorted
}

// enclosingDefinitionExcluding is enclosingDefinition but ignores the
// definition whose own symbol id is selfID, so a definition's own
// assignment node doesn't trivially enclose itself.
func enclosingDefinitionExcluding(sortedDefs []definition, node *sitter.Node, selfID string) *definition {
	var best *definition
	for i := range sortedDefs {
		d := &sortedDefs[i]
		if d.sym.ID == selfID {
			continue
		}
		if d.node.StartByte() <= node.StartByte() && node.EndByte() <= d.node.EndByte() {
			if best == nil || d.node.StartByte() > best.node.StartByte() {
				best = d
			}
		}
	}
	return best
}

// extractInheritanceReferences emits an EdgeExtends or EdgeImplements
// RawReference for every superclass/interface clause on a class-kind
// definition. The clause shape is language-specific, so this
// walks each definition node's named children directly rather than
// through a compiled query.
func extractInheritanceReferences(l lang.Language, defs []definition, content []byte, filePath string) []*symbol.RawReference {
	var refs []*symbol.RawReference
	add := func(sourceID string, node *sitter.Node, kind symbol.EdgeKind) {
		text := strings.TrimSpace(nodeText(content, node))
		if text == "" {
			return
		}
		refs = append(refs, &symbol.RawReference{
			SourceFingerprint: sourceID,
			TargetIdentifier:  text,
			Kind:              kind,
			SourceFile:        filePath,
			SourceLine:        int(node.StartPoint().Row) + 1,
			ConfidenceHint:    0.9,
		})
	}

	for _, d := range defs {
		if d.sym.Kind != symbol.KindClass && d.sym.Kind != symbol.KindInterface {
			continue
		}
		switch l {
		case lang.Java:
			for i := 0; i < int(d.node.ChildCount()); i++ {
				child := d.node.Child(i)
				switch child.Type() {
				case "superclass":
					if t := child.ChildByFieldName("type"); t != nil {
						add(d.sym.ID, t, symbol.EdgeExtends)
					}
				case "super_interfaces":
					if tl := child.NamedChild(0); tl != nil {
						for j := 0; j < int(tl.NamedChildCount()); j++ {
							add(d.sym.ID, tl.NamedChild(j), symbol.EdgeImplements)
						}
					}
				}
			}
		case lang.Python:
			if bases := d.node.ChildByFieldName("superclasses"); bases != nil {
				for i := 0; i < int(bases.NamedChildCount()); i++ {
					n := bases.NamedChild(i)
					if n.Type() == "identifier" || n.Type() == "attribute" {
						add(d.sym.ID, n, symbol.EdgeExtends)
					}
				}
			}
		case lang.JavaScript:
			for i := 0; i < int(d.node.ChildCount()); i++ {
				child := d.node.Child(i)
				if child.Type() == "class_heritage" {
					if v := child.NamedChild(0); v != nil {
						add(d.sym.ID, v, symbol.EdgeExtends)
					}
				}
			}
		}
	}
	return refs
}

// extractFieldTypeReferences emits an EdgeUses RawReference for every
// property/field definition that carries an explicit type annotation
// (Java typed fields, Python's `name: Type = value` form).
// Untyped declarations (JavaScript, shell, untyped Python assignments)
// have no "type" field and are silently skipped.
func extractFieldTypeReferences(defs []definition, content []byte, filePath string) []*symbol.RawReference {
	var refs []*symbol.RawReference
	for _, d := range defs {
		if d.sym.Kind != symbol.KindProperty {
			continue
		}
		typeNode := d.node.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		text := strings.TrimSpace(nodeText(content, typeNode))
		if text == "" {
			continue
		}
		refs = append(refs, &symbol.RawReference{
			SourceFingerprint: d.sym.ID,
			TargetIdentifier:  text,
			Kind:              symbol.EdgeUses,
			SourceFile:        filePath,
			SourceLine:        int(typeNode.StartPoint().Row) + 1,
			ConfidenceHint:    0.8,
		})
	}
	return refs
}

// extractAssignmentReferences emits an EdgeAssigns RawReference from the
// definition enclosing a variable/field assignment to the assigned
// symbol itself. The
// target identifier is the assigned symbol's own qualified name, so the
// builder's rule-1 exact match resolves it directly back to the symbol
// extractByQuery already created for it.
func extractAssignmentReferences(sortedDefs []definition, fileModule *symbol.Symbol, filePath string) []*symbol.RawReference {
	var refs []*symbol.RawReference
	for _, d := range sortedDefs {
		if d.sym.Kind != symbol.KindProperty {
			continue
		}
		sourceID := fileModule.ID
		if enclosing := enclosingDefinitionExcluding(sortedDefs, d.node, d.sym.ID); enclosing != nil {
			sourceID = enclosing.sym.ID
		}
		if sourceID == d.sym.ID {
			continue
		}
		refs = append(refs, &symbol.RawReference{
			SourceFingerprint: sourceID,
			TargetIdentifier:  d.sym.QualifiedName,
			Kind:              symbol.EdgeAssigns,
			SourceFile:        filePath,
			SourceLine:        d.sym.Line,
			ConfidenceHint:    0.8,
		})
	}
	return refs
}

// extractCalls runs the function-calls query and attributes each call to
// the nearest enclosing definition by source span containment, falling
// back to the synthetic file-module symbol when no definition encloses
// it. It also returns the set of function names invoked from outside any
// definition — the structural Shell entry-point signal.
func extractCalls(adapter lang.Adapter, tree *lang.ParseTree, sortedDefs []definition, fileModule *symbol.Symbol, filePath string) ([]*symbol.RawReference, map[string]bool) {
	src, ok := adapter.Query(lang.QueryFunctionCalls)
	if !ok || src == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(src), adapter.SitterLanguage())
	if err != nil {
		return nil, nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.Root())

	var refs []*symbol.RawReference
	topLevelInvoked := map[string]bool{}
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if q.CaptureNameForId(c.Index) != "call" {
				continue
			}
			name := nodeText(tree.Content, c.Node)
			if name == "" {
				continue
			}
			enclosing := enclosingDefinition(sortedDefs, c.Node)
			sourceID := fileModule.ID
			if enclosing != nil {
				sourceID = enclosing.sym.ID
			} else {
				topLevelInvoked[name] = true
			}
			refs = append(refs, &symbol.RawReference{
				SourceFingerprint: sourceID,
				TargetIdentifier:  name,
				Kind:              symbol.EdgeCalls,
				SourceFile:        filePath,
				SourceLine:        int(c.Node.StartPoint().Row) + 1,
				ConfidenceHint:    1.0,
			})
		}
	}
	return refs, topLevelInvoked
}

// rootSpanNode widens a definition node to include its decorators when
// the grammar hangs them off a wrapping parent (Python's
// decorated_definition); the root catalogue's @app.route-style patterns
// live there, not inside the function_definition itself. Java annotations
// sit inside the declaration's own modifiers, so no widening is needed.
func rootSpanNode(n *sitter.Node) *sitter.Node {
	if p := n.Parent(); p != nil && p.Type() == "decorated_definition" {
		return p
	}
	return n
}

func enclosingDefinition(sortedDefs []definition, node *sitter.Node) *definition {
	var best *definition
	for i := range sortedDefs {
		d := &sortedDefs[i]
		if d.node.StartByte() <= node.StartByte() && node.EndByte() <= d.node.EndByte() {
			if best == nil || d.node.StartByte() > best.node.StartByte() {
				best = d
			}
		}
	}
	return best
}

func nodeText(content []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}
