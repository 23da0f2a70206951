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
	"github.com/smacker/go-tree-sitter/java"
)

type javaAdapter struct {
	language *sitter.Language
}

func newJavaAdapter() Adapter {
	return &javaAdapter{language: java.GetLanguage()}
}

func (a *javaAdapter) Language() Language { return Java }

func (a *javaAdapter) SitterLanguage() *sitter.Language { return a.language }

func (a *javaAdapter) Parse(ctx context.Context, content []byte) (*ParseTree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.language)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return &ParseTree{Tree: tree, Content: content}, nil
}

func (a *javaAdapter) Query(kind QueryKind) (string, bool) {
	switch kind {
	case QueryFunctionDefinitions:
		return `(method_declaration name: (identifier) @name) @definition`, true
	case QueryClassDefinitions:
		return `[
			(class_declaration name: (identifier) @name) @definition
			(interface_declaration name: (identifier) @name) @definition
			(enum_declaration name: (identifier) @name) @definition
		]`, true
	case QueryImports:
		return `(import_declaration (scoped_identifier) @import)`, true
	case QueryFunctionCalls:
		return `(method_invocation name: (identifier) @call)`, true
	case QueryVariableDeclarations:
		return `(field_declaration declarator: (variable_declarator name: (identifier) @name)) @definition`, true
	default:
		return "", false
	}
}
