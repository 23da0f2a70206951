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
	"github.com/smacker/go-tree-sitter/javascript"
)

type javascriptAdapter struct {
	language *sitter.Language
}

func newJavaScriptAdapter() Adapter {
	return &javascriptAdapter{language: javascript.GetLanguage()}
}

func (a *javascriptAdapter) Language() Language { return JavaScript }

func (a *javascriptAdapter) SitterLanguage() *sitter.Language { return a.language }

func (a *javascriptAdapter) Parse(ctx context.Context, content []byte) (*ParseTree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.language)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return &ParseTree{Tree: tree, Content: content}, nil
}

func (a *javascriptAdapter) Query(kind QueryKind) (string, bool) {
	switch kind {
	case QueryFunctionDefinitions:
		return `[
			(function_declaration name: (identifier) @name) @definition
			(method_definition name: (property_identifier) @name) @definition
			(variable_declarator name: (identifier) @name value: (arrow_function)) @definition
			(variable_declarator name: (identifier) @name value: (function_expression)) @definition
		]`, true
	case QueryClassDefinitions:
		return `(class_declaration name: (identifier) @name) @definition`, true
	case QueryImports:
		return `[
			(import_statement source: (string) @import)
			(call_expression function: (identifier) @_require (#eq? @_require "require") arguments: (arguments (string) @import))
		]`, true
	case QueryFunctionCalls:
		return `(call_expression function: [(identifier) @call (member_expression property: (property_identifier) @call)])`, true
	case QueryVariableDeclarations:
		return `(variable_declarator name: (identifier) @name) @definition`, true
	default:
		return "", false
	}
}
