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
	"github.com/smacker/go-tree-sitter/python"
)

type pythonAdapter struct {
	language *sitter.Language
}

func newPythonAdapter() Adapter {
	return &pythonAdapter{language: python.GetLanguage()}
}

func (a *pythonAdapter) Language() Language { return Python }

func (a *pythonAdapter) SitterLanguage() *sitter.Language { return a.language }

func (a *pythonAdapter) Parse(ctx context.Context, content []byte) (*ParseTree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.language)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return &ParseTree{Tree: tree, Content: content}, nil
}

func (a *pythonAdapter) Query(kind QueryKind) (string, bool) {
	switch kind {
	case QueryFunctionDefinitions:
		return `(function_definition name: (identifier) @name) @definition`, true
	case QueryClassDefinitions:
		return `(class_definition name: (identifier) @name) @definition`, true
	case QueryImports:
		return `[
			(import_statement name: (dotted_name) @import)
			(import_from_statement module_name: (dotted_name) @import)
		]`, true
	case QueryFunctionCalls:
		return `(call function: [(identifier) @call (attribute attribute: (identifier) @call)])`, true
	case QueryVariableDeclarations:
		return `(assignment left: (identifier) @name) @definition`, true
	default:
		return "", false
	}
}
