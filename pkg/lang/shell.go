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
	"github.com/smacker/go-tree-sitter/bash"
)

type shellAdapter struct {
	language *sitter.Language
}

func newShellAdapter() Adapter {
	return &shellAdapter{language: bash.GetLanguage()}
}

func (a *shellAdapter) Language() Language { return Shell }

func (a *shellAdapter) SitterLanguage() *sitter.Language { return a.language }

func (a *shellAdapter) Parse(ctx context.Context, content []byte) (*ParseTree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.language)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return &ParseTree{Tree: tree, Content: content}, nil
}

func (a *shellAdapter) Query(kind QueryKind) (string, bool) {
	switch kind {
	case QueryFunctionDefinitions:
		return `(function_definition name: (word) @name) @definition`, true
	case QueryClassDefinitions:
		return "", false // shell has no class construct
	case QueryImports:
		return `(command name: (command_name (word) @_cmd (#match? @_cmd "^(source|\\.)$")) argument: (word) @import)`, true
	case QueryFunctionCalls:
		return `(command name: (command_name (word) @call))`, true
	case QueryVariableDeclarations:
		return `(variable_assignment name: (variable_name) @name) @definition`, true
	default:
		return "", false
	}
}
