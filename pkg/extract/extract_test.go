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

package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/symbol"
)

func registry(t *testing.T) *lang.Registry {
	t.Helper()
	return lang.NewRegistry()
}

func TestExtractPythonFunctionsAndCalls(t *testing.T) {
	src := `
def helper():
    return 1

def main():
    helper()
`
	reg := registry(t)
	adapter, ok := reg.Get(lang.Python)
	require.True(t, ok)

	res, err := Extract(context.Background(), adapter, []byte(src), "app/main.py", "repo1")
	require.NoError(t, err)
	require.NotNil(t, res)

	var names []string
	for _, s := range res.Symbols {
		if s.Kind == symbol.KindFunction {
			names = append(names, s.Name)
		}
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")

	var sawCall bool
	for _, r := range res.RawReferences {
		if r.TargetIdentifier == "helper" && r.Kind == symbol.EdgeCalls {
			sawCall = true
		}
	}
	assert.True(t, sawCall, "expected a calls reference to helper")
}

func TestExtractJavaMainIsCandidateRoot(t *testing.T) {
	src := `
public class App {
    public static void main(String[] args) {
        System.out.println("hi");
    }
}
`
	reg := registry(t)
	adapter, ok := reg.Get(lang.Java)
	require.True(t, ok)

	res, err := Extract(context.Background(), adapter, []byte(src), "App.java", "repo1")
	require.NoError(t, err)

	found := false
	for _, c := range res.CandidateRoots {
		if c.Mark.Tag == symbol.RootMain {
			found = true
		}
	}
	assert.True(t, found, "expected a Main candidate root for App.java")
}

func TestExtractEmptyFileYieldsOnlyFileModule(t *testing.T) {
	reg := registry(t)
	adapter, ok := reg.Get(lang.JavaScript)
	require.True(t, ok)

	res, err := Extract(context.Background(), adapter, []byte(""), "empty.js", "repo1")
	require.NoError(t, err)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, symbol.KindModule, res.Symbols[0].Kind)
}

func TestCoalesceDuplicatesDisambiguatesOverloads(t *testing.T) {
	src := `
def process():
    pass

def process():
    pass
`
	reg := registry(t)
	adapter, ok := reg.Get(lang.Python)
	require.True(t, ok)

	res, err := Extract(context.Background(), adapter, []byte(src), "dup.py", "repo1")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, s := range res.Symbols {
		if s.Kind != symbol.KindFunction {
			continue
		}
		assert.False(t, seen[s.QualifiedName], "qualified names must be unique after coalescing")
		seen[s.QualifiedName] = true
	}
}
