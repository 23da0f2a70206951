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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectByExtension(t *testing.T) {
	assert.Equal(t, Java, Detect("Main.java", nil))
	assert.Equal(t, JavaScript, Detect("app.jsx", nil))
	assert.Equal(t, Python, Detect("main.py", nil))
	assert.Equal(t, Shell, Detect("deploy.sh", nil))
	assert.Equal(t, Shell, Detect("Dockerfile", nil))
	assert.Equal(t, Unknown, Detect("README.md", nil))
}

func TestDetectByShebangFallback(t *testing.T) {
	assert.Equal(t, Shell, Detect("run", []byte("#!/bin/bash\necho hi\n")))
	assert.Equal(t, Python, Detect("run", []byte("#!/usr/bin/env python\nprint('hi')\n")))
}

func TestDetectByContentFallback(t *testing.T) {
	assert.Equal(t, Java, Detect("noext", []byte("public class Foo {}")))
	assert.Equal(t, Python, Detect("noext", []byte("def foo():\n  pass\n")))
}

func TestRegistryParseJava(t *testing.T) {
	r := NewRegistry()
	tree, err := r.Parse(context.Background(), "Main.java", []byte("public class Main { public static void main(String[] a) {} }"), "")
	require.NoError(t, err)
	defer tree.Close()
	assert.NotNil(t, tree.Root())
}

func TestRegistryUnsupportedLanguage(t *testing.T) {
	r := NewRegistry()
	_, err := r.Parse(context.Background(), "readme.md", []byte("hello"), "")
	assert.Error(t, err)
}

func TestAdapterQueryBundleCoverage(t *testing.T) {
	r := NewRegistry()
	kinds := []QueryKind{QueryFunctionDefinitions, QueryClassDefinitions, QueryImports, QueryFunctionCalls, QueryVariableDeclarations}
	for _, l := range []Language{Java, JavaScript, Python, Shell} {
		a, ok := r.Get(l)
		require.True(t, ok)
		for _, k := range kinds {
			_, has := a.Query(k)
			// shell legitimately has no class-definitions bundle
			assert.Equal(t, !(l == Shell && k == QueryClassDefinitions), has, "%s %s", l, k)
		}
	}
}
