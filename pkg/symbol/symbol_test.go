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

package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintStableAcrossRuns(t *testing.T) {
	a := Fingerprint("repo1", "./src/main.go", "main.Run", KindFunction)
	b := Fingerprint("repo1", "src/main.go", "main.Run", KindFunction)
	assert.Equal(t, a, b, "fingerprint must be stable for identical logical inputs")

	c := Fingerprint("repo1", "src/main.go", "main.Run", KindMethod)
	assert.NotEqual(t, a, c, "fingerprint must differ when kind differs")
}

func TestSymbolValidate(t *testing.T) {
	s := &Symbol{
		ID:            Fingerprint("repo1", "a.go", "pkg.Foo", KindFunction),
		Name:          "Foo",
		QualifiedName: "pkg.Foo",
		FilePath:      "a.go",
		RepositoryID:  "repo1",
		Line:          1,
	}
	require.NoError(t, s.Validate())

	s.Line = 0
	assert.Error(t, s.Validate())
}

func TestRootMarkPrecedence(t *testing.T) {
	controller := ActiveRootMark{Tag: RootController}
	main := ActiveRootMark{Tag: RootMain}
	custom := ActiveRootMark{Custom: "webhook"}

	assert.True(t, HigherPrecedence(controller, main))
	assert.False(t, HigherPrecedence(main, controller))
	assert.True(t, HigherPrecedence(main, custom))
	assert.False(t, HigherPrecedence(custom, main))
}

func TestRawReferenceValidate(t *testing.T) {
	r := &RawReference{
		SourceFingerprint: "sym:abc",
		TargetIdentifier:  "Bar",
		Kind:              EdgeCalls,
		ConfidenceHint:    0.9,
	}
	require.NoError(t, r.Validate())

	r.ConfidenceHint = 1.5
	assert.Error(t, r.Validate())
}

func TestDisplayNameFallsBackToName(t *testing.T) {
	s := &Symbol{Name: "short"}
	assert.Equal(t, "short", s.DisplayName())
	s.QualifiedName = "pkg.short"
	assert.Equal(t, "pkg.short", s.DisplayName())
}
