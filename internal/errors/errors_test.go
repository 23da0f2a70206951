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

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "ValidationError", KindValidation.String())
	assert.Equal(t, "ParseError", KindParse.String())
	assert.Equal(t, "UnsupportedLanguage", KindUnsupportedLanguage.String())
	assert.Equal(t, "NotFound", KindNotFound.String())
	assert.Equal(t, "InvalidState", KindInvalidState.String())
	assert.Equal(t, "ResourceExhausted", KindResourceExhausted.String())
	assert.Equal(t, "Cancelled", KindCancelled.String())
	assert.Equal(t, "Timeout", KindTimeout.String())
}

func TestNewParseErrorCarriesPath(t *testing.T) {
	err := NewParseError("pkg/foo.go", errors.New("unexpected EOF"))
	assert.Equal(t, KindParse, err.Kind)
	assert.Contains(t, err.Error(), "pkg/foo.go")
	assert.Equal(t, "unexpected EOF", err.Cause.Error())
}

func TestKindOf(t *testing.T) {
	err := NewNotFoundError("func:abc")
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestCoreErrorIs(t *testing.T) {
	a := NewInvalidStateError("frozen")
	b := NewInvalidStateError("frozen again")
	assert.True(t, errors.Is(a, b))

	c := NewNotFoundError("x")
	assert.False(t, errors.Is(a, c))
}

func TestFormatRespectsNoColor(t *testing.T) {
	err := NewValidationError("bad config", nil)
	out := err.Format(true)
	assert.Contains(t, out, "bad config")
}
