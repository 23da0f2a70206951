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

package roots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/symbol"
)

func TestDetectSpanJavaMain(t *testing.T) {
	d := NewDetector()
	mark, ok := d.DetectSpan(lang.Java, "public static void main(String[] args) {}", 100)
	require.True(t, ok)
	assert.Equal(t, symbol.RootMain, mark.Tag)
}

func TestDetectSpanPrecedenceControllerOverMain(t *testing.T) {
	d := NewDetector()
	mark, ok := d.DetectSpan(lang.Java, "@RestController public static void main() {}", 100)
	require.True(t, ok)
	assert.Equal(t, symbol.RootController, mark.Tag)
}

func TestDetectSpanPythonFlask(t *testing.T) {
	d := NewDetector()
	mark, ok := d.DetectSpan(lang.Python, `@app.route('/hello')
def hello():
    pass`, 100)
	require.True(t, ok)
	assert.Equal(t, symbol.RootController, mark.Tag)
}

func TestDetectSpanNoMatch(t *testing.T) {
	d := NewDetector()
	_, ok := d.DetectSpan(lang.Java, "private void helper() {}", 100)
	assert.False(t, ok)
}

func TestCustomPatternOutrankedByNamedTag(t *testing.T) {
	d := NewDetector()
	d.RegisterCustomPattern(lang.Java, "helper", "Webhook")
	mark, ok := d.DetectSpan(lang.Java, "public static void main() { helper(); }", 100)
	require.True(t, ok)
	assert.Equal(t, symbol.RootMain, mark.Tag, "named tag must outrank Custom")
}

func TestCustomPatternAloneApplies(t *testing.T) {
	d := NewDetector()
	d.RegisterCustomPattern(lang.Java, "helper", "Webhook")
	mark, ok := d.DetectSpan(lang.Java, "private void helper() {}", 100)
	require.True(t, ok)
	assert.True(t, mark.IsCustom())
	assert.Equal(t, "Webhook", mark.Custom)
}

func TestMatchShellTopLevel(t *testing.T) {
	invoked := map[string]bool{"deploy": true}
	mark, ok := MatchShellTopLevel(invoked, "deploy")
	require.True(t, ok)
	assert.Equal(t, symbol.RootMain, mark.Tag)

	_, ok = MatchShellTopLevel(invoked, "helper")
	assert.False(t, ok)
}
