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

// Package roots implements the root-node detector: a
// pattern catalogue per language, keyed by RootTag, applied to a symbol's
// source span to decide whether it is an externally reachable entry
// point.
package roots

import (
	"strings"

	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/symbol"
)

// Pattern is one catalogue entry: a textual needle and the tag it
// contributes when found within a symbol's source span. Matching tree
// nodes (decorators, annotations) would be more precise where the parser
// can express it; the textual form is what is implemented here.
type Pattern struct {
	Needle string
	Tag    symbol.RootTag
}

// javaCatalogue is the built-in Java catalogue.
var javaCatalogue = []Pattern{
	{"@Controller", symbol.RootController},
	{"@RestController", symbol.RootController},
	{"@RequestMapping", symbol.RootController},
	{"@GetMapping", symbol.RootController},
	{"@PostMapping", symbol.RootController},
	{"@PutMapping", symbol.RootController},
	{"@DeleteMapping", symbol.RootController},
	{"@Scheduled", symbol.RootScheduler},
	{"TimerTask", symbol.RootScheduler},
	{"Job", symbol.RootScheduler},
	{"public static void main", symbol.RootMain},
	{"@Test", symbol.RootTest},
	{"@BeforeEach", symbol.RootTest},
	{"@AfterEach", symbol.RootTest},
}

// pythonCatalogue is the built-in Python catalogue. "def test_" and
// "class Test" are Test-only patterns.
var pythonCatalogue = []Pattern{
	{"@app.route", symbol.RootController},
	{"@bp.route", symbol.RootController},
	{`if __name__ == "__main__"`, symbol.RootMain},
	{"def main()", symbol.RootMain},
	{"def test_", symbol.RootTest},
	{"class Test", symbol.RootTest},
}

// javascriptCatalogue is the built-in JavaScript catalogue.
var javascriptCatalogue = []Pattern{
	{"app.get", symbol.RootController},
	{"app.post", symbol.RootController},
	{"router.get", symbol.RootController},
	{"router.post", symbol.RootController},
	{"express()", symbol.RootController},
	{"function main", symbol.RootMain},
	{"const main =", symbol.RootMain},
}

// Catalogue returns the built-in pattern list for l, or nil for Shell
// (whose Main detection is structural, see MatchShellTopLevel) or an
// unrecognised language.
func Catalogue(l lang.Language) []Pattern {
	switch l {
	case lang.Java:
		return javaCatalogue
	case lang.Python:
		return pythonCatalogue
	case lang.JavaScript:
		return javascriptCatalogue
	default:
		return nil
	}
}

// Match returns every tag whose pattern appears as a substring of
// sourceSpan, for the given language's built-in catalogue.
func Match(l lang.Language, sourceSpan string) []symbol.RootTag {
	var tags []symbol.RootTag
	for _, p := range MatchPatterns(l, sourceSpan) {
		tags = append(tags, p.Tag)
	}
	return tags
}

// MatchPatterns returns every catalogue Pattern whose needle appears as a
// substring of sourceSpan, preserving the matched needle so callers can
// record it as match metadata.
func MatchPatterns(l lang.Language, sourceSpan string) []Pattern {
	var matched []Pattern
	for _, p := range Catalogue(l) {
		if strings.Contains(sourceSpan, p.Needle) {
			matched = append(matched, p)
		}
	}
	return matched
}
