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

// Package output provides the --json rendering used by every czi
// subcommand (analyze, deps, dependents, path, isolate, info): a
// Report or query result struct in, pretty-printed JSON to stdout out,
// plus a stable error envelope that carries the core's error Kind so a
// scripted caller can branch on "code" without scraping stderr text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	cerrors "github.com/c2j/czi/internal/errors"
)

// JSON writes data as pretty-printed JSON to stdout, 2-space indented.
// This is the shape every czi --json command emits.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// ErrorJSON is the --json error envelope. Code is the error's taxonomy
// Kind (e.g. "NotFound", "ParseError") when err is a *errors.CoreError,
// and omitted otherwise.
type ErrorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONError writes err as a JSON envelope to stderr, tagging it with its
// CoreError Kind when one is present so a scripted caller can branch on
// "code" (e.g. retry on "Timeout", skip on "UnsupportedLanguage").
func JSONError(err error) error {
	return JSONErrorTo(os.Stderr, err)
}

// JSONErrorTo writes err as a JSON envelope to w.
func JSONErrorTo(w io.Writer, err error) error {
	errObj := ErrorJSON{Error: err.Error()}
	if kind, ok := cerrors.KindOf(err); ok {
		errObj.Code = kind.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errObj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}
