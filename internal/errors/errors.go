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

// Package errors implements the core's error taxonomy.
//
// Every error the analysis engine raises carries a Kind drawn from the
// fixed taxonomy below, plus an optional cause and fix hint. CLI callers
// format these with color via Format; library callers use the Kind field,
// KindOf, and the standard errors.Is/As machinery.
package errors

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
)

// Kind is the fixed error taxonomy used throughout the core.
type Kind int

const (
	// KindValidation covers a malformed symbol/edge or invalid configuration.
	KindValidation Kind = iota
	// KindParse covers a parser that could not yield a usable tree for a file.
	KindParse
	// KindUnsupportedLanguage covers a forced language tag with no adapter.
	KindUnsupportedLanguage
	// KindNotFound covers a query that referenced a symbol absent from the graph.
	KindNotFound
	// KindInvalidState covers a write attempted after the graph is frozen.
	KindInvalidState
	// KindResourceExhausted covers a memory or file-size ceiling crossed.
	KindResourceExhausted
	// KindCancelled covers an observed cooperative cancellation signal.
	KindCancelled
	// KindTimeout covers a per-file parse timeout.
	KindTimeout
)

// String renders the Kind using its taxonomy name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindParse:
		return "ParseError"
	case KindUnsupportedLanguage:
		return "UnsupportedLanguage"
	case KindNotFound:
		return "NotFound"
	case KindInvalidState:
		return "InvalidState"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindCancelled:
		return "Cancelled"
	case KindTimeout:
		return "Timeout"
	default:
		return "UnknownError"
	}
}

// CoreError is the error type raised across the analysis engine. It carries
// a Kind, a human-readable message, an optional fix hint, and an optional
// wrapped cause.
type CoreError struct {
	Kind    Kind
	Message string
	Fix     string
	Cause   error

	// Path and Line identify the offending file when known (ParseError,
	// UnsupportedLanguage, Timeout).
	Path string
	Line int
}

func (e *CoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Cause }

// Is reports whether target is a *CoreError with the same Kind.
func (e *CoreError) Is(target error) bool {
	var other *CoreError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// Format renders the error for CLI display; colors are suppressed when
// noColor is true.
func (e *CoreError) Format(noColor bool) string {
	prev := color.NoColor
	color.NoColor = noColor
	defer func() { color.NoColor = prev }()

	red := color.New(color.FgRed, color.Bold)
	out := red.Sprintf("✗ %s", e.Message)
	if e.Cause != nil {
		out += fmt.Sprintf("\n  cause: %v", e.Cause)
	}
	if e.Fix != "" {
		out += fmt.Sprintf("\n  fix: %s", e.Fix)
	}
	return out
}

func newErr(kind Kind, message string, cause error) *CoreError {
	return &CoreError{Kind: kind, Message: message, Cause: cause}
}

// NewValidationError builds a KindValidation error.
func NewValidationError(message string, cause error) *CoreError {
	return newErr(KindValidation, message, cause)
}

// NewParseError builds a KindParse error for the given file.
func NewParseError(path string, cause error) *CoreError {
	e := newErr(KindParse, "could not parse file into a usable tree", cause)
	e.Path = path
	return e
}

// NewUnsupportedLanguageError builds a KindUnsupportedLanguage error.
func NewUnsupportedLanguageError(path string) *CoreError {
	e := newErr(KindUnsupportedLanguage, "no adapter registered for this language", nil)
	e.Path = path
	return e
}

// NewNotFoundError builds a KindNotFound error referencing the given id.
func NewNotFoundError(id string) *CoreError {
	return newErr(KindNotFound, fmt.Sprintf("symbol %q not found in graph", id), nil)
}

// NewInvalidStateError builds a KindInvalidState error.
func NewInvalidStateError(message string) *CoreError {
	return newErr(KindInvalidState, message, nil)
}

// NewResourceExhaustedError builds a KindResourceExhausted error.
func NewResourceExhaustedError(message string) *CoreError {
	return newErr(KindResourceExhausted, message, nil)
}

// NewCancelledError builds a KindCancelled error.
func NewCancelledError() *CoreError {
	return newErr(KindCancelled, "cancellation signal observed", nil)
}

// NewTimeoutError builds a KindTimeout error for the given file.
func NewTimeoutError(path string) *CoreError {
	e := newErr(KindTimeout, "per-file parse timeout exceeded", nil)
	e.Path = path
	return e
}

// KindOf extracts the Kind from err if it is (or wraps) a *CoreError.
func KindOf(err error) (Kind, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
