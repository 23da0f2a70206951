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

// Package lang implements the language adapter registry: a
// per-language tagged-variant capability record exposing detection,
// parsing, and the named pattern-query bundle the extractor (pkg/extract)
// walks.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is a tagged variant over the supported source languages, plus
// an open Custom slot — capability records rather than a class hierarchy,
// per the redesign notes on dynamic polymorphism across languages.
type Language string

const (
	Java       Language = "java"
	JavaScript Language = "javascript"
	Python     Language = "python"
	Shell      Language = "shell"
	Unknown    Language = "unknown"
)

// DetectByExtension maps a file's extension (or well-known basename) to a
// Language, following the extension catalogue.
func DetectByExtension(path string) Language {
	base := filepath.Base(path)
	switch base {
	case "Dockerfile", "Makefile":
		return Shell
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java":
		return Java
	case ".js", ".mjs", ".jsx":
		return JavaScript
	case ".py", ".pyw":
		return Python
	case ".sh", ".bash", ".zsh", ".fish":
		return Shell
	default:
		return Unknown
	}
}

// DetectByShebang inspects a leading shebang line for bash/sh/python/node
// interpreters.
func DetectByShebang(content []byte) Language {
	line := firstLine(content)
	if !strings.HasPrefix(line, "#!") {
		return Unknown
	}
	switch {
	case strings.Contains(line, "bash"), strings.Contains(line, "/sh"), strings.Contains(line, "zsh"):
		return Shell
	case strings.Contains(line, "python"):
		return Python
	case strings.Contains(line, "node"):
		return JavaScript
	}
	return Unknown
}

// DetectByContent applies the coarse content heuristics as a
// last resort: "public class" (Java), "function"/"const"/"let"
// (JavaScript), "def " (Python), "#!/bin/{bash,sh}" (Shell).
func DetectByContent(content []byte) Language {
	text := string(content)
	switch {
	case strings.Contains(text, "public class"):
		return Java
	case strings.Contains(text, "#!/bin/bash"), strings.Contains(text, "#!/bin/sh"):
		return Shell
	case strings.Contains(text, "def "):
		return Python
	case strings.Contains(text, "function"), strings.Contains(text, "const "), strings.Contains(text, "let "):
		return JavaScript
	}
	return Unknown
}

// Detect applies the full detection order: extension, then shebang, then
// content heuristics. An unregistered extension with no other signal
// yields Unknown — callers must treat this as "empty symbol set", never
// an error.
func Detect(path string, content []byte) Language {
	if l := DetectByExtension(path); l != Unknown {
		return l
	}
	if l := DetectByShebang(content); l != Unknown {
		return l
	}
	return DetectByContent(content)
}

func firstLine(content []byte) string {
	for i, b := range content {
		if b == '\n' {
			return string(content[:i])
		}
	}
	return string(content)
}
