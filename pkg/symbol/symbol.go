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

// Package symbol defines the Symbol and RawReference data model shared by
// every stage of the analysis pipeline.
//
// A Symbol is uniquely identified by a stable fingerprint derived from
// (repository_id, file_path, qualified_name, symbol_kind): the same input
// always yields the same id, across runs and across processes.
package symbol

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	cerrors "github.com/c2j/czi/internal/errors"
)

// Kind enumerates the symbol kinds the extractor can produce.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindEnum        Kind = "enum"
	KindModule      Kind = "module"
	KindConstructor Kind = "constructor"
	KindProperty    Kind = "property"
	KindConstant    Kind = "constant"
	KindTypeAlias   Kind = "type_alias"
	KindTrait       Kind = "trait"
	KindAnnotation  Kind = "annotation"
	KindOther       Kind = "other"
)

// Visibility enumerates the recognised visibility levels.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityInternal  Visibility = "internal"
	VisibilityFile      Visibility = "file"
	VisibilityUnknown   Visibility = "unknown"
)

// RootTag names the named ActiveRootMark variants, in descending
// precedence order when multiple patterns match the same symbol.
type RootTag string

const (
	RootController  RootTag = "Controller"
	RootScheduler   RootTag = "Scheduler"
	RootListener    RootTag = "Listener"
	RootMain        RootTag = "Main"
	RootCommandLine RootTag = "CommandLine"
	RootTest        RootTag = "Test"
	RootLibrary     RootTag = "Library"
)

// rootPrecedence ranks named tags; lower is higher precedence. Custom tags
// always rank below every named tag.
var rootPrecedence = map[RootTag]int{
	RootController:  0,
	RootScheduler:   1,
	RootListener:    2,
	RootMain:        3,
	RootCommandLine: 4,
	RootTest:        5,
	RootLibrary:     6,
}

// ActiveRootMark tags a Symbol as an externally reachable entry point. A
// symbol carries at most one mark. Custom is a free-form tag that never
// collides with the named variants.
type ActiveRootMark struct {
	Tag    RootTag
	Custom string // non-empty iff Tag == "" and this is a Custom(tag) mark

	// Metadata carries debugging context for the match: the matched
	// pattern text and the source file's size, aiding diagnosis when a
	// textual pattern fires on something that is not really a root.
	Metadata map[string]string
}

// IsCustom reports whether this mark is a Custom(tag) variant.
func (m ActiveRootMark) IsCustom() bool { return m.Tag == "" && m.Custom != "" }

// HigherPrecedence reports whether mark a should win over mark b when both
// match the same symbol. Named tags always outrank Custom tags.
func HigherPrecedence(a, b ActiveRootMark) bool {
	if a.IsCustom() && b.IsCustom() {
		return false
	}
	if a.IsCustom() {
		return false
	}
	if b.IsCustom() {
		return true
	}
	return rootPrecedence[a.Tag] < rootPrecedence[b.Tag]
}

// Symbol is a single typed definition discovered by the extractor.
type Symbol struct {
	ID            string
	Name          string
	QualifiedName string
	Kind          Kind
	Language      string
	FilePath      string
	Line          int
	Column        int
	Visibility    Visibility
	Exported      bool
	RepositoryID  string
	Metadata      map[string]string
	ExtractedAt   time.Time

	// RootMark is set by the root-node detector; zero value
	// means the symbol is not a root.
	RootMark ActiveRootMark
}

// IsRoot reports whether this symbol carries any ActiveRootMark.
func (s *Symbol) IsRoot() bool {
	return s.RootMark.Tag != "" || s.RootMark.Custom != ""
}

// IsRootCandidate reports whether this symbol's kind is one the root
// detector ever considers (functions, methods and constructors — the
// kinds a pattern catalogue entry point can be).
func (s *Symbol) IsRootCandidate() bool {
	switch s.Kind {
	case KindFunction, KindMethod, KindConstructor:
		return true
	default:
		return false
	}
}

// DisplayName renders a human-readable label: qualified name if present,
// else the short name.
func (s *Symbol) DisplayName() string {
	if s.QualifiedName != "" {
		return s.QualifiedName
	}
	return s.Name
}

// Signature renders a "kind name" summary used by CLI/query output.
func (s *Symbol) Signature() string {
	return fmt.Sprintf("%s %s", s.Kind, s.DisplayName())
}

// Location renders "file_path:line" for display.
func (s *Symbol) Location() string {
	if s.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", s.FilePath, s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d", s.FilePath, s.Line)
}

// Validate checks the invariants spelled out by the data model: non-empty
// id/name/qualified-name/file-path/repository-id, and line >= 1.
func (s *Symbol) Validate() error {
	switch {
	case s.ID == "":
		return cerrors.NewValidationError("symbol id must not be empty", nil)
	case s.Name == "":
		return cerrors.NewValidationError("symbol name must not be empty", nil)
	case s.QualifiedName == "":
		return cerrors.NewValidationError("symbol qualified name must not be empty", nil)
	case s.FilePath == "":
		return cerrors.NewValidationError("symbol file path must not be empty", nil)
	case s.RepositoryID == "":
		return cerrors.NewValidationError("symbol repository id must not be empty", nil)
	case s.Line < 1:
		return cerrors.NewValidationError("symbol line must be >= 1", nil)
	}
	return nil
}

// Fingerprint computes the stable id for (repositoryID, filePath,
// qualifiedName, kind). The same fingerprint always yields the same id,
// across runs over identical inputs.
func Fingerprint(repositoryID, filePath, qualifiedName string, kind Kind) string {
	norm := normalizePath(filePath)
	raw := fmt.Sprintf("%s|%s|%s|%s", repositoryID, norm, qualifiedName, kind)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("sym:%s", hex.EncodeToString(sum[:]))
}

// normalizePath makes paths comparable across platforms: strip a leading
// "./", clean redundant separators, force forward slashes, drop a
// leading slash.
func normalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// EdgeKind enumerates the recognised RawReference / DependencyEdge kinds.
type EdgeKind string

const (
	EdgeCalls       EdgeKind = "calls"
	EdgeImports     EdgeKind = "imports"
	EdgeExtends     EdgeKind = "extends"
	EdgeImplements  EdgeKind = "implements"
	EdgeUses        EdgeKind = "uses"
	EdgeReferences  EdgeKind = "references"
	EdgeAssigns     EdgeKind = "assigns"
	EdgeDataFlow    EdgeKind = "data_flow"
	EdgeControlFlow EdgeKind = "control_flow"
	EdgeBinds       EdgeKind = "binds"
	EdgeListensTo   EdgeKind = "listens_to"
	EdgeRoutesTo    EdgeKind = "routes_to"
	EdgeQueries     EdgeKind = "queries"
	EdgeReads       EdgeKind = "reads"
	EdgeWrites      EdgeKind = "writes"
	EdgeRequests    EdgeKind = "requests"
	EdgePublishes   EdgeKind = "publishes"
	EdgeConsumes    EdgeKind = "consumes"
	EdgeOther       EdgeKind = "other"
)

// RawReference is emitted by the extractor and consumed by
// the graph builder. It is never stored after resolution.
type RawReference struct {
	SourceFingerprint string
	TargetIdentifier  string
	Kind              EdgeKind
	SourceFile        string
	SourceLine        int
	ConfidenceHint    float64
}

// Validate checks that the confidence hint lies in [0,1] and the
// identifying fields are non-empty.
func (r *RawReference) Validate() error {
	if r.SourceFingerprint == "" {
		return cerrors.NewValidationError("raw reference source fingerprint must not be empty", nil)
	}
	if r.TargetIdentifier == "" {
		return cerrors.NewValidationError("raw reference target identifier must not be empty", nil)
	}
	if r.ConfidenceHint < 0 || r.ConfidenceHint > 1 {
		return cerrors.NewValidationError("raw reference confidence hint must be in [0,1]", nil)
	}
	return nil
}

// CandidateRoot is a (SymbolFingerprint, RootTag) pair produced by the
// extractor's root-pattern matching and finalised by the
// root-node detector.
type CandidateRoot struct {
	SymbolFingerprint string
	Mark              ActiveRootMark
}
