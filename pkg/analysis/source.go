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

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileInput is one entry of the source-provider interface: the only
// shape the core ever sees a file as. The caller (repository fetch,
// desktop shell, whatever sits outside this core) is responsible for
// producing these; the core itself never touches a filesystem, VCS, or
// network beyond the default DirSource below.
type FileInput struct {
	// RepositoryID is an opaque non-empty string identifying which
	// input repository this file belongs to.
	RepositoryID string
	// FilePath is repository-relative and uses "/" separators.
	FilePath string
	Content  []byte
	// LastModified is optional enrichment (e.g. from git blame); when
	// present it is surfaced on every Symbol extracted from this file as
	// Metadata["last_modified_unix"], and from there onto any
	// ZombieFinding for that symbol. It never participates in the classifier's
	// confidence arithmetic.
	LastModified *time.Time
}

// Source is the caller-supplied iterable of FileInputs. ok is false
// only once the source is genuinely exhausted, in which case err is nil.
// A non-nil err with ok true means this particular entry failed (e.g. a
// read error) without the source itself being broken: per-file
// failures are recovered locally and must not abort the run, so the
// pipeline records that one file as skipped and keeps draining. A
// non-nil err with ok false means the source itself cannot continue and
// the whole run aborts. Implementations may stream rather than
// materialise the whole set; the pipeline's own suspension points
// are confined to this call and to the worker queue that drains its
// output.
type Source interface {
	Next(ctx context.Context) (FileInput, bool, error)
}

// DirSource is the default Source: a lexicographically ordered walk of a
// local directory tree, reading each file's content lazily, one file per
// call to Next. Pipeline.Run drains the whole source before extraction
// begins, so every file's content is held in memory at once during a run.
type DirSource struct {
	Dir          string
	RepositoryID string

	paths []string
	idx   int
}

// NewDirSource returns a DirSource rooted at dir, attributing every file
// to repositoryID. The path list is collected eagerly (a directory walk
// is cheap relative to parsing) and sorted, pinning file iteration to
// lexicographic path order.
func NewDirSource(dir, repositoryID string) (*DirSource, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return &DirSource{Dir: dir, RepositoryID: repositoryID, paths: paths}, nil
}

// Next reads the next file in path order.
func (d *DirSource) Next(ctx context.Context) (FileInput, bool, error) {
	if ctx.Err() != nil {
		return FileInput{}, false, ctx.Err()
	}
	if d.idx >= len(d.paths) {
		return FileInput{}, false, nil
	}
	rel := d.paths[d.idx]
	d.idx++

	full := filepath.Join(d.Dir, rel)
	info, err := os.Stat(full)
	if err != nil {
		return FileInput{RepositoryID: d.RepositoryID, FilePath: rel}, true, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return FileInput{RepositoryID: d.RepositoryID, FilePath: rel}, true, err
	}
	mtime := info.ModTime()
	return FileInput{
		RepositoryID: d.RepositoryID,
		FilePath:     rel,
		Content:      content,
		LastModified: &mtime,
	}, true, nil
}

// ParallelMap runs fn over every index in [0, n), in any order, and
// returns the n results. The core never schedules its own threads beyond
// this seam — parallelism is always caller-injected. Callers running
// inside an existing executor, fibre scheduler, or single-threaded
// harness may substitute their own via Pipeline.WithParallelMap.
type ParallelMap func(ctx context.Context, n int, fn func(ctx context.Context, i int) fileOutcome) []fileOutcome
