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
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	cerrors "github.com/c2j/czi/internal/errors"
	"github.com/c2j/czi/internal/metrics"
	"github.com/c2j/czi/pkg/extract"
	"github.com/c2j/czi/pkg/graph"
	"github.com/c2j/czi/pkg/lang"
	"github.com/c2j/czi/pkg/query"
	"github.com/c2j/czi/pkg/reachability"
	"github.com/c2j/czi/pkg/roots"
	"github.com/c2j/czi/pkg/semantic"
	"github.com/c2j/czi/pkg/symbol"
	"github.com/c2j/czi/pkg/zombie"
)

// Report is the full output of one pipeline run: the frozen graph, its
// reachable set, the classified findings, a ready query surface, and the
// run's Stats.
type Report struct {
	Graph     *graph.Graph
	Reachable reachability.Set
	Findings  []zombie.Finding
	Query     *query.Surface
	Stats     Stats
}

// Pipeline wires extraction, graph building, root detection, semantic
// augmentation, reachability, and classification into one orchestrated
// run: drain a caller-supplied Source, fan its entries out through a
// ParallelMap capability for parsing and extraction, merge the results
// through a single writer, then run the read-only phases in sequence.
type Pipeline struct {
	cfg         Config
	registry    *lang.Registry
	logger      *slog.Logger
	parallelMap ParallelMap
}

// NewPipeline returns a Pipeline configured per cfg. A nil logger falls
// back to slog.Default(). The parallel-extraction strategy defaults to a
// bounded goroutine pool sized by cfg.ParseWorkers; see WithParallelMap
// to substitute a different capability.
func NewPipeline(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.ParseWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		cfg:         cfg,
		registry:    lang.NewRegistry(),
		logger:      logger,
		parallelMap: defaultParallelMap(workers),
	}
}

// WithParallelMap replaces the pipeline's parallel-extraction capability,
// the core does not care whether the caller backs it with
// goroutines, a fixed-size pool, green threads, or a single synchronous
// loop, so long as it maps fn over every index and returns the results.
func (p *Pipeline) WithParallelMap(pm ParallelMap) *Pipeline {
	p.parallelMap = pm
	return p
}

// RunDir is a convenience over Run: it builds a DirSource rooted at
// cfg.RootPath, attributed to cfg.RepositoryID, and runs the pipeline
// over it. Most callers (the czi CLI included) have no external
// repository-fetch layer of their own and want this default directly.
func (p *Pipeline) RunDir(ctx context.Context) (*Report, error) {
	src, err := NewDirSource(p.cfg.RootPath, p.cfg.RepositoryID)
	if err != nil {
		return nil, fmt.Errorf("open directory source: %w", err)
	}
	return p.Run(ctx, src)
}

// Run executes the full pipeline over every FileInput src yields. src is
// the source-provider boundary: the core never reads a
// filesystem, clones a repository, or talks to a VCS itself beyond the
// default DirSource a caller may choose to use.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Report, error) {
	metrics.Pipeline.Init()
	start := time.Now()

	files, preSkipped, err := p.collectFiles(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	p.logger.Info("analysis.step.discover", "file_count", len(files))

	extractStart := time.Now()
	builder := graph.NewBuilder()
	stats := Stats{SkippedByReason: map[string]int{}, IsolationMetric: p.cfg.isolationMetric()}
	for reason, n := range preSkipped {
		stats.FilesConsidered += n
		stats.FilesSkipped += n
		stats.SkippedByReason[reason] += n
		metrics.Pipeline.FilesConsidered.Add(float64(n))
		metrics.Pipeline.FilesSkipped.Add(float64(n))
	}
	var candidateRoots []symbol.CandidateRoot

	outcomes := p.parallelMap(ctx, len(files), func(ctx context.Context, i int) fileOutcome {
		return p.extractOne(ctx, files[i])
	})
	// Restore the (repository id, path) order collectFiles established:
	// the workers' results channel hands outcomes back in completion
	// order, and the merge below must not depend on it.
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].repo != outcomes[j].repo {
			return outcomes[i].repo < outcomes[j].repo
		}
		return outcomes[i].path < outcomes[j].path
	})

	for _, o := range outcomes {
		stats.FilesConsidered++
		metrics.Pipeline.FilesConsidered.Inc()
		switch {
		case o.skip != "":
			stats.FilesSkipped++
			stats.SkippedByReason[string(o.skip)]++
			p.logger.Debug("analysis.file.skipped", "path", o.path, "reason", string(o.skip))
			metrics.Pipeline.FilesSkipped.Inc()
			continue
		case o.err != nil:
			stats.FilesSkipped++
			stats.SkippedByReason[string(skipParseError)]++
			p.logger.Warn("analysis.file.error", "path", o.path, "err", o.err)
			metrics.Pipeline.FilesSkipped.Inc()
			continue
		}

		stats.FilesParsed++
		metrics.Pipeline.FilesParsed.Inc()
		if err := builder.AddFile(o.repo, o.symbols, o.refs, o.imports); err != nil {
			return nil, fmt.Errorf("intern %s: %w", o.path, err)
		}
		stats.SymbolsExtracted += len(o.symbols)
		stats.ReferencesEmitted += len(o.refs)
		candidateRoots = append(candidateRoots, o.roots...)
	}
	metrics.Pipeline.SymbolsExtracted.Add(float64(stats.SymbolsExtracted))
	metrics.Pipeline.ReferencesEmitted.Add(float64(stats.ReferencesEmitted))
	stats.ExtractDuration = time.Since(extractStart)
	metrics.Pipeline.ExtractDuration.Observe(stats.ExtractDuration.Seconds())

	if err := ctx.Err(); err != nil {
		return nil, cerrors.NewCancelledError()
	}

	// resolve buffered references into DependencyEdges.
	buildStart := time.Now()
	if p.cfg.ExtractDependencies {
		if err := builder.ResolveReferences(); err != nil {
			return nil, fmt.Errorf("resolve references: %w", err)
		}
	}
	stats.ResolutionMisses = builder.ResolutionMisses()
	stats.AmbiguousReferences = builder.AmbiguousDrops()
	metrics.Pipeline.ResolutionMisses.Add(float64(stats.ResolutionMisses))
	metrics.Pipeline.AmbiguousReferences.Add(float64(stats.AmbiguousReferences))
	metrics.Pipeline.EdgesCoalesced.Add(float64(builder.EdgesCoalesced()))

	g := builder.Graph()
	stats.EdgesRetained = g.NumEdges()
	metrics.Pipeline.EdgesRetained.Add(float64(stats.EdgesRetained))

	// finalise root markings.
	if p.cfg.DetectRootNodes {
		roots.Finalize(g, candidateRoots)
	}
	for _, s := range g.Symbols() {
		if s.IsRoot() {
			stats.RootsDetected++
		}
	}
	metrics.Pipeline.RootsDetected.Add(float64(stats.RootsDetected))
	p.logger.Info("analysis.step.graph_build.complete",
		"symbols", g.NumSymbols(), "edges", g.NumEdges(), "roots", stats.RootsDetected,
		"resolution_misses", stats.ResolutionMisses,
		"ambiguous_references", stats.AmbiguousReferences)

	// semantic link augmentation (writable graph, pre-freeze).
	augmenter := semantic.NewAugmenter(semantic.Config{
		Naming:     p.cfg.SemanticLinks.Naming,
		Framework:  p.cfg.SemanticLinks.Framework,
		Annotation: p.cfg.SemanticLinks.Annotation,
		FileBased:  p.cfg.SemanticLinks.FileBased,
	})
	if err := augmenter.Augment(g); err != nil {
		return nil, fmt.Errorf("augment semantic links: %w", err)
	}
	stats.GraphBuildDuration = time.Since(buildStart)
	metrics.Pipeline.GraphBuildDuration.Observe(stats.GraphBuildDuration.Seconds())

	g.Freeze()

	if err := ctx.Err(); err != nil {
		return nil, cerrors.NewCancelledError()
	}

	// forward reachability.
	reachStart := time.Now()
	ignored := make(map[symbol.EdgeKind]bool, len(p.cfg.Reachability.IgnoredEdgeKinds))
	for _, k := range p.cfg.Reachability.IgnoredEdgeKinds {
		ignored[k] = true
	}
	reachable := reachability.Compute(g, ignored)
	stats.ReachableCount = len(reachable)
	stats.ReachabilityDuration = time.Since(reachStart)
	metrics.Pipeline.ReachabilityDuration.Observe(stats.ReachabilityDuration.Seconds())
	p.logger.Info("analysis.step.reachability.complete", "reachable", stats.ReachableCount)

	if err := ctx.Err(); err != nil {
		return nil, cerrors.NewCancelledError()
	}

	// zombie classification.
	classifyStart := time.Now()
	findings := zombie.Classify(g, reachable, p.cfg.zombieConfig())
	stats.FindingCount = len(findings)
	stats.ClassifyDuration = time.Since(classifyStart)
	metrics.Pipeline.ClassifyDuration.Observe(stats.ClassifyDuration.Seconds())
	metrics.Pipeline.FindingsEmitted.Add(float64(stats.FindingCount))
	p.logger.Info("analysis.step.classify.complete", "findings", stats.FindingCount)

	stats.TotalDuration = time.Since(start)
	metrics.Pipeline.TotalDuration.Observe(stats.TotalDuration.Seconds())
	p.logger.Info("analysis.complete",
		"files_parsed", stats.FilesParsed, "files_skipped", stats.FilesSkipped,
		"findings", stats.FindingCount, "total_duration_ms", stats.TotalDuration.Milliseconds())

	return &Report{
		Graph:     g,
		Reachable: reachable,
		Findings:  findings,
		Query:     query.New(g, reachable),
		Stats:     stats,
	}, nil
}

// collectFiles drains src, applying the include/exclude glob patterns
// to each entry's FilePath, then sorts the survivors by
// (repository id, path) so file iteration order is deterministic
// regardless of what order src itself yielded them in.
//
// Per the Source contract, an entry-level error (ok == true) is a single
// file failing to read and is recovered locally as a skip; only a
// terminal error (ok == false) aborts the whole collection.
func (p *Pipeline) collectFiles(ctx context.Context, src Source) ([]FileInput, map[string]int, error) {
	var files []FileInput
	skipped := map[string]int{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, cerrors.NewCancelledError()
		}
		fi, ok, err := src.Next(ctx)
		if !ok {
			if err != nil {
				return nil, nil, err
			}
			break
		}
		if err != nil {
			skipped[string(skipReadError)]++
			p.logger.Warn("analysis.file.read_error", "path", fi.FilePath, "err", err)
			continue
		}
		if !p.included(fi.FilePath) {
			skipped[string(skipExcluded)]++
			continue
		}
		if fi.RepositoryID == "" {
			fi.RepositoryID = p.cfg.RepositoryID
		}
		files = append(files, fi)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].RepositoryID != files[j].RepositoryID {
			return files[i].RepositoryID < files[j].RepositoryID
		}
		return files[i].FilePath < files[j].FilePath
	})
	return files, skipped, nil
}

// included applies cfg's include/exclude glob patterns against relPath.
func (p *Pipeline) included(relPath string) bool {
	for _, pattern := range p.cfg.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return false
		}
		if strings.Contains(relPath, strings.TrimSuffix(pattern, "/**")) && strings.HasSuffix(pattern, "/**") {
			return false
		}
	}
	if len(p.cfg.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range p.cfg.IncludePatterns {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// defaultParallelMap is the ParallelMap capability NewPipeline installs
// by default: a bounded goroutine pool for large file sets, falling back
// to a plain sequential loop below a worker-pool threshold.
func defaultParallelMap(workers int) ParallelMap {
	return func(ctx context.Context, n int, fn func(context.Context, int) fileOutcome) []fileOutcome {
		if n == 0 {
			return nil
		}
		if n < 10 || workers <= 1 {
			out := make([]fileOutcome, 0, n)
			for i := 0; i < n; i++ {
				select {
				case <-ctx.Done():
					return out
				default:
				}
				out = append(out, fn(ctx, i))
			}
			return out
		}

		jobs := make(chan int, n)
		results := make(chan fileOutcome, n)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					select {
					case <-ctx.Done():
						return
					default:
					}
					results <- fn(ctx, i)
				}
			}()
		}

		for i := 0; i < n; i++ {
			jobs <- i
		}
		close(jobs)

		go func() {
			wg.Wait()
			close(results)
		}()

		out := make([]fileOutcome, 0, n)
		for o := range results {
			out = append(out, o)
		}
		return out
	}
}

// extractOne parses and extracts a single already-read FileInput,
// enforcing the size ceiling and per-file parse timeout. No filesystem
// access happens here: fi.Content is whatever the Source provided.
func (p *Pipeline) extractOne(ctx context.Context, fi FileInput) fileOutcome {
	maxSize := p.cfg.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = extract.MaxFileSizeBytes
	}
	if int64(len(fi.Content)) > maxSize {
		return fileOutcome{repo: fi.RepositoryID, path: fi.FilePath, skip: skipTooLarge}
	}

	adapter, ok := p.registry.Detect(fi.FilePath, fi.Content)
	if !ok {
		return fileOutcome{repo: fi.RepositoryID, path: fi.FilePath, skip: skipUnsupportedLanguage}
	}
	if len(p.cfg.Languages) > 0 && !containsLanguage(p.cfg.Languages, adapter.Language()) {
		return fileOutcome{repo: fi.RepositoryID, path: fi.FilePath, skip: skipUnsupportedLanguage}
	}

	parseCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.ParseTimeoutMS > 0 {
		parseCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.ParseTimeoutMS)*time.Millisecond)
		defer cancel()
	}

	res, err := extract.Extract(parseCtx, adapter, fi.Content, fi.FilePath, fi.RepositoryID)
	if err != nil {
		if parseCtx.Err() == context.DeadlineExceeded {
			return fileOutcome{repo: fi.RepositoryID, path: fi.FilePath, skip: skipParseTimeout}
		}
		return fileOutcome{repo: fi.RepositoryID, path: fi.FilePath, skip: skipParseError, err: err}
	}

	if fi.LastModified != nil {
		ts := strconv.FormatInt(fi.LastModified.Unix(), 10)
		for _, s := range res.Symbols {
			if s.Metadata == nil {
				s.Metadata = map[string]string{}
			}
			s.Metadata["last_modified_unix"] = ts
		}
	}

	return fileOutcome{
		repo:    fi.RepositoryID,
		path:    fi.FilePath,
		symbols: res.Symbols,
		refs:    res.RawReferences,
		roots:   res.CandidateRoots,
		imports: res.Imports,
	}
}

func containsLanguage(allowed []string, l lang.Language) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, string(l)) {
			return true
		}
	}
	return false
}
