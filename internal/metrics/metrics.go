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

// Package metrics registers the Prometheus instrumentation for the
// analysis pipeline's phases.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// pipelineMetrics holds the process-wide Prometheus metrics for analysis
// pipeline runs (see pkg/analysis); Pipeline is the shared instance, and
// its counters accumulate across every run in the process.
type pipelineMetrics struct {
	once sync.Once

	FilesConsidered prometheus.Counter
	FilesParsed     prometheus.Counter
	FilesSkipped    prometheus.Counter

	SymbolsExtracted    prometheus.Counter
	ReferencesEmitted   prometheus.Counter
	EdgesRetained       prometheus.Counter
	EdgesCoalesced      prometheus.Counter
	RootsDetected       prometheus.Counter
	ResolutionMisses    prometheus.Counter
	AmbiguousReferences prometheus.Counter

	FindingsEmitted prometheus.Counter

	ExtractDuration      prometheus.Histogram
	GraphBuildDuration   prometheus.Histogram
	ReachabilityDuration prometheus.Histogram
	ClassifyDuration     prometheus.Histogram
	TotalDuration        prometheus.Histogram
}

var Pipeline pipelineMetrics

func (m *pipelineMetrics) Init() {
	m.once.Do(func() {
		m.FilesConsidered = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_files_considered_total", Help: "Files offered to the pipeline by the source provider"})
		m.FilesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_files_parsed_total", Help: "Files successfully parsed into a usable tree"})
		m.FilesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_files_skipped_total", Help: "Files skipped (size ceiling, parse error, unsupported language)"})

		m.SymbolsExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_symbols_extracted_total", Help: "Symbols produced by the extractor"})
		m.ReferencesEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_references_emitted_total", Help: "RawReferences produced by the extractor"})
		m.EdgesRetained = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_edges_retained_total", Help: "DependencyEdges retained in the graph after resolution"})
		m.EdgesCoalesced = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_edges_coalesced_total", Help: "Duplicate (source,target,kind) edges coalesced"})
		m.RootsDetected = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_roots_detected_total", Help: "Symbols marked as active roots"})
		m.ResolutionMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_resolution_misses_total", Help: "RawReferences dropped unresolved"})
		m.AmbiguousReferences = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_resolution_ambiguous_total", Help: "RawReferences dropped because several symbols shared the referenced simple name"})

		m.FindingsEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "czi_findings_emitted_total", Help: "ZombieFindings emitted by the classifier"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.ExtractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "czi_extract_seconds", Help: "Wall time of the extraction phase", Buckets: buckets})
		m.GraphBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "czi_graph_build_seconds", Help: "Wall time of the graph-build phase", Buckets: buckets})
		m.ReachabilityDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "czi_reachability_seconds", Help: "Wall time of the reachability phase", Buckets: buckets})
		m.ClassifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "czi_classify_seconds", Help: "Wall time of the zombie-classification phase", Buckets: buckets})
		m.TotalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "czi_total_seconds", Help: "Total wall time of an analysis run", Buckets: buckets})

		prometheus.MustRegister(
			m.FilesConsidered, m.FilesParsed, m.FilesSkipped,
			m.SymbolsExtracted, m.ReferencesEmitted, m.EdgesRetained, m.EdgesCoalesced,
			m.RootsDetected, m.ResolutionMisses, m.AmbiguousReferences, m.FindingsEmitted,
			m.ExtractDuration, m.GraphBuildDuration, m.ReachabilityDuration,
			m.ClassifyDuration, m.TotalDuration,
		)
	})
}
