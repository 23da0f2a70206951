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

// Package config defines the Config struct recognised by the analysis
// pipeline and its defaults. Reading a project's on-disk configuration
// file is the caller's business; this package only owns the in-memory
// shape the core interprets, serialisable with gopkg.in/yaml.v3.
package config

import "github.com/c2j/czi/pkg/symbol"

// SemanticLinksConfig toggles the four semantic-link families.
type SemanticLinksConfig struct {
	Naming     bool `yaml:"naming"`
	Framework  bool `yaml:"framework"`
	Annotation bool `yaml:"annotation"`
	FileBased  bool `yaml:"file_based"`
}

// ConfidenceWeights exposes the classifier scoring weights; defaulted to the
// contract values but overridable.
type ConfidenceWeights struct {
	LongOrUnderscoredNamePenalty float64 `yaml:"long_or_underscored_name_penalty"`
	TestPathPenalty              float64 `yaml:"test_path_penalty"`
	FullyIsolatedBonus           float64 `yaml:"fully_isolated_bonus"`
	LongNameThreshold            int     `yaml:"long_name_threshold"`
}

// Isolation-distance metric names for ReachabilityConfig.IsolationMetric.
const (
	// IsolationMetricBFS is true shortest-path distance in the undirected
	// projection, the default.
	IsolationMetricBFS = "bfs"
	// IsolationMetricOutDegree approximates isolation distance by a
	// symbol's out-degree, the cheaper prototype behaviour.
	IsolationMetricOutDegree = "out_degree"
)

// ReachabilityConfig configures the reachability engine and the
// classifier's isolation-distance metric.
type ReachabilityConfig struct {
	IgnoredEdgeKinds []symbol.EdgeKind `yaml:"ignored_edge_kinds"`
	IsolationMetric  string            `yaml:"isolation_metric"`
}

// Config is the full set of options recognised by the analysis pipeline.
type Config struct {
	Languages           []string            `yaml:"languages"`
	IncludePatterns     []string            `yaml:"include_patterns"`
	ExcludePatterns     []string            `yaml:"exclude_patterns"`
	MaxFileSizeBytes    int64               `yaml:"max_file_size_bytes"`
	ExtractDependencies bool                `yaml:"extract_dependencies"`
	DetectRootNodes     bool                `yaml:"detect_root_nodes"`
	SemanticLinks       SemanticLinksConfig `yaml:"semantic_links"`
	Reachability        ReachabilityConfig  `yaml:"reachability"`
	Confidence          ConfidenceWeights   `yaml:"confidence"`
	ParseTimeoutMS      int                 `yaml:"parse_timeout_ms"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Languages:           nil, // empty = auto-detect from extensions
		MaxFileSizeBytes:    1048576,
		ExtractDependencies: true,
		DetectRootNodes:     true,
		SemanticLinks: SemanticLinksConfig{
			Naming: true, Framework: true, Annotation: true, FileBased: true,
		},
		Reachability: ReachabilityConfig{
			IsolationMetric: IsolationMetricBFS,
		},
		Confidence: ConfidenceWeights{
			LongOrUnderscoredNamePenalty: 0.1,
			TestPathPenalty:              0.3,
			FullyIsolatedBonus:           0.2,
			LongNameThreshold:            20,
		},
	}
}

// IgnoredEdgeKindSet returns cfg.Reachability.IgnoredEdgeKinds as a set,
// for reachability.Compute.
func (c Config) IgnoredEdgeKindSet() map[symbol.EdgeKind]bool {
	set := make(map[symbol.EdgeKind]bool, len(c.Reachability.IgnoredEdgeKinds))
	for _, k := range c.Reachability.IgnoredEdgeKinds {
		set[k] = true
	}
	return set
}
