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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c2j/czi/pkg/symbol"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, int64(1048576), c.MaxFileSizeBytes)
	assert.True(t, c.ExtractDependencies)
	assert.True(t, c.DetectRootNodes)
	assert.True(t, c.SemanticLinks.Naming)
	assert.True(t, c.SemanticLinks.Framework)
	assert.True(t, c.SemanticLinks.Annotation)
	assert.True(t, c.SemanticLinks.FileBased)
	assert.InDelta(t, 0.1, c.Confidence.LongOrUnderscoredNamePenalty, 1e-9)
	assert.InDelta(t, 0.3, c.Confidence.TestPathPenalty, 1e-9)
	assert.InDelta(t, 0.2, c.Confidence.FullyIsolatedBonus, 1e-9)
	assert.Equal(t, 20, c.Confidence.LongNameThreshold)
	assert.Equal(t, IsolationMetricBFS, c.Reachability.IsolationMetric)
}

func TestIgnoredEdgeKindSet(t *testing.T) {
	c := Default()
	assert.Empty(t, c.IgnoredEdgeKindSet())

	c.Reachability.IgnoredEdgeKinds = []symbol.EdgeKind{symbol.EdgeReferences}
	set := c.IgnoredEdgeKindSet()
	assert.True(t, set[symbol.EdgeReferences])
	assert.False(t, set[symbol.EdgeCalls])
}
