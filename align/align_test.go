/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/w2t-align/tempcore/domain"
)

// Scenario A: happy path, nominal timebase.
func TestScenarioANominalHappyPath(t *testing.T) {
	source := make([]float64, 64)
	for i := range source {
		source[i] = float64(i) / 30
	}
	reference := make([]float64, 64)
	copy(reference, source)

	result, stats, err := Align(source, reference, domain.MappingNearest, 0.001, true)
	require.NoError(t, err)
	for i, idx := range result.Indices {
		require.Equal(t, i, idx)
	}
	require.InDelta(t, 0, stats.MaxS, 1e-9)
	require.InDelta(t, 0, stats.P95S, 1e-9)
}

// Scenario D: jitter budget exceeded.
func TestScenarioDJitterBudgetExceeded(t *testing.T) {
	source := []float64{0.000, 0.033, 0.066}
	reference := []float64{0.000, 0.040, 0.080}

	_, _, err := Align(source, reference, domain.MappingNearest, 0.005, true)
	require.Error(t, err)
	var exceeded *domain.JitterBudgetExceeded
	require.ErrorAs(t, err, &exceeded)
	require.InDelta(t, 0.014, exceeded.MaxS, 1e-9)
	require.InDelta(t, 0.005, exceeded.BudgetS, 1e-9)
}

func TestNearestIndicesAlwaysInRange(t *testing.T) {
	source := []float64{-5, -1, 0, 0.5, 1, 1.2, 100}
	reference := []float64{0, 1, 2, 3}

	result, _, err := Align(source, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	require.Len(t, result.Indices, len(source))
	for _, idx := range result.Indices {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(reference))
	}
}

func TestNearestExactMatchHasZeroJitter(t *testing.T) {
	reference := []float64{0, 1, 2, 3}
	_, stats, err := Align([]float64{2}, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	require.Zero(t, stats.MaxS)
}

func TestNearestTieBreaksToLowerIndex(t *testing.T) {
	reference := []float64{0, 2}
	result, _, err := Align([]float64{1}, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	require.Equal(t, 0, result.Indices[0])
}

func TestNearestSingleReferenceAlwaysIndexZero(t *testing.T) {
	reference := []float64{5}
	result, _, err := Align([]float64{-1, 0, 5, 100}, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	for _, idx := range result.Indices {
		require.Equal(t, 0, idx)
	}
}

func TestLinearRequiresAtLeastTwoReferencePoints(t *testing.T) {
	_, _, err := Align([]float64{0}, []float64{5}, domain.MappingLinear, 0, false)
	require.Error(t, err)
	var tbErr *domain.TimebaseError
	require.ErrorAs(t, err, &tbErr)
}

func TestLinearExtrapolatesBeforeAndAfterRange(t *testing.T) {
	reference := []float64{1, 2, 3}
	result, _, err := Align([]float64{0, 10}, reference, domain.MappingLinear, 0, false)
	require.NoError(t, err)
	require.Equal(t, domain.LinearBracket{Low: 0, High: 1}, result.Brackets[0])
	require.Equal(t, domain.LinearWeight{WLow: 1, WHigh: 0}, result.Weights[0])
	require.Equal(t, domain.LinearBracket{Low: 1, High: 2}, result.Brackets[1])
	require.Equal(t, domain.LinearWeight{WLow: 0, WHigh: 1}, result.Weights[1])
}

func TestLinearInterpolatesMidpoint(t *testing.T) {
	reference := []float64{0, 2}
	result, _, err := Align([]float64{1}, reference, domain.MappingLinear, 0, false)
	require.NoError(t, err)
	require.Equal(t, domain.LinearBracket{Low: 0, High: 1}, result.Brackets[0])
	require.InDelta(t, 0.5, result.Weights[0].WLow, 1e-9)
	require.InDelta(t, 0.5, result.Weights[0].WHigh, 1e-9)

	times := AlignedTimes(result, reference)
	require.InDelta(t, 1.0, times[0], 1e-9)
}

func TestEmptySourceYieldsZeroStats(t *testing.T) {
	result, stats, err := Align(nil, []float64{0, 1}, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	require.Empty(t, result.Indices)
	require.Equal(t, domain.JitterStats{MaxS: 0, P95S: 0, AlignedSamples: 0}, stats)
}

func TestAlignIsIdempotent(t *testing.T) {
	source := []float64{0.1, 0.4, 0.9, 1.5}
	reference := []float64{0, 0.5, 1.0, 1.5, 2.0}

	r1, s1, err := Align(source, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	r2, s2, err := Align(source, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
	require.Equal(t, s1, s2)
}

func TestNearestMinimizesDistanceOverAllReferenceIndices(t *testing.T) {
	reference := []float64{0, 0.5, 1.3, 2.7, 3.0, 5.5}
	source := []float64{-2, 0.1, 0.9, 2.0, 4.0, 10}

	result, _, err := Align(source, reference, domain.MappingNearest, 0, false)
	require.NoError(t, err)
	for i, s := range source {
		chosen := math.Abs(reference[result.Indices[i]] - s)
		for _, r := range reference {
			require.LessOrEqual(t, chosen, math.Abs(r-s)+1e-12)
		}
	}
}

func TestCheckBudgetSeparateFromAlign(t *testing.T) {
	result, stats, err := Align([]float64{0.014}, []float64{0.0}, domain.MappingNearest, 0.005, false)
	require.NoError(t, err)
	require.NotNil(t, result.Indices)

	err = CheckBudget(stats, 0.005)
	require.Error(t, err)
}
