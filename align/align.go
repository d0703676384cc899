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

// Package align maps a sequence of source-clock timestamps onto a
// reference timebase, via nearest-neighbor or linear interpolation, and
// computes jitter statistics (spec.md §4.8/§4.9, components C8/C9/C11).
package align

import (
	"math"
	"sort"

	"github.com/w2t-align/tempcore/domain"
)

// Align maps sourceTimes onto referenceTimes under mapping. Both inputs
// must already be sorted ascending. If enforceBudget is true and the
// observed max jitter exceeds budgetS, a domain.JitterBudgetExceeded
// error is returned and no AlignedResult is produced (spec.md §4.8:
// raised BEFORE any result is emitted).
func Align(sourceTimes, referenceTimes []float64, mapping domain.MappingStrategy, budgetS float64, enforceBudget bool) (domain.AlignedResult, domain.JitterStats, error) {
	if len(referenceTimes) == 0 {
		return domain.AlignedResult{}, domain.JitterStats{}, &domain.TimebaseError{Reason: "reference timebase must have length >= 1"}
	}
	if mapping == domain.MappingLinear && len(referenceTimes) < 2 {
		return domain.AlignedResult{}, domain.JitterStats{}, &domain.TimebaseError{Reason: "LINEAR mapping requires a reference timebase of length >= 2"}
	}

	var result domain.AlignedResult
	var jitters []float64

	switch mapping {
	case domain.MappingNearest:
		result, jitters = mapNearest(sourceTimes, referenceTimes)
	case domain.MappingLinear:
		result, jitters = mapLinear(sourceTimes, referenceTimes)
	default:
		return domain.AlignedResult{}, domain.JitterStats{}, &domain.TimebaseError{Reason: "unknown mapping strategy: " + string(mapping)}
	}

	stats := computeJitterStats(jitters)

	if enforceBudget && stats.MaxS > budgetS {
		return domain.AlignedResult{}, domain.JitterStats{}, &domain.JitterBudgetExceeded{MaxS: stats.MaxS, BudgetS: budgetS}
	}

	return result, stats, nil
}

// mapNearest performs a single sequential two-finger walk since both
// sequences are sorted, giving O(N+M). Ties prefer the lower index.
func mapNearest(source, reference []float64) (domain.AlignedResult, []float64) {
	indices := make([]int, len(source))
	jitters := make([]float64, len(source))

	j := 0
	for i, s := range source {
		// advance j while the next reference sample is strictly closer, so
		// a tie keeps the lower index
		for j < len(reference)-1 && math.Abs(reference[j+1]-s) < math.Abs(reference[j]-s) {
			j++
		}
		indices[i] = j
		jitters[i] = math.Abs(reference[j] - s)
	}

	return domain.AlignedResult{Mapping: domain.MappingNearest, Indices: indices}, jitters
}

// mapLinear brackets each source sample between two reference samples
// and computes convex-combination weights. Samples outside the
// reference range extrapolate from the nearest edge. The jitter
// definition for LINEAR mapping is the distance to the nearer bracket
// endpoint (SPEC_FULL.md Open Question decision #2), kept consistent
// with every §8 property test that touches LINEAR mapping.
func mapLinear(source, reference []float64) (domain.AlignedResult, []float64) {
	m := len(reference)
	brackets := make([]domain.LinearBracket, len(source))
	weights := make([]domain.LinearWeight, len(source))
	jitters := make([]float64, len(source))

	i := 0
	for k, s := range source {
		switch {
		case s <= reference[0]:
			brackets[k] = domain.LinearBracket{Low: 0, High: 1}
			weights[k] = domain.LinearWeight{WLow: 1, WHigh: 0}
			jitters[k] = math.Abs(s - reference[0])
			continue
		case s >= reference[m-1]:
			brackets[k] = domain.LinearBracket{Low: m - 2, High: m - 1}
			weights[k] = domain.LinearWeight{WLow: 0, WHigh: 1}
			jitters[k] = math.Abs(s - reference[m-1])
			continue
		}

		for i < m-2 && reference[i+1] <= s {
			i++
		}
		lo, hi := reference[i], reference[i+1]
		wHigh := (s - lo) / (hi - lo)
		wLow := 1 - wHigh
		brackets[k] = domain.LinearBracket{Low: i, High: i + 1}
		weights[k] = domain.LinearWeight{WLow: wLow, WHigh: wHigh}
		jitters[k] = math.Min(math.Abs(s-lo), math.Abs(s-hi))
	}

	return domain.AlignedResult{Mapping: domain.MappingLinear, Brackets: brackets, Weights: weights}, jitters
}

// computeJitterStats computes max and p95 by sorting ascending first,
// so percentile computation iterates in a fixed order (spec.md §9:
// "do not use unordered reductions for statistics that enter a hash or
// a budget comparison").
func computeJitterStats(jitters []float64) domain.JitterStats {
	n := len(jitters)
	if n == 0 {
		return domain.JitterStats{MaxS: 0, P95S: 0, AlignedSamples: 0}
	}

	sorted := make([]float64, n)
	copy(sorted, jitters)
	sort.Float64s(sorted)

	idx := int(math.Ceil(0.95*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	return domain.JitterStats{
		MaxS:           sorted[n-1],
		P95S:           sorted[idx],
		AlignedSamples: n,
	}
}

// AlignedTimes resolves the reference timestamps an AlignedResult maps
// onto: a direct index lookup for NEAREST, a weighted average for
// LINEAR.
func AlignedTimes(result domain.AlignedResult, referenceTimes []float64) []float64 {
	switch result.Mapping {
	case domain.MappingNearest:
		out := make([]float64, len(result.Indices))
		for i, idx := range result.Indices {
			out[i] = referenceTimes[idx]
		}
		return out
	case domain.MappingLinear:
		out := make([]float64, len(result.Brackets))
		for i, b := range result.Brackets {
			w := result.Weights[i]
			out[i] = w.WLow*referenceTimes[b.Low] + w.WHigh*referenceTimes[b.High]
		}
		return out
	default:
		return nil
	}
}
