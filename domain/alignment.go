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

package domain

// LinearBracket is one source sample's bracketing reference-index pair
// under LINEAR mapping.
type LinearBracket struct {
	Low  int
	High int
}

// LinearWeight is the convex-combination weight pair matching a
// LinearBracket; WLow+WHigh always sums to 1.
type LinearWeight struct {
	WLow  float64
	WHigh float64
}

// AlignedResult is the output of Aligner.Align. For NEAREST mapping only
// Indices is populated; for LINEAR mapping Brackets and Weights are
// populated instead and Indices is nil.
type AlignedResult struct {
	Mapping  MappingStrategy
	Indices  []int
	Brackets []LinearBracket
	Weights  []LinearWeight
}

// JitterStats are the jitter statistics accompanying an AlignedResult.
type JitterStats struct {
	MaxS           float64
	P95S           float64
	AlignedSamples int
}

// AlignmentStats is the immutable per-camera (or per-modality) alignment
// summary record from spec.md §3/§4.11.
type AlignmentStats struct {
	TimebaseSource string
	Mapping        MappingStrategy
	OffsetS        float64
	MaxJitterS     float64
	P95JitterS     float64
	AlignedSamples int
}

// NewAlignmentStats builds an AlignmentStats from a completed alignment.
func NewAlignmentStats(timebaseSource string, mapping MappingStrategy, offsetS float64, stats JitterStats) AlignmentStats {
	return AlignmentStats{
		TimebaseSource: timebaseSource,
		Mapping:        mapping,
		OffsetS:        offsetS,
		MaxJitterS:     stats.MaxS,
		P95JitterS:     stats.P95S,
		AlignedSamples: stats.AlignedSamples,
	}
}

// TrialOffsetMap maps 1-based trial index to its additive absolute-time
// offset delta, per spec.md §4.10.
type TrialOffsetMap map[int]float64

// Provenance is the frozen provenance record attached to every RunResult.
type Provenance struct {
	ConfigHash      string
	SessionHash     string
	PipelineVersion string
	ExecutionTimeUTC string
}

// RunResult is the immutable bundle produced by SessionOrchestrator.Run.
type RunResult struct {
	Manifest       Manifest
	Verification   VerificationResult
	Summary        Summary
	AlignmentStats []NamedAlignmentStats
	TrialOffsets   TrialOffsetMap
	Warnings       []string
	Provenance     Provenance
}

// NamedAlignmentStats pairs a camera id with its AlignmentStats so
// RunResult.AlignmentStats preserves the session's camera ordering
// (spec.md §5 ordering guarantees).
type NamedAlignmentStats struct {
	CameraID string
	Stats    AlignmentStats
}
