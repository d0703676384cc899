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

import "github.com/w2t-align/tempcore/domain"

// ModalityResult bundles one modality's alignment against a reference
// timebase: aligned indices/brackets plus jitter statistics. Video,
// pose and FaceMap alignment are one algorithm (Align) with a named
// entry point per modality -- optional modalities beyond their
// alignment contract remain out of scope (spec.md §1).
type ModalityResult struct {
	Aligned domain.AlignedResult
	Jitter  domain.JitterStats
}

// AlignVideoFrames aligns camera frame timestamps to the reference
// timebase.
func AlignVideoFrames(frameTimes, referenceTimes []float64, mapping domain.MappingStrategy, budgetS float64, enforceBudget bool) (ModalityResult, error) {
	return alignModality(frameTimes, referenceTimes, mapping, budgetS, enforceBudget)
}

// AlignPoseSamples aligns pose-estimation sample timestamps to the
// reference timebase.
func AlignPoseSamples(poseTimes, referenceTimes []float64, mapping domain.MappingStrategy, budgetS float64, enforceBudget bool) (ModalityResult, error) {
	return alignModality(poseTimes, referenceTimes, mapping, budgetS, enforceBudget)
}

// AlignFaceMapSamples aligns FaceMap output sample timestamps to the
// reference timebase.
func AlignFaceMapSamples(facemapTimes, referenceTimes []float64, mapping domain.MappingStrategy, budgetS float64, enforceBudget bool) (ModalityResult, error) {
	return alignModality(facemapTimes, referenceTimes, mapping, budgetS, enforceBudget)
}

func alignModality(sourceTimes, referenceTimes []float64, mapping domain.MappingStrategy, budgetS float64, enforceBudget bool) (ModalityResult, error) {
	aligned, jitter, err := Align(sourceTimes, referenceTimes, mapping, budgetS, enforceBudget)
	if err != nil {
		return ModalityResult{}, err
	}
	return ModalityResult{Aligned: aligned, Jitter: jitter}, nil
}
