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

package manifest

import (
	"fmt"
	"time"

	"github.com/w2t-align/tempcore/domain"
)

// Verify compares each camera's frame count to its associated TTL pulse
// count under spec.MismatchToleranceFrames, producing an overall
// pass/warn/fail decision (spec.md §4.6). When spec.WarnOnMismatch is
// set, a mismatch beyond tolerance is downgraded from FAIL to WARN
// instead of failing the camera outright. Verify never mutates m.
func Verify(m domain.Manifest, spec domain.VerificationSpec) (domain.VerificationResult, error) {
	unverifiable := make(map[string]bool)
	for _, id := range ValidateTTLReferences(m) {
		unverifiable[id] = true
	}

	cameras := make([]domain.CameraVerification, 0, len(m.Cameras))
	overall := domain.StatusPass

	for _, cam := range m.Cameras {
		if cam.FrameCount == nil || cam.TTLPulseCount == nil {
			return domain.VerificationResult{}, fmt.Errorf("verify: camera %q: manifest not counted, build(count_frames=true) required: %w", cam.CameraID, domain.ErrDomain)
		}

		mismatch := *cam.FrameCount - *cam.TTLPulseCount
		verifiable := !unverifiable[cam.CameraID]

		var status domain.CameraStatus
		switch {
		case !verifiable:
			status = domain.StatusWarn
		case mismatch == 0:
			status = domain.StatusOK
		case abs(mismatch) <= spec.MismatchToleranceFrames:
			status = domain.StatusWarn
		case spec.WarnOnMismatch:
			status = domain.StatusWarn
		default:
			status = domain.StatusFail
		}

		cameras = append(cameras, domain.CameraVerification{
			CameraID:      cam.CameraID,
			TTLID:         cam.TTLID,
			FrameCount:    *cam.FrameCount,
			TTLPulseCount: *cam.TTLPulseCount,
			Mismatch:      mismatch,
			Verifiable:    verifiable,
			Status:        status,
		})

		switch status {
		case domain.StatusFail:
			overall = domain.OverallStatusFail
		case domain.StatusWarn:
			if overall != domain.OverallStatusFail {
				overall = domain.OverallStatusWarn
			}
		}
	}

	return domain.VerificationResult{Overall: overall, Cameras: cameras}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// BuildSummary renders a VerificationResult into the JSON-serializable
// Summary record from spec.md §6, stamping generatedAt as the caller's
// chosen "now" (typically the orchestrator's clock seam) formatted as
// ISO-8601/RFC3339.
func BuildSummary(sessionID string, v domain.VerificationResult, generatedAt time.Time) domain.Summary {
	cams := make([]domain.SummaryCamera, 0, len(v.Cameras))
	for _, c := range v.Cameras {
		cams = append(cams, domain.SummaryCamera{
			CameraID:      c.CameraID,
			TTLID:         c.TTLID,
			FrameCount:    c.FrameCount,
			TTLPulseCount: c.TTLPulseCount,
			Mismatch:      c.Mismatch,
			Verifiable:    c.Verifiable,
			Status:        string(c.Status),
		})
	}
	return domain.Summary{
		SessionID:   sessionID,
		Cameras:     cams,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
}
