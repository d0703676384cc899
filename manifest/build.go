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

// Package manifest composes file discovery, pulse reading and frame
// counting into a session manifest, and verifies per-camera frame/pulse
// counts against a tolerance (spec.md §4.5/§4.6, components C5/C6).
package manifest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/w2t-align/tempcore/discovery"
	"github.com/w2t-align/tempcore/domain"
	"github.com/w2t-align/tempcore/frames"
	"github.com/w2t-align/tempcore/pulses"
)

// Build discovers a session's files and, when countFrames is true, also
// counts frames per camera and pulses per TTL channel. It is
// deterministic and idempotent for identical inputs (spec.md §4.5).
func Build(ctx context.Context, cfg domain.Config, session domain.Session, countFrames bool, counter *frames.Counter) (domain.Manifest, error) {
	if counter == nil {
		counter = frames.NewCounter(nil)
	}

	ttlPaths := make(map[string][]string, len(session.TTLChannels))
	ttlPulses := make(map[string][]float64, len(session.TTLChannels))
	ttls := make([]domain.ManifestTTL, 0, len(session.TTLChannels))
	for _, desc := range session.TTLChannels {
		paths, err := discovery.Resolve(cfg.Paths.RawRoot, desc.PathGlob, domain.OrderNameAsc)
		if err != nil {
			return domain.Manifest{}, err
		}
		if len(paths) == 0 {
			log.WithField("ttl_id", desc.TTLID).Warn("manifest: no TTL files found, channel may legitimately be absent")
		}
		ttlPaths[desc.TTLID] = paths
		ttls = append(ttls, domain.ManifestTTL{TTLID: desc.TTLID, FilePaths: paths})

		if countFrames {
			ttlPulses[desc.TTLID] = pulses.ReadMerged(paths)
		}
	}

	cameras := make([]domain.ManifestCamera, 0, len(session.Cameras))
	for _, desc := range session.Cameras {
		videoPaths, err := discovery.Resolve(cfg.Paths.RawRoot, desc.PathGlob, desc.Order)
		if err != nil {
			return domain.Manifest{}, err
		}
		if len(videoPaths) == 0 {
			return domain.Manifest{}, &domain.IngestError{CameraID: desc.CameraID, Reason: "no video files resolved for required camera"}
		}

		cam := domain.ManifestCamera{
			CameraID:   desc.CameraID,
			TTLID:      desc.TTLID,
			VideoPaths: videoPaths,
		}

		if countFrames {
			total := 0
			for _, p := range videoPaths {
				n, err := counter.Count(ctx, p)
				if err != nil {
					return domain.Manifest{}, err
				}
				total += n
			}
			pulseCount := len(ttlPulses[desc.TTLID])
			cam.FrameCount = &total
			cam.TTLPulseCount = &pulseCount
		}

		cameras = append(cameras, cam)
	}

	var bpodFiles []string
	for _, ctrl := range session.Controllers {
		paths, err := discovery.Resolve(cfg.Paths.RawRoot, ctrl.PathGlob, ctrl.Order)
		if err != nil {
			return domain.Manifest{}, err
		}
		bpodFiles = append(bpodFiles, paths...)
	}

	return domain.Manifest{
		SessionID: session.SessionID,
		Cameras:   cameras,
		TTLs:      ttls,
		BpodFiles: bpodFiles,
	}, nil
}

// ValidateTTLReferences returns the camera ids whose ttl_id does not
// reference any TTL entry present in the manifest (spec.md §3:
// "a dangling reference marks the camera as unverifiable"), exposed as
// an explicit pre-verification pass callers can run on their own.
func ValidateTTLReferences(m domain.Manifest) []string {
	var unverifiable []string
	for _, cam := range m.Cameras {
		if _, ok := m.TTLByID(cam.TTLID); !ok {
			unverifiable = append(unverifiable, cam.CameraID)
		}
	}
	return unverifiable
}
