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

// Package orchestrator wires C1-C11 into the single coordinating call
// spec.md §4.12 describes for component C12: hash inputs, build and
// verify a manifest, align every camera against its reference timebase,
// resolve per-trial offsets and assemble an immutable RunResult.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	version "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/w2t-align/tempcore/align"
	"github.com/w2t-align/tempcore/domain"
	"github.com/w2t-align/tempcore/frames"
	"github.com/w2t-align/tempcore/hashutil"
	"github.com/w2t-align/tempcore/manifest"
	"github.com/w2t-align/tempcore/metrics"
	"github.com/w2t-align/tempcore/pulses"
	"github.com/w2t-align/tempcore/timebase"
	"github.com/w2t-align/tempcore/trialsync"
)

// Orchestrator runs sessions under one RuntimeOptions configuration.
// Build one with New. A nil Counter falls back to an ffprobe-backed
// counter inside manifest.Build, a nil Metrics disables observability,
// and a nil clock falls back to time.Now.
type Orchestrator struct {
	Options RuntimeOptions
	Counter *frames.Counter
	Metrics *metrics.Recorder

	now nowFunc
}

// New builds an Orchestrator. A nil counter defaults to
// frames.NewCounter(nil) (ffprobe-backed); a nil metrics recorder
// disables observability entirely, which is a supported configuration.
func New(opts RuntimeOptions, counter *frames.Counter, rec *metrics.Recorder) *Orchestrator {
	if counter == nil {
		counter = frames.NewCounter(nil)
	}
	return &Orchestrator{Options: opts, Counter: counter, Metrics: rec, now: defaultNow}
}

// Run executes the full pipeline for one session (spec.md §4.12).
// externalStreams supplies EXTERNAL_CLOCK timebase sample sequences
// keyed by stream name; trials supplies already-parsed behavioral-
// controller trial records (parsing Bpod-style session files is out of
// scope per spec.md §1). Both may be nil when unused.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.Config, session domain.Session, sessionID string, externalStreams map[string][]float64, trials []trialsync.TrialRecord) (domain.RunResult, error) {
	configHash, err := hashutil.Hash(cfg)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("orchestrator: hashing config: %w", err)
	}
	sessionHash, err := hashutil.Hash(session)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("orchestrator: hashing session: %w", err)
	}

	m, err := manifest.Build(ctx, cfg, session, true, o.Counter)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("orchestrator: building manifest: %w", err)
	}
	log.WithField("session_id", sessionID).Debugf("orchestrator: manifest built: %s", spew.Sdump(m))

	verification, err := manifest.Verify(m, cfg.Verification)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("orchestrator: verifying manifest: %w", err)
	}
	summary := manifest.BuildSummary(sessionID, verification, o.clock())
	if o.Metrics != nil {
		for _, cam := range verification.Cameras {
			o.Metrics.ObserveVerification(sessionID, cam.CameraID, cam.Status)
		}
	}
	if verification.Overall == domain.OverallStatusFail && !o.Options.OverrideVerificationFailure {
		if o.Metrics != nil {
			o.Metrics.ObserveRunStatus(verification.Overall)
		}
		return domain.RunResult{Manifest: m, Verification: verification, Summary: summary}, fmt.Errorf("orchestrator: session %q: %w", sessionID, domain.ErrVerificationFailed)
	}

	camerasByID := make(map[string]domain.CameraDescriptor, len(session.Cameras))
	for _, desc := range session.Cameras {
		camerasByID[desc.CameraID] = desc
	}

	ttlPulses := make(map[string][]float64, len(m.TTLs))
	for _, ttl := range m.TTLs {
		ttlPulses[ttl.TTLID] = pulses.ReadMerged(ttl.FilePaths)
	}

	alignmentStats := make([]domain.NamedAlignmentStats, len(m.Cameras))
	eg, _ := errgroup.WithContext(ctx)
	if o.Options.Concurrency > 0 {
		eg.SetLimit(o.Options.Concurrency)
	}
	for i, cam := range m.Cameras {
		i, cam := i, cam
		eg.Go(func() error {
			desc, ok := camerasByID[cam.CameraID]
			if !ok {
				return &domain.IngestError{CameraID: cam.CameraID, Reason: "camera present in manifest but not in session descriptors"}
			}
			if cam.FrameCount == nil {
				return fmt.Errorf("orchestrator: camera %q: %w", cam.CameraID, domain.ErrDomain)
			}

			sourceTimes, err := timebase.NominalRate{Starting: 0, Rate: desc.NominalFPS}.GetTimestamps(*cam.FrameCount)
			if err != nil {
				return fmt.Errorf("orchestrator: camera %q: synthesizing frame times: %w", cam.CameraID, err)
			}

			provider, err := timebase.Create(cfg.Timebase, desc.NominalFPS, ttlPulses, externalStreams)
			if err != nil {
				return fmt.Errorf("orchestrator: camera %q: building reference timebase: %w", cam.CameraID, err)
			}
			referenceTimes, err := provider.GetTimestamps(*cam.FrameCount)
			if err != nil {
				return fmt.Errorf("orchestrator: camera %q: reference timebase: %w", cam.CameraID, err)
			}

			_, jitterStats, err := align.Align(sourceTimes, referenceTimes, cfg.Timebase.Mapping, cfg.Timebase.JitterBudgetS, true)
			if err != nil {
				return fmt.Errorf("orchestrator: camera %q: %w", cam.CameraID, err)
			}

			stats := domain.NewAlignmentStats(provider.Source(), cfg.Timebase.Mapping, cfg.Timebase.OffsetS, jitterStats)
			alignmentStats[i] = domain.NamedAlignmentStats{CameraID: cam.CameraID, Stats: stats}
			if o.Metrics != nil {
				o.Metrics.ObserveAlignment(sessionID, cam.CameraID, jitterStats)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if o.Metrics != nil {
			o.Metrics.ObserveRunStatus(domain.OverallStatusFail)
		}
		return domain.RunResult{}, err
	}

	var warnings []string
	var trialOffsets domain.TrialOffsetMap
	if len(m.BpodFiles) > 0 && len(trials) > 0 {
		var types []domain.TrialTypeDescriptor
		for _, ctrl := range session.Controllers {
			types = append(types, ctrl.TrialTypes...)
		}
		resolver := trialsync.Resolver{DriftSanityS: cfg.DriftSanityS}
		offsets, trialWarnings, err := resolver.Resolve(types, trials, ttlPulses)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("orchestrator: resolving trial offsets: %w", err)
		}
		trialOffsets = offsets
		warnings = append(warnings, trialWarnings...)
		if o.Metrics != nil {
			o.Metrics.ObserveTrialOffsets(sessionID, offsets)
		}
	}
	if o.Metrics != nil {
		o.Metrics.ObserveWarnings(len(warnings))
		o.Metrics.ObserveRunStatus(verification.Overall)
	}

	pipelineVersion := o.Options.PipelineVersion
	if v, err := version.NewVersion(pipelineVersion); err == nil {
		pipelineVersion = v.String()
	} else {
		log.WithField("pipeline_version", pipelineVersion).Warn("orchestrator: pipeline version is not a valid semantic version, stamping verbatim")
	}

	result := domain.RunResult{
		Manifest:       m,
		Verification:   verification,
		Summary:        summary,
		AlignmentStats: alignmentStats,
		TrialOffsets:   trialOffsets,
		Warnings:       warnings,
		Provenance: domain.Provenance{
			ConfigHash:       configHash,
			SessionHash:      sessionHash,
			PipelineVersion:  pipelineVersion,
			ExecutionTimeUTC: o.clock().UTC().Format(time.RFC3339),
		},
	}
	log.WithField("session_id", sessionID).Debugf("orchestrator: run result: %s", spew.Sdump(result))
	return result, nil
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return defaultNow()
}
