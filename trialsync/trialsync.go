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

package trialsync

import (
	"fmt"
	"math"
	"sort"

	"github.com/eclesh/welford"

	"github.com/w2t-align/tempcore/domain"
)

// Resolver computes component C10's per-trial offset map: for each
// trial it locates the trial's sync state, anchors it to the trial's
// one designated hardware sync pulse, and derives the additive delta
// between the controller's trial-relative clock and the absolute
// hardware clock (spec.md §4.10).
//
//	LOOKUP_TYPE    -- find the TrialTypeDescriptor for the trial
//	EXTRACT_SYNC_TIME -- read S_i from the trial's RawStates
//	ASSIGN_PULSE   -- take the next unconsumed pulse on the type's channel
//	COMPUTE_DELTA  -- delta_i = P_i - (T_i + S_i)
//
// DriftSanityS configures the warning threshold on successive deltas
// within the same TTL channel; zero disables the check.
type Resolver struct {
	DriftSanityS float64
}

// Resolve computes the TrialOffsetMap for one behavioral controller's
// trials. trialTypes indexes every trial type the controller can emit.
// pulsesByChannel holds each TTL channel's pulse times, already sorted
// ascending (as produced by pulses.Read/ReadMerged).
//
// A trial type in trialTypes whose sync TTL channel is absent from
// pulsesByChannel is a fatal condition (the manifest never resolved
// that channel) and aborts the whole call with *domain.TrialSyncError,
// whether or not any trial has that type. A channel that is present
// with an empty pulse list is not fatal. Per-trial problems -- a missing sync state,
// or running out of pulses on a channel -- are non-fatal: the trial is
// skipped and a warning is appended.
func (r Resolver) Resolve(trialTypes []domain.TrialTypeDescriptor, trials []TrialRecord, pulsesByChannel map[string][]float64) (domain.TrialOffsetMap, []string, error) {
	byType := make(map[string]domain.TrialTypeDescriptor, len(trialTypes))
	for _, tt := range trialTypes {
		byType[tt.TrialType] = tt
	}

	for _, tt := range trialTypes {
		if _, ok := pulsesByChannel[tt.SyncTTLChannel]; !ok {
			return nil, nil, &domain.TrialSyncError{Reason: fmt.Sprintf("sync ttl channel %q referenced by trial type %q has no resolved pulses", tt.SyncTTLChannel, tt.TrialType)}
		}
	}

	offsets := make(domain.TrialOffsetMap, len(trials))
	var warnings []string

	consumed := make(map[string]int, len(pulsesByChannel))
	lastDelta := make(map[string]float64, len(pulsesByChannel))
	haveLastDelta := make(map[string]bool, len(pulsesByChannel))

	ordered := make([]TrialRecord, len(trials))
	copy(ordered, trials)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].TrialIndex < ordered[j].TrialIndex })

	for _, trial := range ordered {
		// LOOKUP_TYPE
		tt, ok := byType[trial.TrialType]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("trial %d: unknown trial type %q, skipped", trial.TrialIndex, trial.TrialType))
			continue
		}

		// EXTRACT_SYNC_TIME
		syncTime, ok := trial.RawStates[tt.SyncSignalName]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("trial %d: sync state %q missing from raw states, skipped", trial.TrialIndex, tt.SyncSignalName))
			continue
		}

		// ASSIGN_PULSE
		channel := tt.SyncTTLChannel
		pulses := pulsesByChannel[channel]
		idx := consumed[channel]
		if idx >= len(pulses) {
			warnings = append(warnings, fmt.Sprintf("trial %d: only %d pulses available on channel %q for %d assigned trials so far, skipped", trial.TrialIndex, len(pulses), channel, idx+1))
			continue
		}
		pulse := pulses[idx]
		consumed[channel] = idx + 1

		// COMPUTE_DELTA
		target := trial.StartTime + syncTime
		delta := pulse - target
		offsets[trial.TrialIndex] = delta

		if r.DriftSanityS > 0 && haveLastDelta[channel] {
			if drift := math.Abs(delta - lastDelta[channel]); drift > r.DriftSanityS {
				warnings = append(warnings, fmt.Sprintf("trial %d: offset drift %.6fs on channel %q exceeds sanity threshold %.6fs", trial.TrialIndex, drift, channel, r.DriftSanityS))
			}
		}
		lastDelta[channel] = delta
		haveLastDelta[channel] = true
	}

	return offsets, warnings, nil
}

// SessionWideOffset reduces a TrialOffsetMap to a single representative
// offset for observability (e.g. a manifest summary line or a metrics
// gauge) when per-trial offsets are unavailable or uninteresting to a
// caller; per-trial offsets in TrialOffsetMap remain authoritative for
// alignment (SPEC_FULL.md Open Question decision #1, "Supplemented
// features" #3). The reduction is the running mean over trial index
// order via a single-pass Welford accumulator, which also lets a future
// caller read the running variance without re-scanning the map.
func SessionWideOffset(offsets domain.TrialOffsetMap) float64 {
	if len(offsets) == 0 {
		return 0
	}

	indices := make([]int, 0, len(offsets))
	for idx := range offsets {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	acc := welford.New()
	for _, idx := range indices {
		acc.Add(offsets[idx])
	}
	return acc.Mean()
}
