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

// Package timebase implements the three reference-timebase variants
// (spec.md §4.7, component C7): a constant-rate closed form, and two
// eagerly-held sources backed by sorted pulse sequences. Each variant
// guarantees a strictly-monotonic, non-decreasing sequence of
// timestamps; construction fails if the source violates that.
package timebase

import (
	"github.com/w2t-align/tempcore/domain"
)

// Provider is the sealed capability every timebase variant implements.
// There is no inheritance here by design (spec.md §9): NominalRate, TTL
// and ExternalClock are the only three variants, dispatched by type.
type Provider interface {
	// GetTimestamps returns the first n reference timestamps.
	GetTimestamps(n int) ([]float64, error)
	// Source names the variant for AlignmentStats.TimebaseSource.
	Source() string
}

// NominalRate is a constant-frame-rate timebase: t[i] = starting + i/rate.
type NominalRate struct {
	Starting float64
	Rate     float64
}

func (p NominalRate) Source() string { return "nominal_rate" }

// GetTimestamps has infinite domain; it fails only for a negative n.
func (p NominalRate) GetTimestamps(n int) ([]float64, error) {
	if n < 0 {
		return nil, &domain.TimebaseError{Reason: "n must be non-negative"}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = p.Starting + float64(i)/p.Rate
	}
	return out, nil
}

// eagerSequence backs both TTL and ExternalClock: a strictly monotonic
// sequence of timestamps validated at construction time.
type eagerSequence struct {
	source string
	times  []float64
}

func newEagerSequence(source string, times []float64) (eagerSequence, error) {
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return eagerSequence{}, &domain.TimebaseError{Reason: source + ": source sequence is not strictly monotonic"}
		}
	}
	return eagerSequence{source: source, times: times}, nil
}

func (e eagerSequence) Source() string { return e.source }

func (e eagerSequence) GetTimestamps(n int) ([]float64, error) {
	if n < 0 {
		return nil, &domain.TimebaseError{Reason: "n must be non-negative"}
	}
	if n > len(e.times) {
		return nil, &domain.TimebaseError{Reason: "requested more samples than the source sequence has"}
	}
	out := make([]float64, n)
	copy(out, e.times[:n])
	return out, nil
}

func (e eagerSequence) PulseTimes() []float64 { return e.times }

// TTL is a timebase derived from a hardware TTL channel's pulse
// sequence. Construction requires pulseTimes to already be strictly
// monotonic (sorted and deduplicated upstream, e.g. by pulses.ReadMerged
// after removing exact duplicates).
type TTL struct {
	eagerSequence
}

// NewTTL validates pulseTimes and wraps it as a TTL-sourced provider.
func NewTTL(pulseTimes []float64) (TTL, error) {
	seq, err := newEagerSequence("ttl", pulseTimes)
	if err != nil {
		return TTL{}, err
	}
	return TTL{eagerSequence: seq}, nil
}

// ExternalClock is a timebase derived from a named external acquisition
// stream (e.g. a neural-recording system's own sample clock). It is a
// distinct type from TTL purely for observability: construction and
// access semantics are identical.
type ExternalClock struct {
	eagerSequence
}

// NewExternalClock validates sampleTimes and wraps it as an
// ExternalClock-sourced provider.
func NewExternalClock(sampleTimes []float64) (ExternalClock, error) {
	seq, err := newEagerSequence("external_clock", sampleTimes)
	if err != nil {
		return ExternalClock{}, err
	}
	return ExternalClock{eagerSequence: seq}, nil
}

// Create builds the Provider named by spec's TimebaseSpec, using
// cameraRate for NOMINAL_RATE, ttlPulses (keyed by TTL channel id) for
// TTL, and externalStreams (keyed by stream name) for EXTERNAL_CLOCK.
func Create(spec domain.TimebaseSpec, cameraRate float64, ttlPulses map[string][]float64, externalStreams map[string][]float64) (Provider, error) {
	switch spec.Source {
	case domain.SourceNominalRate:
		return NominalRate{Starting: spec.OffsetS, Rate: cameraRate}, nil

	case domain.SourceTTL:
		pulses, ok := ttlPulses[spec.TTLID]
		if !ok {
			return nil, &domain.TimebaseError{Reason: "ttl channel " + spec.TTLID + " not present"}
		}
		return NewTTL(pulses)

	case domain.SourceExternalClock:
		samples, ok := externalStreams[spec.ExternalStream]
		if !ok {
			return nil, &domain.TimebaseError{Reason: "external stream " + spec.ExternalStream + " not present"}
		}
		return NewExternalClock(samples)

	default:
		return nil, &domain.TimebaseError{Reason: "unknown timebase source: " + string(spec.Source)}
	}
}
