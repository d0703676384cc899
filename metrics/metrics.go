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

// Package metrics exposes a session run's counters and gauges on a
// Prometheus registry. It is ambient observability: align and manifest
// do not use it, the orchestrator accepts a nil Recorder, and a caller
// that never touches this package still gets a correct RunResult.
package metrics

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/w2t-align/tempcore/domain"
)

// Recorder collects per-run counters and gauges on its own registry, so
// one process can run several sessions without label collisions as long
// as each gets its own Recorder.
type Recorder struct {
	registry *prometheus.Registry

	verificationStatus *prometheus.GaugeVec
	cameraMaxJitterS   *prometheus.GaugeVec
	cameraP95JitterS   *prometheus.GaugeVec
	cameraSamples      *prometheus.GaugeVec
	trialOffsetS       *prometheus.GaugeVec
	warningsTotal      prometheus.Counter
	runsTotal          *prometheus.CounterVec
}

// New builds a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		verificationStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempcore_camera_verification_status",
			Help: "Per-camera verification status: 0=OK, 1=WARN, 2=FAIL.",
		}, []string{"session_id", "camera_id"}),
		cameraMaxJitterS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempcore_camera_max_jitter_seconds",
			Help: "Maximum observed alignment jitter for a camera, in seconds.",
		}, []string{"session_id", "camera_id"}),
		cameraP95JitterS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempcore_camera_p95_jitter_seconds",
			Help: "95th percentile alignment jitter for a camera, in seconds.",
		}, []string{"session_id", "camera_id"}),
		cameraSamples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempcore_camera_aligned_samples",
			Help: "Number of samples aligned for a camera.",
		}, []string{"session_id", "camera_id"}),
		trialOffsetS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempcore_trial_offset_seconds",
			Help: "Per-trial behavioral-to-hardware clock offset, in seconds.",
		}, []string{"session_id", "trial_index"}),
		warningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tempcore_run_warnings_total",
			Help: "Non-fatal warnings accumulated across all runs served by this recorder.",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tempcore_runs_total",
			Help: "Completed orchestrator runs by overall verification status.",
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		r.verificationStatus,
		r.cameraMaxJitterS,
		r.cameraP95JitterS,
		r.cameraSamples,
		r.trialOffsetS,
		r.warningsTotal,
		r.runsTotal,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for promhttp.HandlerFor
// in a caller that wants to merge it with other collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns an http.Handler serving this recorder's registry in
// the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func statusValue(status domain.CameraStatus) float64 {
	switch status {
	case domain.StatusOK:
		return 0
	case domain.StatusWarn:
		return 1
	default:
		return 2
	}
}

// ObserveVerification records one camera's verification outcome.
func (r *Recorder) ObserveVerification(sessionID, cameraID string, status domain.CameraStatus) {
	r.verificationStatus.WithLabelValues(sessionID, cameraID).Set(statusValue(status))
}

// ObserveAlignment records one camera's alignment statistics.
func (r *Recorder) ObserveAlignment(sessionID, cameraID string, stats domain.JitterStats) {
	r.cameraMaxJitterS.WithLabelValues(sessionID, cameraID).Set(stats.MaxS)
	r.cameraP95JitterS.WithLabelValues(sessionID, cameraID).Set(stats.P95S)
	r.cameraSamples.WithLabelValues(sessionID, cameraID).Set(float64(stats.AlignedSamples))
}

// ObserveTrialOffsets records every trial's offset from a TrialOffsetMap.
func (r *Recorder) ObserveTrialOffsets(sessionID string, offsets domain.TrialOffsetMap) {
	for idx, delta := range offsets {
		r.trialOffsetS.WithLabelValues(sessionID, fmt.Sprintf("%d", idx)).Set(delta)
	}
}

// ObserveWarnings adds a run's warning count to the warnings counter.
// Run completion is recorded separately by ObserveRunStatus.
func (r *Recorder) ObserveWarnings(n int) {
	r.warningsTotal.Add(float64(n))
}

// ObserveRunStatus records one completed run under its overall status,
// normalized into a metric-safe label value.
func (r *Recorder) ObserveRunStatus(status domain.OverallStatus) {
	r.runsTotal.WithLabelValues(flattenLabel(string(status))).Inc()
}

func flattenLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
