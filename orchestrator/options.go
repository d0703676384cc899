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

package orchestrator

import (
	"os"

	yaml "gopkg.in/yaml.v2"
)

// RuntimeOptions are this repository's own operational settings: how
// the orchestrator runs, not what it aligns. They are distinct from the
// externally-validated domain.Config/domain.Session (spec.md §3), which
// describe the experiment itself rather than how this process runs.
type RuntimeOptions struct {
	// Concurrency caps the number of cameras aligned in parallel. Zero
	// means unlimited (bounded only by the session's camera count).
	Concurrency int `yaml:"concurrency"`
	// OverrideVerificationFailure continues past a FAIL verification
	// status instead of returning early (spec.md §4.12 step 3). The
	// mismatch tolerance itself lives on domain.Config.Verification, not
	// here: tolerance is part of the experiment's validated
	// configuration, not this process's runtime knobs.
	OverrideVerificationFailure bool `yaml:"override_verification_failure"`
	// MetricsListenAddr, if non-empty, is where a caller can expose a
	// metrics.Recorder's Handler(); the orchestrator itself never binds
	// a socket.
	MetricsListenAddr string `yaml:"metrics_listen_addr"`
	// PipelineVersion is parsed and validated as a semantic version
	// (github.com/hashicorp/go-version) and stamped into every
	// RunResult's Provenance.
	PipelineVersion string `yaml:"pipeline_version"`
}

// DefaultRuntimeOptions returns the default operational settings. New
// does not apply them itself; it uses whatever RuntimeOptions it is
// given.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		Concurrency:     4,
		PipelineVersion: "0.1.0",
	}
}

// ReadRuntimeOptions loads RuntimeOptions from a YAML file: defaults
// first, then overridden by whatever the file sets.
func ReadRuntimeOptions(path string) (RuntimeOptions, error) {
	opts := DefaultRuntimeOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeOptions{}, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return RuntimeOptions{}, err
	}
	return opts, nil
}
