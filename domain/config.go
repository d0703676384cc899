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

// TimebaseSource selects which TimebaseProvider variant backs a run.
type TimebaseSource string

const (
	SourceNominalRate   TimebaseSource = "NOMINAL_RATE"
	SourceTTL           TimebaseSource = "TTL"
	SourceExternalClock TimebaseSource = "EXTERNAL_CLOCK"
)

// MappingStrategy selects how source samples are mapped onto the
// reference timebase.
type MappingStrategy string

const (
	MappingNearest MappingStrategy = "NEAREST"
	MappingLinear  MappingStrategy = "LINEAR"
)

// TimebaseSpec configures which TimebaseProvider to build and how to
// align samples onto it. Construction-time validation (source=TTL
// implies TTLID set, source=EXTERNAL_CLOCK implies ExternalStream set)
// is the caller's responsibility; this package treats Config as already
// validated per spec.md §3.
type TimebaseSpec struct {
	Source         TimebaseSource
	Mapping        MappingStrategy
	JitterBudgetS  float64
	OffsetS        float64
	TTLID          string
	ExternalStream string
}

// VerificationSpec configures the Verifier's tolerance.
type VerificationSpec struct {
	MismatchToleranceFrames int
	WarnOnMismatch          bool
}

// PathLayout records the on-disk layout a session's files are resolved
// against.
type PathLayout struct {
	RawRoot string
}

// Config is the immutable, externally-validated pipeline configuration.
type Config struct {
	Timebase     TimebaseSpec
	Verification VerificationSpec
	Paths        PathLayout
	DriftSanityS float64
}
