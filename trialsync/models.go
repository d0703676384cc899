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

// Package trialsync implements C10, the subtlest subsystem in the core:
// aligning a behavioral controller's trial-relative clock to the
// absolute hardware clock using one sync pulse per trial (spec.md
// §4.10).
package trialsync

// RawStates maps a behavioral state's name to its start time, relative
// to the owning trial's start (trial-relative seconds). It is the
// parsed-but-uninterpreted shape this package needs from whatever
// behavioral-controller record format the caller uses (Bpod, or
// otherwise) -- interpreting behavioral semantics beyond locating the
// sync state is out of scope (spec.md §1 Non-goals).
type RawStates map[string]float64

// TrialRecord is one trial as exposed by the parsed behavioral-
// controller data: its 1-based index, declared type, start time on the
// controller's own clock (T_i), and raw state timings (raw_states_i).
type TrialRecord struct {
	TrialIndex int
	TrialType  string
	StartTime  float64
	RawStates  RawStates
}
