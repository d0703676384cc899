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

import "time"

// nowFunc is the orchestrator's clock seam, standing in for the
// teacher's hardware-backed clock reader (facebook-time's phc/clock
// packages, not kept in this tree since nothing here touches a PHC
// device). Tests substitute a fixed function so Provenance.ExecutionTimeUTC
// is reproducible.
type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }
