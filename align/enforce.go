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

package align

import "github.com/w2t-align/tempcore/domain"

// CheckBudget is the standalone jitter-budget comparison (component
// C9). It is called after alignment when Align was invoked with
// enforceBudget=false, so stats can be written before the run aborts
// (spec.md §4.9).
func CheckBudget(stats domain.JitterStats, budgetS float64) error {
	if stats.MaxS > budgetS {
		return &domain.JitterBudgetExceeded{MaxS: stats.MaxS, BudgetS: budgetS}
	}
	return nil
}
