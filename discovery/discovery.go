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

// Package discovery resolves glob patterns against a session directory
// into sorted absolute paths (spec.md §4.2, component C2).
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/w2t-align/tempcore/domain"
)

// Resolve resolves pattern relative to sessionDir and returns sorted
// absolute paths. A pattern that matches nothing returns an empty,
// non-error result. Symlinks are followed by filepath.Glob itself.
func Resolve(sessionDir, pattern string, order domain.OrderRule) ([]string, error) {
	if _, err := os.Stat(sessionDir); err != nil {
		return nil, &domain.DiscoveryError{SessionDir: sessionDir, Err: err}
	}

	full := filepath.Join(sessionDir, pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, &domain.DiscoveryError{SessionDir: sessionDir, Pattern: pattern, Err: err}
	}

	if len(matches) == 0 {
		log.WithFields(log.Fields{"session_dir": sessionDir, "pattern": pattern}).Debug("discovery: no files matched")
		return []string{}, nil
	}

	type entry struct {
		path  string
		mtime int64
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		a, err := filepath.Abs(m)
		if err != nil {
			return nil, &domain.DiscoveryError{SessionDir: sessionDir, Pattern: pattern, Err: err}
		}
		var mtime int64
		if fi, err := os.Stat(a); err == nil {
			mtime = fi.ModTime().UnixNano()
		}
		entries = append(entries, entry{path: a, mtime: mtime})
	}

	switch order {
	case domain.OrderNameDesc:
		sort.Slice(entries, func(i, j int) bool { return entries[i].path > entries[j].path })
	case domain.OrderMtimeAsc:
		sort.Slice(entries, func(i, j int) bool { return entries[i].mtime < entries[j].mtime })
	case domain.OrderMtimeDesc:
		sort.Slice(entries, func(i, j int) bool { return entries[i].mtime > entries[j].mtime })
	case domain.OrderNameAsc, "":
		sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	default:
		sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	}

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.path
	}
	return sorted, nil
}
