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

// Package pulses parses TTL pulse log files: one floating-point second
// timestamp per line (spec.md §4.3, component C3).
package pulses

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Read loads a single TTL pulse file and returns its timestamps sorted
// ascending. A missing file returns an empty sequence and logs a
// warning rather than failing, per spec.md §4.3.
func Read(path string) []float64 {
	f, err := os.Open(path)
	if err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).Warn("pulses: TTL file missing, treating as empty")
		return []float64{}
	}
	defer f.Close()

	var out []float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			log.WithFields(log.Fields{"path": path, "line": lineNo, "text": line}).Warn("pulses: skipping unparseable TTL line")
			continue
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).Warn("pulses: error reading TTL file")
	}

	sort.Float64s(out)
	return out
}

// ReadMerged loads and concatenates every file's timestamps, sorts the
// merged sequence ascending, and removes exact duplicate timestamps
// (e.g. a pulse logged twice across overlapping files). Merging
// multiple files under one channel identifier is the caller's
// responsibility (spec.md §4.3); downstream TTL timebase construction
// requires the result to be strictly monotonic.
func ReadMerged(paths []string) []float64 {
	var all []float64
	for _, p := range paths {
		all = append(all, Read(p)...)
	}
	sort.Float64s(all)
	if len(all) == 0 {
		return []float64{}
	}

	out := make([]float64, 0, len(all))
	out = append(out, all[0])
	for _, v := range all[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
