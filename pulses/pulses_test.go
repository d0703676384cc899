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

package pulses

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadSortsAndSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ttl.txt")
	content := "3.5\n\nnot-a-number\n  1.25  \n2.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got := Read(path)
	require.Equal(t, []float64{1.25, 2.0, 3.5}, got)
}

func TestReadMissingFileReturnsEmpty(t *testing.T) {
	got := Read(filepath.Join(t.TempDir(), "missing.txt"))
	require.Empty(t, got)
}

func TestReadMergedConcatenatesAndSorts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("2.0\n4.0\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("1.0\n3.0\n"), 0o644))

	got := ReadMerged([]string{a, b})
	require.Equal(t, []float64{1.0, 2.0, 3.0, 4.0}, got)
}

func TestReadMergedDeduplicatesExactTimestamps(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("1.0\n2.0\n2.0\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("2.0\n3.0\n"), 0o644))

	got := ReadMerged([]string{a, b})
	require.Equal(t, []float64{1.0, 2.0, 3.0}, got)
}
