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

package frames

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/w2t-align/tempcore/domain"
)

// fakeProber is a hand-written stand-in for a go.uber.org/mock-generated
// fake, used because the real ffprobe binary is an external
// collaborator we must not depend on in unit tests.
type fakeProber struct {
	calls int
	n     int
	err   error
}

func (f *fakeProber) Count(ctx context.Context, path string) (int, error) {
	f.calls++
	return f.n, f.err
}

func TestCounterMemoizesWithinARun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cam.avi")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))

	fp := &fakeProber{n: 64}
	c := NewCounter(fp)

	n1, err := c.Count(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 64, n1)

	n2, err := c.Count(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 64, n2)

	require.Equal(t, 1, fp.calls, "second Count for the same unmodified file must hit the memoization cache")
}

func TestCounterMissingFileReturnsZero(t *testing.T) {
	fp := &fakeProber{n: 999}
	c := NewCounter(fp)

	n, err := c.Count(context.Background(), filepath.Join(t.TempDir(), "missing.avi"))
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Zero(t, fp.calls)
}

func TestCounterProbeFailureWrapsFrameCountError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cam.avi")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	fp := &fakeProber{err: boomErr{}}
	c := NewCounter(fp)

	_, err := c.Count(context.Background(), path)
	require.Error(t, err)
	var fcErr *domain.FrameCountError
	require.ErrorAs(t, err, &fcErr)
	require.Equal(t, path, fcErr.Path)
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }
