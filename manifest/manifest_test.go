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

package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/w2t-align/tempcore/domain"
	"github.com/w2t-align/tempcore/frames"
)

type fixedProber struct{ n int }

func (f fixedProber) Count(ctx context.Context, path string) (int, error) { return f.n, nil }

func writeSession(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "video"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ttl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "video", "cam0_001.avi"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ttl", "cam0.txt"), []byte("0.0\n1.0\n2.0\n"), 0o644))
}

func testSession() domain.Session {
	return domain.Session{
		SessionID: "sess-1",
		Cameras: []domain.CameraDescriptor{
			{CameraID: "cam0", PathGlob: "video/cam0_*.avi", Order: domain.OrderNameAsc, TTLID: "ttl0", NominalFPS: 30},
		},
		TTLChannels: []domain.TTLDescriptor{
			{TTLID: "ttl0", PathGlob: "ttl/cam0.txt"},
		},
	}
}

func TestBuildFastDiscoveryLeavesCountsNil(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root)
	cfg := domain.Config{Paths: domain.PathLayout{RawRoot: root}}

	m, err := Build(context.Background(), cfg, testSession(), false, nil)
	require.NoError(t, err)
	require.Len(t, m.Cameras, 1)
	require.Nil(t, m.Cameras[0].FrameCount)
	require.Nil(t, m.Cameras[0].TTLPulseCount)
}

func TestBuildCountingModePopulatesBothCounts(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root)
	cfg := domain.Config{Paths: domain.PathLayout{RawRoot: root}}
	counter := frames.NewCounter(fixedProber{n: 3})

	m, err := Build(context.Background(), cfg, testSession(), true, counter)
	require.NoError(t, err)
	require.NotNil(t, m.Cameras[0].FrameCount)
	require.NotNil(t, m.Cameras[0].TTLPulseCount)
	require.Equal(t, 3, *m.Cameras[0].FrameCount)
	require.Equal(t, 3, *m.Cameras[0].TTLPulseCount)
}

func TestBuildIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root)
	cfg := domain.Config{Paths: domain.PathLayout{RawRoot: root}}
	counter := frames.NewCounter(fixedProber{n: 3})

	m1, err := Build(context.Background(), cfg, testSession(), true, counter)
	require.NoError(t, err)
	m2, err := Build(context.Background(), cfg, testSession(), true, counter)
	require.NoError(t, err)
	require.Equal(t, m1, m2)
}

func TestBuildMissingRequiredCameraFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(root, 0o755))
	cfg := domain.Config{Paths: domain.PathLayout{RawRoot: root}}

	_, err := Build(context.Background(), cfg, testSession(), false, nil)
	require.Error(t, err)
	var ingestErr *domain.IngestError
	require.ErrorAs(t, err, &ingestErr)
}

func TestVerifyPassWhenCountsMatch(t *testing.T) {
	fc, tc := 10, 10
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "ttl0", FrameCount: &fc, TTLPulseCount: &tc}},
		TTLs:    []domain.ManifestTTL{{TTLID: "ttl0"}},
	}
	v, err := Verify(m, domain.VerificationSpec{})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPass, v.Overall)
	require.Equal(t, domain.StatusOK, v.Cameras[0].Status)
}

func TestVerifyWarnWithinTolerance(t *testing.T) {
	fc, tc := 100, 95
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "ttl0", FrameCount: &fc, TTLPulseCount: &tc}},
		TTLs:    []domain.ManifestTTL{{TTLID: "ttl0"}},
	}
	v, err := Verify(m, domain.VerificationSpec{MismatchToleranceFrames: 5})
	require.NoError(t, err)
	require.Equal(t, domain.OverallStatusWarn, v.Overall)
	require.Equal(t, domain.StatusWarn, v.Cameras[0].Status)
	require.Equal(t, 5, v.Cameras[0].Mismatch)
}

func TestVerifyFailBeyondTolerance(t *testing.T) {
	fc, tc := 100, 50
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "ttl0", FrameCount: &fc, TTLPulseCount: &tc}},
		TTLs:    []domain.ManifestTTL{{TTLID: "ttl0"}},
	}
	v, err := Verify(m, domain.VerificationSpec{MismatchToleranceFrames: 5})
	require.NoError(t, err)
	require.Equal(t, domain.OverallStatusFail, v.Overall)
	require.Equal(t, domain.StatusFail, v.Cameras[0].Status)
}

func TestVerifyWarnOnMismatchDowngradesBeyondToleranceToWarn(t *testing.T) {
	fc, tc := 100, 50
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "ttl0", FrameCount: &fc, TTLPulseCount: &tc}},
		TTLs:    []domain.ManifestTTL{{TTLID: "ttl0"}},
	}
	v, err := Verify(m, domain.VerificationSpec{MismatchToleranceFrames: 5, WarnOnMismatch: true})
	require.NoError(t, err)
	require.Equal(t, domain.OverallStatusWarn, v.Overall)
	require.Equal(t, domain.StatusWarn, v.Cameras[0].Status)
	require.Equal(t, 50, v.Cameras[0].Mismatch)
}

func TestVerifyDanglingTTLReferenceIsWarn(t *testing.T) {
	fc, tc := 10, 10
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "missing-ttl", FrameCount: &fc, TTLPulseCount: &tc}},
	}
	v, err := Verify(m, domain.VerificationSpec{})
	require.NoError(t, err)
	require.False(t, v.Cameras[0].Verifiable)
	require.Equal(t, domain.StatusWarn, v.Cameras[0].Status)
}

func TestVerifyUncountedManifestIsDomainError(t *testing.T) {
	m := domain.Manifest{
		Cameras: []domain.ManifestCamera{{CameraID: "cam0", TTLID: "ttl0"}},
		TTLs:    []domain.ManifestTTL{{TTLID: "ttl0"}},
	}
	_, err := Verify(m, domain.VerificationSpec{})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrDomain)
}
