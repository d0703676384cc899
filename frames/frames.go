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

// Package frames produces a frame count for a video file by delegating
// to an external probe, treated as a black-box collaborator (spec.md
// §4.4, component C4). Video decoding itself is out of scope.
package frames

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/cespare/xxhash"
	log "github.com/sirupsen/logrus"

	"github.com/w2t-align/tempcore/domain"
)

// Prober counts frames in a single video file. The default
// implementation shells out to ffprobe; tests substitute a fake.
type Prober interface {
	Count(ctx context.Context, path string) (int, error)
}

// ffprobeStream mirrors the handful of fields this package reads from
// `ffprobe -of json -show_entries stream=nb_read_frames`.
type ffprobeStream struct {
	NbReadFrames string `json:"nb_read_frames"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

// FFProbeProber counts frames by invoking the ffprobe binary with
// frame counting enabled, the way w2t_bkin.ingest.count_video_frames
// does.
type FFProbeProber struct {
	// Binary is the ffprobe executable name or path. Defaults to
	// "ffprobe" when empty.
	Binary string
}

func (p FFProbeProber) binary() string {
	if p.Binary == "" {
		return "ffprobe"
	}
	return p.Binary
}

// Count shells out to ffprobe and parses its JSON frame count output.
func (p FFProbeProber) Count(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "json",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("ffprobe: parsing json output: %w", err)
	}
	if len(out.Streams) == 0 {
		return 0, nil
	}

	var n int
	if _, err := fmt.Sscanf(out.Streams[0].NbReadFrames, "%d", &n); err != nil {
		return 0, fmt.Errorf("ffprobe: parsing nb_read_frames %q: %w", out.Streams[0].NbReadFrames, err)
	}
	return n, nil
}

// Counter counts frames via a Prober, memoizing results within a single
// run keyed by path+size+mtime so repeated build(count_frames=true)
// calls over the same files (ManifestBuilder's idempotence contract,
// spec.md §4.5) don't re-invoke the probe.
type Counter struct {
	Prober Prober

	mu    sync.Mutex
	cache map[uint64]int
}

// NewCounter builds a Counter around prober. A nil prober uses
// FFProbeProber{}.
func NewCounter(prober Prober) *Counter {
	if prober == nil {
		prober = FFProbeProber{}
	}
	return &Counter{Prober: prober, cache: map[uint64]int{}}
}

func (c *Counter) cacheKey(path string) (uint64, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	h := xxhash.New()
	_, _ = h.Write([]byte(path))
	var szBuf [8]byte
	putUvarint(&szBuf, uint64(fi.Size()))
	_, _ = h.Write(szBuf[:])
	putUvarint(&szBuf, uint64(fi.ModTime().UnixNano()))
	_, _ = h.Write(szBuf[:])
	return h.Sum64(), true
}

func putUvarint(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// Count returns the frame count for path. A missing or zero-byte file
// returns 0 with a warning instead of invoking the probe. Probe
// failures surface as domain.FrameCountError with the path attached.
func (c *Counter) Count(ctx context.Context, path string) (int, error) {
	fi, err := os.Stat(path)
	if err != nil {
		log.WithFields(log.Fields{"path": path}).Warn("frames: file missing, counting as 0")
		return 0, nil
	}
	if fi.Size() == 0 {
		log.WithFields(log.Fields{"path": path}).Warn("frames: zero-byte file, counting as 0")
		return 0, nil
	}

	if key, ok := c.cacheKey(path); ok {
		c.mu.Lock()
		if n, hit := c.cache[key]; hit {
			c.mu.Unlock()
			return n, nil
		}
		c.mu.Unlock()

		n, err := c.Prober.Count(ctx, path)
		if err != nil {
			return 0, &domain.FrameCountError{Path: path, Err: err}
		}
		c.mu.Lock()
		c.cache[key] = n
		c.mu.Unlock()
		return n, nil
	}

	n, err := c.Prober.Count(ctx, path)
	if err != nil {
		return 0, &domain.FrameCountError{Path: path, Err: err}
	}
	return n, nil
}
