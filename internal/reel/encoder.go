/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package reel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sutomemo/internal/domain"
)

// ErrNoEncoder is returned when no candidate codec can be encoded on this
// host (ffmpeg missing or built without the needed encoders).
var ErrNoEncoder = errors.New("no supported video encoder available")

// Encoder receives raw RGBA frames and finalizes them into an encoded clip.
// Start must be called once before WriteFrame; Stop finalizes and returns
// the blob with its negotiated mime type. Finalization may still be
// flushing buffered frames, so the result is only valid once Stop returns.
type Encoder interface {
	Start(ctx context.Context, width, height, fps int) error
	WriteFrame(frame *image.RGBA) error
	Stop() (domain.RenderResult, error)
}

// codecChoice is one container/codec candidate, in preference order.
type codecChoice struct {
	encoder string // ffmpeg -c:v name
	format  string // container
	ext     string
	mime    string
}

// codecPreference mirrors the product's container preference: MP4 first,
// then WebM in descending codec quality, then a bare WebM fallback.
var codecPreference = []codecChoice{
	{encoder: "libx264", format: "mp4", ext: "mp4", mime: "video/mp4"},
	{encoder: "libvpx-vp9", format: "webm", ext: "webm", mime: "video/webm;codecs=vp9"},
	{encoder: "libvpx", format: "webm", ext: "webm", mime: "video/webm;codecs=vp8"},
	{encoder: "libvpx", format: "webm", ext: "webm", mime: "video/webm"},
}

// FFmpegEncoder drives an ffmpeg child process, feeding raw RGBA frames
// over stdin. Encoder availability is probed at runtime against
// `ffmpeg -encoders` output, never assumed.
type FFmpegEncoder struct {
	// BitrateKbps is the target video bitrate; zero means 5000 (5 Mbps).
	BitrateKbps int

	dir   string
	out   string
	mime  string
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewFFmpegEncoder builds an encoder targeting the given bitrate.
func NewFFmpegEncoder(bitrateKbps int) *FFmpegEncoder {
	return &FFmpegEncoder{BitrateKbps: bitrateKbps}
}

// probeCodec returns the first preference-list entry whose encoder the
// local ffmpeg build supports.
func probeCodec() (codecChoice, error) {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return codecChoice{}, fmt.Errorf("%w: %v", ErrNoEncoder, err)
	}
	listing := string(out)
	for _, c := range codecPreference {
		if strings.Contains(listing, c.encoder) {
			return c, nil
		}
	}
	return codecChoice{}, ErrNoEncoder
}

func (e *FFmpegEncoder) Start(ctx context.Context, width, height, fps int) error {
	codec, err := probeCodec()
	if err != nil {
		return err
	}
	bitrate := e.BitrateKbps
	if bitrate <= 0 {
		bitrate = 5000
	}
	dir, err := os.MkdirTemp("", "sutomemo-reel-")
	if err != nil {
		return fmt.Errorf("encoder temp dir: %w", err)
	}
	e.dir = dir
	e.out = filepath.Join(dir, "reel."+codec.ext)
	e.mime = codec.mime

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-c:v", codec.encoder,
		"-b:v", fmt.Sprintf("%dk", bitrate),
		"-pix_fmt", "yuv420p",
		"-f", codec.format,
		e.out,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("ffmpeg start: %w", err)
	}
	e.cmd = cmd
	e.stdin = stdin
	return nil
}

func (e *FFmpegEncoder) WriteFrame(frame *image.RGBA) error {
	if e.cmd == nil {
		return errors.New("encoder not started")
	}
	b := frame.Bounds()
	if frame.Stride != b.Dx()*4 || b.Min.X != 0 || b.Min.Y != 0 {
		return fmt.Errorf("frame must be a tightly packed origin-anchored RGBA image")
	}
	if _, err := e.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Stop closes the frame stream, waits for ffmpeg to finish flushing, and
// returns the encoded blob. The temp dir is removed regardless of outcome.
func (e *FFmpegEncoder) Stop() (domain.RenderResult, error) {
	if e.cmd == nil {
		return domain.RenderResult{}, errors.New("encoder not started")
	}
	defer func() {
		_ = os.RemoveAll(e.dir)
		e.cmd = nil
	}()
	if err := e.stdin.Close(); err != nil {
		return domain.RenderResult{}, fmt.Errorf("close frame stream: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return domain.RenderResult{}, fmt.Errorf("ffmpeg: %w", err)
	}
	blob, err := os.ReadFile(e.out)
	if err != nil {
		return domain.RenderResult{}, fmt.Errorf("read encoded clip: %w", err)
	}
	return domain.RenderResult{Blob: blob, MimeType: e.mime}, nil
}
