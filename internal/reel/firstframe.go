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
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sutomemo/internal/editor"
	"sutomemo/internal/raster"
)

// SourceFrame resolves the reel's background still from an input file. An
// image is loaded directly; a video contributes its first decoded frame,
// extracted into a scratch dir that is removed whether or not the
// extraction succeeds. Anything that is neither image/* nor video/* is
// rejected here, before any encoder setup.
func SourceFrame(ctx context.Context, f editor.File, images *raster.ImageCache) (image.Image, error) {
	if images == nil {
		images = raster.NewImageCache()
	}
	switch {
	case strings.HasPrefix(f.MimeType, "image/"):
		return images.Load(f.Path)
	case strings.HasPrefix(f.MimeType, "video/"):
		return firstVideoFrame(ctx, f.Path)
	default:
		return nil, fmt.Errorf("%w: %s", editor.ErrUnsupportedMedia, f.MimeType)
	}
}

// firstVideoFrame decodes frame one of a video file via ffmpeg.
func firstVideoFrame(ctx context.Context, path string) (image.Image, error) {
	dir, err := os.MkdirTemp("", "sutomemo-frame-")
	if err != nil {
		return nil, fmt.Errorf("frame scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "first.png")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", path, "-frames:v", "1", out)
	if raw, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("extract first frame of %s: %w (%s)", path, err, lastLine(raw))
	}
	fh, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("open extracted frame: %w", err)
	}
	defer fh.Close()
	img, err := png.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode extracted frame: %w", err)
	}
	return img, nil
}

// lastLine returns the final non-empty stderr line, which is where ffmpeg
// puts the actual failure reason.
func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	return s
}
