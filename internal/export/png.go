/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes finished composer artifacts to disk: the raw
// PNG/video blob into an exports directory, and a printable memo-card PDF.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sutomemo/internal/domain"
)

// ExportsDirName is the default subdirectory artifacts land in.
const ExportsDirName = "exports"

// WriteArtifact writes an encoded still or reel under dir, naming it from
// baseName plus a timestamp and the extension implied by the MIME type.
// The write is atomic: temp file in the same directory, then rename, so a
// crash never leaves a half-written artifact with a final name.
func WriteArtifact(dir, baseName string, res domain.RenderResult) (string, error) {
	if len(res.Blob) == 0 {
		return "", fmt.Errorf("write artifact: empty blob")
	}
	if dir == "" {
		dir = ExportsDirName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure exports dir: %w", err)
	}
	if baseName == "" {
		baseName = "memo"
	}
	name := fmt.Sprintf("%s-%s%s", sanitizeBase(baseName), time.Now().Format("20060102-150405"), extFor(res.MimeType))
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(res.Blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("finalize artifact: %w", err)
	}
	return final, nil
}

func extFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/png"):
		return ".png"
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	default:
		return ".bin"
	}
}

// sanitizeBase keeps artifact names filesystem-safe on all platforms.
func sanitizeBase(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "memo"
	}
	return b.String()
}
