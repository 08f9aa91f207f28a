/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sutomemo/internal/domain"
)

func TestWriteArtifactNamesByMime(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		mime string
		ext  string
	}{
		{"image/png", ".png"},
		{"video/mp4", ".mp4"},
		{"video/webm;codecs=vp9", ".webm"},
	}
	for _, tc := range cases {
		path, err := WriteArtifact(dir, "morning run", domain.RenderResult{Blob: []byte("data"), MimeType: tc.mime})
		if err != nil {
			t.Fatalf("WriteArtifact(%s): %v", tc.mime, err)
		}
		if !strings.HasSuffix(path, tc.ext) {
			t.Fatalf("path %q, want suffix %q", path, tc.ext)
		}
		if !strings.Contains(filepath.Base(path), "morning-run") {
			t.Fatalf("path %q should carry sanitized base name", path)
		}
		b, err := os.ReadFile(path)
		if err != nil || string(b) != "data" {
			t.Fatalf("artifact content = %q, %v", b, err)
		}
	}
}

func TestWriteArtifactRejectsEmptyBlob(t *testing.T) {
	if _, err := WriteArtifact(t.TempDir(), "x", domain.RenderResult{MimeType: "image/png"}); err == nil {
		t.Fatalf("empty blob must be rejected")
	}
}

func TestWriteArtifactLeavesNoTempOnSuccess(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifact(dir, "a", domain.RenderResult{Blob: []byte("x"), MimeType: "image/png"}); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".artifact-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func encodeStill(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 30, G: 60, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode still: %v", err)
	}
	return buf.Bytes()
}

func TestWriteMemoCardPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "card.pdf")
	card := MemoCard{
		Still:   encodeStill(t, 1080, 1920),
		Caption: "5km before work",
		Memo: domain.Memo{
			Why:  "build the habit",
			What: "ran the river loop",
			Next: "add intervals on Friday",
		},
		PostURL: "https://example.com/posts/42",
	}
	if err := WriteMemoCardPDF(out, card); err != nil {
		t.Fatalf("WriteMemoCardPDF: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF (got %q)", b[:8])
	}
}

func TestWriteMemoCardPDFWithoutURLOrMemo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bare.pdf")
	if err := WriteMemoCardPDF(out, MemoCard{Still: encodeStill(t, 100, 100)}); err != nil {
		t.Fatalf("WriteMemoCardPDF: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
}

func TestWriteMemoCardPDFRequiresStill(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.pdf")
	if err := WriteMemoCardPDF(out, MemoCard{}); err == nil {
		t.Fatalf("missing still must be rejected")
	}
}
