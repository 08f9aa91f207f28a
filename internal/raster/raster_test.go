/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"sutomemo/internal/domain"
	"sutomemo/internal/geom"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// writeTestImage writes a solid-color PNG and returns its path.
func writeTestImage(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

type fixedProbe struct {
	rect geom.Rect
	ok   bool
}

func (p fixedProbe) DisplayBounds() (geom.Rect, bool) { return p.rect, p.ok }

func TestStoriesRenderNilWithoutImage(t *testing.T) {
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 400, 700), ok: true})
	blob, err := r.Render(domain.EditorState{})
	if err != nil {
		t.Fatalf("missing image must not be an error: %v", err)
	}
	if blob != nil {
		t.Fatalf("expected nil blob without a background image")
	}
}

func TestStoriesRenderFailsOnUnloadableBackground(t *testing.T) {
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 400, 700), ok: true})
	_, err := r.Render(domain.EditorState{ImageURL: "/definitely/not/here.png"})
	if err == nil {
		t.Fatalf("expected load error")
	}
}

func TestStoriesRenderOutputDimensionsAndSignature(t *testing.T) {
	bg := writeTestImage(t, 400, 300, color.RGBA{0, 0, 255, 255})
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 360, 640), ok: true})
	blob, err := r.Render(domain.EditorState{
		ImageURL:  bg,
		TextBoxes: []domain.TextBox{{ID: 1, Text: "hello", X: 20, Y: 20, Width: 250, Height: 100, FontSize: 18}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(blob, pngSignature) {
		t.Fatalf("output is not a PNG (leading bytes % x)", blob[:8])
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 1920 {
		t.Fatalf("output size = %dx%d, want 1080x1920", b.Dx(), b.Dy())
	}
}

func TestStoriesContainFitLetterboxes(t *testing.T) {
	// A wide blue image on a 1080x1920 portrait canvas leaves black bars at
	// the top and bottom, never a crop.
	bg := writeTestImage(t, 400, 100, color.RGBA{0, 0, 255, 255})
	r := NewStories(BasicProvider{}, nil, fixedProbe{})
	blob, err := r.Render(domain.EditorState{ImageURL: bg})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	top := color.NRGBAModel.Convert(img.At(540, 10)).(color.NRGBA)
	if top.R != 0 || top.G != 0 || top.B != 0 {
		t.Fatalf("top letterbox band not black: %+v", top)
	}
	mid := color.NRGBAModel.Convert(img.At(540, 960)).(color.NRGBA)
	if mid.B < 200 {
		t.Fatalf("image band missing at center: %+v", mid)
	}
}

func TestStoriesDegradesWithoutProbe(t *testing.T) {
	bg := writeTestImage(t, 200, 200, color.RGBA{255, 0, 0, 255})
	r := NewStories(BasicProvider{}, nil, nil)
	blob, err := r.Render(domain.EditorState{
		ImageURL:  bg,
		TextBoxes: []domain.TextBox{{ID: 1, Text: "dropped", X: 0, Y: 0, Width: 250, Height: 100, FontSize: 18}},
	})
	if err != nil {
		t.Fatalf("probe loss must not fail the export: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(blob)); err != nil {
		t.Fatalf("degraded output not decodable: %v", err)
	}
}

func TestStoriesPlateGrowsForOverflowingText(t *testing.T) {
	bg := writeTestImage(t, 1080, 1920, color.RGBA{0, 0, 0, 255})
	// 1:1 probe so display space equals output space.
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 1080, 1920), ok: true})
	long := ""
	for i := 0; i < 400; i++ {
		long += "a"
	}
	blob, err := r.Render(domain.EditorState{
		ImageURL:  bg,
		TextBoxes: []domain.TextBox{{ID: 1, Text: long, X: 100, Y: 100, Width: 100, Height: 60, FontSize: 18}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 400 glyphs at 7px on a 88px-wide run is 34+ lines: far past the 60px
	// author height. The plate must extend rather than clip. Sample inside
	// the left padding strip so no glyph ink lands on the probe pixel.
	below := color.NRGBAModel.Convert(img.At(105, 250)).(color.NRGBA)
	if below.R < 100 {
		t.Fatalf("plate did not grow past the user-set height: %+v", below)
	}
}

func TestStoriesAppliesBoxStyle(t *testing.T) {
	bg := writeTestImage(t, 1080, 1920, color.RGBA{0, 0, 0, 255})
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 1080, 1920), ok: true})
	r.Style = BoxStyle{
		Text:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Plate: color.NRGBA{R: 200, A: 255},
	}
	blob, err := r.Render(domain.EditorState{
		ImageURL:  bg,
		TextBoxes: []domain.TextBox{{ID: 1, Text: "hi", X: 100, Y: 100, Width: 250, Height: 100, FontSize: 18}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Sample the plate's far corner, away from the two glyphs.
	c := color.NRGBAModel.Convert(img.At(340, 190)).(color.NRGBA)
	if c.R < 150 || c.G > 60 || c.B > 60 {
		t.Fatalf("plate color not applied: %+v", c)
	}
}

func TestStoriesRenderIsRepeatable(t *testing.T) {
	bg := writeTestImage(t, 300, 500, color.RGBA{10, 200, 30, 255})
	r := NewStories(BasicProvider{}, nil, fixedProbe{rect: geom.R(0, 0, 360, 640), ok: true})
	state := domain.EditorState{
		ImageURL:  bg,
		TextBoxes: []domain.TextBox{{ID: 1, Text: "stable", X: 10, Y: 10, Width: 250, Height: 100, FontSize: 18}},
	}
	a, err := r.Render(state)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := r.Render(state)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("same state produced different blobs")
	}
}

func TestImageCacheResolvesBlobURL(t *testing.T) {
	path := writeTestImage(t, 64, 32, color.RGBA{0, 200, 0, 255})
	cache := NewImageCache()
	img, err := cache.Load("blob:" + path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 64x32", b)
	}
	// Second load must come from the cache even after the staged file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := cache.Load("blob:" + path); err != nil {
		t.Fatalf("cached load: %v", err)
	}
}

func TestOverlayCanvasHeightFollowsAspect(t *testing.T) {
	bg := writeTestImage(t, 300, 150, color.RGBA{0, 0, 255, 255})
	r := NewOverlay(BasicProvider{}, nil, 1)
	h, err := r.CanvasHeight(bg)
	if err != nil {
		t.Fatalf("CanvasHeight: %v", err)
	}
	if h != 300 {
		t.Fatalf("height = %v, want 300 (600px wide at 2:1)", h)
	}
}

func TestOverlayRenderDPRBackingBuffer(t *testing.T) {
	bg := writeTestImage(t, 300, 150, color.RGBA{0, 0, 255, 255})
	r := NewOverlay(BasicProvider{}, nil, 2)
	blob, err := r.Render(bg, domain.OverlayState{
		Text:        "caption",
		FontSize:    24,
		TextBoxSize: domain.BoxSize{Width: 400, Height: 120},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1200 || b.Dy() != 600 {
		t.Fatalf("buffer = %dx%d, want 1200x600 at DPR 2", b.Dx(), b.Dy())
	}
}

func TestOverlayRenderRequiresImage(t *testing.T) {
	r := NewOverlay(BasicProvider{}, nil, 1)
	if _, err := r.Render("", domain.OverlayState{}); err != ErrNoImage {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
}
