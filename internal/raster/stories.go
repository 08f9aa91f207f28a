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
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"sutomemo/internal/domain"
	"sutomemo/internal/geom"
	applog "sutomemo/internal/log"
)

// Text plate layout constants. Line height is a multiple of the font size;
// the paddings are output-space pixels and are not scaled.
const (
	lineHeightFactor = 1.25
	plateVPad        = 8.0
	plateLeftPad     = 12.0
)

// plateFill is the semi-opaque white behind each text box.
var plateFill = color.NRGBA{R: 255, G: 255, B: 255, A: 178}

// BoxStyle sets the ink and plate colors painted for every text box.
type BoxStyle struct {
	Text  color.NRGBA
	Plate color.NRGBA
}

// DefaultBoxStyle is black ink on the semi-opaque white plate.
func DefaultBoxStyle() BoxStyle {
	return BoxStyle{Text: color.NRGBA{A: 255}, Plate: plateFill}
}

// LayoutProbe reports the live editing container's current bounding box in
// viewport coordinates. Export geometry is always derived from this at
// export time, never from a cached scale, because the container can resize
// between edits.
type LayoutProbe interface {
	DisplayBounds() (geom.Rect, bool)
}

// StoriesRasterizer composites the touch editor's state into a fixed
// 1080×1920 PNG: black background, contain-fit image, one semi-opaque plate
// per text box with character-wrapped lines.
type StoriesRasterizer struct {
	Fonts  Provider
	Images *ImageCache
	Probe  LayoutProbe
	Style  BoxStyle

	log *slog.Logger
}

// NewStories builds a rasterizer. probe may be nil; Render then degrades to
// an image-only composition.
func NewStories(fonts Provider, images *ImageCache, probe LayoutProbe) *StoriesRasterizer {
	if fonts == nil {
		fonts = BasicProvider{}
	}
	if images == nil {
		images = NewImageCache()
	}
	return &StoriesRasterizer{
		Fonts:  fonts,
		Images: images,
		Probe:  probe,
		Style:  DefaultBoxStyle(),
		log:    applog.WithComponent("raster"),
	}
}

// Render encodes the current editor state to a PNG blob. Returns (nil, nil)
// when no background image is set; a background that fails to load is an
// error. An unavailable layout probe degrades to background-only output
// with a diagnostic, it does not fail the export.
func (r *StoriesRasterizer) Render(state domain.EditorState) ([]byte, error) {
	if state.ImageURL == "" {
		return nil, nil
	}
	src, err := r.Images.Load(state.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("load background: %w", err)
	}

	out := geom.Size{W: geom.ReelWidth, H: geom.ReelHeight}
	canvas := image.NewRGBA(image.Rect(0, 0, geom.ReelWidth, geom.ReelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	b := src.Bounds()
	fit := geom.FitContain(geom.Size{W: float64(b.Dx()), H: float64(b.Dy())}, out)
	xdraw.ApproxBiLinear.Scale(canvas, rectToImage(fit), src, b, xdraw.Over, nil)

	display, ok := geom.Rect{}, false
	if r.Probe != nil {
		display, ok = r.Probe.DisplayBounds()
	}
	if !ok || display.W <= 0 || display.H <= 0 {
		r.log.Warn("layout probe unavailable, exporting background only")
		return encodePNG(canvas)
	}

	sx, sy := geom.ScaleFactors(display, out)
	for _, box := range state.TextBoxes {
		if err := r.drawBox(canvas, box, sx, sy); err != nil {
			return nil, err
		}
	}
	return encodePNG(canvas)
}

// drawBox paints one scaled text box: the plate grows to fit wrapped lines
// but never shrinks below the author-set height.
func (r *StoriesRasterizer) drawBox(canvas *image.RGBA, box domain.TextBox, sx, sy float64) error {
	x := box.X * sx
	y := box.Y * sy
	w := box.Width * sx
	fontPx := box.FontSize * sy

	face, err := r.Fonts.Face(fontPx)
	if err != nil {
		return fmt.Errorf("resolve face: %w", err)
	}
	lines := WrapChars(face, box.Text, w-plateLeftPad)

	lineH := fontPx * lineHeightFactor
	required := float64(len(lines))*lineH + 2*plateVPad
	h := math.Max(required, box.Height*sy)

	draw.Draw(canvas, rectToImage(geom.R(x, y, w, h)), image.NewUniform(r.Style.Plate), image.Point{}, draw.Over)

	ascent := float64(face.Metrics().Ascent.Round())
	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(r.Style.Text), Face: face}
	for i, line := range lines {
		baseline := y + plateVPad + float64(i)*lineH + ascent
		d.Dot = fixed.P(int(math.Round(x+plateLeftPad)), int(math.Round(baseline)))
		d.DrawString(line)
	}
	return nil
}

func rectToImage(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
