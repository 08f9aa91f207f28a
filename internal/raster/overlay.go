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
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"sutomemo/internal/domain"
	"sutomemo/internal/editor"
	"sutomemo/internal/geom"
)

// ErrNoImage is returned when an export is requested before any background
// image has been set.
var ErrNoImage = errors.New("no background image")

// OverlayRasterizer is the desktop overlay-editor variant: a fixed CSS width
// with a device-pixel-ratio-aware backing buffer, a single caption box, and
// the canvas height following the image's aspect ratio. Unlike the stories
// variant nothing is letterboxed; the image spans the full canvas.
type OverlayRasterizer struct {
	Fonts  Provider
	Images *ImageCache
	// DPR is the device pixel ratio; the backing buffer is the CSS size
	// multiplied by it. Zero means 1.
	DPR float64
}

// NewOverlay builds an overlay rasterizer.
func NewOverlay(fonts Provider, images *ImageCache, dpr float64) *OverlayRasterizer {
	if fonts == nil {
		fonts = BasicProvider{}
	}
	if images == nil {
		images = NewImageCache()
	}
	if dpr <= 0 {
		dpr = 1
	}
	return &OverlayRasterizer{Fonts: fonts, Images: images, DPR: dpr}
}

// CanvasHeight returns the CSS-space canvas height for the given image: the
// image scaled to the fixed canvas width keeping aspect ratio.
func (r *OverlayRasterizer) CanvasHeight(imageURL string) (float64, error) {
	if imageURL == "" {
		return 0, ErrNoImage
	}
	src, err := r.Images.Load(imageURL)
	if err != nil {
		return 0, fmt.Errorf("load background: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 {
		return 0, fmt.Errorf("degenerate image %s", imageURL)
	}
	return editor.OverlayCanvasWidth * float64(b.Dy()) / float64(b.Dx()), nil
}

// Render composites the image and the single caption box into a PNG blob.
// All state values are CSS-space and are multiplied by the DPR on the way
// into the backing buffer.
func (r *OverlayRasterizer) Render(imageURL string, st domain.OverlayState) ([]byte, error) {
	if imageURL == "" {
		return nil, ErrNoImage
	}
	src, err := r.Images.Load(imageURL)
	if err != nil {
		return nil, fmt.Errorf("load background: %w", err)
	}
	cssH, err := r.CanvasHeight(imageURL)
	if err != nil {
		return nil, err
	}

	bufW := int(math.Round(editor.OverlayCanvasWidth * r.DPR))
	bufH := int(math.Round(cssH * r.DPR))
	canvas := image.NewRGBA(image.Rect(0, 0, bufW, bufH))
	xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	face, err := r.Fonts.Face(st.FontSize * r.DPR)
	if err != nil {
		return nil, fmt.Errorf("resolve face: %w", err)
	}

	plate := geom.R(
		st.DragOffset.X*r.DPR,
		st.DragOffset.Y*r.DPR,
		st.TextBoxSize.Width*r.DPR,
		st.TextBoxSize.Height*r.DPR,
	)
	draw.Draw(canvas, rectToImage(plate), image.NewUniform(plateFill), image.Point{}, draw.Over)

	lines := WrapChars(face, st.Text, plate.W-plateLeftPad*r.DPR)
	lineH := st.FontSize * r.DPR * lineHeightFactor
	ascent := float64(face.Metrics().Ascent.Round())
	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(color.Black), Face: face}
	for i, line := range lines {
		baseline := plate.Y + plateVPad*r.DPR + float64(i)*lineH + ascent
		if baseline > plate.Y+plate.H {
			break // caption overflow is hidden, the box does not grow here
		}
		d.Dot = fixed.P(int(math.Round(plate.X+plateLeftPad*r.DPR)), int(math.Round(baseline)))
		d.DrawString(line)
	}
	return encodePNG(canvas)
}
