/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Pure 2D geometry helpers shared by the editors and renderers. Two
// coordinate systems are in play: display space (the on-screen editing
// surface as currently laid out) and output space (the fixed resolution of
// an exported artifact). Nothing in this package holds state.

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToCanvasCoordinates converts a pointer position in viewport coordinates
// into the logical pixel space of a canvas whose CSS display size and pixel
// buffer size may differ (device-pixel-ratio scaling, responsive layout).
// displayRect is the canvas's current bounding box in viewport coordinates;
// logical is its pixel buffer size.
func ToCanvasCoordinates(p Pt, displayRect Rect, logical Size) Pt {
	if displayRect.W == 0 || displayRect.H == 0 {
		return Pt{}
	}
	return Pt{
		X: (p.X - displayRect.X) * logical.W / displayRect.W,
		Y: (p.Y - displayRect.Y) * logical.H / displayRect.H,
	}
}

// ScaleFactors returns the independent X/Y scale factors mapping a live
// display rectangle onto a fixed output size. Export geometry must always be
// derived from the container's current bounding box, never a cached scale.
func ScaleFactors(displayRect Rect, output Size) (sx, sy float64) {
	if displayRect.W == 0 || displayRect.H == 0 {
		return 1, 1
	}
	return output.W / displayRect.W, output.H / displayRect.H
}

// FitContain scales src to fit entirely within dst preserving aspect ratio,
// centering the unconstrained axis (letterbox/pillarbox). Never crops, never
// distorts.
func FitContain(src, dst Size) Rect {
	if src.W <= 0 || src.H <= 0 {
		return Rect{}
	}
	scale := dst.W / src.W
	if s := dst.H / src.H; s < scale {
		scale = s
	}
	w := src.W * scale
	h := src.H * scale
	return Rect{X: (dst.W - w) / 2, Y: (dst.H - h) / 2, W: w, H: h}
}

// FitCover scales src to fill dst entirely preserving aspect ratio, cropping
// the longer axis, centered. The returned rect may extend outside dst.
func FitCover(src, dst Size) Rect {
	if src.W <= 0 || src.H <= 0 {
		return Rect{}
	}
	scale := dst.W / src.W
	if s := dst.H / src.H; s > scale {
		scale = s
	}
	w := src.W * scale
	h := src.H * scale
	return Rect{X: (dst.W - w) / 2, Y: (dst.H - h) / 2, W: w, H: h}
}
