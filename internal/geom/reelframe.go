/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Fixed layout constants for the vertical reel frame. Safe margins reserve
// a band at the top and bottom where platform UI chrome (Stories/Reels
// overlays) would cover rendered text.

const (
	ReelWidth  = 1080
	ReelHeight = 1920

	// SafeMargin is the reserved band height in output pixels.
	SafeMargin = 64
)

// SafeY maps a 0..1 fraction into absolute output Y coordinates inside the
// safe band. 0 maps to the top margin, 1 to ReelHeight minus the bottom
// margin.
func SafeY(fraction float64) float64 {
	f := Clamp(fraction, 0, 1)
	return SafeMargin + f*(ReelHeight-2*SafeMargin)
}

// InSafeBand reports whether a horizontal line at y (top) with the given
// height fits entirely inside the safe band.
func InSafeBand(y, height float64) bool {
	return y >= SafeMargin && y+height <= ReelHeight-SafeMargin
}

// CenterX is the horizontal midpoint of the reel frame.
func CenterX() float64 { return ReelWidth / 2 }
