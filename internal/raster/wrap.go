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

import "golang.org/x/image/font"

// WrapChars greedily packs characters (not words) into lines up to maxWidth
// pixels, measured with the given face. Character granularity is required
// for CJK text, which has no spaces to break on. Explicit newlines are
// honored. A single glyph wider than maxWidth still gets its own line.
func WrapChars(face font.Face, text string, maxWidth float64) []string {
	var lines []string
	var cur []rune
	var curW float64
	flush := func() {
		lines = append(lines, string(cur))
		cur = cur[:0]
		curW = 0
	}
	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		w := runeAdvance(face, r)
		if len(cur) > 0 && curW+w > maxWidth {
			flush()
		}
		cur = append(cur, r)
		curW += w
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// LineWidth measures a single line in pixels with the same per-rune
// fallback WrapChars uses, so wrap and draw agree on widths.
func LineWidth(face font.Face, s string) float64 {
	var w float64
	for _, r := range s {
		w += runeAdvance(face, r)
	}
	return w
}

// runeAdvance measures a single rune in pixels, falling back to the U+FFFD
// replacement glyph for runes the face cannot map so a sparse face still
// advances instead of collapsing a whole run onto one line.
func runeAdvance(face font.Face, r rune) float64 {
	a, ok := face.GlyphAdvance(r)
	if !ok {
		a, _ = face.GlyphAdvance('\ufffd')
	}
	return float64(a >> 6) // fixed.Int26_6 to px
}
