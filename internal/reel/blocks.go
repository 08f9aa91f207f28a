/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package reel renders 15-second vertical clips: a cover-fit still under a
// script of four timed text blocks, framed at a fixed rate and handed to an
// encoder as raw RGBA.
package reel

import "sutomemo/internal/domain"

// Duration is the fixed reel length in seconds.
const Duration = 15.0

// Text block font sizes in output pixels. The hook leads, the rest share a
// body size.
const (
	hookFontSize = 64.0
	bodyFontSize = 48.0
)

// BuildTextBlocks maps the four reel fields onto their fixed, contiguous
// time slots: hook 0–3s, problem 3–8s, evidence 8–12s, action 12–15s.
// Blocks are constructed non-overlapping and immutable; empty fields keep
// their slot (the frame just shows no text) so exactly one block is active
// for every instant of the reel.
func BuildTextBlocks(hook, problem, evidence, action string) []domain.TextBlock {
	return []domain.TextBlock{
		{Text: hook, StartTime: 0, EndTime: 3, FontSize: hookFontSize},
		{Text: problem, StartTime: 3, EndTime: 8, FontSize: bodyFontSize},
		{Text: evidence, StartTime: 8, EndTime: 12, FontSize: bodyFontSize},
		{Text: action, StartTime: 12, EndTime: 15, FontSize: bodyFontSize},
	}
}

// ActiveBlock returns the first block whose [StartTime, EndTime) window
// contains t. First match wins should ranges ever overlap.
func ActiveBlock(blocks []domain.TextBlock, t float64) (domain.TextBlock, bool) {
	for _, b := range blocks {
		if t >= b.StartTime && t < b.EndTime {
			return b, true
		}
	}
	return domain.TextBlock{}, false
}
