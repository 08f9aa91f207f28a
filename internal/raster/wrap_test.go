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
	"reflect"
	"testing"

	"golang.org/x/image/font/basicfont"
)

// basicfont.Face7x13 advances every glyph 7px, which makes wrap widths
// exactly predictable.
func TestWrapCharsGreedyPacking(t *testing.T) {
	face := basicfont.Face7x13
	cases := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"fits on one line", "abc", 100, []string{"abc"}},
		{"breaks every three chars", "abcdefg", 21, []string{"abc", "def", "g"}},
		{"no space needed to break", "aaaaaa", 14, []string{"aa", "aa", "aa"}},
		{"explicit newline", "ab\ncd", 100, []string{"ab", "cd"}},
		{"empty text", "", 100, nil},
		{"glyph wider than limit still emits", "ab", 3, []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapChars(face, tc.text, tc.maxWidth)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("WrapChars(%q, %v) = %q, want %q", tc.text, tc.maxWidth, got, tc.want)
			}
		})
	}
}

func TestWrapCharsHandlesWideRunes(t *testing.T) {
	face := basicfont.Face7x13
	// CJK text has no spaces; packing must still break by character.
	got := WrapChars(face, "日本語のテキスト", 21)
	if len(got) != 3 {
		t.Fatalf("lines = %d (%q), want 3", len(got), got)
	}
	var joined string
	for _, l := range got {
		joined += l
	}
	if joined != "日本語のテキスト" {
		t.Fatalf("characters lost in wrap: %q", got)
	}
}
