/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "sutomemo/internal/domain"

// MemoScript is a parsed .memo file: everything needed to compose a post
// offline without clicking through the editor. Fields left out of the file
// stay zero; the caller decides which artifacts to produce from what is
// present.

type MemoScript struct {
	Caption string
	// Style names a saved preset applied to every box on the still.
	Style string
	Memo  domain.Memo
	Reel  ReelFields
	Boxes []BoxLine
}

// ReelFields are the four timed text slots of a reel.

type ReelFields struct {
	Hook     string
	Problem  string
	Evidence string
	Action   string
}

// Empty reports whether no reel slot carries text.
func (r ReelFields) Empty() bool {
	return r.Hook == "" && r.Problem == "" && r.Evidence == "" && r.Action == ""
}

// BoxLine places a text box on the still at display coordinates.
// Width/height/font size fall back to the editor defaults when zero.

type BoxLine struct {
	X, Y   float64
	Text   string
	LineNo int // 1-based line in the source
}

// Error represents a parse error with position context.

type Error struct {
	Line    int
	Message string
}
