/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "testing"

func TestParseFullScript(t *testing.T) {
	src := `; morning run post
caption: 5km before work
why: build the habit
what: ran the river loop
next: intervals on friday

hook: POV you skipped the snooze
problem: mornings felt wasted
evidence: 21 day streak
action: follow for the next block

box: 40,520 Morning run done
box: 40, 600 River loop
`
	ms, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if ms.Caption != "5km before work" {
		t.Fatalf("caption = %q", ms.Caption)
	}
	if ms.Memo.Why != "build the habit" || ms.Memo.What != "ran the river loop" || ms.Memo.Next != "intervals on friday" {
		t.Fatalf("memo = %+v", ms.Memo)
	}
	if ms.Reel.Empty() {
		t.Fatal("reel fields missing")
	}
	if ms.Reel.Hook != "POV you skipped the snooze" || ms.Reel.Action != "follow for the next block" {
		t.Fatalf("reel = %+v", ms.Reel)
	}
	if len(ms.Boxes) != 2 {
		t.Fatalf("boxes = %d, want 2", len(ms.Boxes))
	}
	if ms.Boxes[0].X != 40 || ms.Boxes[0].Y != 520 || ms.Boxes[0].Text != "Morning run done" {
		t.Fatalf("box[0] = %+v", ms.Boxes[0])
	}
	if ms.Boxes[1].Y != 600 {
		t.Fatalf("box[1] = %+v", ms.Boxes[1])
	}
}

func TestParseContinuationLines(t *testing.T) {
	src := "caption: first\n  second\n  third\n"
	ms, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if ms.Caption != "first\nsecond\nthird" {
		t.Fatalf("caption = %q", ms.Caption)
	}
}

func TestParseBoxContinuation(t *testing.T) {
	src := "box: 10,20 line one\n  line two\n"
	ms, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if len(ms.Boxes) != 1 || ms.Boxes[0].Text != "line one\nline two" {
		t.Fatalf("boxes = %+v", ms.Boxes)
	}
}

func TestParseStyleField(t *testing.T) {
	ms, errs := Parse("style: bold-card\nbox: 10,20 hi\n")
	if len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if ms.Style != "bold-card" {
		t.Fatalf("style = %q, want bold-card", ms.Style)
	}
}

func TestParseReportsUnknownLines(t *testing.T) {
	src := "caption: ok\nnot a field\n"
	ms, errs := Parse(src)
	if ms.Caption != "ok" {
		t.Fatalf("caption = %q", ms.Caption)
	}
	if len(errs) != 1 || errs[0].Line != 2 {
		t.Fatalf("errs = %+v", errs)
	}
}

func TestParseFieldNamesCaseInsensitive(t *testing.T) {
	ms, errs := Parse("HOOK: yo\nWhy: because\n")
	if len(errs) != 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if ms.Reel.Hook != "yo" || ms.Memo.Why != "because" {
		t.Fatalf("parsed = %+v", ms)
	}
}

func TestParseEmptyInput(t *testing.T) {
	ms, errs := Parse("")
	if len(errs) != 0 || ms.Caption != "" || len(ms.Boxes) != 0 || !ms.Reel.Empty() {
		t.Fatalf("empty parse = %+v, errs %+v", ms, errs)
	}
}
