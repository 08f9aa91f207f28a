/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"
	"testing"
)

func TestOverlayDefaults(t *testing.T) {
	e := NewOverlayEditor(newMemKV(), 1, 800)
	st := e.State()
	if st.FontSize != 24 {
		t.Fatalf("default font size = %v", st.FontSize)
	}
	if st.TextBoxSize.Width != 400 || st.TextBoxSize.Height != 120 {
		t.Fatalf("default box size = %+v", st.TextBoxSize)
	}
	if st.DragOffset.X != 0 || st.DragOffset.Y != 0 {
		t.Fatalf("default offset should be origin: %+v", st.DragOffset)
	}
}

func TestOverlayDragClampsToCanvas(t *testing.T) {
	e := NewOverlayEditor(newMemKV(), 1, 800)
	e.Drag(-50, -50)
	st := e.State()
	if st.DragOffset.X != 0 || st.DragOffset.Y != 0 {
		t.Fatalf("negative drag must clamp to origin: %+v", st.DragOffset)
	}
	e.Drag(10000, 10000)
	st = e.State()
	// 600-wide canvas minus 400-wide box; 800-tall minus 120-tall box.
	if st.DragOffset.X != 200 || st.DragOffset.Y != 680 {
		t.Fatalf("overflow drag must clamp to far edge: %+v", st.DragOffset)
	}
}

func TestOverlayGrowingBoxReclampsOffset(t *testing.T) {
	e := NewOverlayEditor(newMemKV(), 1, 800)
	e.Drag(10000, 0) // park at the right edge: x = 200
	e.SetBoxSize(550, 120)
	if got := e.State().DragOffset.X; got != 50 {
		t.Fatalf("offset after grow = %v, want 50", got)
	}
	e.SetBoxSize(700, 120) // wider than the canvas itself
	if got := e.State().DragOffset.X; got != 0 {
		t.Fatalf("oversized box pins offset to 0, got %v", got)
	}
}

func TestOverlayTextCap(t *testing.T) {
	e := NewOverlayEditor(newMemKV(), 1, 800)
	long := strings.Repeat("あ", OverlayMaxTextLen+40)
	e.SetText(long)
	got := []rune(e.State().Text)
	if len(got) != OverlayMaxTextLen {
		t.Fatalf("text length = %d runes, want %d", len(got), OverlayMaxTextLen)
	}
	short := "within limits"
	e.SetText(short)
	if e.State().Text != short {
		t.Fatalf("short text mangled: %q", e.State().Text)
	}
}

func TestOverlayStatePersistsPerPost(t *testing.T) {
	kv := newMemKV()

	a := NewOverlayEditor(kv, 11, 800)
	a.SetText("post eleven")
	a.SetFontSize(30)
	a.Drag(40, 60)

	b := NewOverlayEditor(kv, 22, 800)
	b.SetText("post twenty-two")

	a2 := NewOverlayEditor(kv, 11, 800)
	st := a2.State()
	if st.Text != "post eleven" || st.FontSize != 30 {
		t.Fatalf("post 11 state lost: %+v", st)
	}
	if st.DragOffset.X != 40 || st.DragOffset.Y != 60 {
		t.Fatalf("post 11 offset lost: %+v", st.DragOffset)
	}
	if got := NewOverlayEditor(kv, 22, 800).State().Text; got != "post twenty-two" {
		t.Fatalf("post 22 state lost: %q", got)
	}
}

func TestOverlayRestoreReclampsStaleOffset(t *testing.T) {
	kv := newMemKV()
	a := NewOverlayEditor(kv, 7, 2000)
	a.Drag(0, 1500)

	// Same post restored on a shorter canvas: stored offset now overflows
	// and must be corrected on load.
	b := NewOverlayEditor(kv, 7, 400)
	if got := b.State().DragOffset.Y; got != 280 {
		t.Fatalf("restored offset = %v, want 280", got)
	}
}
