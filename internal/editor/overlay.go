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
	"log/slog"
	"sync"

	"sutomemo/internal/domain"
	"sutomemo/internal/geom"
	applog "sutomemo/internal/log"
	"sutomemo/internal/store"
)

// Overlay editor constants: single fixed-position text box over a 600px-wide
// canvas, slider-driven sizing rather than pinch.
const (
	OverlayCanvasWidth = 600
	OverlayMaxTextLen  = 500

	overlayDefaultFontSize  = 24
	overlayDefaultBoxWidth  = 400
	overlayDefaultBoxHeight = 120
)

// OverlayEditor is the desktop pointer-drag variant: one caption box whose
// offset is clamped to stay fully inside the canvas after every drag step.
// State persists per post id.
type OverlayEditor struct {
	mu  sync.Mutex
	log *slog.Logger

	kv     store.KV
	postID int64

	state        domain.OverlayState
	canvasHeight float64
}

// NewOverlayEditor restores (or initializes) the overlay state for a post.
// canvasHeight is the current display height of the editing canvas.
func NewOverlayEditor(kv store.KV, postID int64, canvasHeight float64) *OverlayEditor {
	e := &OverlayEditor{
		log:          applog.WithComponent("overlay"),
		kv:           kv,
		postID:       postID,
		canvasHeight: canvasHeight,
		state: domain.OverlayState{
			FontSize:    overlayDefaultFontSize,
			TextBoxSize: domain.BoxSize{Width: overlayDefaultBoxWidth, Height: overlayDefaultBoxHeight},
		},
	}
	key := store.OverlayKey(postID)
	raw, ok, err := kv.Get(key)
	if err != nil {
		e.log.Warn("overlay restore read failed", slog.Any("err", err))
		return e
	}
	if !ok {
		return e
	}
	st, err := store.DecodeOverlayState(key, raw)
	if err != nil {
		e.log.Warn("discarding invalid overlay snapshot", slog.Any("err", err))
		return e
	}
	// Missing fields default safely.
	if st.FontSize == 0 {
		st.FontSize = overlayDefaultFontSize
	}
	if st.TextBoxSize.Width == 0 {
		st.TextBoxSize = domain.BoxSize{Width: overlayDefaultBoxWidth, Height: overlayDefaultBoxHeight}
	}
	e.state = st
	e.clampOffsetLocked()
	return e
}

// SetText replaces the caption, truncated at the editor's character cap.
func (e *OverlayEditor) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := []rune(text)
	if len(r) > OverlayMaxTextLen {
		r = r[:OverlayMaxTextLen]
	}
	e.state.Text = string(r)
	e.persistLocked()
}

// SetFontSize applies the slider value.
func (e *OverlayEditor) SetFontSize(px float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.FontSize = px
	e.persistLocked()
}

// SetBoxSize applies the slider-driven box dimensions, then reclamps the
// offset since a larger box can push past the canvas edge.
func (e *OverlayEditor) SetBoxSize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.TextBoxSize = domain.BoxSize{Width: w, Height: h}
	e.clampOffsetLocked()
	e.persistLocked()
}

// Drag moves the box by the raw pointer delta, correcting the stored offset
// immediately whenever it would overflow the canvas.
func (e *OverlayEditor) Drag(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.DragOffset.X += dx
	e.state.DragOffset.Y += dy
	e.clampOffsetLocked()
	e.persistLocked()
}

func (e *OverlayEditor) clampOffsetLocked() {
	maxX := OverlayCanvasWidth - e.state.TextBoxSize.Width
	if maxX < 0 {
		maxX = 0
	}
	maxY := e.canvasHeight - e.state.TextBoxSize.Height
	if maxY < 0 {
		maxY = 0
	}
	e.state.DragOffset.X = geom.Clamp(e.state.DragOffset.X, 0, maxX)
	e.state.DragOffset.Y = geom.Clamp(e.state.DragOffset.Y, 0, maxY)
}

// State returns a copy of the current overlay state.
func (e *OverlayEditor) State() domain.OverlayState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *OverlayEditor) persistLocked() {
	raw, err := store.EncodeOverlayState(e.state)
	if err != nil {
		e.log.Warn("overlay encode failed", slog.Any("err", err))
		return
	}
	if err := e.kv.Put(store.OverlayKey(e.postID), raw); err != nil {
		e.log.Warn("overlay write failed", slog.Any("err", err))
	}
}
