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
	"math"
	"time"

	"sutomemo/internal/geom"
)

// gestureMode is the controller's state. Drag and pinch are mutually
// exclusive per box; a second concurrent gesture is ignored, not
// interleaved.
type gestureMode int

const (
	modeIdle gestureMode = iota
	modeDragging
	modePinching
)

// tapSlop is the maximum raw pointer travel (px) for a down/up pair to
// still count as a tap.
const tapSlop = 3.0

// ControllerOptions tunes the gesture feel. Zero values fall back to the
// product defaults.
type ControllerOptions struct {
	// Damping is the sub-unity multiplier applied to raw drag deltas so the
	// box lags the finger slightly.
	Damping float64
	// DoubleTapWindow is the interval within which two taps on the same box
	// toggle inline text-edit mode.
	DoubleTapWindow time.Duration
	// TapToAdd makes a clean tap on the background create a new text box at
	// the tap location (pointer editor variant). The touch editor adds
	// boxes via an explicit control instead.
	TapToAdd bool
}

// Controller turns raw pointer/touch events into Store mutations. It is the
// pointer-gesture state machine: Idle -> Dragging on pointer-down over a
// box, Idle -> Pinching on a two-finger touch-start over a box.
type Controller struct {
	store *Store
	opts  ControllerOptions

	mode  gestureMode
	boxID int64

	// drag state
	lastPointer geom.Pt
	rawTravel   float64

	// pinch state
	initialDist float64
	startWidth  float64
	startHeight float64
	startFont   float64

	// tap classification
	lastTapAt  time.Time
	lastTapBox int64
	editingID  int64
}

// NewController binds a gesture controller to a store.
func NewController(s *Store, opts ControllerOptions) *Controller {
	if opts.Damping <= 0 || opts.Damping > 1 {
		opts.Damping = 0.7
	}
	if opts.DoubleTapWindow <= 0 {
		opts.DoubleTapWindow = 300 * time.Millisecond
	}
	return &Controller{store: s, opts: opts}
}

// EditingID returns the box currently in inline text-edit mode (0 if none).
func (c *Controller) EditingID() int64 { return c.editingID }

// Down starts a gesture. boxID is the hit-tested box under the pointer, or
// 0 for the background surface.
func (c *Controller) Down(boxID int64, p geom.Pt) {
	if c.mode != modeIdle {
		// A gesture is already active; ignore the newcomer.
		return
	}
	c.mode = modeDragging
	c.boxID = boxID
	c.lastPointer = p
	c.rawTravel = 0
	if boxID != 0 {
		c.store.SetActive(boxID)
	}
}

// Move advances an active drag. Each step applies damping to the
// incremental pointer delta and accumulates it onto the box position, so
// direction reversals damp correctly step by step.
func (c *Controller) Move(p geom.Pt) {
	if c.mode != modeDragging {
		return
	}
	dx := p.X - c.lastPointer.X
	dy := p.Y - c.lastPointer.Y
	c.rawTravel += math.Hypot(dx, dy)
	c.lastPointer = p
	if c.boxID == 0 {
		return
	}
	box, ok := c.store.Box(c.boxID)
	if !ok {
		return
	}
	nx := box.X + dx*c.opts.Damping
	ny := box.Y + dy*c.opts.Damping
	c.store.UpdateTextBox(c.boxID, TextBoxPatch{X: &nx, Y: &ny})
}

// Up ends a drag. A pointer that never travelled past the tap slop is
// classified as a tap: on the background it may create a box, on a box it
// may toggle edit mode when paired within the double-tap window.
func (c *Controller) Up(p geom.Pt, now time.Time) {
	if c.mode != modeDragging {
		return
	}
	boxID := c.boxID
	isTap := c.rawTravel <= tapSlop
	c.mode = modeIdle
	c.boxID = 0

	if isTap {
		c.handleTap(boxID, p, now)
	} else if boxID != 0 {
		// One undo step per completed drag, not one per pointer sample.
		c.store.CommitHistory()
	}
	_ = c.store.Flush()
}

func (c *Controller) handleTap(boxID int64, p geom.Pt, now time.Time) {
	if boxID == 0 {
		if c.opts.TapToAdd {
			c.store.AddTextBox(p.X, p.Y)
		}
		c.lastTapBox = 0
		c.lastTapAt = now
		return
	}
	if c.lastTapBox == boxID && now.Sub(c.lastTapAt) <= c.opts.DoubleTapWindow {
		// Double interaction toggles inline text-edit mode.
		if c.editingID == boxID {
			c.editingID = 0
		} else {
			c.editingID = boxID
		}
		c.lastTapBox = 0
		c.lastTapAt = time.Time{}
		return
	}
	c.lastTapBox = boxID
	c.lastTapAt = now
}

// PinchStart begins a two-finger resize on a box. It suppresses any drag in
// flight so the same gesture stream is not processed twice.
func (c *Controller) PinchStart(boxID int64, p1, p2 geom.Pt) {
	if boxID == 0 {
		return
	}
	if c.mode == modePinching {
		return
	}
	// A two-finger touch-start supersedes a single-pointer drag on any box.
	box, ok := c.store.Box(boxID)
	if !ok {
		return
	}
	c.mode = modePinching
	c.boxID = boxID
	c.initialDist = dist(p1, p2)
	if c.initialDist == 0 {
		c.initialDist = 1
	}
	c.startWidth = box.Width
	c.startHeight = box.Height
	c.startFont = box.FontSize
	c.store.SetActive(boxID)
}

// PinchMove rescales the box from its gesture-start dimensions by the
// current finger distance ratio, clamped to the product bounds.
func (c *Controller) PinchMove(p1, p2 geom.Pt) {
	if c.mode != modePinching {
		return
	}
	scale := dist(p1, p2) / c.initialDist
	w := geom.Clamp(c.startWidth*scale, MinBoxWidth, MaxBoxWidth)
	h := geom.Clamp(c.startHeight*scale, MinBoxHeight, MaxBoxHeight)
	f := geom.Clamp(c.startFont*scale, MinFontSize, MaxFontSize)
	c.store.UpdateTextBox(c.boxID, TextBoxPatch{Width: &w, Height: &h, FontSize: &f})
}

// PinchEnd returns to idle and flushes persistence.
func (c *Controller) PinchEnd() {
	if c.mode != modePinching {
		return
	}
	c.mode = modeIdle
	c.boxID = 0
	c.store.CommitHistory()
	_ = c.store.Flush()
}

func dist(a, b geom.Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
