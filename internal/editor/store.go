/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor owns the stories editor model: the background image
// reference and the list of draggable text boxes. All mutation goes through
// Store, which is the single source of truth and mediates persistence.
package editor

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"sutomemo/internal/domain"
	applog "sutomemo/internal/log"
	"sutomemo/internal/store"
	"sutomemo/internal/undo"
)

// Text box defaults and pinch clamp bounds (display-space pixels).
// Empirically chosen product constants; tunable, not protocol.
const (
	DefaultBoxWidth  = 250
	DefaultBoxHeight = 100
	DefaultFontSize  = 18

	MinBoxWidth  = 100
	MaxBoxWidth  = 600
	MinBoxHeight = 60
	MaxBoxHeight = 400
	MinFontSize  = 12
	MaxFontSize  = 36
)

// persistDelay defers snapshot writes to an idle point so rapid gesture
// updates don't thrash storage.
const persistDelay = 400 * time.Millisecond

// TextBoxPatch carries a shallow merge for UpdateTextBox. Nil fields are
// left untouched.
type TextBoxPatch struct {
	Text     *string
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	FontSize *float64
}

// Store is the single source of truth for the stories editor session.
// All mutations are atomic per call; persistence is debounced and
// best-effort (a failed local write never interrupts the session).
type Store struct {
	mu  sync.Mutex
	log *slog.Logger

	kv     store.KV
	images ImageSource

	state    domain.EditorState
	activeID int64
	nextID   int64

	res ImageResource // exactly one outstanding per session

	history     *undo.Manager
	historyPost int64

	timer *time.Timer
}

// NewStore builds an editor store over the given durable KV and image
// source. Call Open before use.
func NewStore(kv store.KV, images ImageSource) *Store {
	return &Store{
		log:    applog.WithComponent("editor"),
		kv:     kv,
		images: images,
		nextID: 1,
	}
}

// Open initializes the session. When initial is non-nil the caller supplied
// explicit state and restoration from the durable store is skipped entirely;
// otherwise the last persisted snapshot is restored. A snapshot that fails
// validation is discarded, not fatal.
func (s *Store) Open(initial *domain.EditorState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if initial != nil {
		s.state = *initial
		s.renumber()
		return
	}
	raw, ok, err := s.kv.Get(store.StoriesEditorKey)
	if err != nil {
		s.log.Warn("restore read failed", slog.Any("err", err))
		return
	}
	if !ok {
		return
	}
	st, err := store.DecodeEditorState(raw)
	if err != nil {
		s.log.Warn("discarding invalid snapshot", slog.Any("err", err))
		return
	}
	s.state = st
	s.renumber()
}

// renumber makes nextID greater than any restored box id.
func (s *Store) renumber() {
	for _, b := range s.state.TextBoxes {
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
	}
}

// SelectImage replaces the background image with a newly acquired
// session-local resource, releasing the previous one first so exactly one
// stays alive. All text boxes and the active selection are cleared.
func (s *Store) SelectImage(f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.res != nil {
		s.res.Release()
		s.res = nil
		s.state.ImageURL = ""
	}
	res, err := s.images.Acquire(f)
	if err != nil {
		// Previous image is gone either way; reflect that in the model.
		s.state.TextBoxes = nil
		s.activeID = 0
		s.commitHistoryLocked()
		s.schedulePersistLocked()
		return err
	}
	s.res = res
	s.state.ImageURL = res.URL()
	s.state.TextBoxes = nil
	s.activeID = 0
	s.commitHistoryLocked()
	s.schedulePersistLocked()
	return nil
}

// AddTextBox appends a box with product defaults at the given display
// coordinates, marks it active, and returns its id.
func (s *Store) AddTextBox(x, y float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.state.TextBoxes = append(s.state.TextBoxes, domain.TextBox{
		ID:       id,
		X:        x,
		Y:        y,
		Width:    DefaultBoxWidth,
		Height:   DefaultBoxHeight,
		FontSize: DefaultFontSize,
	})
	s.activeID = id
	s.commitHistoryLocked()
	s.schedulePersistLocked()
	return id
}

// UpdateTextBox shallow-merges patch into the matching box. No-op if the id
// is unknown.
func (s *Store) UpdateTextBox(id int64, patch TextBoxPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.TextBoxes {
		b := &s.state.TextBoxes[i]
		if b.ID != id {
			continue
		}
		if patch.Text != nil {
			b.Text = *patch.Text
		}
		if patch.X != nil {
			b.X = *patch.X
		}
		if patch.Y != nil {
			b.Y = *patch.Y
		}
		if patch.Width != nil {
			b.Width = *patch.Width
		}
		if patch.Height != nil {
			b.Height = *patch.Height
		}
		if patch.FontSize != nil {
			b.FontSize = *patch.FontSize
		}
		s.schedulePersistLocked()
		return
	}
}

// DeleteTextBox removes the box and clears the active selection if it
// pointed at the removed box.
func (s *Store) DeleteTextBox(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.TextBoxes {
		if s.state.TextBoxes[i].ID == id {
			s.state.TextBoxes = append(s.state.TextBoxes[:i], s.state.TextBoxes[i+1:]...)
			if s.activeID == id {
				s.activeID = 0
			}
			s.commitHistoryLocked()
			s.schedulePersistLocked()
			return
		}
	}
}

// SetActive marks a box as the current selection (0 clears it).
func (s *Store) SetActive(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// ActiveID returns the current selection (0 when none).
func (s *Store) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ImageURL returns the current background reference ("" when none).
func (s *Store) ImageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ImageURL
}

// Boxes returns a copy of the text box list in display order.
func (s *Store) Boxes() []domain.TextBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TextBox, len(s.state.TextBoxes))
	copy(out, s.state.TextBoxes)
	return out
}

// Box returns the box with the given id.
func (s *Store) Box(id int64) (domain.TextBox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.TextBoxes {
		if b.ID == id {
			return b, true
		}
	}
	return domain.TextBox{}, false
}

// AllText joins all non-blank box contents with newlines, in list order.
// This is the caption/body handed to the posts backend.
func (s *Store) AllText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var parts []string
	for _, b := range s.state.TextBoxes {
		if strings.TrimSpace(b.Text) != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Snapshot returns a copy of the full editor state.
func (s *Store) Snapshot() domain.EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.TextBoxes = append([]domain.TextBox(nil), s.state.TextBoxes...)
	return st
}

// EnableHistory attaches an undo stack and seeds it with the current state.
// postID namespaces the stack; the live composer session uses a single id.
func (s *Store) EnableHistory(h *undo.Manager, postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
	s.historyPost = postID
	s.commitHistoryLocked()
}

// CommitHistory records the current state as one undoable step. Gesture
// completion and text edits call this; rapid calls coalesce inside the
// manager, so a keystroke burst stays one step.
func (s *Store) CommitHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHistoryLocked()
}

func (s *Store) commitHistoryLocked() {
	if s.history == nil {
		return
	}
	raw, err := store.EncodeEditorState(s.state)
	if err != nil {
		s.log.Warn("history encode failed", slog.Any("err", err))
		return
	}
	s.history.PushSnapshot(undo.Snapshot{PostID: s.historyPost, Blob: raw, TS: time.Now()})
}

// Undo steps back to the state before the most recent committed edit. The
// stack's top entry always mirrors the current state, so stepping back means
// dropping it and re-applying the entry beneath.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return false
	}
	if _, ok := s.history.Undo(s.historyPost); !ok {
		return false
	}
	prev, ok := s.history.Undo(s.historyPost)
	if !ok {
		// Already at the seed state; put the popped entry back.
		s.history.Redo(s.historyPost)
		return false
	}
	s.history.Redo(s.historyPost)
	return s.applyHistoryLocked(prev)
}

// Redo re-applies the most recently undone edit.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return false
	}
	next, ok := s.history.Redo(s.historyPost)
	if !ok {
		return false
	}
	return s.applyHistoryLocked(next)
}

func (s *Store) applyHistoryLocked(snap undo.Snapshot) bool {
	st, err := store.DecodeEditorState(snap.Blob)
	if err != nil {
		s.log.Warn("history decode failed", slog.Any("err", err))
		return false
	}
	// The live background resource never travels through the stack; only
	// box geometry and text do.
	st.ImageURL = s.state.ImageURL
	s.state = st
	s.activeID = 0
	s.renumber()
	s.schedulePersistLocked()
	return true
}

// schedulePersistLocked arms the debounce timer. Callers hold s.mu.
func (s *Store) schedulePersistLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(persistDelay, func() { _ = s.Flush() })
}

// Flush writes the current snapshot immediately. Gesture completion and
// session teardown call this so in-progress edits survive an abrupt exit.
// Errors are logged and swallowed; losing a debounce write is recoverable
// on the next change.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	raw, err := store.EncodeEditorState(s.state)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("snapshot encode failed", slog.Any("err", err))
		return err
	}
	if err := s.kv.Put(store.StoriesEditorKey, raw); err != nil {
		s.log.Warn("snapshot write failed", slog.Any("err", err))
		return err
	}
	return nil
}

// Close flushes pending state and releases the live image resource.
func (s *Store) Close() {
	_ = s.Flush()
	s.mu.Lock()
	if s.res != nil {
		s.res.Release()
		s.res = nil
	}
	s.mu.Unlock()
}
