/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "time"

// This file defines the core data model for the SutoMemo composer.
// Coordinates on TextBox live in display space (the on-screen editing
// surface); export resolutions are fixed and owned by the rasterizers.

// Memo is the structured micro-memo attached to a post.
type Memo struct {
	Why  string `json:"why,omitempty"`
	What string `json:"what,omitempty"`
	Next string `json:"next,omitempty"`
}

// Post is the published artifact as the backend sees it.
type Post struct {
	ID        int64     `json:"id"`
	Caption   string    `json:"caption"`
	MediaURL  string    `json:"media_url"`
	MimeType  string    `json:"mime_type"`
	Memo      Memo      `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TextBox is a positioned, resizable, editable text annotation.
// x/y are the top-left offset in display pixels; width/height and fontSize
// are display-space values as well. IDs are unique for the session and
// never reused.
type TextBox struct {
	ID       int64   `json:"id"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
}

// EditorState is the persisted snapshot of the stories editor.
// ImageURL may be empty; a blob:-scheme URL must never be restored.
type EditorState struct {
	ImageURL  string    `json:"imageUrl,omitempty"`
	TextBoxes []TextBox `json:"textBoxes,omitempty"`
}

// Offset is a simple x/y displacement pair.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoxSize is a width/height pair for the overlay editor snapshot.
type BoxSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OverlayState is the persisted snapshot of the single-box overlay editor,
// keyed per post id.
type OverlayState struct {
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	TextBoxSize BoxSize `json:"textBoxSize,omitempty"`
	DragOffset  Offset  `json:"dragOffset,omitempty"`
}

// TextBlock is a time-windowed piece of text shown during reel playback.
// Times are seconds; the active window is [StartTime, EndTime).
// Blocks are immutable once constructed.
type TextBlock struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	FontSize  float64 `json:"fontSize"`
}

// RenderResult is a transient, caller-owned encoded artifact.
type RenderResult struct {
	Blob     []byte `json:"-"`
	MimeType string `json:"mimeType"`
}

// Session identifies the current user for save/export gating.
// The composer treats Guest as an opaque boolean gate.
type Session struct {
	UserID string `json:"user_id"`
	Guest  bool   `json:"guest"`
}
