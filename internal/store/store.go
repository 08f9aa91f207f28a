/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store provides the durable key/value store behind editor
// persistence. The editor core only sees the KV interface; concrete
// backends are a per-user JSON file store and an embedded SQLite store.
package store

import "strconv"

// Fixed namespace keys used by the editors.
const (
	// StoriesEditorKey holds the touch editor's {imageUrl, textBoxes} snapshot.
	StoriesEditorKey = "stories-editor-state"
	// OverlayKeyPrefix namespaces the overlay editor's per-post snapshots.
	OverlayKeyPrefix = "overlay:"
)

// KV is a durable key/value store for small JSON snapshots.
// Get returns ok=false when the key is absent; absence is not an error.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// OverlayKey builds the per-post key for the overlay editor snapshot.
func OverlayKey(postID int64) string {
	return OverlayKeyPrefix + strconv.FormatInt(postID, 10)
}
