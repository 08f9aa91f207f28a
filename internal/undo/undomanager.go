/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible editor-state blob for one post's composition.
// Blob content is opaque to the manager (encoded editor state); size is
// estimated as len(Blob). TS is when the snapshot was captured.
type Snapshot struct {
	PostID int64
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerPost limits snapshots kept per post (0 means unlimited).
	MaxPerPost int
	// MinInterval coalesces snapshots captured within the interval for the
	// same post, replacing the previous one instead of pushing a new entry.
	// A drag stream produces many near-identical states per second; one
	// undo step per gesture is what the user expects.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per post with performance
// safeguards. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo map[int64][]Snapshot
	redo map[int64][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[int64][]Snapshot), redo: make(map[int64][]Snapshot)}
}

// PushSnapshot records a snapshot for a post. If within MinInterval of the
// last snapshot on the same post, it replaces the last one. Clears the redo
// stack for that post.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.PostID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.PostID] = stack
			m.redo[s.PostID] = nil
			m.enforceCapsLocked(s.PostID)
			return
		}
	}
	stack = append(stack, s)
	m.undo[s.PostID] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the post.
	m.redo[s.PostID] = nil
	m.enforceCapsLocked(s.PostID)
}

// Undo pops from the post's undo stack onto its redo stack and returns the
// popped snapshot.
func (m *Manager) Undo(postID int64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[postID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[postID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[postID] = append(m.redo[postID], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(postID int64) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[postID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[postID] = r[:len(r)-1]
	m.undo[postID] = append(m.undo[postID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(postID)
	return s, true
}

// ClearPost drops both stacks for a post to free memory.
func (m *Manager) ClearPost(postID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[postID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, postID)
	delete(m.redo, postID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, posts int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, posts, totalSnapshots
}

func (m *Manager) enforceCapsLocked(postID int64) {
	if m.cfg.MaxPerPost > 0 {
		stack := m.undo[postID]
		if len(stack) > m.cfg.MaxPerPost {
			toDrop := len(stack) - m.cfg.MaxPerPost
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[postID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all posts.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		var oldestPost int64
		oldestIdx := -1
		var oldestTS time.Time
		for post, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestPost = post
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestPost]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestPost] = stack[1:]
		if len(m.undo[oldestPost]) == 0 {
			delete(m.undo, oldestPost)
		}
	}
}
