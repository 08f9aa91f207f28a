/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// File is what the surrounding picker hands to SelectImage. MimeType is
// authoritative for image/video branching; no particular codec is assumed.
type File struct {
	Name     string
	MimeType string
	Path     string // local filesystem path to the picked file
}

// ImageResource is a session-scoped handle to a selected image, the
// counterpart of a browser object URL. Exactly one resource is alive per
// editor session; Release frees the underlying storage and must be called
// before (or immediately after) acquiring a replacement.
type ImageResource interface {
	// URL returns a blob:-scheme reference valid only for this session.
	URL() string
	Release()
}

// ImageSource issues session-scoped image resources.
type ImageSource interface {
	Acquire(f File) (ImageResource, error)
}

// ErrUnsupportedMedia is returned when a picked file is neither image/*
// nor video/* where video is accepted.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// BlobPath resolves a blob: URL issued by a LocalImageSource back to its
// filesystem path. Returns ok=false for any other URL shape.
func BlobPath(url string) (string, bool) {
	if p, found := strings.CutPrefix(url, "blob:"); found {
		return p, true
	}
	return "", false
}

// LocalImageSource copies picked files into a private session directory and
// hands out blob: references to the copies. Releasing a resource removes the
// copy, so stale references never outlive the session.
type LocalImageSource struct {
	dir string
	seq atomic.Int64
}

// NewLocalImageSource creates the session directory under the user cache dir
// (or os.TempDir as fallback).
func NewLocalImageSource() (*LocalImageSource, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	dir, err := os.MkdirTemp(base, "sutomemo-session-")
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &LocalImageSource{dir: dir}, nil
}

func (s *LocalImageSource) Acquire(f File) (ImageResource, error) {
	if !strings.HasPrefix(f.MimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, f.MimeType)
	}
	src, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open picked file: %w", err)
	}
	defer func() { _ = src.Close() }()

	n := s.seq.Add(1)
	name := fmt.Sprintf("bg-%d%s", n, filepath.Ext(f.Name))
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("stage picked file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("copy picked file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("close staged file: %w", err)
	}
	return &localResource{path: dstPath}, nil
}

// Close removes the session directory and everything staged in it.
func (s *LocalImageSource) Close() error { return os.RemoveAll(s.dir) }

type localResource struct {
	path     string
	released atomic.Bool
}

func (r *localResource) URL() string { return "blob:" + r.path }

func (r *localResource) Release() {
	if r.released.CompareAndSwap(false, true) {
		_ = os.Remove(r.path)
	}
}
