/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strings"
	"sync"

	"sutomemo/internal/editor"
)

// ImageCache lazily loads and caches decoded background images by URL.
// blob: URLs resolve to session-staged files, http(s) URLs are fetched,
// anything else is treated as a filesystem path. A failed load is an
// explicit error to the caller, never a silent blank frame.
type ImageCache struct {
	mu sync.Mutex
	m  map[string]image.Image
}

func NewImageCache() *ImageCache { return &ImageCache{m: make(map[string]image.Image)} }

func (c *ImageCache) Load(url string) (image.Image, error) {
	c.mu.Lock()
	if img, ok := c.m[url]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := decodeURL(url)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.m[url] = img
	c.mu.Unlock()
	return img, nil
}

func decodeURL(url string) (image.Image, error) {
	switch {
	case strings.HasPrefix(url, "blob:"):
		p, _ := editor.BlobPath(url)
		return decodeFile(p)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		resp, err := http.Get(url)
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch image %s: status %s", url, resp.Status)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", url, err)
		}
		return img, nil
	default:
		return decodeFile(url)
	}
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
