/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package raster renders editor state into encoded still images. Text
// measurement and drawing is isolated behind a Provider so output is
// deterministic under test and OpenType-backed in production.
package raster

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Provider maps a pixel size to a concrete font.Face.
type Provider interface {
	Face(sizePx float64) (font.Face, error)
}

// BasicProvider returns basicfont.Face7x13 regardless of size. Fixed-metric
// and deterministic, which is what the tests want.
type BasicProvider struct{}

func (BasicProvider) Face(float64) (font.Face, error) { return basicfont.Face7x13, nil }

// OTProvider resolves faces from one loaded OpenType font. Size is in
// pixels (DPI fixed at 72 so points and pixels coincide).
type OTProvider struct {
	fnt *opentype.Font
}

// LoadFont parses a TTF/OTF file into a provider.
func LoadFont(path string) (*OTProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &OTProvider{fnt: f}, nil
}

func (p *OTProvider) Face(sizePx float64) (font.Face, error) {
	if sizePx <= 0 {
		sizePx = 12
	}
	face, err := opentype.NewFace(p.fnt, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("face at %.1fpx: %w", sizePx, err)
	}
	return face, nil
}
