/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package styles manages named text style presets for the stories editor:
// one YAML file per preset under a presets directory, shareable as zip
// packs.
package styles

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// presetsDirName is the subdirectory presets live in.
const presetsDirName = "presets"

// Preset is a reusable text style a user can apply to a box instead of
// tuning font size and plate look by hand.
type Preset struct {
	Name         string  `yaml:"name"`
	FontSize     float64 `yaml:"fontSize"`
	TextColor    string  `yaml:"textColor,omitempty"`    // hex, e.g. "#000000"
	PlateColor   string  `yaml:"plateColor,omitempty"`   // hex
	PlateOpacity float64 `yaml:"plateOpacity,omitempty"` // 0..1
}

// Validate rejects presets that cannot be applied.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name is required")
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("preset %q: fontSize must be positive", p.Name)
	}
	if p.PlateOpacity < 0 || p.PlateOpacity > 1 {
		return fmt.Errorf("preset %q: plateOpacity out of [0,1]", p.Name)
	}
	return nil
}

// Colors resolves the preset's hex colors to concrete draw colors. Empty or
// malformed values fall back to the editor defaults (black ink on a
// semi-opaque white plate); PlateOpacity scales the plate alpha when set.
func (p Preset) Colors() (text, plate color.NRGBA) {
	text = color.NRGBA{A: 255}
	plate = color.NRGBA{R: 255, G: 255, B: 255, A: 178}
	if c, err := ParseHexColor(p.TextColor); err == nil {
		text = c
	}
	if c, err := ParseHexColor(p.PlateColor); err == nil {
		plate.R, plate.G, plate.B = c.R, c.G, c.B
	}
	if p.PlateOpacity > 0 {
		plate.A = uint8(math.Round(p.PlateOpacity * 255))
	}
	return text, plate
}

// ParseHexColor parses a "#RRGGBB" color string.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func presetPath(root, name string) string {
	return filepath.Join(root, presetsDirName, name+".yaml")
}

// Save writes a preset under root/presets/<name>.yaml.
func Save(root string, p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	dir := filepath.Join(root, presetsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure presets dir: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset %q: %w", p.Name, err)
	}
	if err := os.WriteFile(presetPath(root, p.Name), data, 0o644); err != nil {
		return fmt.Errorf("write preset %q: %w", p.Name, err)
	}
	return nil
}

// Load reads a single preset by name.
func Load(root, name string) (Preset, error) {
	data, err := os.ReadFile(presetPath(root, name))
	if err != nil {
		return Preset{}, fmt.Errorf("read preset %q: %w", name, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// List returns all valid presets under root, sorted by name. Files that do
// not parse are skipped, not fatal.
func List(root string) ([]Preset, error) {
	dir := filepath.Join(root, presetsDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read presets dir: %w", err)
	}
	var out []Preset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		p, err := Load(root, name)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
