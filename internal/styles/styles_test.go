/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package styles

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestPresetRoundTrip(t *testing.T) {
	root := t.TempDir()
	p := Preset{Name: "headline", FontSize: 28, TextColor: "#ffffff", PlateColor: "#000000", PlateOpacity: 0.6}
	if err := Save(root, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(root, "headline")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch: %+v != %+v", got, p)
	}
}

func TestPresetValidation(t *testing.T) {
	root := t.TempDir()
	if err := Save(root, Preset{Name: "", FontSize: 20}); err == nil {
		t.Fatalf("nameless preset must be rejected")
	}
	if err := Save(root, Preset{Name: "bad", FontSize: 0}); err == nil {
		t.Fatalf("zero font size must be rejected")
	}
	if err := Save(root, Preset{Name: "opaque", FontSize: 20, PlateOpacity: 1.5}); err == nil {
		t.Fatalf("opacity > 1 must be rejected")
	}
}

func TestPresetColors(t *testing.T) {
	p := Preset{Name: "inverse", FontSize: 24, TextColor: "#ffffff", PlateColor: "#102030", PlateOpacity: 0.5}
	text, plate := p.Colors()
	if text.R != 255 || text.G != 255 || text.B != 255 || text.A != 255 {
		t.Fatalf("text = %+v, want opaque white", text)
	}
	if plate.R != 0x10 || plate.G != 0x20 || plate.B != 0x30 {
		t.Fatalf("plate = %+v, want #102030", plate)
	}
	if plate.A != 128 {
		t.Fatalf("plate alpha = %d, want 128 at opacity 0.5", plate.A)
	}
}

func TestPresetColorsFallBackOnBadHex(t *testing.T) {
	text, plate := Preset{Name: "x", FontSize: 18, TextColor: "red", PlateColor: "zz"}.Colors()
	if text.R != 0 || text.G != 0 || text.B != 0 || text.A != 255 {
		t.Fatalf("text = %+v, want default black ink", text)
	}
	if plate.R != 255 || plate.A != 178 {
		t.Fatalf("plate = %+v, want default semi-opaque white", plate)
	}
}

func TestListSortsAndSkipsBroken(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha"} {
		if err := Save(root, Preset{Name: name, FontSize: 18}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}
	// A file that does not parse is skipped, not fatal.
	if err := os.WriteFile(filepath.Join(root, "presets", "broken.yaml"), []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	got, err := List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "zeta" {
		t.Fatalf("List = %+v", got)
	}
}

func TestExportAndInstallPack(t *testing.T) {
	src := t.TempDir()
	if err := Save(src, Preset{Name: "caption", FontSize: 18}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(src, Preset{Name: "hook", FontSize: 32}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	zipPath := filepath.Join(src, "out.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("ExportPack: %v", err)
	}
	st, err := os.Stat(zipPath)
	if err != nil || st.Size() == 0 {
		t.Fatalf("zip not created or empty: %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	_ = r.Close()

	dst := t.TempDir()
	installed, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("InstallPack: %v", err)
	}
	if installed != 2 {
		t.Fatalf("installed = %d, want 2", installed)
	}
	got, err := List(dst)
	if err != nil {
		t.Fatalf("List after install: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("presets after install = %+v", got)
	}
}

func TestInstallPackNeverOverwrites(t *testing.T) {
	src := t.TempDir()
	if err := Save(src, Preset{Name: "caption", FontSize: 18}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	zipPath := filepath.Join(src, "out.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("ExportPack: %v", err)
	}

	dst := t.TempDir()
	if err := Save(dst, Preset{Name: "caption", FontSize: 99}); err != nil {
		t.Fatalf("Save existing: %v", err)
	}
	installed, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("InstallPack: %v", err)
	}
	if installed != 0 {
		t.Fatalf("installed = %d, want 0 (existing file skipped)", installed)
	}
	got, err := Load(dst, "caption")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FontSize != 99 {
		t.Fatalf("existing preset was overwritten: %+v", got)
	}
}
