/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sutomemo/internal/backend"
	"sutomemo/internal/config"
	"sutomemo/internal/crash"
	"sutomemo/internal/domain"
	"sutomemo/internal/editor"
	"sutomemo/internal/export"
	"sutomemo/internal/geom"
	applog "sutomemo/internal/log"
	"sutomemo/internal/raster"
	"sutomemo/internal/reel"
	"sutomemo/internal/script"
	"sutomemo/internal/styles"
	"sutomemo/internal/telemetry"
	"sutomemo/internal/ui"
	"sutomemo/internal/version"
)

func usage() {
	fmt.Println("SutoMemo — stories & reels composer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sutomemo version|-v|--version                        Show version")
	fmt.Println("  sutomemo export <image> [text...]                    Compose a 1080x1920 story PNG")
	fmt.Println("  sutomemo reel <media> <hook> <problem> <evidence> <action>")
	fmt.Println("                                                       Render a 15s reel from the media's first frame")
	fmt.Println("  sutomemo pdf <still.png> <out.pdf> [why] [what] [next] [postURL]")
	fmt.Println("                                                       Write a printable memo card")
	fmt.Println("  sutomemo compose <image> <script.memo>               Compose still/reel/PDF from a memo script")
	fmt.Println("  sutomemo post <artifact> <caption>                   Upload an artifact to the posts backend")
	fmt.Println("  sutomemo styles list                                 List saved text style presets")
	fmt.Println("  sutomemo styles save <name> <fontSize> [textColor] [plateColor] [plateOpacity]")
	fmt.Println("                                                       Save a preset (colors as #RRGGBB)")
	fmt.Println("  sutomemo styles export <pack.zip>                    Zip the presets for sharing")
	fmt.Println("  sutomemo styles install <pack.zip>                   Install presets from a pack")
	fmt.Println("  sutomemo serve                                       Run the thin posts server")
	fmt.Println("  sutomemo ui [<dataDir>]                              Launch desktop UI (build with -tags fyne)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(nil, "") }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("SutoMemo — stories & reels composer")
		fmt.Println(version.String())
	case "export":
		if len(args) < 3 {
			fmt.Println("export requires <image>")
			usage()
			os.Exit(2)
		}
		if err := runExport(args[2], strings.Join(args[3:], " ")); err != nil {
			l.Error("export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "reel":
		if len(args) < 7 {
			fmt.Println("reel requires <media> <hook> <problem> <evidence> <action>")
			usage()
			os.Exit(2)
		}
		if err := runReel(args[2], args[3], args[4], args[5], args[6]); err != nil {
			l.Error("reel failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "pdf":
		if len(args) < 4 {
			fmt.Println("pdf requires <still.png> <out.pdf>")
			usage()
			os.Exit(2)
		}
		if err := runPDF(args[2], args[3], args[4:]); err != nil {
			l.Error("pdf failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "compose":
		if len(args) < 4 {
			fmt.Println("compose requires <image> <script.memo>")
			usage()
			os.Exit(2)
		}
		if err := runCompose(args[2], args[3]); err != nil {
			l.Error("compose failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "post":
		if len(args) < 4 {
			fmt.Println("post requires <artifact> <caption>")
			usage()
			os.Exit(2)
		}
		if err := runPost(args[2], args[3]); err != nil {
			l.Error("post failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "styles":
		if err := runStyles(args[2:]); err != nil {
			l.Error("styles failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "serve":
		cfg, _, _ := config.Load()
		if !cfg.General.EnableServer && os.Getenv(config.EnvEnableServer) == "" {
			fmt.Println("Server disabled. Enable with general.enable_server in config or", config.EnvEnableServer+"=1")
			os.Exit(2)
		}
		if err := backend.Start(); err != nil {
			l.Error("server failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "ui":
		var dir string
		if len(args) >= 3 {
			dir = args[2]
		}
		if err := ui.Run(dir); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
	}
}

// sourceProbe stands in for the live editor surface when composing from the
// CLI: display space is simply the source image's own pixel grid.
type sourceProbe struct{ w, h float64 }

func (p sourceProbe) DisplayBounds() (geom.Rect, bool) {
	if p.w <= 0 || p.h <= 0 {
		return geom.Rect{}, false
	}
	return geom.Rect{W: p.w, H: p.h}, true
}

func loadFonts() raster.Provider {
	cfg, _, _ := config.Load()
	if cfg.Editor.FontPath != "" {
		if p, err := raster.LoadFont(cfg.Editor.FontPath); err == nil {
			return p
		}
	}
	return raster.BasicProvider{}
}

func runExport(imagePath, text string) error {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return err
	}
	cache := raster.NewImageCache()
	img, err := cache.Load(abs)
	if err != nil {
		return err
	}
	b := img.Bounds()

	state := domain.EditorState{ImageURL: abs}
	if text != "" {
		state.TextBoxes = []domain.TextBox{{
			ID:       1,
			Text:     text,
			X:        float64(b.Dx()) * 0.1,
			Y:        float64(b.Dy()) * 0.75,
			Width:    float64(b.Dx()) * 0.8,
			Height:   float64(b.Dy()) * 0.12,
			FontSize: editor.DefaultFontSize,
		}}
	}

	ras := raster.NewStories(loadFonts(), cache, sourceProbe{w: float64(b.Dx()), h: float64(b.Dy())})
	blob, err := ras.Render(state)
	if err != nil {
		return err
	}
	path, err := export.WriteArtifact(export.ExportsDirName, "story", domain.RenderResult{Blob: blob, MimeType: "image/png"})
	if err != nil {
		return err
	}
	telemetry.Event("editor.export", map[string]any{"bytes": len(blob)})
	fmt.Println("Exported", path)
	return nil
}

func runReel(mediaPath, hook, problem, evidence, action string) error {
	abs, err := filepath.Abs(mediaPath)
	if err != nil {
		return err
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(abs)))
	if mt == "" {
		mt = "application/octet-stream"
	}
	cache := raster.NewImageCache()
	ctx := context.Background()
	still, err := reel.SourceFrame(ctx, editor.File{Name: filepath.Base(abs), MimeType: mt, Path: abs}, cache)
	if err != nil {
		return err
	}

	cfg, _, _ := config.Load()
	r := reel.NewRenderer(loadFonts(), cache, cfg.Reel.FPS)
	enc := reel.NewFFmpegEncoder(cfg.Reel.BitrateKbps)
	blocks := reel.BuildTextBlocks(hook, problem, evidence, action)
	res, err := r.Render(ctx, enc, still, blocks, reel.Duration, func(pct int) {
		fmt.Printf("\rRendering... %3d%%", pct)
	})
	fmt.Println()
	if err != nil {
		return err
	}
	path, err := export.WriteArtifact(export.ExportsDirName, "reel", res)
	if err != nil {
		return err
	}
	telemetry.Event("reel.render", map[string]any{"mime": res.MimeType, "bytes": len(res.Blob)})
	fmt.Println("Rendered", path)
	return nil
}

// runCompose drives the whole pipeline from a .memo script: still from the
// box lines, reel when the timed slots are present, memo-card PDF when any
// memo field is set.
func runCompose(imagePath, scriptPath string) error {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	ms, errs := script.Parse(string(src))
	for _, e := range errs {
		fmt.Printf("%s:%d: %s\n", scriptPath, e.Line, e.Message)
	}

	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return err
	}
	cache := raster.NewImageCache()
	img, err := cache.Load(abs)
	if err != nil {
		return err
	}
	b := img.Bounds()

	state := domain.EditorState{ImageURL: abs}
	for i, bl := range ms.Boxes {
		state.TextBoxes = append(state.TextBoxes, domain.TextBox{
			ID:       int64(i + 1),
			Text:     bl.Text,
			X:        bl.X,
			Y:        bl.Y,
			Width:    editor.DefaultBoxWidth,
			Height:   editor.DefaultBoxHeight,
			FontSize: editor.DefaultFontSize,
		})
	}

	var preset styles.Preset
	if ms.Style != "" {
		preset, err = styles.Load(stylesRoot, ms.Style)
		if err != nil {
			return err
		}
		for i := range state.TextBoxes {
			state.TextBoxes[i].FontSize = preset.FontSize
		}
	}

	fonts := loadFonts()
	ras := raster.NewStories(fonts, cache, sourceProbe{w: float64(b.Dx()), h: float64(b.Dy())})
	if preset.Name != "" {
		txt, plate := preset.Colors()
		ras.Style = raster.BoxStyle{Text: txt, Plate: plate}
	}
	blob, err := ras.Render(state)
	if err != nil {
		return err
	}
	stillPath, err := export.WriteArtifact(export.ExportsDirName, "story", domain.RenderResult{Blob: blob, MimeType: "image/png"})
	if err != nil {
		return err
	}
	fmt.Println("Exported", stillPath)

	if !ms.Reel.Empty() {
		cfg, _, _ := config.Load()
		r := reel.NewRenderer(fonts, cache, cfg.Reel.FPS)
		enc := reel.NewFFmpegEncoder(cfg.Reel.BitrateKbps)
		blocks := reel.BuildTextBlocks(ms.Reel.Hook, ms.Reel.Problem, ms.Reel.Evidence, ms.Reel.Action)
		res, err := r.Render(context.Background(), enc, img, blocks, reel.Duration, func(pct int) {
			fmt.Printf("\rRendering... %3d%%", pct)
		})
		fmt.Println()
		if err != nil {
			return err
		}
		reelPath, err := export.WriteArtifact(export.ExportsDirName, "reel", res)
		if err != nil {
			return err
		}
		fmt.Println("Rendered", reelPath)
	}

	if ms.Memo != (domain.Memo{}) {
		pdfPath := strings.TrimSuffix(stillPath, filepath.Ext(stillPath)) + ".pdf"
		card := export.MemoCard{Still: blob, Caption: ms.Caption, Memo: ms.Memo}
		if err := export.WriteMemoCardPDF(pdfPath, card); err != nil {
			return err
		}
		fmt.Println("Wrote", pdfPath)
	}
	return nil
}

func runPDF(stillPath, outPath string, rest []string) error {
	blob, err := os.ReadFile(stillPath)
	if err != nil {
		return fmt.Errorf("read still: %w", err)
	}
	card := export.MemoCard{Still: blob}
	if len(rest) > 0 {
		card.Memo.Why = rest[0]
	}
	if len(rest) > 1 {
		card.Memo.What = rest[1]
	}
	if len(rest) > 2 {
		card.Memo.Next = rest[2]
	}
	if len(rest) > 3 {
		card.PostURL = rest[3]
	}
	if err := export.WriteMemoCardPDF(outPath, card); err != nil {
		return err
	}
	fmt.Println("Wrote", outPath)
	return nil
}

// stylesRoot is the directory whose presets/ subdir holds named style
// presets; the CLI keeps it relative, next to exports/.
const stylesRoot = "."

// runStyles manages named text style presets and shareable packs.
func runStyles(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("styles requires list|save|export|install")
	}
	switch args[0] {
	case "list":
		ps, err := styles.List(stylesRoot)
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			fmt.Println("No presets yet. Add one with: sutomemo styles save <name> <fontSize>")
			return nil
		}
		for _, p := range ps {
			fmt.Printf("%-20s font %g", p.Name, p.FontSize)
			if p.TextColor != "" {
				fmt.Printf("  text %s", p.TextColor)
			}
			if p.PlateColor != "" {
				fmt.Printf("  plate %s", p.PlateColor)
			}
			if p.PlateOpacity > 0 {
				fmt.Printf("  opacity %g", p.PlateOpacity)
			}
			fmt.Println()
		}
		return nil
	case "save":
		if len(args) < 3 {
			return fmt.Errorf("styles save requires <name> <fontSize>")
		}
		size, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("fontSize %q: %w", args[2], err)
		}
		p := styles.Preset{Name: args[1], FontSize: size}
		if len(args) > 3 {
			p.TextColor = args[3]
		}
		if len(args) > 4 {
			p.PlateColor = args[4]
		}
		if len(args) > 5 {
			if p.PlateOpacity, err = strconv.ParseFloat(args[5], 64); err != nil {
				return fmt.Errorf("plateOpacity %q: %w", args[5], err)
			}
		}
		if err := styles.Save(stylesRoot, p); err != nil {
			return err
		}
		fmt.Println("Saved preset", p.Name)
		return nil
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("styles export requires <pack.zip>")
		}
		if err := styles.ExportPack(stylesRoot, args[1]); err != nil {
			return err
		}
		fmt.Println("Exported pack", args[1])
		return nil
	case "install":
		if len(args) < 2 {
			return fmt.Errorf("styles install requires <pack.zip>")
		}
		n, err := styles.InstallPack(stylesRoot, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Installed %d preset file(s)\n", n)
		return nil
	}
	return fmt.Errorf("unknown styles command %q", args[0])
}

func runPost(artifactPath, caption string) error {
	blob, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(artifactPath)))
	if mt == "" {
		mt = "application/octet-stream"
	}
	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	client := backend.NewClient(cfg.Backend.BaseURL, token)
	ctx := context.Background()
	sess, err := client.Session(ctx)
	if err != nil {
		return err
	}
	if sess.Guest {
		return fmt.Errorf("posting requires a signed-in session; store a token first")
	}
	url, err := client.CreatePost(ctx, blob, mt, caption)
	if err != nil {
		return err
	}
	telemetry.Event("post.create", map[string]any{"mime": mt})
	fmt.Println("Posted", url)
	return nil
}
