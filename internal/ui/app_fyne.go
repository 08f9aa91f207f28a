//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

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
	"sutomemo/internal/store"
	"sutomemo/internal/undo"
	"sutomemo/internal/version"
)

// Run starts the Fyne-based desktop composer. dataDir holds the durable
// snapshot store and exported artifacts; empty means the current directory.
func Run(dataDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	kv, err := store.OpenSQLite(filepath.Join(dataDir, "sutomemo.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	images, err := editor.NewLocalImageSource()
	if err != nil {
		return fmt.Errorf("image staging: %w", err)
	}
	defer func() { _ = images.Close() }()

	st := editor.NewStore(kv, images)
	st.Open(nil)
	st.EnableHistory(undo.NewManager(undo.Config{MaxPerPost: 100}), 1)
	defer st.Close()
	defer func() { crash.Recover(st, filepath.Join(dataDir, "crash")) }()

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed", slog.Any("err", err))
	}

	ctrl := editor.NewController(st, editor.ControllerOptions{
		Damping:         cfg.Editor.Damping,
		DoubleTapWindow: time.Duration(cfg.Editor.DoubleTapMs) * time.Millisecond,
		TapToAdd:        true,
	})

	fyneApp := app.NewWithID("sutomemo")
	w := fyneApp.NewWindow("SutoMemo")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 600 {
		winW = 600
	}
	if winH < 500 {
		winH = 500
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	sc := newStoryCanvas(st, ctrl)

	cache := raster.NewImageCache()
	fonts := fontProvider(cfg.Editor.FontPath, l)

	textEntry := widget.NewMultiLineEntry()
	textEntry.SetPlaceHolder("Double-tap a box to edit its text")
	textEntry.OnChanged = func(s string) {
		if id := ctrl.EditingID(); id != 0 {
			st.UpdateTextBox(id, editor.TextBoxPatch{Text: &s})
			// Keystroke bursts coalesce into a single undo step.
			st.CommitHistory()
			sc.Refresh()
		}
	}
	sc.onEditChange = func(id int64) {
		if id == 0 {
			textEntry.SetText("")
			return
		}
		if b, ok := st.Box(id); ok {
			textEntry.SetText(b.Text)
		}
	}

	openBtn := widget.NewButton("Open Image", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			f := editor.File{
				Name:     filepath.Base(path),
				MimeType: mimeFor(path),
				Path:     path,
			}
			if err := st.SelectImage(f); err != nil {
				dialog.ShowError(err, w)
				return
			}
			sc.Refresh()
			status.SetText("Image loaded: " + f.Name)
		}, w)
	})

	exportBtn := widget.NewButton("Export Still", func() {
		ras := raster.NewStories(fonts, cache, sc)
		blob, err := ras.Render(st.Snapshot())
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if blob == nil {
			status.SetText("Nothing to export: pick an image first")
			return
		}
		path, err := export.WriteArtifact(filepath.Join(dataDir, export.ExportsDirName), "story",
			domain.RenderResult{Blob: blob, MimeType: "image/png"})
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + path)
	})

	reelBtn := widget.NewButton("Render Reel", func() {
		showReelDialog(w, st, cache, fonts, cfg.Reel, dataDir, status)
	})

	deleteBtn := widget.NewButton("Delete Box", func() {
		if id := st.ActiveID(); id != 0 {
			st.DeleteTextBox(id)
			sc.Refresh()
		}
	})

	undoBtn := widget.NewButton("Undo", func() {
		if st.Undo() {
			sc.Refresh()
			status.SetText("Undone")
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if st.Redo() {
			sc.Refresh()
			status.SetText("Redone")
		}
	})

	postBtn := widget.NewButton("Post", func() {
		ras := raster.NewStories(fonts, cache, sc)
		blob, err := ras.Render(st.Snapshot())
		if err != nil || blob == nil {
			status.SetText("Nothing to post yet")
			return
		}
		client := backend.NewClient(cfg.Backend.BaseURL, token)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			url, err := client.CreatePost(ctx, blob, "image/png", st.AllText())
			if err != nil {
				status.SetText("Post failed: " + err.Error())
				return
			}
			status.SetText("Posted: " + url)
		}()
	})

	toolbar := container.NewHBox(openBtn, undoBtn, redoBtn, exportBtn, reelBtn, deleteBtn, postBtn)
	w.SetContent(container.NewBorder(toolbar, container.NewVBox(textEntry, status), nil, nil, sc))

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		st.Close()
	})

	w.ShowAndRun()
	return nil
}

func fontProvider(path string, l *slog.Logger) raster.Provider {
	if path != "" {
		if p, err := raster.LoadFont(path); err == nil {
			return p
		}
		l.Warn("font load failed, using builtin face", slog.String("path", path))
	}
	return raster.BasicProvider{}
}

func mimeFor(path string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// showReelDialog collects the four timed text fields and renders the reel in
// the background, reporting integer percent progress to the status label.
func showReelDialog(w fyne.Window, st *editor.Store, cache *raster.ImageCache, fonts raster.Provider, rc config.ReelConfig, dataDir string, status *widget.Label) {
	hook := widget.NewEntry()
	problem := widget.NewEntry()
	evidence := widget.NewEntry()
	action := widget.NewEntry()
	items := []*widget.FormItem{
		widget.NewFormItem("Hook (0-3s)", hook),
		widget.NewFormItem("Problem (3-8s)", problem),
		widget.NewFormItem("Evidence (8-12s)", evidence),
		widget.NewFormItem("Action (12-15s)", action),
	}
	dialog.ShowForm("Render Reel", "Render", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		imageURL := st.ImageURL()
		if imageURL == "" {
			status.SetText("Pick an image first")
			return
		}
		blocks := reel.BuildTextBlocks(hook.Text, problem.Text, evidence.Text, action.Text)
		go func() {
			still, err := cache.Load(imageURL)
			if err != nil {
				status.SetText("Reel failed: " + err.Error())
				return
			}
			r := reel.NewRenderer(fonts, cache, rc.FPS)
			enc := reel.NewFFmpegEncoder(rc.BitrateKbps)
			res, err := r.Render(context.Background(), enc, still, blocks, reel.Duration, func(pct int) {
				status.SetText(fmt.Sprintf("Rendering reel... %d%%", pct))
			})
			if err != nil {
				status.SetText("Reel failed: " + err.Error())
				return
			}
			path, err := export.WriteArtifact(filepath.Join(dataDir, export.ExportsDirName), "reel", res)
			if err != nil {
				status.SetText("Reel write failed: " + err.Error())
				return
			}
			status.SetText("Reel exported " + path)
		}()
	}, w)
}

// storyCanvas is the composition surface: the background image with the
// draggable text boxes over it. It feeds raw pointer events into the gesture
// controller and exposes its live bounds to the rasterizer as the layout
// probe.
type storyCanvas struct {
	widget.BaseWidget

	store *editor.Store
	ctrl  *editor.Controller

	pressed      bool
	onEditChange func(id int64)
	lastEditing  int64
}

func newStoryCanvas(st *editor.Store, ctrl *editor.Controller) *storyCanvas {
	sc := &storyCanvas{store: st, ctrl: ctrl}
	sc.ExtendBaseWidget(sc)
	return sc
}

// DisplayBounds reports the on-screen image area, the geometry the still
// rasterizer scales from display space to output space with.
func (sc *storyCanvas) DisplayBounds() (geom.Rect, bool) {
	sz := sc.Size()
	if sz.Width <= 0 || sz.Height <= 0 {
		return geom.Rect{}, false
	}
	return geom.Rect{W: float64(sz.Width), H: float64(sz.Height)}, true
}

func (sc *storyCanvas) hitTest(p geom.Pt) int64 {
	boxes := sc.store.Boxes()
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i]
		if p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height {
			return b.ID
		}
	}
	return 0
}

func (sc *storyCanvas) notifyEditChange() {
	if id := sc.ctrl.EditingID(); id != sc.lastEditing {
		sc.lastEditing = id
		if sc.onEditChange != nil {
			sc.onEditChange(id)
		}
	}
}

// MouseDown begins a gesture over the hit-tested box (0 for background).
func (sc *storyCanvas) MouseDown(ev *desktop.MouseEvent) {
	p := geom.Pt{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	sc.pressed = true
	sc.ctrl.Down(sc.hitTest(p), p)
	sc.Refresh()
}

// MouseUp ends the gesture; the controller classifies taps itself.
func (sc *storyCanvas) MouseUp(ev *desktop.MouseEvent) {
	p := geom.Pt{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	sc.pressed = false
	sc.ctrl.Up(p, time.Now())
	sc.notifyEditChange()
	sc.Refresh()
}

func (sc *storyCanvas) MouseIn(*desktop.MouseEvent) {}
func (sc *storyCanvas) MouseOut()                   {}

// MouseMoved advances an active drag while the button is held.
func (sc *storyCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if !sc.pressed {
		return
	}
	sc.ctrl.Move(geom.Pt{X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
	sc.Refresh()
}

// Scrolled resizes the active box, the desktop stand-in for a two-finger
// pinch. Each tick runs a full synthetic pinch so the clamp bounds apply.
func (sc *storyCanvas) Scrolled(ev *fyne.ScrollEvent) {
	id := sc.store.ActiveID()
	if id == 0 {
		return
	}
	factor := 1.0 + float64(ev.Scrolled.DY)*0.01
	if factor <= 0 {
		return
	}
	base := geom.Pt{X: 0, Y: 0}
	ref := geom.Pt{X: 0, Y: 100}
	sc.ctrl.PinchStart(id, base, ref)
	sc.ctrl.PinchMove(base, geom.Pt{X: 0, Y: 100 * factor})
	sc.ctrl.PinchEnd()
	sc.Refresh()
}

func (sc *storyCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 24, G: 24, B: 28, A: 255})
	return &storyCanvasRenderer{sc: sc, bg: bg}
}

type storyCanvasRenderer struct {
	sc      *storyCanvas
	bg      *canvas.Rectangle
	img     *canvas.Image
	objects []fyne.CanvasObject
}

func (r *storyCanvasRenderer) MinSize() fyne.Size { return fyne.NewSize(360, 640) }

func (r *storyCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	if r.img != nil {
		r.img.Resize(size)
	}
}

func (r *storyCanvasRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.sc)
}

func (r *storyCanvasRenderer) rebuild() {
	objs := []fyne.CanvasObject{r.bg}

	if url := r.sc.store.ImageURL(); url != "" {
		if path, ok := editor.BlobPath(url); ok {
			r.img = canvas.NewImageFromFile(path)
			r.img.FillMode = canvas.ImageFillContain
			r.img.Resize(r.sc.Size())
			objs = append(objs, r.img)
		}
	} else {
		r.img = nil
	}

	active := r.sc.store.ActiveID()
	for _, b := range r.sc.store.Boxes() {
		plate := canvas.NewRectangle(color.NRGBA{R: 255, G: 255, B: 255, A: 178})
		plate.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
		plate.Resize(fyne.NewSize(float32(b.Width), float32(b.Height)))
		if b.ID == active {
			plate.StrokeColor = color.NRGBA{R: 0, G: 122, B: 255, A: 255}
			plate.StrokeWidth = 2
		}
		objs = append(objs, plate)

		txt := canvas.NewText(b.Text, color.NRGBA{R: 16, G: 16, B: 16, A: 255})
		txt.TextSize = float32(b.FontSize)
		txt.Move(fyne.NewPos(float32(b.X)+6, float32(b.Y)+4))
		objs = append(objs, txt)
	}
	r.objects = objs
}

func (r *storyCanvasRenderer) Objects() []fyne.CanvasObject {
	if r.objects == nil {
		r.rebuild()
	}
	return r.objects
}

func (r *storyCanvasRenderer) Destroy() {}
