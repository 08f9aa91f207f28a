/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package reel

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"sutomemo/internal/domain"
	"sutomemo/internal/geom"
	applog "sutomemo/internal/log"
	"sutomemo/internal/raster"
)

// Frame-loop constants. Text is centered inside a fixed horizontal padding
// and line-guarded against the top/bottom safe margins.
const (
	DefaultFPS = 30

	textHPad       = 80.0
	textLineHeight = 1.25
)

// Progress receives an integer percentage after every composed frame.
type Progress func(percent int)

// Renderer drives the reel frame loop: duration*fps frames, each a cover-fit
// still plus the single active text block, paced by a real per-frame delay.
// The pacing is load-bearing, not cosmetic: encoders sampling a live frame
// stream only see frames that exist long enough to be sampled, so the loop
// must never outrun the frame clock.
type Renderer struct {
	Fonts  raster.Provider
	Images *raster.ImageCache
	FPS    int

	log *slog.Logger

	// sleep is the frame pacer; swapped out in tests.
	sleep func(time.Duration)
}

// NewRenderer builds a renderer at the given frame rate (0 means 30fps).
func NewRenderer(fonts raster.Provider, images *raster.ImageCache, fps int) *Renderer {
	if fonts == nil {
		fonts = raster.BasicProvider{}
	}
	if images == nil {
		images = raster.NewImageCache()
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Renderer{
		Fonts:  fonts,
		Images: images,
		FPS:    fps,
		log:    applog.WithComponent("reel"),
		sleep:  time.Sleep,
	}
}

// Render composes duration seconds of frames over the given still and feeds
// them to enc, reporting progress after each frame. Any encoder error
// rejects the whole render. ctx cancels between frames without changing the
// frame-timing contract.
func (r *Renderer) Render(ctx context.Context, enc Encoder, still image.Image, blocks []domain.TextBlock, duration float64, progress Progress) (domain.RenderResult, error) {
	if still == nil {
		return domain.RenderResult{}, fmt.Errorf("no source frame")
	}
	if duration <= 0 {
		duration = Duration
	}
	if err := enc.Start(ctx, geom.ReelWidth, geom.ReelHeight, r.FPS); err != nil {
		return domain.RenderResult{}, err
	}

	base := r.composeBase(still)
	total := int(duration * float64(r.FPS))
	frameDelay := time.Second / time.Duration(r.FPS)

	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan *image.RGBA, 1)
	g.Go(func() error {
		defer close(frames)
		for i := 0; i < total; i++ {
			if err := gctx.Err(); err != nil {
				return err
			}
			elapsed := float64(i) / float64(r.FPS)
			frame, err := r.composeFrame(base, blocks, elapsed)
			if err != nil {
				return err
			}
			select {
			case frames <- frame:
			case <-gctx.Done():
				return gctx.Err()
			}
			if progress != nil {
				progress((i + 1) * 100 / total)
			}
			r.sleep(frameDelay)
		}
		return nil
	})
	g.Go(func() error {
		for f := range frames {
			if err := enc.WriteFrame(f); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		_, _ = enc.Stop()
		return domain.RenderResult{}, err
	}
	res, err := enc.Stop()
	if err != nil {
		return domain.RenderResult{}, err
	}
	r.log.Info("reel rendered",
		slog.Int("frames", total),
		slog.String("mime", res.MimeType),
		slog.Int("bytes", len(res.Blob)))
	return res, nil
}

// composeBase cover-fits the still onto the fixed output frame once; every
// frame starts from a copy of it. Cover fit fills the whole frame, cropping
// the longer axis, which is deliberately different from the still
// exporter's letterboxing.
func (r *Renderer) composeBase(still image.Image) *image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, geom.ReelWidth, geom.ReelHeight))
	draw.Draw(base, base.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	b := still.Bounds()
	fit := geom.FitCover(
		geom.Size{W: float64(b.Dx()), H: float64(b.Dy())},
		geom.Size{W: geom.ReelWidth, H: geom.ReelHeight},
	)
	dst := image.Rect(
		int(math.Round(fit.X)), int(math.Round(fit.Y)),
		int(math.Round(fit.X+fit.W)), int(math.Round(fit.Y+fit.H)),
	)
	xdraw.ApproxBiLinear.Scale(base, dst, still, b, xdraw.Over, nil)
	return base
}

// composeFrame copies the base frame and draws the block active at elapsed
// seconds, if any.
func (r *Renderer) composeFrame(base *image.RGBA, blocks []domain.TextBlock, elapsed float64) (*image.RGBA, error) {
	frame := image.NewRGBA(base.Bounds())
	copy(frame.Pix, base.Pix)

	block, ok := ActiveBlock(blocks, elapsed)
	if !ok || block.Text == "" {
		return frame, nil
	}
	face, err := r.Fonts.Face(block.FontSize)
	if err != nil {
		return nil, fmt.Errorf("resolve face: %w", err)
	}
	lines := raster.WrapChars(face, block.Text, geom.ReelWidth-2*textHPad)
	lineH := block.FontSize * textLineHeight
	top := (geom.ReelHeight - float64(len(lines))*lineH) / 2
	ascent := float64(face.Metrics().Ascent.Round())

	d := &font.Drawer{Dst: frame, Src: image.NewUniform(color.White), Face: face}
	for i, line := range lines {
		lineTop := top + float64(i)*lineH
		// A line that would leave the safe band is skipped entirely, never
		// clipped or shifted.
		if !geom.InSafeBand(lineTop, lineH) {
			continue
		}
		x := (geom.ReelWidth - raster.LineWidth(face, line)) / 2
		d.Dot = fixed.P(int(math.Round(x)), int(math.Round(lineTop+ascent)))
		d.DrawString(line)
	}
	return frame, nil
}
