/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"sutomemo/internal/domain"
)

// MemoCard is the printable summary of a published post: the composited
// still, the caption, the three memo fields, and a QR code pointing at the
// post so a paper card links back to the live one.
type MemoCard struct {
	Still   []byte // encoded PNG of the composited story
	Caption string
	Memo    domain.Memo
	PostURL string
}

// A5 portrait in points. Units are points throughout for a 1:1 model
// mapping, same as the rest of the PDF surface.
const (
	cardPageW = 420.0
	cardPageH = 595.0
	cardPad   = 28.0
	qrSidePt  = 84.0
)

// WriteMemoCardPDF renders card to a single-page PDF at outPath. The still
// is contain-fit into the upper half; memo fields flow below it in built-in
// Helvetica, which keeps text vector without font embedding.
func WriteMemoCardPDF(outPath string, card MemoCard) error {
	if len(card.Still) == 0 {
		return fmt.Errorf("memo card: still image is required")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(card.Still))
	if err != nil {
		return fmt.Errorf("memo card: decode still: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: cardPageW, Ht: cardPageH},
		OrientationStr: "",
	})
	pdf.SetTitle("SutoMemo Card", false)
	pdf.SetAuthor("SutoMemo", false)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("still", opts, bytes.NewReader(card.Still))

	// Contain-fit the still into the upper half of the card.
	areaW := cardPageW - 2*cardPad
	areaH := cardPageH/2 - cardPad
	scale := areaW / float64(cfg.Width)
	if s := areaH / float64(cfg.Height); s < scale {
		scale = s
	}
	imgW := float64(cfg.Width) * scale
	imgH := float64(cfg.Height) * scale
	imgX := cardPad + (areaW-imgW)/2
	pdf.ImageOptions("still", imgX, cardPad, imgW, imgH, false, opts, 0, "")

	y := cardPad + areaH + 18
	if card.Caption != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(cardPad, y)
		pdf.MultiCell(areaW, 18, card.Caption, "", "L", false)
		y = pdf.GetY() + 8
	}

	y = writeMemoField(pdf, y, areaW, "Why", card.Memo.Why)
	y = writeMemoField(pdf, y, areaW, "What", card.Memo.What)
	writeMemoField(pdf, y, areaW, "Next", card.Memo.Next)

	if card.PostURL != "" {
		qr, err := qrcode.Encode(card.PostURL, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("memo card: qr encode: %w", err)
		}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
		qx := cardPageW - cardPad - qrSidePt
		qy := cardPageH - cardPad - qrSidePt
		pdf.ImageOptions("qr", qx, qy, qrSidePt, qrSidePt, false, opts, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(qx, qy+qrSidePt+2)
		pdf.CellFormat(qrSidePt, 9, "scan to open", "", 0, "C", false, 0, "")
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeMemoField(pdf *gofpdf.Fpdf, y, width float64, label, text string) float64 {
	if text == "" {
		return y
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(cardPad, y)
	pdf.CellFormat(width, 13, label, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetX(cardPad)
	pdf.MultiCell(width, 14, text, "", "L", false)
	return pdf.GetY() + 6
}
