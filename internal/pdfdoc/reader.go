// Package pdfdoc reads text and tables out of PDF documents. It prefers the
// embedded text layer and falls back to rasterize-and-OCR for scanned files.
package pdfdoc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/DAN-MYK/Deb/internal/common"
)

// Reader extracts text and tables from PDF files.
type Reader struct {
	pdfCfg common.PDFConfig
	ocrCfg common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewReader(pdfCfg common.PDFConfig, ocrCfg common.OCRConfig, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if pdfCfg.MaxPages <= 0 {
		pdfCfg.MaxPages = 50
	}
	if pdfCfg.MinTextLen <= 0 {
		pdfCfg.MinTextLen = 20
	}
	if ocrCfg.DPI <= 0 {
		ocrCfg.DPI = 300
	}
	if ocrCfg.Language == "" {
		ocrCfg.Language = "ukr+eng"
	}
	if ocrCfg.Pdftoppm == "" {
		ocrCfg.Pdftoppm = "pdftoppm"
	}
	if ocrCfg.Tesseract == "" {
		ocrCfg.Tesseract = "tesseract"
	}
	return &Reader{pdfCfg: pdfCfg, ocrCfg: ocrCfg, runner: execRunner{}, logger: logger}
}

// ExtractText returns the document text, trying the embedded text layer
// first and falling back to OCR when the layer is missing or too sparse.
// When neither path yields usable text the document is unreadable and
// the caller gets a parse failure, never an empty string.
// maxPages <= 0 means the configured default.
func (r *Reader) ExtractText(ctx context.Context, path string, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = r.pdfCfg.MaxPages
	}

	text, err := r.textLayer(path, maxPages)
	if err != nil {
		r.logger.Warn("text layer extraction failed", "path", path, "error", err)
	}
	if len(strings.TrimSpace(text)) >= r.pdfCfg.MinTextLen {
		return text, nil
	}

	if r.ocrCfg.Enabled {
		r.logger.Info("falling back to ocr", "path", path, "text_layer_len", len(text))
		ocrText, ocrErr := r.ocrText(ctx, path)
		switch {
		case ocrErr != nil:
			r.logger.Warn("ocr fallback failed", "path", path, "error", ocrErr)
			if err == nil {
				err = ocrErr
			}
		case len(strings.TrimSpace(ocrText)) > len(strings.TrimSpace(text)):
			text = ocrText
		}
	}

	if len(strings.TrimSpace(text)) < r.pdfCfg.MinTextLen {
		return "", common.NewParseFailure(path, "не вдалося прочитати PDF", err)
	}
	return text, nil
}

// Validate is a cheap pre-check before committing a document to an
// extractor: it confirms the file has pages and a usable amount of
// extractable text. A false result carries a human-readable reason.
func (r *Reader) Validate(path string) (bool, string) {
	text, err := r.textLayer(path, r.pdfCfg.MaxPages)
	if err != nil {
		return false, fmt.Sprintf("не вдалося відкрити документ: %v", err)
	}
	if len(strings.TrimSpace(text)) < r.pdfCfg.MinTextLen {
		return false, "документ не містить достатньо тексту"
	}
	return true, ""
}

// textLayer pulls the embedded text layer. The library panics on some
// malformed files, so the call is fenced with recover.
func (r *Reader) textLayer(path string, maxPages int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	n := doc.NumPage()
	if n > maxPages {
		n = maxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			r.logger.Debug("skipping unreadable page", "path", path, "page", i, "error", err)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}
