package pdfdoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ocrText rasterizes the PDF with pdftoppm and runs tesseract over each
// rendered page. Pages that fail OCR are skipped rather than failing the
// whole document.
func (r *Reader) ocrText(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "deb-pp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.ocrCfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.ocrCfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.ocrCfg.MaxPages > 0 && len(matches) > r.ocrCfg.MaxPages {
		matches = matches[:r.ocrCfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := r.tesseractOCR(ctx, img)
		if err != nil {
			r.logger.Warn("ocr page failed", "image", img, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("ocr produced no text")
	}
	return b.String(), nil
}

func (r *Reader) tesseractOCR(ctx context.Context, imgPath string) (string, error) {
	args := []string{imgPath, "stdout", "-l", r.ocrCfg.Language}
	if r.ocrCfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.ocrCfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.ocrCfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
