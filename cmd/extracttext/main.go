// extracttext is a diagnostic tool: it prints the text a PDF yields, the
// detected document type, and the reconstructed table rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/pdfdoc"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	file := flag.String("file", "", "PDF to inspect")
	tables := flag.Bool("tables", false, "print reconstructed table rows instead of text")
	flag.Parse()

	if *file == "" {
		logger.Error("usage", "cmd", "extracttext -file <document.pdf> [-tables]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	reader := pdfdoc.NewReader(cfg.PDF, cfg.OCR, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *tables {
		rows, err := reader.ExtractTables(ctx, *file)
		if err != nil {
			logger.Error("table extraction failed", "path", *file, "error", err)
			os.Exit(1)
		}
		for i, row := range rows {
			fmt.Printf("%4d: %q\n", i, row)
		}
		return
	}

	text, err := reader.ExtractText(ctx, *file, 0)
	if err != nil {
		logger.Error("text extraction failed", "path", *file, "error", err)
		os.Exit(1)
	}

	docType, err := pdfdoc.NewClassifier(cfg.PDF).Classify(*file, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "classification: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "document type: %s\n", docType)
	}
	fmt.Println(text)
}
