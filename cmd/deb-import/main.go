// deb-import ingests a single document (PDF act, PDF statement or
// spreadsheet export) into the local database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/DAN-MYK/Deb/internal/bank"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/pdfdoc"
	"github.com/DAN-MYK/Deb/internal/pipeline"
	"github.com/DAN-MYK/Deb/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	file := flag.String("file", "", "path to the document to import")
	timeout := flag.Duration("timeout", 5*time.Minute, "processing timeout")
	flag.Parse()

	if *file == "" {
		logger.Error("usage", "cmd", "deb-import -file <document>")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := repository.Open(cfg.DBPath(), logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	registry, err := bank.NewRegistry(cfg.Bank.RegistryPath)
	if err != nil {
		logger.Error("load bank formats", "error", err)
		os.Exit(1)
	}

	p := pipeline.NewProcessor(
		cfg,
		pdfdoc.NewReader(cfg.PDF, cfg.OCR, logger),
		registry,
		repository.NewActRepository(db, logger),
		repository.NewPaymentRepository(db, logger),
		logger,
	)

	start := time.Now()
	res, err := p.ProcessFile(ctx, *file)
	if err != nil {
		logger.Error("import failed",
			"path", *file, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("import OK",
		"path", res.Path,
		"doc_type", string(res.DocType),
		"acts", res.Acts,
		"payments", res.Payments,
		"duplicate", res.Duplicate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
