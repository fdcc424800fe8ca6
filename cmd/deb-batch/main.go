// deb-batch imports every document under a folder, sequentially, and can
// optionally keep watching the folder for new files.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/DAN-MYK/Deb/internal/bank"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/ingest"
	"github.com/DAN-MYK/Deb/internal/pdfdoc"
	"github.com/DAN-MYK/Deb/internal/pipeline"
	"github.com/DAN-MYK/Deb/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dir := flag.String("dir", "", "folder with documents to import")
	watch := flag.Bool("watch", false, "keep watching the folder after the initial batch")
	debounce := flag.Duration("debounce", 2*time.Second, "watcher debounce interval")
	flag.Parse()

	if *dir == "" {
		logger.Error("usage", "cmd", "deb-batch -dir <folder> [-watch]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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

	processor := pipeline.NewProcessor(
		cfg,
		pdfdoc.NewReader(cfg.PDF, cfg.OCR, logger),
		registry,
		repository.NewActRepository(db, logger),
		repository.NewPaymentRepository(db, logger),
		logger,
	)
	batch := ingest.NewBatch(processor, logger)

	callbacks := ingest.Callbacks{
		OnProgress: func(p ingest.Progress) {
			logger.Info("progress",
				"batch_id", p.BatchID, "done", p.Done, "total", p.Total,
				"succeeded", p.Succeeded, "failed", p.Failed, "current", p.Current)
		},
	}

	sum, err := batch.RunDir(ctx, *dir, callbacks)
	if err != nil {
		logger.Error("batch failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("batch done",
		"batch_id", sum.BatchID,
		"succeeded", sum.Succeeded, "failed", sum.Failed,
		"acts", sum.Acts, "payments", sum.Payments, "duplicates", sum.Duplicates)

	if !*watch {
		if sum.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{*dir},
		Debounce: *debounce,
	})
	if err != nil {
		logger.Error("start watcher", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("watching for new documents", "dir", *dir)

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			batch.RunFiles(ctx, []string{path}, callbacks)
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Error("watcher error", "error", err)
			}
		}
	}
}
