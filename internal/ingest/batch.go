// Package ingest discovers documents on disk and feeds them through the
// processing pipeline, one worker per batch, with incremental progress
// callbacks for the initiating caller.
package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/pipeline"
)

// FileProcessor is the single-document entry point of the pipeline.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// Progress reports the running state of a batch after each file.
type Progress struct {
	BatchID   uuid.UUID
	Total     int
	Done      int
	Succeeded int
	Failed    int
	Current   string
}

// Summary is the final tally of one batch.
type Summary struct {
	BatchID    uuid.UUID
	Total      int
	Succeeded  int
	Failed     int
	Acts       int
	Payments   int
	Duplicates int
}

// Callbacks deliver batch events back to the initiating context. Any of
// them may be nil.
type Callbacks struct {
	OnProgress func(Progress)
	OnFileErr  func(path string, err error)
}

// Batch processes folders of documents sequentially.
type Batch struct {
	processor   FileProcessor
	allowedExts map[string]struct{}
	logger      *slog.Logger
}

func NewBatch(processor FileProcessor, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		processor:   processor,
		allowedExts: constants.AllowedExtensions,
		logger:      logger,
	}
}

// RunDir walks dir recursively, collects importable files in stable order
// and processes them one by one. A per-file failure is counted and
// reported through the callbacks without aborting the rest of the batch.
func (b *Batch) RunDir(ctx context.Context, dir string, cb Callbacks) (Summary, error) {
	files, err := b.discover(dir)
	if err != nil {
		return Summary{}, err
	}
	return b.RunFiles(ctx, files, cb), nil
}

// RunFiles processes an explicit file list sequentially.
func (b *Batch) RunFiles(ctx context.Context, files []string, cb Callbacks) Summary {
	sum := Summary{BatchID: uuid.New(), Total: len(files)}
	b.logger.Info("batch started", "batch_id", sum.BatchID, "files", sum.Total)

	for i, path := range files {
		if ctx.Err() != nil {
			b.logger.Warn("batch interrupted", "batch_id", sum.BatchID, "done", i)
			break
		}

		res, err := b.processor.ProcessFile(ctx, path)
		if err != nil {
			sum.Failed++
			b.logger.Error("file failed", "batch_id", sum.BatchID, "path", path, "error", err)
			if cb.OnFileErr != nil {
				cb.OnFileErr(path, err)
			}
		} else {
			sum.Succeeded++
			sum.Acts += res.Acts
			sum.Payments += res.Payments
			if res.Duplicate {
				sum.Duplicates++
			}
		}

		if cb.OnProgress != nil {
			cb.OnProgress(Progress{
				BatchID:   sum.BatchID,
				Total:     sum.Total,
				Done:      i + 1,
				Succeeded: sum.Succeeded,
				Failed:    sum.Failed,
				Current:   path,
			})
		}
	}

	b.logger.Info("batch finished",
		"batch_id", sum.BatchID,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"acts", sum.Acts,
		"payments", sum.Payments,
		"duplicates", sum.Duplicates,
	)
	return sum
}

func (b *Batch) discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if b.allowedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (b *Batch) allowedFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := b.allowedExts[ext]
	return ok
}
