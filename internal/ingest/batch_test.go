package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAN-MYK/Deb/internal/pipeline"
)

// fakeProcessor records the paths it saw and fails on request.
type fakeProcessor struct {
	seen    []string
	failOn  map[string]bool
	results map[string]*pipeline.Result
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string) (*pipeline.Result, error) {
	f.seen = append(f.seen, path)
	if f.failOn[filepath.Base(path)] {
		return nil, errors.New("boom")
	}
	if r, ok := f.results[filepath.Base(path)]; ok {
		return r, nil
	}
	return &pipeline.Result{Path: path, Acts: 1}, nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestRunDirProcessesSequentially(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.pdf", "a.pdf", "notes.txt", "c.xlsx")

	fp := &fakeProcessor{}
	b := NewBatch(fp, nil)
	sum, err := b.RunDir(context.Background(), dir, Callbacks{})
	require.NoError(t, err)

	// stable order, unsupported extensions filtered out
	require.Len(t, fp.seen, 3)
	assert.Equal(t, "a.pdf", filepath.Base(fp.seen[0]))
	assert.Equal(t, "b.pdf", filepath.Base(fp.seen[1]))
	assert.Equal(t, "c.xlsx", filepath.Base(fp.seen[2]))

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Succeeded)
	assert.Equal(t, 3, sum.Acts)
}

func TestRunDirCountsFailuresWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "c.pdf")

	fp := &fakeProcessor{failOn: map[string]bool{"b.pdf": true}}
	b := NewBatch(fp, nil)

	var failedPaths []string
	var progress []Progress
	sum, err := b.RunDir(context.Background(), dir, Callbacks{
		OnProgress: func(p Progress) { progress = append(progress, p) },
		OnFileErr:  func(path string, err error) { failedPaths = append(failedPaths, path) },
	})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, failedPaths, 1)
	assert.Equal(t, "b.pdf", filepath.Base(failedPaths[0]))

	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[2].Done)
	assert.Equal(t, progress[0].BatchID, progress[2].BatchID)
}

func TestRunFilesDuplicateCounting(t *testing.T) {
	fp := &fakeProcessor{results: map[string]*pipeline.Result{
		"dup.pdf": {Path: "dup.pdf", Duplicate: true},
	}}
	b := NewBatch(fp, nil)
	sum := b.RunFiles(context.Background(), []string{"dup.pdf"}, Callbacks{})
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Zero(t, sum.Acts)
}

func TestRunFilesStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fp := &fakeProcessor{}
	b := NewBatch(fp, nil)
	sum := b.RunFiles(ctx, []string{"a.pdf", "b.pdf"}, Callbacks{})
	assert.Empty(t, fp.seen)
	assert.Zero(t, sum.Succeeded)
}
