package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAN-MYK/Deb/internal/entity"
)

func openTestDB(t *testing.T) (*actRepoFixture, func()) {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	fx := &actRepoFixture{
		dir:      dir,
		acts:     NewActRepository(db, nil),
		payments: NewPaymentRepository(db, nil),
	}
	return fx, func() { _ = db.Close() }
}

type actRepoFixture struct {
	dir      string
	acts     ActRepository
	payments PaymentRepository
}

func sampleAct(path string) *entity.ActRecord {
	volume := 12500.0
	cost := 100000.0
	return &entity.ActRecord{
		ActNumber:  "17",
		ActDate:    "2024-11-30",
		Executor:   "ПЕРВОМАЙСЬК",
		Customer:   "ГАРАНТОВАНИЙ ПОКУПЕЦЬ",
		Amount:     120000.0,
		Period:     "11-2024",
		SourcePath: path,

		EnergyVolume:   &volume,
		CostWithoutVAT: &cost,
	}
}

func TestActCreateAndList(t *testing.T) {
	fx, done := openTestDB(t)
	defer done()
	ctx := context.Background()

	_, err := fx.acts.Create(ctx, sampleAct("a.pdf"), FileMeta{Path: "a.pdf", Hash: "h1", Size: 10})
	require.NoError(t, err)

	recs, err := fx.acts.ListByPeriod(ctx, "11-2024")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ПЕРВОМАЙСЬК", recs[0].Executor)
	require.NotNil(t, recs[0].EnergyVolume)
	assert.InDelta(t, 12500.0, *recs[0].EnergyVolume, 1e-9)
	assert.Nil(t, recs[0].PriceWithoutVAT)

	recs, err = fx.acts.ListByPeriod(ctx, "12-2024")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestActExistsBySource(t *testing.T) {
	fx, done := openTestDB(t)
	defer done()
	ctx := context.Background()

	meta := FileMeta{Path: "a.pdf", Hash: "h1", Size: 10}
	_, err := fx.acts.Create(ctx, sampleAct("a.pdf"), meta)
	require.NoError(t, err)

	exists, err := fx.acts.ExistsBySource(ctx, meta)
	require.NoError(t, err)
	assert.True(t, exists)

	// same content under a new name still counts as a duplicate
	exists, err = fx.acts.ExistsBySource(ctx, FileMeta{Path: "b.pdf", Hash: "h1"})
	require.NoError(t, err)
	assert.True(t, exists)

	// hashless lookup falls back to the path
	exists, err = fx.acts.ExistsBySource(ctx, FileMeta{Path: "a.pdf"})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = fx.acts.ExistsBySource(ctx, FileMeta{Path: "c.pdf", Hash: "h2"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestActSummary(t *testing.T) {
	fx, done := openTestDB(t)
	defer done()
	ctx := context.Background()

	for _, path := range []string{"a.pdf", "b.pdf"} {
		_, err := fx.acts.Create(ctx, sampleAct(path), FileMeta{Path: path})
		require.NoError(t, err)
	}

	sums, err := fx.acts.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "ПЕРВОМАЙСЬК", sums[0].Company)
	assert.Equal(t, "11-2024", sums[0].Period)
	assert.InDelta(t, 240000.0, sums[0].Total, 1e-9)
	assert.Equal(t, 2, sums[0].Count)
}

func TestPaymentCreateBatchAndSummary(t *testing.T) {
	fx, done := openTestDB(t)
	defer done()
	ctx := context.Background()

	recs := []entity.PaymentRecord{
		{Company: "ТЕРСЛАВ", Counterparty: "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", Amount: 100, Period: "10-2024", PaymentDate: "2024-11-05", SourcePath: "s.pdf"},
		{Company: "ТЕРСЛАВ", Counterparty: "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", Amount: 200, Period: "10-2024", SourcePath: "s.pdf"},
	}
	n, err := fx.payments.CreateBatch(ctx, recs, FileMeta{Path: "s.pdf", Hash: "ph1", Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := fx.payments.ListByPeriod(ctx, "10-2024")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	sums, err := fx.payments.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.InDelta(t, 300.0, sums[0].Total, 1e-9)

	exists, err := fx.payments.ExistsBySource(ctx, FileMeta{Hash: "ph1"})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("вміст документа"), 0o644))

	meta, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, meta.Path)
	assert.Len(t, meta.Hash, 32)
	assert.Equal(t, int64(len("вміст документа")), meta.Size)

	same, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, meta.Hash, same.Hash)
}
