package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
)

// PaymentSummary is one row of the per-company, per-period payment
// aggregation.
type PaymentSummary struct {
	Company string  `json:"company"`
	Period  string  `json:"period"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// PaymentRepository stores extracted payment records.
type PaymentRepository interface {
	CreateBatch(ctx context.Context, recs []entity.PaymentRecord, meta FileMeta) (int, error)
	ExistsBySource(ctx context.Context, meta FileMeta) (bool, error)
	ListByPeriod(ctx context.Context, period string) ([]entity.PaymentRecord, error)
	Summary(ctx context.Context) ([]PaymentSummary, error)
}

type paymentRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPaymentRepository(db *sql.DB, logger *slog.Logger) PaymentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentRepo{db: db, logger: logger}
}

// CreateBatch inserts all records from one statement in a single
// transaction, so a half-imported statement never persists.
func (r *paymentRepo) CreateBatch(ctx context.Context, recs []entity.PaymentRecord, meta FileMeta) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO payments (company, counterparty, period, amount,
			payment_date, purpose, pdf_path, file_hash, file_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.Company, rec.Counterparty, rec.Period, rec.Amount,
			nullable(rec.PaymentDate), nullable(rec.Purpose),
			rec.SourcePath, nullable(meta.Hash), meta.Size); err != nil {
			r.logger.Error("failed to insert payment", "path", rec.SourcePath, "error", err)
			return 0, common.WrapError(common.ErrDatabase, err.Error())
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, common.WrapError(common.ErrDatabase, err.Error())
	}
	return len(recs), nil
}

func (r *paymentRepo) ExistsBySource(ctx context.Context, meta FileMeta) (bool, error) {
	return existsBySource(ctx, r.db, "payments", meta)
}

func (r *paymentRepo) ListByPeriod(ctx context.Context, period string) ([]entity.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT company, counterparty, period, amount,
			COALESCE(payment_date, ''), COALESCE(purpose, ''), pdf_path
		FROM payments WHERE period = ? ORDER BY company, payment_date`, period)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.PaymentRecord
	for rows.Next() {
		var rec entity.PaymentRecord
		if err := rows.Scan(&rec.Company, &rec.Counterparty, &rec.Period, &rec.Amount,
			&rec.PaymentDate, &rec.Purpose, &rec.SourcePath); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *paymentRepo) Summary(ctx context.Context) ([]PaymentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT company, period, SUM(amount), COUNT(*)
		FROM payments GROUP BY company, period ORDER BY company, period`)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []PaymentSummary
	for rows.Next() {
		var s PaymentSummary
		if err := rows.Scan(&s.Company, &s.Period, &s.Total, &s.Count); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
