package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
)

// ActSummary is one row of the per-company, per-period act aggregation.
type ActSummary struct {
	Company string  `json:"company"`
	Period  string  `json:"period"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// ActRepository stores extracted act records.
type ActRepository interface {
	Create(ctx context.Context, rec *entity.ActRecord, meta FileMeta) (int64, error)
	ExistsBySource(ctx context.Context, meta FileMeta) (bool, error)
	ListByPeriod(ctx context.Context, period string) ([]entity.ActRecord, error)
	Summary(ctx context.Context) ([]ActSummary, error)
}

type actRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewActRepository(db *sql.DB, logger *slog.Logger) ActRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &actRepo{db: db, logger: logger}
}

func (r *actRepo) Create(ctx context.Context, rec *entity.ActRecord, meta FileMeta) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO acts (company, counterparty, period, amount,
			energy_volume, cost_without_vat, price_without_vat,
			act_number, act_date, contract_number,
			pdf_path, file_hash, file_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Executor, rec.Customer, rec.Period, rec.Amount,
		rec.EnergyVolume, rec.CostWithoutVAT, rec.PriceWithoutVAT,
		nullable(rec.ActNumber), nullable(rec.ActDate), nullable(rec.ContractNumber),
		rec.SourcePath, nullable(meta.Hash), meta.Size)
	if err != nil {
		r.logger.Error("failed to insert act", "path", rec.SourcePath, "error", err)
		return 0, common.WrapError(common.ErrDatabase, err.Error())
	}
	return res.LastInsertId()
}

// ExistsBySource reports whether a record from the same source file is
// already stored, matching by content hash first and path as fallback.
func (r *actRepo) ExistsBySource(ctx context.Context, meta FileMeta) (bool, error) {
	return existsBySource(ctx, r.db, "acts", meta)
}

func (r *actRepo) ListByPeriod(ctx context.Context, period string) ([]entity.ActRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT company, counterparty, period, amount,
			energy_volume, cost_without_vat, price_without_vat,
			COALESCE(act_number, ''), COALESCE(act_date, ''), COALESCE(contract_number, ''),
			pdf_path
		FROM acts WHERE period = ? ORDER BY company`, period)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.ActRecord
	for rows.Next() {
		var rec entity.ActRecord
		if err := rows.Scan(&rec.Executor, &rec.Customer, &rec.Period, &rec.Amount,
			&rec.EnergyVolume, &rec.CostWithoutVAT, &rec.PriceWithoutVAT,
			&rec.ActNumber, &rec.ActDate, &rec.ContractNumber,
			&rec.SourcePath); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *actRepo) Summary(ctx context.Context) ([]ActSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT company, period, SUM(amount), COUNT(*)
		FROM acts GROUP BY company, period ORDER BY company, period`)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []ActSummary
	for rows.Next() {
		var s ActSummary
		if err := rows.Scan(&s.Company, &s.Period, &s.Total, &s.Count); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func existsBySource(ctx context.Context, db *sql.DB, table string, meta FileMeta) (bool, error) {
	var n int
	var err error
	if meta.Hash != "" {
		err = db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE file_hash = ?", meta.Hash).Scan(&n)
	} else {
		err = db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE pdf_path = ?", meta.Path).Scan(&n)
	}
	if err != nil {
		return false, common.WrapError(common.ErrDatabase, err.Error())
	}
	return n > 0, nil
}

// nullable maps an empty string to NULL so optional text columns stay
// queryable with IS NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
