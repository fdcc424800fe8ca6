// Package export renders the stored aggregates into a spreadsheet report:
// act totals, payment totals and the resulting per-company debt.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/DAN-MYK/Deb/internal/repository"
)

// DebtRow is the reconciliation of acts against payments for one company
// and period. Debt is what was billed but not yet paid.
type DebtRow struct {
	Company  string  `json:"company"`
	Period   string  `json:"period"`
	Billed   float64 `json:"billed"`
	Paid     float64 `json:"paid"`
	Debt     float64 `json:"debt"`
}

// Report builds spreadsheet reports from the repositories.
type Report struct {
	acts     repository.ActRepository
	payments repository.PaymentRepository
	logger   *slog.Logger
}

func NewReport(acts repository.ActRepository, payments repository.PaymentRepository, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.Default()
	}
	return &Report{acts: acts, payments: payments, logger: logger}
}

// Debts reconciles stored act totals against payment totals.
func (r *Report) Debts(ctx context.Context) ([]DebtRow, error) {
	actSums, err := r.acts.Summary(ctx)
	if err != nil {
		return nil, err
	}
	paySums, err := r.payments.Summary(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ company, period string }
	rows := make(map[key]*DebtRow)
	for _, s := range actSums {
		rows[key{s.Company, s.Period}] = &DebtRow{Company: s.Company, Period: s.Period, Billed: s.Total}
	}
	for _, s := range paySums {
		k := key{s.Company, s.Period}
		if row, ok := rows[k]; ok {
			row.Paid = s.Total
		} else {
			rows[k] = &DebtRow{Company: s.Company, Period: s.Period, Paid: s.Total}
		}
	}

	out := make([]DebtRow, 0, len(rows))
	for _, row := range rows {
		row.Debt = row.Billed - row.Paid
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Company != out[j].Company {
			return out[i].Company < out[j].Company
		}
		return out[i].Period < out[j].Period
	})
	return out, nil
}

// WriteXLSX writes the three report sheets to path.
func (r *Report) WriteXLSX(ctx context.Context, path string) error {
	actSums, err := r.acts.Summary(ctx)
	if err != nil {
		return err
	}
	paySums, err := r.payments.Summary(ctx)
	if err != nil {
		return err
	}
	debts, err := r.Debts(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const actsSheet = "Акти"
	if err := f.SetSheetName(f.GetSheetName(0), actsSheet); err != nil {
		return err
	}
	if err := writeSheet(f, actsSheet, []string{"Компанія", "Період", "Сума", "Кількість"}, len(actSums), func(i int) []interface{} {
		s := actSums[i]
		return []interface{}{s.Company, s.Period, s.Total, s.Count}
	}); err != nil {
		return err
	}

	const paySheet = "Оплати"
	if _, err := f.NewSheet(paySheet); err != nil {
		return err
	}
	if err := writeSheet(f, paySheet, []string{"Компанія", "Період", "Сума", "Кількість"}, len(paySums), func(i int) []interface{} {
		s := paySums[i]
		return []interface{}{s.Company, s.Period, s.Total, s.Count}
	}); err != nil {
		return err
	}

	const debtSheet = "Заборгованість"
	if _, err := f.NewSheet(debtSheet); err != nil {
		return err
	}
	if err := writeSheet(f, debtSheet, []string{"Компанія", "Період", "Нараховано", "Сплачено", "Борг"}, len(debts), func(i int) []interface{} {
		d := debts[i]
		return []interface{}{d.Company, d.Period, d.Billed, d.Paid, d.Debt}
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	r.logger.Info("report written", "path", path,
		"act_rows", len(actSums), "payment_rows", len(paySums), "debt_rows", len(debts))
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, n int, row func(i int) []interface{}) error {
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := row(i)
		if err := f.SetSheetRow(sheet, cellRef, &vals); err != nil {
			return err
		}
	}
	return nil
}
