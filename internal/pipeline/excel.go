package pipeline

import (
	"context"
	"strings"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/bank"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/fields"
	"github.com/DAN-MYK/Deb/internal/repository"
)

// Accounting-export column headers. These are the fixed names the 1C
// configurations in use emit; a sheet carrying them is an accounting
// export rather than a bank statement.
const (
	colKind         = "Вид документа"
	colCompany      = "Організація"
	colCounterparty = "Контрагент"
	colAmountHdr    = "Сума"
	colPeriodHdr    = "Період"
	colDateHdr      = "Дата"
	colNumberHdr    = "Номер"
	colPurposeHdr   = "Призначення платежу"
)

const (
	kindAct     = "Акт"
	kindPayment = "Оплата"
)

// processSpreadsheet routes a workbook to the right importer: a bank
// statement export when a registry format matches the headers, otherwise
// an accounting export of acts, payments, or both.
func (p *Processor) processSpreadsheet(ctx context.Context, path string) (*Result, error) {
	rows, err := bank.LoadSheet(path)
	if err != nil {
		return nil, common.NewParseFailure(path, "не вдалося прочитати таблицю", err)
	}
	meta := p.fileMeta(path)

	if cfg, ok := p.registry.Detect(rows); ok {
		dup, err := p.payRepo.ExistsBySource(ctx, meta)
		if err != nil {
			return nil, err
		}
		if dup {
			p.logger.Info("skipping duplicate statement", "path", path)
			return &Result{Path: path, DocType: constants.DocTypeBankStatement, Duplicate: true}, nil
		}
		records, err := p.rows.Extract(path, rows, cfg)
		if err != nil {
			return nil, err
		}
		return p.storePayments(ctx, path, records, meta)
	}

	headerIdx, header := findHeaderRow(rows)
	if header == nil {
		return nil, common.NewUnsupportedFormat(path, "невідомий формат таблиці")
	}
	return p.importAccountingExport(ctx, path, rows, headerIdx, header, meta)
}

// importAccountingExport walks the data rows of a 1C export. A workbook
// may mix acts and payments when it carries a document-kind column.
func (p *Processor) importAccountingExport(ctx context.Context, path string, rows [][]string, headerIdx int, header map[string]int, meta repository.FileMeta) (*Result, error) {
	actDup, err := p.actRepo.ExistsBySource(ctx, meta)
	if err != nil {
		return nil, err
	}
	payDup, err := p.payRepo.ExistsBySource(ctx, meta)
	if err != nil {
		return nil, err
	}
	if actDup || payDup {
		p.logger.Info("skipping duplicate accounting export", "path", path)
		return &Result{Path: path, DocType: constants.DocTypeUnknown, Duplicate: true}, nil
	}

	res := &Result{Path: path, DocType: constants.DocTypeUnknown}
	var payments []entity.PaymentRecord
	skipped := 0
	for _, row := range rows[headerIdx+1:] {
		switch rowKind(row, header) {
		case kindAct:
			rec, ok := p.exportActRow(path, row, header)
			if !ok {
				skipped++
				continue
			}
			if _, err := p.actRepo.Create(ctx, rec, meta); err != nil {
				return nil, err
			}
			res.Acts++
		case kindPayment:
			rec, ok := p.exportPaymentRow(path, row, header)
			if !ok {
				skipped++
				continue
			}
			payments = append(payments, *rec)
		default:
			skipped++
		}
	}

	if len(payments) > 0 {
		n, err := p.payRepo.CreateBatch(ctx, payments, meta)
		if err != nil {
			return nil, err
		}
		res.Payments = n
	}
	if res.Acts == 0 && res.Payments == 0 {
		return nil, common.NewInvalidData(path, "таблиця не містить жодного документа для імпорту")
	}
	p.logger.Info("accounting export imported",
		"path", path, "acts", res.Acts, "payments", res.Payments, "skipped", skipped)
	return res, nil
}

func (p *Processor) exportActRow(path string, row []string, header map[string]int) (*entity.ActRecord, bool) {
	amount, err := fields.ParseAmount(headerCell(row, header, colAmountHdr))
	if err != nil {
		return nil, false
	}
	period := periodFromRow(row, header)
	if period == "" {
		return nil, false
	}
	rec := &entity.ActRecord{
		ActNumber:  headerCell(row, header, colNumberHdr),
		ActDate:    fields.FindAnyDate(headerCell(row, header, colDateHdr)),
		Executor:   headerCell(row, header, colCompany),
		Customer:   headerCell(row, header, colCounterparty),
		Amount:     amount,
		Period:     period,
		SourcePath: path,
	}
	p.normalizeAct(rec)
	if err := p.validateAct(path, rec); err != nil {
		return nil, false
	}
	return rec, true
}

func (p *Processor) exportPaymentRow(path string, row []string, header map[string]int) (*entity.PaymentRecord, bool) {
	amount, err := fields.ParseAmount(headerCell(row, header, colAmountHdr))
	if err != nil {
		return nil, false
	}
	// A payment belongs to the period named in its purpose, not the month
	// the money arrived.
	period := fields.PeriodFromText(headerCell(row, header, colPurposeHdr))
	if period == "" {
		period = periodFromRow(row, header)
	}
	if period == "" {
		return nil, false
	}
	rec := &entity.PaymentRecord{
		Company:      headerCell(row, header, colCompany),
		Counterparty: headerCell(row, header, colCounterparty),
		Amount:       amount,
		Period:       period,
		PaymentDate:  fields.FindAnyDate(headerCell(row, header, colDateHdr)),
		Purpose:      headerCell(row, header, colPurposeHdr),
		SourcePath:   path,
	}
	p.normalizePayment(rec)
	return rec, true
}

// rowKind reads the document-kind cell; a workbook without the kind
// column is all acts or all payments depending on which columns exist.
func rowKind(row []string, header map[string]int) string {
	if i, ok := header[colKind]; ok {
		return strings.TrimSpace(cellAt(row, i))
	}
	if _, ok := header[colPurposeHdr]; ok {
		return kindPayment
	}
	return kindAct
}

func periodFromRow(row []string, header map[string]int) string {
	if v := headerCell(row, header, colPeriodHdr); v != "" {
		if p, err := fields.NormalizePeriod(v); err == nil {
			return p
		}
		if p := fields.PeriodFromText(v); p != "" {
			return p
		}
	}
	if iso := fields.FindAnyDate(headerCell(row, header, colDateHdr)); iso != "" {
		if p, err := fields.PeriodFromDate(iso); err == nil {
			return p
		}
	}
	return ""
}

// findHeaderRow locates the first row carrying the mandatory accounting
// columns and maps header names to positions.
func findHeaderRow(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		idx := make(map[string]int, len(row))
		for j, cell := range row {
			if v := strings.TrimSpace(cell); v != "" {
				idx[v] = j
			}
		}
		_, hasAmount := idx[colAmountHdr]
		_, hasCounterparty := idx[colCounterparty]
		if hasAmount && hasCounterparty {
			return i, idx
		}
	}
	return 0, nil
}

func headerCell(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(row, i))
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
