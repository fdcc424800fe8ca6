package bank

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/fields"
)

// RowExtractor implements the column-driven strategy for spreadsheet
// statement exports. The bank-specific column layout comes from a
// FormatConfig; adding a bank means adding configuration, not code.
type RowExtractor struct {
	registry *Registry
	logger   *slog.Logger
}

func NewRowExtractor(registry *Registry, logger *slog.Logger) *RowExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowExtractor{registry: registry, logger: logger}
}

// ExtractFile loads the spreadsheet at path, detects its bank format and
// extracts payment records.
func (e *RowExtractor) ExtractFile(path string) ([]entity.PaymentRecord, error) {
	rows, err := LoadSheet(path)
	if err != nil {
		return nil, common.NewParseFailure(path, "не вдалося прочитати таблицю виписки", err)
	}
	cfg, ok := e.registry.Detect(rows)
	if !ok {
		return nil, common.NewUnsupportedFormat(path, "невідомий формат банківської виписки")
	}
	return e.Extract(path, rows, cfg)
}

// Extract walks the data rows below the configured header. Rows failing
// the direction check, carrying a non-positive amount, an unresolvable
// period, or a counterparty other than the regulated buyer are counted
// and skipped, never failed; only an empty aggregate is an error.
func (e *RowExtractor) Extract(path string, rows [][]string, cfg FormatConfig) ([]entity.PaymentRecord, error) {
	if cfg.HeaderRow >= len(rows) {
		return nil, common.NewInvalidData(path, "виписка не містить рядка заголовків")
	}
	idx := indexColumns(rows[cfg.HeaderRow], cfg)
	if idx == nil {
		return nil, common.NewInvalidData(path, fmt.Sprintf("заголовки не відповідають формату %q", cfg.Name))
	}

	company := constants.UnknownName
	if cfg.CompanyFromHeader {
		company = headerCompany(rows)
	}

	var records []entity.PaymentRecord
	skipped := 0
	for _, row := range rows[cfg.HeaderRow+1:] {
		rec, ok := e.parseRow(path, row, idx, cfg, company)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, common.NewInvalidData(path, "Не знайдено жодної транзакції 'Зараховано'")
	}
	e.logger.Info("statement rows extracted",
		"path", path, "format", cfg.Name, "kept", len(records), "skipped", skipped)
	return records, nil
}

func (e *RowExtractor) parseRow(path string, row []string, idx map[string]int, cfg FormatConfig, company string) (entity.PaymentRecord, bool) {
	var rec entity.PaymentRecord

	if i, ok := idx["direction"]; ok && cfg.CreditValue != "" {
		if cell(row, i) != cfg.CreditValue {
			return rec, false
		}
	}

	amount, err := fields.ParseAmount(cell(row, idx["amount"]))
	if err != nil {
		return rec, false
	}

	counterparty := strings.TrimSpace(cell(row, idx["counterparty"]))
	if !strings.EqualFold(counterparty, constants.GuaranteedBuyer) {
		return rec, false
	}

	var paymentDate string
	if i, ok := idx["date"]; ok {
		paymentDate = fields.FindAnyDate(cell(row, i))
	}

	var purpose string
	if i, ok := idx["purpose"]; ok {
		purpose = strings.TrimSpace(cell(row, i))
	}

	period := fields.PeriodFromText(purpose)
	if period == "" && paymentDate != "" {
		period, _ = fields.PeriodFromDate(paymentDate)
	}
	if period == "" {
		return rec, false
	}

	if i, ok := idx["company"]; ok {
		if v := strings.TrimSpace(cell(row, i)); v != "" {
			company = v
		}
	}

	rec = entity.PaymentRecord{
		Company:      company,
		Counterparty: counterparty,
		Amount:       amount,
		Period:       period,
		PaymentDate:  paymentDate,
		Purpose:      purpose,
		SourcePath:   path,
	}
	return rec, true
}

// headerCompany reads the account holder from the statement title cell,
// stripping the trailing bank requisites.
func headerCompany(rows [][]string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return constants.UnknownName
	}
	title := strings.TrimSpace(rows[0][0])
	if i := strings.Index(title, ", МФО"); i >= 0 {
		title = title[:i]
	}
	if title == "" {
		return constants.UnknownName
	}
	return title
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// LoadSheet reads the first sheet of an xlsx/xlsm or legacy xls file into
// rows of strings.
func LoadSheet(path string) ([][]string, error) {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "xls":
		return loadXLS(path)
	case "xlsx", "xlsm":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet extension: %q", filepath.Ext(path))
	}
}

func loadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func loadXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows := make([][]string, 0, sheet.MaxRow+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
