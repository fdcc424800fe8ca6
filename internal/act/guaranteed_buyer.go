package act

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/fields"
)

// Column offsets inside the data row of the standardized regulated-buyer
// table. The layout's stable anchor is a header row whose first eight
// cells are the literal strings "1".."8"; the data row follows it.
const (
	anchorWidth = 8
	colVolume   = 3 // energy volume, kWh
	colCost     = 5 // cost without VAT
	colAmount   = 7 // total with VAT
)

var reFilenameEDRPOU = regexp.MustCompile(`_(\d{8})[_.]`)

// GuaranteedBuyer extracts amount, energy volume and cost from the
// standardized regulated-buyer act, whose authoritative values live in a
// numbered table rather than prose.
type GuaranteedBuyer struct {
	source        DocumentSource
	codeCompanies map[string]string
	logger        *slog.Logger
}

func NewGuaranteedBuyer(source DocumentSource, codeCompanies map[string]string, logger *slog.Logger) *GuaranteedBuyer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuaranteedBuyer{source: source, codeCompanies: codeCompanies, logger: logger}
}

// Extract reads the numbered table and assembles an ActRecord. A missing
// amount is terminal; missing volume or cost leaves the optional fields
// unset.
func (g *GuaranteedBuyer) Extract(ctx context.Context, path, text string) (*entity.ActRecord, error) {
	tables, err := g.source.ExtractTables(ctx, path)
	if err != nil {
		return nil, common.NewParseFailure(path, "не вдалося прочитати таблиці документа", err)
	}

	dataRow := FindAnchorDataRow(tables)
	if dataRow == nil {
		g.logger.Warn("anchor row not found in regulated buyer act", "path", path)
	}

	rec := &entity.ActRecord{
		Executor:   g.companyName(path, text),
		Customer:   constants.GuaranteedBuyer,
		SourcePath: path,
	}

	amount := readColumn(dataRow, colAmount)
	if amount == nil {
		return nil, common.NewInvalidData(path, "не вдалося знайти суму в таблиці акта", "amount")
	}
	rec.Amount = *amount
	rec.EnergyVolume = readColumn(dataRow, colVolume)
	rec.CostWithoutVAT = readColumn(dataRow, colCost)
	if rec.EnergyVolume != nil && rec.CostWithoutVAT != nil && *rec.EnergyVolume != 0 {
		price := *rec.CostWithoutVAT / *rec.EnergyVolume
		rec.PriceWithoutVAT = &price
	}

	period, endDate := g.period(text)
	if period == "" {
		return nil, common.NewInvalidData(path, "не вдалося визначити період акта", "period")
	}
	rec.Period = period
	rec.ActDate = endDate

	if iso, err := fields.ParseWordedDate(text); err == nil {
		rec.ActDate = iso
	}
	if rec.ActDate == "" {
		rec.ActDate = fields.FindAnyDate(text)
	}

	if m := reActNumber.FindStringSubmatch(text); m != nil {
		rec.ActNumber = m[1]
	}
	rec.ContractNumber = fields.ContractNumber(text)

	return rec, nil
}

// period derives the reporting period, preferring the explicit statement
// period line and falling back to dates found in the text.
func (g *GuaranteedBuyer) period(text string) (period, endDate string) {
	if p, end, ok := fields.PeriodRange(text); ok {
		return p, end
	}
	if iso, err := fields.ParseWordedDate(text); err == nil {
		if p, err := fields.PeriodFromDate(iso); err == nil {
			return p, iso
		}
	}
	if iso := fields.FindAnyDate(text); iso != "" {
		if p, err := fields.PeriodFromDate(iso); err == nil {
			return p, iso
		}
	}
	return "", ""
}

// companyName resolves the issuing company from an 8-digit registration
// code in the filename, then the body. A lookup miss degrades to the
// unresolved-company placeholder rather than failing.
func (g *GuaranteedBuyer) companyName(path, text string) string {
	code := ""
	base := filepath.Base(path)
	if m := reFilenameEDRPOU.FindStringSubmatch(base); m != nil {
		code = m[1]
	}
	if code == "" {
		code = fields.FindEDRPOU(base)
	}
	if code == "" {
		code = fields.FindEDRPOU(text)
	}
	if code != "" {
		if name, ok := g.codeCompanies[code]; ok {
			return name
		}
		g.logger.Warn("unknown registration code", "code", code)
	}
	return constants.UnknownName
}

// FindAnchorDataRow scans rows for the numbered header (cells "1".."8")
// and returns the row immediately after it, or nil when no anchor exists.
func FindAnchorDataRow(rows [][]string) []string {
	for i, row := range rows {
		if isAnchorRow(row) && i+1 < len(rows) {
			return rows[i+1]
		}
	}
	return nil
}

func isAnchorRow(row []string) bool {
	if len(row) < anchorWidth {
		return false
	}
	for i := 0; i < anchorWidth; i++ {
		if row[i] != string(rune('1'+i)) {
			return false
		}
	}
	return true
}

// readColumn parses the cell at idx as an amount, returning nil when the
// row is absent, too short, or the cell does not parse.
func readColumn(row []string, idx int) *float64 {
	if row == nil || idx >= len(row) {
		return nil
	}
	v, err := fields.ParseAmount(row[idx])
	if err != nil {
		return nil
	}
	return &v
}
