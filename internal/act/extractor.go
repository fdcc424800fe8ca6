// Package act extracts structured records from service-delivery acts.
// Regular acts are parsed with role-labelled patterns over the document
// text; the standardized regulated-buyer layout is handled by a dedicated
// table-position extractor.
package act

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/fields"
)

// DocumentSource provides text and tables for a document path.
type DocumentSource interface {
	ExtractText(ctx context.Context, path string, maxPages int) (string, error)
	ExtractTables(ctx context.Context, path string) ([][]string, error)
}

var (
	reActNumber = regexp.MustCompile(`Акт\s*№\s*([^\s,;]+)`)
	reExecutor  = regexp.MustCompile(`Виконавець:\s*([^\n]+)`)
	reCustomer  = regexp.MustCompile(`Замовник:\s*([^\n]+)`)

	// Amount labels in priority order. The first label that yields a
	// parseable value wins.
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Всього з ПДВ[:\s]*([\d\s  .,]+)`),
		regexp.MustCompile(`Сума з ПДВ[:\s]*([\d\s  .,]+)`),
		regexp.MustCompile(`Разом[:\s]*([\d\s  .,]+)`),
	}

	adjustmentMarkers = []string{
		"акт коригування",
		"коригуючий акт",
		"коригування до акта",
	}

	guaranteedBuyerMarkers = []string{"продавець", "гарантований покупець"}
)

// Extractor turns an act document into an ActRecord or a typed failure.
type Extractor struct {
	source DocumentSource
	gb     *GuaranteedBuyer
	logger *slog.Logger
}

func NewExtractor(source DocumentSource, codeCompanies map[string]string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if codeCompanies == nil {
		codeCompanies = constants.DefaultEDRPOUCompanies
	}
	return &Extractor{
		source: source,
		gb:     NewGuaranteedBuyer(source, codeCompanies, logger),
		logger: logger,
	}
}

// Extract parses the act at path. Adjustment acts are rejected with a
// distinct error, and the regulated-buyer layout is delegated to the
// table extractor.
func (e *Extractor) Extract(ctx context.Context, path string) (*entity.ActRecord, error) {
	text, err := e.source.ExtractText(ctx, path, 0)
	if err != nil {
		if _, ok := common.AsExtractionError(err); ok {
			return nil, err
		}
		return nil, common.NewParseFailure(path, "не вдалося прочитати документ", err)
	}

	lower := strings.ToLower(text)
	for _, marker := range adjustmentMarkers {
		if strings.Contains(lower, marker) {
			return nil, common.NewInvalidData(path, "документ є актом коригування і не підтримується цим екстрактором")
		}
	}

	if isGuaranteedBuyerAct(lower) {
		e.logger.Debug("delegating to guaranteed buyer extractor", "path", path)
		return e.gb.Extract(ctx, path, text)
	}

	return e.extractRegular(path, text)
}

func (e *Extractor) extractRegular(path, text string) (*entity.ActRecord, error) {
	rec := &entity.ActRecord{
		Executor:   constants.UnknownName,
		Customer:   constants.UnknownName,
		SourcePath: path,
	}

	if m := reActNumber.FindStringSubmatch(text); m != nil {
		rec.ActNumber = strings.TrimRight(m[1], ".,")
	}
	if m := reExecutor.FindStringSubmatch(text); m != nil {
		rec.Executor = strings.TrimSpace(m[1])
	}
	if m := reCustomer.FindStringSubmatch(text); m != nil {
		rec.Customer = strings.TrimSpace(m[1])
	}
	rec.ContractNumber = fields.ContractNumber(text)
	if rec.ActNumber == "" {
		rec.ActNumber = rec.ContractNumber
	}

	var missing []string

	rec.ActDate = actDate(text)
	if rec.ActDate == "" {
		missing = append(missing, "act_date")
	}

	amount, ok := findAmount(text)
	if !ok {
		missing = append(missing, "amount")
	}
	rec.Amount = amount

	if len(missing) > 0 {
		return nil, common.NewInvalidData(path, "не вдалося знайти обов'язкові поля акта", missing...)
	}

	// The act's billing period is the month of the act date. Free-text
	// period scanning is a payment concern; here it would pick up month
	// fragments from unrelated dates in the body.
	period, err := fields.PeriodFromDate(rec.ActDate)
	if err != nil {
		return nil, common.NewInvalidData(path, "не вдалося визначити період акта", "period")
	}
	rec.Period = period

	return rec, nil
}

// actDate locates the act date, preferring the long worded form found in
// act headers over any bare date in the body.
func actDate(text string) string {
	if iso, err := fields.ParseWordedDate(text); err == nil {
		return iso
	}
	return fields.FindAnyDate(text)
}

func findAmount(text string) (float64, bool) {
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, err := fields.ParseAmount(m[1]); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// isGuaranteedBuyerAct recognizes the standardized regulated-buyer layout
// by its seller/buyer phrasing combined with energy vocabulary.
func isGuaranteedBuyerAct(lowerText string) bool {
	for _, marker := range guaranteedBuyerMarkers {
		if !strings.Contains(lowerText, marker) {
			return false
		}
	}
	return strings.Contains(lowerText, "квт") || strings.Contains(lowerText, "обсяг")
}
