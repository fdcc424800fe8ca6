package bank

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/fields"
)

// minBlockLen filters out splitter noise: fragments shorter than this are
// not transaction blocks.
const minBlockLen = 20

var (
	reBlockSplit = regexp.MustCompile(`Документ\s*№`)

	reClient       = regexp.MustCompile(`Клієнт:\s*([^\n]+)`)
	reCounterparty = regexp.MustCompile(`Кореспондент:\s*([^\n]+)`)
	rePurpose      = regexp.MustCompile(`Призначення платежу:\s*([^\n]+)`)

	reCreditedAmount = regexp.MustCompile(`Зараховано:\s*([\d\s  .,]+)`)
	reSumAmount      = regexp.MustCompile(`Сума:\s*([\d\s  .,]+)`)

	// Date labels in priority order. The bare-date fallback comes last.
	dateLabelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Зараховано:\s*(\d{2}[.-]\d{2}[.-]\d{4})`),
		regexp.MustCompile(`Дата валютування:\s*(\d{2}[.-]\d{2}[.-]\d{4})`),
		regexp.MustCompile(`К-т:\s*(\d{2}[.-]\d{2}[.-]\d{4})`),
	}

	creditMarkers = []string{"Зараховано", "К-т"}
	debitMarkers  = []string{"Списано", "Д-т"}
)

// BlockExtractor implements the block-splitting strategy for statements
// whose transactions appear as recurring text blocks anchored on a
// document-number marker.
type BlockExtractor struct {
	logger *slog.Logger
}

func NewBlockExtractor(logger *slog.Logger) *BlockExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlockExtractor{logger: logger}
}

// Extract splits the statement text into transaction blocks and returns a
// record per credit block. Per-block parse failures are logged and
// skipped; the errors are terminal only when no blocks or no credit
// transactions exist at all, so a format-detection false positive is
// distinguishable from an empty statement.
func (e *BlockExtractor) Extract(path, text string) ([]entity.PaymentRecord, error) {
	company := constants.UnknownName
	if m := reClient.FindStringSubmatch(text); m != nil {
		company = strings.TrimSpace(m[1])
	}

	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return nil, common.NewInvalidData(path, "Не знайдено жодного транзакційного блоку")
	}

	var records []entity.PaymentRecord
	credits := 0
	for i, block := range blocks {
		if isDebitBlock(block) {
			continue
		}
		if !isCreditBlock(block) {
			continue
		}
		credits++

		rec, err := e.parseBlock(path, company, block)
		if err != nil {
			e.logger.Warn("skipping unparseable block", "path", path, "block", i, "error", err)
			continue
		}
		records = append(records, rec)
	}

	if credits == 0 {
		return nil, common.NewInvalidData(path, "Не знайдено жодної транзакції 'Зараховано'")
	}
	if len(records) == 0 {
		return nil, common.NewInvalidData(path, "Жоден транзакційний блок не вдалося розібрати")
	}
	return records, nil
}

func (e *BlockExtractor) parseBlock(path, company, block string) (entity.PaymentRecord, error) {
	rec := entity.PaymentRecord{
		Company:      company,
		Counterparty: constants.UnknownName,
		SourcePath:   path,
	}

	if m := reCounterparty.FindStringSubmatch(block); m != nil {
		rec.Counterparty = strings.TrimSpace(m[1])
	}
	if m := rePurpose.FindStringSubmatch(block); m != nil {
		rec.Purpose = strings.TrimSpace(m[1])
	}

	amount, ok := blockAmount(block)
	if !ok {
		return rec, common.NewInvalidData(path, "не знайдено суму транзакції", "amount")
	}
	rec.Amount = amount

	rec.PaymentDate = PaymentDate(block)

	period := fields.PeriodFromText(rec.Purpose)
	if period == "" && rec.PaymentDate != "" {
		period, _ = fields.PeriodFromDate(rec.PaymentDate)
	}
	if period == "" {
		return rec, common.NewInvalidData(path, "не вдалося визначити період транзакції", "period")
	}
	rec.Period = period

	return rec, nil
}

// splitBlocks partitions the text on the document-number marker. The
// leading segment before the first marker is statement header, not a
// transaction, and is dropped along with noise fragments.
func splitBlocks(text string) []string {
	parts := reBlockSplit.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	var blocks []string
	for _, part := range parts[1:] {
		if utf8.RuneCountInString(strings.TrimSpace(part)) < minBlockLen {
			continue
		}
		blocks = append(blocks, part)
	}
	return blocks
}

// Debit markers take precedence: a block mentioning both sides of the
// ledger is a debit block.
func isDebitBlock(block string) bool {
	return containsAny(block, debitMarkers)
}

func isCreditBlock(block string) bool {
	return containsAny(block, creditMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func blockAmount(block string) (float64, bool) {
	for _, re := range []*regexp.Regexp{reCreditedAmount, reSumAmount} {
		for _, m := range re.FindAllStringSubmatch(block, -1) {
			if v, err := fields.ParseAmount(m[1]); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// PaymentDate locates the value date of a transaction block using the
// labelled patterns first and any valid bare date as a last resort.
func PaymentDate(block string) string {
	for _, re := range dateLabelPatterns {
		if m := re.FindStringSubmatch(block); m != nil {
			if iso, err := fields.ParseDate(m[1]); err == nil {
				return iso
			}
		}
	}
	return fields.FindAnyDate(block)
}
