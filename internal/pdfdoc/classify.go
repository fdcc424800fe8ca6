package pdfdoc

import (
	"strings"
	"unicode/utf8"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
)

// Classifier decides whether a document's text reads like a bank statement
// or a service-delivery act.
type Classifier struct {
	bankKeywords []string
	actKeywords  []string
	minTextLen   int
}

func NewClassifier(cfg common.PDFConfig) *Classifier {
	return &Classifier{
		bankKeywords: cfg.BankKeywords,
		actKeywords:  cfg.ActKeywords,
		minTextLen:   cfg.MinTextLen,
	}
}

// Classify scores the text against both keyword sets and returns the type
// with the higher occurrence count. A tie, including zero matches on both
// sides, yields DocTypeUnknown. Text shorter than the minimum is rejected
// outright since no downstream extractor could work with it.
func (c *Classifier) Classify(path, text string) (constants.DocType, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < c.minTextLen {
		return constants.DocTypeUnknown, common.NewUnsupportedFormat(path, "документ не містить достатньо тексту")
	}

	lower := strings.ToLower(text)
	bankScore := keywordScore(lower, c.bankKeywords)
	actScore := keywordScore(lower, c.actKeywords)

	switch {
	case bankScore > actScore:
		return constants.DocTypeBankStatement, nil
	case actScore > bankScore:
		return constants.DocTypeAct, nil
	default:
		return constants.DocTypeUnknown, nil
	}
}

func keywordScore(lowerText string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += strings.Count(lowerText, strings.ToLower(kw))
	}
	return score
}
