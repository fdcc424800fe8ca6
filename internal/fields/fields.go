// Package fields contains the low-level field parsers shared by the act and
// bank-statement extractors: monetary amounts, Ukrainian date spellings,
// reporting periods and contract references.
package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmount is the sanity ceiling for any parsed monetary value. Documents
// in this domain never carry single amounts of a billion hryvnias or more,
// so anything above it is a mis-parse (usually a glued column).
const MaxAmount = 1_000_000_000

var ukrMonths = map[string]int{
	"січня": 1, "січень": 1,
	"лютого": 2, "лютий": 2,
	"березня": 3, "березень": 3,
	"квітня": 4, "квітень": 4,
	"травня": 5, "травень": 5,
	"червня": 6, "червень": 6,
	"липня": 7, "липень": 7,
	"серпня": 8, "серпень": 8,
	"вересня": 9, "вересень": 9,
	"жовтня": 10, "жовтень": 10,
	"листопада": 11, "листопад": 11,
	"грудня": 12, "грудень": 12,
}

var (
	reDateDots   = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	reDateDashes = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	reDateISO    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

	reAnyDate = regexp.MustCompile(`\d{2}[.-]\d{2}[.-]\d{4}|\d{4}-\d{2}-\d{2}`)

	rePeriodNumeric = regexp.MustCompile(`\b(\d{2})[.-](\d{4})\b`)
	rePeriodWorded  = regexp.MustCompile(`за\s+([а-яіїєґА-ЯІЇЄҐ]+)\s+(\d{4})`)
	rePeriodRange   = regexp.MustCompile(`Період:\s*(\d{2})\.(\d{2})\.(\d{4})\s+(\d{2})\.(\d{2})\.(\d{4})`)

	reContract = regexp.MustCompile(`Договір:\s*([^\s,;]+)`)
	reEDRPOU   = regexp.MustCompile(`\b(\d{8})\b`)

	reWordedDate = regexp.MustCompile(`від\s*[«"](\d{1,2})[»"]\s*([а-яіїєґА-ЯІЇЄҐ]+)\s*(\d{4})`)
)

// ParseAmount converts a Ukrainian-formatted monetary string to a float.
// Thousands separators (regular and non-breaking spaces) are stripped and
// a decimal comma is accepted. The value must be positive and below
// MaxAmount.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == ',':
			return '.'
		}
		return r
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, err)
	}
	v, _ := d.Float64()
	if v <= 0 {
		return 0, fmt.Errorf("amount %q is not positive", s)
	}
	if v >= MaxAmount {
		return 0, fmt.Errorf("amount %q exceeds sanity limit", s)
	}
	return v, nil
}

// ParseDate converts DD.MM.YYYY, DD-MM-YYYY or YYYY-MM-DD into ISO
// YYYY-MM-DD, validating component ranges (years 2000-2099).
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	var day, month, year string
	switch {
	case reDateDots.MatchString(s):
		m := reDateDots.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case reDateDashes.MatchString(s):
		m := reDateDashes.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case reDateISO.MatchString(s):
		m := reDateISO.FindStringSubmatch(s)
		year, month, day = m[1], m[2], m[3]
	default:
		return "", fmt.Errorf("unrecognized date format %q", s)
	}
	if !validDateParts(day, month, year) {
		return "", fmt.Errorf("date %q out of range", s)
	}
	return year + "-" + month + "-" + day, nil
}

func validDateParts(day, month, year string) bool {
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	return d >= 1 && d <= 31 && m >= 1 && m <= 12 && y >= 2000 && y <= 2099
}

// FindAnyDate returns the first valid date found in text, ISO-formatted,
// or "" when none parses.
func FindAnyDate(text string) string {
	for _, cand := range reAnyDate.FindAllString(text, -1) {
		if iso, err := ParseDate(cand); err == nil {
			return iso
		}
	}
	return ""
}

// ParseWordedDate parses the long-form notarial date used in act headers,
// e.g. `від "31" грудня 2025`, into ISO YYYY-MM-DD.
func ParseWordedDate(text string) (string, error) {
	m := reWordedDate.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("no worded date in text")
	}
	month, ok := ukrMonths[strings.ToLower(m[2])]
	if !ok {
		return "", fmt.Errorf("unknown month name %q", m[2])
	}
	day := fmt.Sprintf("%02d", atoi(m[1]))
	iso := fmt.Sprintf("%s-%02d-%s", m[3], month, day)
	if _, err := ParseDate(iso); err != nil {
		return "", err
	}
	return iso, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// NormalizePeriod canonicalizes a MM-YYYY or MM.YYYY period string to
// MM-YYYY, validating the month.
func NormalizePeriod(s string) (string, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", "-"))
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("unrecognized period %q", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("period %q has invalid month", s)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil || y < 2000 || y > 2099 {
		return "", fmt.Errorf("period %q has invalid year", s)
	}
	return fmt.Sprintf("%02d-%04d", m, y), nil
}

// PeriodFromDate derives the MM-YYYY reporting period from an ISO date.
func PeriodFromDate(iso string) (string, error) {
	m := reDateISO.FindStringSubmatch(iso)
	if m == nil {
		return "", fmt.Errorf("not an ISO date: %q", iso)
	}
	return m[2] + "-" + m[1], nil
}

// PeriodFromText looks for a reporting period in free text. It recognizes
// both the worded form ("за листопад 2024") and the numeric MM.YYYY or
// MM-YYYY form, in that order.
func PeriodFromText(text string) string {
	if m := rePeriodWorded.FindStringSubmatch(text); m != nil {
		if month, ok := ukrMonths[strings.ToLower(m[1])]; ok {
			return fmt.Sprintf("%02d-%s", month, m[2])
		}
	}
	if m := rePeriodNumeric.FindStringSubmatch(text); m != nil {
		if p, err := NormalizePeriod(m[1] + "-" + m[2]); err == nil {
			return p
		}
	}
	return ""
}

// PeriodRange parses the explicit statement period line
// ("Період: 01.12.2024 31.12.2024") and returns the MM-YYYY period
// derived from the end date plus the end date itself in ISO form.
func PeriodRange(text string) (period, endDate string, ok bool) {
	m := rePeriodRange.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	iso, err := ParseDate(m[4] + "." + m[5] + "." + m[6])
	if err != nil {
		return "", "", false
	}
	return m[5] + "-" + m[6], iso, true
}

// ContractNumber extracts a contract reference following the "Договір:"
// label, e.g. "664/01".
func ContractNumber(text string) string {
	if m := reContract.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], ".,")
	}
	return ""
}

// FindEDRPOU returns the first 8-digit EDRPOU code found in s, or "".
func FindEDRPOU(s string) string {
	if m := reEDRPOU.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
