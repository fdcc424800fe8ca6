// Package normalize canonicalizes company and counterparty names so that
// records extracted from differently-worded documents aggregate under one
// key. Aliases map the known station and buyer spellings; anything else
// degrades to an uppercased, de-quoted form.
package normalize

import (
	"strings"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/fields"
)

type alias struct {
	fragment  string
	canonical string
}

// Ordered: more specific fragments come before their prefixes.
var companyAliases = []alias{
	{"ПЕРВОМАЙСЬК", "ПЕРВОМАЙСЬК"},
	{"ФРІ-ЕНЕРДЖИ", "ФРІ-ЕНЕРДЖИ"},
	{"ФРІ ЕНЕРДЖИ", "ФРІ-ЕНЕРДЖИ"},
	{"ПОРТ-СОЛАР", "ПОРТ-СОЛАР"},
	{"ПОРТ СОЛАР", "ПОРТ-СОЛАР"},
	{"СКІФІЯ-СОЛАР-2", "СКІФІЯ-СОЛАР-2"},
	{"СКІФІЯ-СОЛАР-1", "СКІФІЯ-СОЛАР-1"},
	{"ДИМЕРСЬКА", "ДИМЕРСЬКА СЕС-1"},
	{"ТЕРСЛАВ", "ТЕРСЛАВ"},
	{"ГАРАНТОВАНИЙ ПОКУПЕЦЬ", constants.GuaranteedBuyer},
}

var legalForms = []string{"ТОВ", "ДП", "ПРАТ", "ПАТ", "АТ", "ПП", "ФОП"}

// Company maps a raw extracted name to its canonical form. The lookup is
// fragment-based so quoting, legal-form prefixes and declension noise do
// not split one company into several keys.
func Company(raw string) string {
	cleaned := clean(raw)
	if cleaned == "" {
		return constants.UnknownName
	}
	if cleaned == "ГП" {
		return constants.GuaranteedBuyer
	}
	for _, a := range companyAliases {
		if strings.Contains(cleaned, a.fragment) {
			return a.canonical
		}
	}
	return cleaned
}

// Period canonicalizes MM.YYYY to MM-YYYY, returning the input untouched
// when it is not a recognizable period.
func Period(raw string) string {
	if p, err := fields.NormalizePeriod(raw); err == nil {
		return p
	}
	return raw
}

func clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(`"`, "", "«", "", "»", "", "'", "", "’", "").Replace(s)
	for _, form := range legalForms {
		s = strings.TrimPrefix(s, form+" ")
	}
	return strings.TrimSpace(s)
}
