// Package bank extracts payment records from bank statements. Two
// strategies cover the known layouts: block splitting over statement text
// and column-driven reading of spreadsheet exports, the latter configured
// per bank rather than hard-coded.
package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/DAN-MYK/Deb/internal/common"
)

// FormatConfig describes where each logical field lives in one bank's
// column layout. Column references are header names, not positions, so a
// bank reordering its export does not break extraction.
type FormatConfig struct {
	Name              string `json:"name"`
	HeaderRow         int    `json:"header_row"`
	AmountField       string `json:"amount_field"`
	DirectionField    string `json:"direction_field,omitempty"`
	CreditValue       string `json:"credit_value,omitempty"`
	CounterpartyField string `json:"counterparty_field"`
	CompanyField      string `json:"company_field,omitempty"`
	CompanyFromHeader bool   `json:"company_from_header,omitempty"`
	DateField         string `json:"date_field,omitempty"`
	PurposeField      string `json:"purpose_field,omitempty"`
}

// Built-in formats. Ukrgasbank exports carry latin technical column names
// and a numeric debit/credit flag; Oschadbank uses human-readable headers
// below a title block and has no direction column (the credit column is
// simply empty on debit rows).
var builtinFormats = map[string]FormatConfig{
	"ukrgasbank": {
		Name:              "ukrgasbank",
		HeaderRow:         0,
		AmountField:       "SUM_PD_NOM",
		DirectionField:    "DK",
		CreditValue:       "1",
		CounterpartyField: "NAME_KOR",
		CompanyField:      "NAME",
		DateField:         "DATA_VYP",
		PurposeField:      "PURPOSE",
	},
	"oschadbank": {
		Name:              "oschadbank",
		HeaderRow:         3,
		AmountField:       "Кредит",
		CounterpartyField: "Найменування кореспондента",
		CompanyFromHeader: true,
		DateField:         "Дата валютування",
		PurposeField:      "Призначення платежу",
	},
}

const registrySchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["name", "amount_field", "counterparty_field"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "header_row": {"type": "integer", "minimum": 0},
      "amount_field": {"type": "string", "minLength": 1},
      "direction_field": {"type": "string"},
      "credit_value": {"type": "string"},
      "counterparty_field": {"type": "string", "minLength": 1},
      "company_field": {"type": "string"},
      "company_from_header": {"type": "boolean"},
      "date_field": {"type": "string"},
      "purpose_field": {"type": "string"}
    }
  }
}`

// Registry holds the known bank formats, keyed by format name.
type Registry struct {
	formats map[string]FormatConfig
}

// NewRegistry returns a registry with the built-in formats. When path is
// non-empty, user-supplied formats are loaded from the JSON file there and
// override built-ins with the same key.
func NewRegistry(path string) (*Registry, error) {
	formats := make(map[string]FormatConfig, len(builtinFormats))
	for k, v := range builtinFormats {
		formats[k] = v
	}
	if path != "" {
		loaded, err := loadFormats(path)
		if err != nil {
			return nil, common.WrapError(err, "loading bank format registry")
		}
		for k, v := range loaded {
			formats[k] = v
		}
	}
	return &Registry{formats: formats}, nil
}

func loadFormats(path string) (map[string]FormatConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := jsonschema.CompileString("bank_formats.schema.json", registrySchema)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("registry does not match schema: %w", err)
	}

	var formats map[string]FormatConfig
	if err := json.Unmarshal(raw, &formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// Get looks up a format by name.
func (r *Registry) Get(name string) (FormatConfig, bool) {
	cfg, ok := r.formats[strings.ToLower(name)]
	return cfg, ok
}

// Detect inspects the first rows of a parsed sheet and picks the format
// whose header signature is present.
func (r *Registry) Detect(rows [][]string) (FormatConfig, bool) {
	for _, cfg := range r.formats {
		if cfg.HeaderRow >= len(rows) {
			continue
		}
		if indexColumns(rows[cfg.HeaderRow], cfg) != nil {
			return cfg, true
		}
	}
	return FormatConfig{}, false
}

// indexColumns maps the config's field names to column positions in the
// header row. Returns nil when a required column is missing.
func indexColumns(header []string, cfg FormatConfig) map[string]int {
	pos := make(map[string]int, len(header))
	for i, cell := range header {
		pos[strings.TrimSpace(cell)] = i
	}
	idx := make(map[string]int)
	required := map[string]string{
		"amount":       cfg.AmountField,
		"counterparty": cfg.CounterpartyField,
	}
	for key, name := range required {
		i, ok := pos[name]
		if !ok {
			return nil
		}
		idx[key] = i
	}
	optional := map[string]string{
		"direction": cfg.DirectionField,
		"company":   cfg.CompanyField,
		"date":      cfg.DateField,
		"purpose":   cfg.PurposeField,
	}
	for key, name := range optional {
		if name == "" {
			continue
		}
		if i, ok := pos[name]; ok {
			idx[key] = i
		}
	}
	return idx
}
