package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DAN-MYK/Deb/internal/common"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry("")
	require.NoError(t, err)
	return r
}

func ukrgasbankRows() [][]string {
	return [][]string{
		{"NAME", "NAME_KOR", "DK", "SUM_PD_NOM", "DATA_VYP", "PURPOSE"},
		{"ТОВ СКІФІЯ-СОЛАР-1", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "1", "250 000,00", "05.11.2024", "оплата за жовтень 2024"},
		{"ТОВ СКІФІЯ-СОЛАР-1", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "0", "10 000,00", "06.11.2024", "повернення"},
		{"ТОВ СКІФІЯ-СОЛАР-1", "ІНШИЙ КОНТРАГЕНТ", "1", "5 000,00", "07.11.2024", "оплата за жовтень 2024"},
		{"ТОВ СКІФІЯ-СОЛАР-1", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "1", "зіпсовано", "08.11.2024", "оплата за жовтень 2024"},
	}
}

func TestRowExtractUkrgasbank(t *testing.T) {
	reg := newTestRegistry(t)
	cfg, ok := reg.Get("ukrgasbank")
	require.True(t, ok)

	e := NewRowExtractor(reg, nil)
	records, err := e.Extract("stmt.xls", ukrgasbankRows(), cfg)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ТОВ СКІФІЯ-СОЛАР-1", rec.Company)
	assert.Equal(t, "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", rec.Counterparty)
	assert.InDelta(t, 250000.00, rec.Amount, 1e-9)
	assert.Equal(t, "2024-11-05", rec.PaymentDate)
	assert.Equal(t, "10-2024", rec.Period)
}

func TestRowExtractEmptyResultIsTyped(t *testing.T) {
	reg := newTestRegistry(t)
	cfg, _ := reg.Get("ukrgasbank")
	rows := [][]string{
		{"NAME", "NAME_KOR", "DK", "SUM_PD_NOM", "DATA_VYP", "PURPOSE"},
		{"ТОВ СКІФІЯ-СОЛАР-1", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "0", "10 000,00", "06.11.2024", "повернення"},
	}
	e := NewRowExtractor(reg, nil)
	_, err := e.Extract("stmt.xls", rows, cfg)
	require.Error(t, err)
	ee, ok := common.AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, common.KindInvalidData, ee.Kind)
}

func TestDetectFormat(t *testing.T) {
	reg := newTestRegistry(t)

	cfg, ok := reg.Detect(ukrgasbankRows())
	require.True(t, ok)
	assert.Equal(t, "ukrgasbank", cfg.Name)

	_, ok = reg.Detect([][]string{{"щось", "інше"}})
	assert.False(t, ok)
}

func writeOschadbankXLSX(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	rows := [][]interface{}{
		{"ТОВ \"ДИМЕРСЬКА СЕС-1\", МФО 300465"},
		{"Виписка за період"},
		{""},
		{"Дата валютування", "Кредит", "Найменування кореспондента", "Призначення платежу"},
		{"05.12.2024", "300 000,00", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "оплата за листопад 2024"},
		{"06.12.2024", "", "ГАРАНТОВАНИЙ ПОКУПЕЦЬ", "дебетовий рядок"},
		{"07.12.2024", "1 000,00", "ІНШИЙ", "оплата за листопад 2024"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	path := filepath.Join(t.TempDir(), "oschad.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestRowExtractFileOschadbank(t *testing.T) {
	path := writeOschadbankXLSX(t)

	e := NewRowExtractor(newTestRegistry(t), nil)
	records, err := e.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, `ТОВ "ДИМЕРСЬКА СЕС-1"`, rec.Company)
	assert.InDelta(t, 300000.00, rec.Amount, 1e-9)
	assert.Equal(t, "2024-12-05", rec.PaymentDate)
	assert.Equal(t, "11-2024", rec.Period)
}

func TestRegistryLoadsUserFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formats.json")
	content := `{
  "privatbank": {
    "name": "privatbank",
    "header_row": 1,
    "amount_field": "Сума",
    "counterparty_field": "Контрагент",
    "purpose_field": "Призначення"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	cfg, ok := reg.Get("privatbank")
	require.True(t, ok)
	assert.Equal(t, "Сума", cfg.AmountField)
	assert.Equal(t, 1, cfg.HeaderRow)

	// built-ins survive the merge
	_, ok = reg.Get("ukrgasbank")
	assert.True(t, ok)
}

func TestRegistryRejectsInvalidFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"x": {"name": "x"}}`), 0o644))

	_, err := NewRegistry(path)
	require.Error(t, err)
}
