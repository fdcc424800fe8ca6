package act

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/common"
)

func TestFindAnchorDataRow(t *testing.T) {
	rows := [][]string{
		{"Назва", "Одиниця"},
		{"1", "2", "3", "4", "5", "6", "7", "8"},
		{"енергія", "кВт·год", "-", "1 000,00", "-", "5 000,00", "20%", "6 000,00"},
	}
	got := FindAnchorDataRow(rows)
	require.NotNil(t, got)
	assert.Equal(t, "6 000,00", got[colAmount])
	assert.Equal(t, "1 000,00", got[colVolume])
	assert.Equal(t, "5 000,00", got[colCost])
}

func TestFindAnchorDataRowNoAnchor(t *testing.T) {
	rows := [][]string{
		{"1", "2", "3"},
		{"a", "b", "c"},
	}
	assert.Nil(t, FindAnchorDataRow(rows))
	// Missing anchor degrades to nil values, never panics.
	assert.Nil(t, readColumn(nil, colAmount))
	assert.Nil(t, readColumn(nil, colVolume))
	assert.Nil(t, readColumn(nil, colCost))
}

func TestFindAnchorDataRowAnchorIsLastRow(t *testing.T) {
	rows := [][]string{
		{"1", "2", "3", "4", "5", "6", "7", "8"},
	}
	assert.Nil(t, FindAnchorDataRow(rows))
}

func TestReadColumnMalformedCell(t *testing.T) {
	row := []string{"а", "б", "в", "не число", "-", "", "х", "12,50"}
	assert.Nil(t, readColumn(row, colVolume))
	assert.Nil(t, readColumn(row, colCost))
	v := readColumn(row, colAmount)
	require.NotNil(t, v)
	assert.InDelta(t, 12.50, *v, 1e-9)
}

func TestGuaranteedBuyerMissingAmountIsTerminal(t *testing.T) {
	text := `Продавець: СЕС
Покупець: ГАРАНТОВАНИЙ ПОКУПЕЦЬ
Обсяг, кВт·год
Період: 01.11.2024 30.11.2024`
	src := &stubSource{text: text, tables: [][]string{{"немає", "якоря"}}}
	gb := NewGuaranteedBuyer(src, constants.DefaultEDRPOUCompanies, nil)
	_, err := gb.Extract(context.Background(), "no_anchor.pdf", text)
	require.Error(t, err)
	ee, ok := common.AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, common.KindInvalidData, ee.Kind)
	assert.Contains(t, ee.MissingFields, "amount")
}

func TestCompanyNameFromBodyAndUnknownCode(t *testing.T) {
	gb := NewGuaranteedBuyer(&stubSource{}, constants.DefaultEDRPOUCompanies, nil)

	assert.Equal(t, "ТЕРСЛАВ", gb.companyName("акт.pdf", "ЄДРПОУ продавця: 42428440"))
	assert.Equal(t, constants.UnknownName, gb.companyName("акт.pdf", "ЄДРПОУ продавця: 99999999"))
	assert.Equal(t, constants.UnknownName, gb.companyName("акт.pdf", "кодів немає"))
}
