package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"plain", "1234.56", 1234.56, false},
		{"decimal comma", "1234,56", 1234.56, false},
		{"space thousands", "1 234 567,89", 1234567.89, false},
		{"nbsp thousands", "1 234,56", 1234.56, false},
		{"integer", "500", 500, false},
		{"empty", "", 0, true},
		{"garbage", "н/д", 0, true},
		{"zero", "0,00", 0, true},
		{"negative", "-15,00", 0, true},
		{"over limit", "1000000000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseAmountIdempotent(t *testing.T) {
	v, err := ParseAmount("1 234,50")
	require.NoError(t, err)
	again, err := ParseAmount("1234.5")
	require.NoError(t, err)
	assert.Equal(t, v, again)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"31.12.2024", "2024-12-31", false},
		{"01-02-2023", "2023-02-01", false},
		{"2024-06-15", "2024-06-15", false},
		{"15.13.2024", "", true},
		{"32.01.2024", "", true},
		{"01.01.1999", "", true},
		{"01.01.2100", "", true},
		{"not a date", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFindAnyDate(t *testing.T) {
	assert.Equal(t, "2024-11-05", FindAnyDate("Зараховано: 05.11.2024 сума 100,00"))
	assert.Equal(t, "2024-11-05", FindAnyDate("some text 2024-11-05 trailing"))
	// Invalid candidates are skipped in favor of a later valid one.
	assert.Equal(t, "2024-01-15", FindAnyDate("99.99.2024 then 15.01.2024"))
	assert.Equal(t, "", FindAnyDate("no dates here"))
}

func TestParseWordedDate(t *testing.T) {
	got, err := ParseWordedDate(`Акт складено від "31" грудня 2025 року`)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", got)

	got, err = ParseWordedDate(`від «5» січня 2024`)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)

	_, err = ParseWordedDate("немає дати")
	assert.Error(t, err)
}

func TestNormalizePeriod(t *testing.T) {
	got, err := NormalizePeriod("11.2024")
	require.NoError(t, err)
	assert.Equal(t, "11-2024", got)

	got, err = NormalizePeriod("03-2025")
	require.NoError(t, err)
	assert.Equal(t, "03-2025", got)

	_, err = NormalizePeriod("13-2024")
	assert.Error(t, err)
	_, err = NormalizePeriod("2024-11")
	assert.Error(t, err)
}

func TestPeriodFromDate(t *testing.T) {
	got, err := PeriodFromDate("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, "12-2024", got)

	_, err = PeriodFromDate("31.12.2024")
	assert.Error(t, err)
}

func TestPeriodFromText(t *testing.T) {
	assert.Equal(t, "11-2024", PeriodFromText("послуги за листопад 2024 року"))
	assert.Equal(t, "12-2024", PeriodFromText("оплата за грудень 2024"))
	assert.Equal(t, "07-2023", PeriodFromText("період 07.2023"))
	assert.Equal(t, "", PeriodFromText("нічого корисного"))
}

func TestPeriodRange(t *testing.T) {
	period, end, ok := PeriodRange("Період: 01.12.2024 31.12.2024")
	require.True(t, ok)
	assert.Equal(t, "12-2024", period)
	assert.Equal(t, "2024-12-31", end)

	_, _, ok = PeriodRange("Період: невідомий")
	assert.False(t, ok)
}

func TestContractNumber(t *testing.T) {
	assert.Equal(t, "664/01", ContractNumber("Договір: 664/01 від 01.01.2024"))
	assert.Equal(t, "12-В", ContractNumber("Договір: 12-В, пункт 3"))
	assert.Equal(t, "", ContractNumber("без договору"))
}

func TestFindEDRPOU(t *testing.T) {
	assert.Equal(t, "41188319", FindEDRPOU("акт_41188319_грудень.pdf"))
	assert.Equal(t, "42428440", FindEDRPOU("ЄДРПОУ 42428440"))
	assert.Equal(t, "", FindEDRPOU("123456789"))
	assert.Equal(t, "", FindEDRPOU("1234567"))
}
