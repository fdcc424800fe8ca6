package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("data", "deb.db"), cfg.DBPath())
	assert.Equal(t, 50, cfg.PDF.MaxPages)
	assert.Equal(t, 20, cfg.PDF.MinTextLen)
	assert.NotEmpty(t, cfg.PDF.BankKeywords)
	assert.NotEmpty(t, cfg.PDF.ActKeywords)
	assert.True(t, cfg.OCR.Enabled)
	assert.Equal(t, "ukr+eng", cfg.OCR.Language)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/deb")
	t.Setenv("PDF_MAX_PAGES", "7")
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("PDF_BANK_KEYWORDS", "виписка, банк ,")

	cfg := LoadConfig()
	assert.Equal(t, "/var/deb", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("/var/deb", "quarantine"), cfg.Data.QuarantineDir)
	assert.Equal(t, 7, cfg.PDF.MaxPages)
	assert.False(t, cfg.OCR.Enabled)
	assert.Equal(t, []string{"виписка", "банк"}, cfg.PDF.BankKeywords)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := LoadConfig()
	cfg.PDF.MaxPages = 0
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Data.Dir = ""
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.OCR.DPI = -1
	assert.Error(t, cfg.Validate())
}
