package common

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Data DataConfig
	PDF  PDFConfig
	OCR  OCRConfig
	Bank BankConfig
}

// DataConfig holds storage-related configuration
type DataConfig struct {
	Dir           string
	DBName        string
	QuarantineDir string
	AmountMax     float64
}

// PDFConfig holds PDF processing configuration
type PDFConfig struct {
	MaxPages     int
	MinTextLen   int
	BankKeywords []string
	ActKeywords  []string
}

// OCRConfig holds optical-recognition fallback configuration
type OCRConfig struct {
	Enabled     bool
	MaxPages    int
	DPI         int
	Language    string
	Pdftoppm    string
	Tesseract   string
	TessdataDir string
}

// BankConfig points at an optional user-supplied bank-format registry.
type BankConfig struct {
	RegistryPath string
}

// Keywords used to tell bank statements and acts apart. Overridable via
// PDF_BANK_KEYWORDS / PDF_ACT_KEYWORDS (comma-separated).
var (
	defaultBankKeywords = []string{
		"виписка",
		"банк",
		"рахунок",
		"statement",
		"банківська",
		"виписка по рахунку",
	}
	defaultActKeywords = []string{
		"акт",
		"виконаних робіт",
		"наданих послуг",
		"надання послуг",
		"виконання робіт",
	}
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		Data: DataConfig{
			Dir:           dataDir,
			DBName:        getEnv("DB_NAME", "deb.db"),
			QuarantineDir: getEnv("QUARANTINE_DIR", filepath.Join(dataDir, "quarantine")),
			AmountMax:     getEnvAsFloat64("AMOUNT_MAX", 1_000_000_000),
		},
		PDF: PDFConfig{
			MaxPages:     getEnvAsInt("PDF_MAX_PAGES", 50),
			MinTextLen:   getEnvAsInt("PDF_MIN_TEXT_LEN", 20),
			BankKeywords: getEnvAsList("PDF_BANK_KEYWORDS", defaultBankKeywords),
			ActKeywords:  getEnvAsList("PDF_ACT_KEYWORDS", defaultActKeywords),
		},
		OCR: OCRConfig{
			Enabled:     getEnvAsBool("OCR_ENABLED", true),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 10),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			Language:    getEnv("OCR_LANGUAGE", "ukr+eng"),
			Pdftoppm:    getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Bank: BankConfig{
			RegistryPath: getEnv("BANK_CONFIG_PATH", ""),
		},
	}
}

// DBPath returns the full path to the sqlite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, c.Data.DBName)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return WrapError(ErrInvalidInput, "DATA_DIR is required")
	}
	if c.PDF.MaxPages <= 0 {
		return WrapError(ErrInvalidInput, "PDF_MAX_PAGES must be positive")
	}
	if c.OCR.Enabled && c.OCR.DPI <= 0 {
		return WrapError(ErrInvalidInput, "OCR_DPI must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
