package common

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	// KindUnsupportedFormat means the document does not resemble any known
	// family (insufficient text, no keyword match). Not retriable.
	KindUnsupportedFormat ErrorKind = "UNSUPPORTED_FORMAT"
	// KindParseFailure means the underlying text/table extraction failed
	// outright, including OCR fallback exhaustion.
	KindParseFailure ErrorKind = "PARSE_FAILURE"
	// KindInvalidData means the document is of a known family but a required
	// field could not be located, or it is an explicitly unsupported variant
	// (e.g. an adjustment act).
	KindInvalidData ErrorKind = "INVALID_DATA"
)

// ExtractionError is the typed failure returned by every extractor.
// MissingFields is populated for KindInvalidData when specific required
// fields could not be located.
type ExtractionError struct {
	Kind          ErrorKind
	Path          string
	Message       string
	MissingFields []string
	Cause         error
}

func (e *ExtractionError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: %s (missing: %s)", e.Kind, e.Message, strings.Join(e.MissingFields, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func NewUnsupportedFormat(path, message string) *ExtractionError {
	return &ExtractionError{Kind: KindUnsupportedFormat, Path: path, Message: message}
}

func NewParseFailure(path, message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindParseFailure, Path: path, Message: message, Cause: cause}
}

func NewInvalidData(path, message string, missingFields ...string) *ExtractionError {
	return &ExtractionError{Kind: KindInvalidData, Path: path, Message: message, MissingFields: missingFields}
}

// AsExtractionError unwraps err to an *ExtractionError if there is one.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// Preserve copies the offending source file of an extraction error into dir
// for offline diagnosis. It is a best-effort side channel: any failure is
// logged and must never mask the original extraction error. Returns the
// quarantine path, or "" if nothing was preserved.
func Preserve(e *ExtractionError, dir string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	if e == nil || e.Path == "" || dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("quarantine dir not writable", "dir", dir, "error", err)
		return ""
	}
	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(e.Path))
	dst := filepath.Join(dir, name)
	if err := copyFile(e.Path, dst); err != nil {
		logger.Warn("failed to preserve problematic file", "src", e.Path, "dst", dst, "error", err)
		return ""
	}
	logger.Info("problematic file preserved", "kind", string(e.Kind), "path", dst)
	return dst
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Common application errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
