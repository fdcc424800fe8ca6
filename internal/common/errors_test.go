package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionErrorMessages(t *testing.T) {
	e := NewInvalidData("a.pdf", "відсутні поля", "act_date", "amount")
	assert.Contains(t, e.Error(), "INVALID_DATA")
	assert.Contains(t, e.Error(), "act_date, amount")

	cause := errors.New("broken xref")
	pe := NewParseFailure("b.pdf", "не вдалося прочитати PDF", cause)
	assert.ErrorIs(t, pe, cause)
	assert.Contains(t, pe.Error(), "broken xref")

	ue := NewUnsupportedFormat("c.pdf", "документ не містить достатньо тексту")
	assert.Equal(t, KindUnsupportedFormat, ue.Kind)
}

func TestAsExtractionError(t *testing.T) {
	wrapped := fmt.Errorf("processing: %w", NewUnsupportedFormat("d.pdf", "невідомий тип"))
	ee, ok := AsExtractionError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "d.pdf", ee.Path)

	_, ok = AsExtractionError(errors.New("plain"))
	assert.False(t, ok)
}

func TestPreserveCopiesOffendingFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(src, []byte("зіпсований вміст"), 0o644))

	quarantine := filepath.Join(dir, "quarantine")
	e := NewInvalidData(src, "відсутня сума", "amount")
	dst := Preserve(e, quarantine, nil)
	require.NotEmpty(t, dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "зіпсований вміст", string(data))
}

func TestPreserveNeverFails(t *testing.T) {
	// missing source file
	e := NewParseFailure("/does/not/exist.pdf", "x", nil)
	assert.Empty(t, Preserve(e, t.TempDir(), nil))

	// nil error and empty quarantine dir
	assert.Empty(t, Preserve(nil, t.TempDir(), nil))
	assert.Empty(t, Preserve(e, "", nil))
}
