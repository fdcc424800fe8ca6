package pdfdoc

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// columnGap is the horizontal distance, in PDF points, beyond which two
// positioned text fragments belong to different table cells.
const columnGap = 10.0

// ExtractTables reconstructs tabular rows from the positioned text objects
// of each page. Cells are rebuilt from fragment coordinates: fragments on
// the same baseline form a row, and a wide horizontal gap starts a new
// cell. Rows are returned in reading order across all pages.
func (r *Reader) ExtractTables(ctx context.Context, path string) (rows [][]string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()
	_ = ctx

	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	n := doc.NumPage()
	if n > r.pdfCfg.MaxPages {
		n = r.pdfCfg.MaxPages
	}
	for i := 1; i <= n; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		rows = append(rows, clusterRows(content.Text, columnGap)...)
	}
	return rows, nil
}

// clusterRows groups positioned fragments into rows by baseline Y, then
// splits each row into cells wherever the horizontal gap between adjacent
// fragments exceeds colGap.
func clusterRows(texts []pdf.Text, colGap float64) [][]string {
	byRow := make(map[int][]pdf.Text)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		byRow[yKey] = append(byRow[yKey], t)
	}

	yKeys := make([]int, 0, len(byRow))
	for y := range byRow {
		yKeys = append(yKeys, y)
	}
	// PDF Y grows bottom-to-top, so reading order is descending Y.
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var rows [][]string
	for _, y := range yKeys {
		frags := byRow[y]
		sort.Slice(frags, func(a, b int) bool {
			return frags[a].X < frags[b].X
		})

		var cells []string
		var cell strings.Builder
		var prevEnd float64
		for i, fr := range frags {
			if i > 0 {
				gap := fr.X - prevEnd
				switch {
				case gap > colGap:
					cells = append(cells, strings.TrimSpace(cell.String()))
					cell.Reset()
				case gap > 1.0:
					cell.WriteString(" ")
				}
			}
			cell.WriteString(fr.S)
			prevEnd = fr.X + fr.W
		}
		if cell.Len() > 0 {
			cells = append(cells, strings.TrimSpace(cell.String()))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}
