// Package rowintuit implements the row intuiter (C4): given a head and tail
// sample of a raw row stream, classify each sampled row as header, comment
// or data, and derive the inclusive data range a writer should persist as
// data_start_row/data_end_row.
//
// Grounded on pranavdb's tree/utils.go comparison-key derivation (a small,
// pure, sample-driven classification routine with no file I/O) and on
// kokes/smda's database-loader column-type sniffing
// (other_examples/6a234b30_kokes-smda__src-database-loader.go.go), adapted
// from per-column type sniffing to the spec's per-row type-signature
// classification.
package rowintuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/internal/mangle"
)

// minDataPatternRows is the spec's "fewer than three data-pattern rows" floor.
const minDataPatternRows = 3

// RowSpec is the row intuiter's result (spec.md §4.4).
type RowSpec struct {
	HeaderLines  []int
	CommentLines []int
	StartLine    int
	EndLine      *int
	DataPattern  string
	Headers      []string
}

// signature computes the per-row type-signature string: one code per cell,
// E (empty), N (numeric), S (alpha/string), M (mixed alphanumeric).
func signature(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteByte(cellCode(cell))
	}
	return b.String()
}

func cellCode(cell string) byte {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 'E'
	}
	if isNumeric(trimmed) {
		return 'N'
	}
	if isAlpha(trimmed) {
		return 'S'
	}
	return 'M'
}

func isNumeric(s string) bool {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == ' ' || r == '-' {
			continue
		}
		return false
	}
	return true
}

func isHeaderSignature(sig string) bool {
	if sig == "" {
		return false
	}
	for _, c := range sig {
		if c != 'S' && c != 'M' {
			return false
		}
	}
	return true
}

// Intuit classifies head (the first rows of the stream) and tail (the last
// rows), given the total row count, into a RowSpec. Returns
// errs.RowIntuitError if fewer than three rows in head match the derived
// data pattern.
func Intuit(head, tail [][]string, total int) (RowSpec, error) {
	if len(head) == 0 {
		return RowSpec{}, fmt.Errorf("rowintuit: empty head sample: %w", errs.RowIntuitError)
	}

	sigs := make([]string, len(head))
	order := make([]string, 0, len(head))
	counts := make(map[string]int, len(head))
	for i, row := range head {
		sig := signature(row)
		sigs[i] = sig
		if counts[sig] == 0 {
			order = append(order, sig)
		}
		counts[sig]++
	}

	dataPattern := order[0]
	best := counts[dataPattern]
	for _, sig := range order[1:] {
		if counts[sig] > best {
			dataPattern = sig
			best = counts[sig]
		}
	}
	dataWidth := len(dataPattern)

	matches := 0
	for _, sig := range sigs {
		if sig == dataPattern {
			matches++
		}
	}
	firstDataIdx := -1
	for i, sig := range sigs {
		if sig == dataPattern {
			firstDataIdx = i
			break
		}
	}

	if matches < minDataPatternRows || firstDataIdx < 0 {
		return RowSpec{}, fmt.Errorf("rowintuit: only %d rows match the data pattern, want >= %d: %w", matches, minDataPatternRows, errs.RowIntuitError)
	}

	headerStart := firstDataIdx
	for headerStart > 0 {
		prev := head[headerStart-1]
		if len(prev) == dataWidth && isHeaderSignature(sigs[headerStart-1]) {
			headerStart--
			continue
		}
		break
	}

	headerLines := make([]int, 0, firstDataIdx-headerStart)
	for i := headerStart; i < firstDataIdx; i++ {
		headerLines = append(headerLines, i)
	}

	commentLines := make([]int, 0, headerStart)
	for i := 0; i < headerStart; i++ {
		commentLines = append(commentLines, i)
	}

	var headers []string
	if len(headerLines) > 0 {
		headers = coalesceHeaders(head, headerLines, dataWidth)
	}

	endLine := findEndLine(tail, dataPattern, total)

	return RowSpec{
		HeaderLines:  headerLines,
		CommentLines: commentLines,
		StartLine:    firstDataIdx,
		EndLine:      endLine,
		DataPattern:  dataPattern,
		Headers:      headers,
	}, nil
}

// coalesceHeaders concatenates header-row cells column-wise with "_" and
// mangles the result, per spec.md §4.4 rule 4.
func coalesceHeaders(head [][]string, headerLines []int, width int) []string {
	headers := make([]string, width)
	for col := 0; col < width; col++ {
		var parts []string
		for _, line := range headerLines {
			row := head[line]
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				parts = append(parts, row[col])
			}
		}
		headers[col] = mangle.Name(strings.Join(parts, "_"))
	}
	return headers
}

// findEndLine scans tail (the last len(tail) rows of the stream, at
// absolute indices [total-len(tail), total-1]) backward for the last row
// matching dataPattern.
func findEndLine(tail [][]string, dataPattern string, total int) *int {
	if len(tail) == 0 {
		return nil
	}
	offset := total - len(tail)
	for i := len(tail) - 1; i >= 0; i-- {
		if signature(tail[i]) == dataPattern {
			end := offset + i
			return &end
		}
	}
	return nil
}
