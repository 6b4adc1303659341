package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ColumnNotFoundError indicates that no header label matched a logical
// column name under any matching strategy.
type ColumnNotFoundError struct {
	// Target is the logical column name that was requested.
	Target string
	// Available lists the header labels that were present.
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column matching %q not found, available columns: %v", e.Target, e.Available)
}

// DefaultPartialMatchSets returns the configured partial-match token sets
// applied as the last resolution strategy. The built-in set covers the
// vehicle-type reference column, whose real-world headers combine the TIPO
// and UNIDAD tokens in inconsistent ways.
func DefaultPartialMatchSets() [][]string {
	return [][]string{{"TIPO", "UNIDAD"}}
}

// ResolveColumn maps a logical column name to the actual header label
// present, trying in order: exact equality, case-insensitive trimmed
// equality, all whitespace-separated target tokens appearing as substrings
// of the candidate, and finally the configured partial-match token sets.
// The first hit wins. Returns a *ColumnNotFoundError when every strategy is
// exhausted.
func ResolveColumn(labels []string, target string, partialSets [][]string) (string, error) {
	for _, label := range labels {
		if label == target {
			return label, nil
		}
	}

	targetNorm := strings.ToUpper(strings.TrimSpace(target))
	for _, label := range labels {
		if strings.ToUpper(strings.TrimSpace(label)) == targetNorm {
			return label, nil
		}
	}

	tokens := strings.Fields(targetNorm)
	for _, label := range labels {
		if containsAllTokens(strings.ToUpper(label), tokens) {
			return label, nil
		}
	}

	for _, set := range partialSets {
		for _, label := range labels {
			if containsAllTokens(strings.ToUpper(label), set) {
				return label, nil
			}
		}
	}

	available := make([]string, 0, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) != "" {
			available = append(available, label)
		}
	}
	return "", &ColumnNotFoundError{Target: target, Available: available}
}

func containsAllTokens(candidate string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(candidate, tok) {
			return false
		}
	}
	return true
}

// TableExtent returns the last 1-based column index whose header cell holds
// non-blank text, scanning column 1 through the sheet's maximum column.
// Sparse blanks within the header are tolerated: the rightmost non-blank
// column ever seen wins. New columns are appended after this index so they
// never collide with original data.
func TableExtent(f *excelize.File, sheetName string, headerRow int) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, err
	}

	end := 1
	if headerRow-1 < len(rows) {
		for c, label := range rows[headerRow-1] {
			if strings.TrimSpace(label) != "" {
				end = c + 1
			}
		}
	}
	return end, nil
}
