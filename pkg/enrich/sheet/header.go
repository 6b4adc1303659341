// Package sheet implements the spreadsheet structure-discovery and
// format-preserving rewrite engine: header row detection, column resolution,
// table extent discovery, cell style transfer, and the data-region rewriter.
package sheet

import (
	"strings"

	"go.uber.org/zap"
)

// LocateHeader scans the first searchDepth rows of a sheet's raw content and
// returns the 0-based index of the row to treat as header: the first row
// whose labels contain the target column or a case/spacing/underscore
// variant of it. Lower row indices are preferred. If no candidate matches,
// defaultRow is returned; detection never fails.
func LocateHeader(rows [][]string, target string, searchDepth, defaultRow int, log *zap.Logger) int {
	for r := 0; r < searchDepth && r < len(rows); r++ {
		for _, label := range rows[r] {
			if MatchesVariant(label, target) {
				log.Info("located header row",
					zap.Int("row", r),
					zap.String("label", strings.TrimSpace(label)))
				return r
			}
		}
	}
	log.Warn("target column not found in header search window, using default",
		zap.String("target", target),
		zap.Int("search_depth", searchDepth),
		zap.Int("default_row", defaultRow))
	return defaultRow
}

// MatchesVariant reports whether label contains target or one of its
// case/spacing/underscore variants, case-insensitively.
func MatchesVariant(label, target string) bool {
	labelUpper := strings.ToUpper(strings.TrimSpace(label))
	if labelUpper == "" {
		return false
	}
	variants := []string{
		target,
		strings.ReplaceAll(target, " ", "_"),
		strings.ReplaceAll(target, "_", " "),
	}
	for _, v := range variants {
		if strings.Contains(labelUpper, strings.ToUpper(strings.TrimSpace(v))) {
			return true
		}
	}
	return false
}
