// Package enrich orchestrates spreadsheet enrichment: header detection,
// per-row classification, and the format-preserving rewrite of the selected
// sheet.
package enrich

import "time"

// Options configures enrichment behavior.
type Options struct {
	// TargetColumn is the logical column searched for during header
	// detection and used as the classification reference.
	TargetColumn string
	// HeaderSearchRows bounds the header detection scan depth.
	HeaderSearchRows int
	// DefaultHeaderRow is the 0-based header row assumed when detection
	// finds no match within the search window.
	DefaultHeaderRow int
	// NewColumnWidth is the fixed width applied to appended columns.
	NewColumnWidth float64
	// Workers bounds concurrent collaborator calls during enrichment.
	Workers int
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
}

// DefaultOptions returns the default enrichment options.
func DefaultOptions() Options {
	return Options{
		TargetColumn:     "TIPO DE UNIDAD",
		HeaderSearchRows: 5,
		DefaultHeaderRow: 1,
		NewColumnWidth:   15,
		Workers:          5,
		CallTimeout:      30 * time.Second,
	}
}
