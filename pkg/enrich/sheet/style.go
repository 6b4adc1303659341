package sheet

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"
)

// CellStyle is a detached, value-independent copy of a cell's visual
// formatting (font, fill, border, alignment). Capturing deep-copies the
// style definition so later mutation of the source cell cannot leak into
// cells the style is applied to, and vice versa.
type CellStyle struct {
	def *excelize.Style

	// styleID caches the registration of def with a target file so the same
	// captured style applied to many cells does not multiply style records.
	styleID    int
	registered bool
}

// CaptureStyle copies the style of one cell. Absent facets are substituted
// with empty facet values rather than left nil, so applying a captured style
// always overwrites all four facets.
func CaptureStyle(f *excelize.File, sheetName, cell string) (*CellStyle, error) {
	styleID, err := f.GetCellStyle(sheetName, cell)
	if err != nil {
		return nil, fmt.Errorf("get style of %s!%s: %w", sheetName, cell, err)
	}
	src, err := f.GetStyle(styleID)
	if err != nil {
		return nil, fmt.Errorf("read style %d: %w", styleID, err)
	}

	def := &excelize.Style{}
	if err := deepcopy.Copy(def, src); err != nil {
		return nil, fmt.Errorf("copy style %d: %w", styleID, err)
	}
	if def.Font == nil {
		def.Font = &excelize.Font{}
	}
	if def.Alignment == nil {
		def.Alignment = &excelize.Alignment{}
	}
	if def.Border == nil {
		def.Border = []excelize.Border{}
	}

	return &CellStyle{def: def}, nil
}

// Apply overwrites the style of the target cell with the captured one. All
// facets are applied atomically as a single style record; partial
// application is not a supported state.
func (s *CellStyle) Apply(f *excelize.File, sheetName, cell string) error {
	if !s.registered {
		id, err := f.NewStyle(s.def)
		if err != nil {
			return fmt.Errorf("register style: %w", err)
		}
		s.styleID = id
		s.registered = true
	}
	if err := f.SetCellStyle(sheetName, cell, cell, s.styleID); err != nil {
		return fmt.Errorf("apply style to %s!%s: %w", sheetName, cell, err)
	}
	return nil
}
