package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Rewrite stages, in execution order. A failed stage aborts the whole
// rewrite; there is no partial commit.
const (
	stageMap    = "map"
	stageExtend = "extend"
	stageStyles = "styles"
	stageClear  = "clear"
	stageWrite  = "write"
	stageSize   = "size"
)

// RewriteError wraps a failure during the format-preserving rewrite with the
// stage it occurred in.
type RewriteError struct {
	// Stage names the rewrite stage that failed.
	Stage string
	// Err is the underlying cause.
	Err error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("sheet rewrite failed at %s stage: %v", e.Stage, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}

// Rewriter rewrites the data region of one sheet in place: it appends new
// header cells after the original table extent, clears stale data rows, and
// writes enriched values with styles inherited from the original table.
// Headers, merged cells, and every other sheet are left untouched.
type Rewriter struct {
	f         *excelize.File
	sheetName string
	// newColumnWidth is the fixed width applied to appended columns.
	newColumnWidth float64
	log            *zap.Logger
}

// NewRewriter creates a Rewriter for one sheet of an open workbook.
func NewRewriter(f *excelize.File, sheetName string, newColumnWidth float64, log *zap.Logger) *Rewriter {
	return &Rewriter{
		f:              f,
		sheetName:      sheetName,
		newColumnWidth: newColumnWidth,
		log:            log,
	}
}

// Rewrite replaces the sheet's data region with the enriched rows.
//
// headerRow is the 0-based header index chosen during detection; data rows
// start at headerRow+2 in 1-based sheet coordinates (one-based conversion
// plus one row past the header). newColumns are appended after the original
// table extent unless a column of that name already exists. Each enriched
// row maps column label to cell value; labels without a mapped physical
// column are ignored.
func (r *Rewriter) Rewrite(headerRow int, newColumns []string, rows []map[string]string) error {
	headerRowX := headerRow + 1
	dataStartRow := headerRow + 2

	mapping, extent, err := r.mapColumns(headerRowX)
	if err != nil {
		return &RewriteError{Stage: stageMap, Err: err}
	}

	nextCol, err := r.extendHeader(headerRowX, extent, newColumns, mapping)
	if err != nil {
		return &RewriteError{Stage: stageExtend, Err: err}
	}

	dataStyles, err := r.captureDataStyles(dataStartRow, extent)
	if err != nil {
		return &RewriteError{Stage: stageStyles, Err: err}
	}

	if err := r.clearDataRows(dataStartRow, extent); err != nil {
		return &RewriteError{Stage: stageClear, Err: err}
	}

	if err := r.writeRows(dataStartRow, extent, mapping, dataStyles, rows); err != nil {
		return &RewriteError{Stage: stageWrite, Err: err}
	}

	if err := r.sizeNewColumns(extent+1, nextCol); err != nil {
		return &RewriteError{Stage: stageSize, Err: err}
	}

	r.log.Info("sheet rewritten",
		zap.String("sheet", r.sheetName),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(mapping)),
		zap.Int("original_extent", extent))
	return nil
}

// mapColumns builds the label -> physical column mapping for the original
// table, covering columns 1 through the table extent. The mapping is built
// exactly once per rewrite and is append-only afterwards.
func (r *Rewriter) mapColumns(headerRowX int) (map[string]int, int, error) {
	extent, err := TableExtent(r.f, r.sheetName, headerRowX)
	if err != nil {
		return nil, 0, err
	}

	mapping := make(map[string]int, extent)
	for col := 1; col <= extent; col++ {
		cell, err := excelize.CoordinatesToCellName(col, headerRowX)
		if err != nil {
			return nil, 0, err
		}
		label, err := r.f.GetCellValue(r.sheetName, cell)
		if err != nil {
			return nil, 0, err
		}
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			mapping[trimmed] = col
		}
	}
	return mapping, extent, nil
}

// extendHeader appends one header cell per new column after the table
// extent, copying the style of the last original header cell. Columns whose
// label already exists keep their original position. Returns the first
// unused column index after extension.
func (r *Rewriter) extendHeader(headerRowX, extent int, newColumns []string, mapping map[string]int) (int, error) {
	lastHeaderCell, err := excelize.CoordinatesToCellName(extent, headerRowX)
	if err != nil {
		return 0, err
	}
	headerStyle, err := CaptureStyle(r.f, r.sheetName, lastHeaderCell)
	if err != nil {
		return 0, err
	}

	nextCol := extent + 1
	for _, name := range newColumns {
		if _, exists := mapping[name]; exists {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(nextCol, headerRowX)
		if err != nil {
			return 0, err
		}
		if err := r.f.SetCellValue(r.sheetName, cell, name); err != nil {
			return 0, err
		}
		if err := headerStyle.Apply(r.f, r.sheetName, cell); err != nil {
			return 0, err
		}
		mapping[name] = nextCol
		colName, _ := excelize.ColumnNumberToName(nextCol)
		r.log.Info("added column", zap.String("column", name), zap.String("position", colName))
		nextCol++
	}
	return nextCol, nil
}

// captureDataStyles copies the style of each original column's cell in the
// first data row, for reapplication to rewritten cells. Returns nil when the
// sheet has no data row to sample.
func (r *Rewriter) captureDataStyles(dataStartRow, extent int) (map[int]*CellStyle, error) {
	rows, err := r.f.GetRows(r.sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) < dataStartRow {
		return nil, nil
	}

	styles := make(map[int]*CellStyle, extent)
	for col := 1; col <= extent; col++ {
		cell, err := excelize.CoordinatesToCellName(col, dataStartRow)
		if err != nil {
			return nil, err
		}
		style, err := CaptureStyle(r.f, r.sheetName, cell)
		if err != nil {
			return nil, err
		}
		styles[col] = style
	}
	return styles, nil
}

// clearDataRows nulls every cell value in the data region of the original
// table, from the first data row through the sheet's last row. This removes
// orphaned trailing rows left over from a previously larger dataset. Nothing
// at or above the header row is touched.
func (r *Rewriter) clearDataRows(dataStartRow, extent int) error {
	rows, err := r.f.GetRows(r.sheetName)
	if err != nil {
		return err
	}
	for row := dataStartRow; row <= len(rows); row++ {
		for col := 1; col <= extent; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := r.f.SetCellValue(r.sheetName, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRows writes the enriched rows in one pass. Original columns keep
// their own sampled style; appended columns inherit the style of the row's
// last original column. Blank-ish markers are normalized to an empty value.
func (r *Rewriter) writeRows(dataStartRow, extent int, mapping map[string]int, dataStyles map[int]*CellStyle, rows []map[string]string) error {
	for i, values := range rows {
		rowX := dataStartRow + i
		for label, col := range mapping {
			value, ok := values[label]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, rowX)
			if err != nil {
				return err
			}
			if err := r.f.SetCellValue(r.sheetName, cell, normalizeValue(value)); err != nil {
				return err
			}

			style := dataStyles[col]
			if col > extent {
				style = dataStyles[extent]
			}
			if style != nil {
				if err := style.Apply(r.f, r.sheetName, cell); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// sizeNewColumns applies the fixed configured width to the appended columns.
func (r *Rewriter) sizeNewColumns(startCol, endCol int) error {
	if startCol >= endCol {
		return nil
	}
	start, err := excelize.ColumnNumberToName(startCol)
	if err != nil {
		return err
	}
	end, err := excelize.ColumnNumberToName(endCol - 1)
	if err != nil {
		return err
	}
	return r.f.SetColWidth(r.sheetName, start, end, r.newColumnWidth)
}

// normalizeValue converts textual null markers to an empty value so they are
// never written into the sheet as literal "NaN"/"None"/"null" text.
func normalizeValue(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "nan", "none", "null":
		return ""
	}
	return v
}
