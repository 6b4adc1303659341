package enrich

import (
	"errors"
	"fmt"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/sheet"
)

// ErrUnsupportedFile indicates the uploaded file is not a supported
// spreadsheet format.
var ErrUnsupportedFile = errors.New("unsupported file type, only .xlsx is supported")

// SheetNotFoundError indicates the requested sheet does not exist in the
// workbook.
type SheetNotFoundError struct {
	// Sheet is the requested sheet name.
	Sheet string
	// Available lists the sheet names present in the workbook.
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found, available sheets: %v", e.Sheet, e.Available)
}

// IsInputError reports whether err is a caller-fixable input error (bad
// file type, missing sheet, missing reference column) as opposed to an
// opaque processing failure.
func IsInputError(err error) bool {
	var sheetErr *SheetNotFoundError
	var columnErr *sheet.ColumnNotFoundError
	return errors.Is(err, ErrUnsupportedFile) ||
		errors.As(err, &sheetErr) ||
		errors.As(err, &columnErr)
}
