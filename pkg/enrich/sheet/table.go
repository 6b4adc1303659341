package sheet

import (
	"strings"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/models"
	"github.com/xuri/excelize/v2"
)

// ReadTable reads the tabular content of a sheet using headerRow (0-based)
// as the header. Rows below the header are padded to the header width.
// Trailing rows with no values at all are dropped; blank rows in the middle
// of the table are kept, since physical row position carries identity.
func ReadTable(f *excelize.File, sheetName string, headerRow int) (*models.Table, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if headerRow >= len(rows) {
		return &models.Table{HeaderRow: headerRow}, nil
	}

	headers := make([]string, len(rows[headerRow]))
	for i, label := range rows[headerRow] {
		headers[i] = strings.TrimSpace(label)
	}

	var data [][]string
	lastNonEmpty := -1
	for _, raw := range rows[headerRow+1:] {
		row := make([]string, len(headers))
		hasData := false
		for c := range headers {
			if c < len(raw) {
				row[c] = raw[c]
				if strings.TrimSpace(raw[c]) != "" {
					hasData = true
				}
			}
		}
		data = append(data, row)
		if hasData {
			lastNonEmpty = len(data) - 1
		}
	}
	data = data[:lastNonEmpty+1]

	return &models.Table{
		HeaderRow: headerRow,
		Headers:   headers,
		Rows:      data,
	}, nil
}
