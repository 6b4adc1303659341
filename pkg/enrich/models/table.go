package models

// Table represents the tabular content of one sheet, read below a detected
// header row.
type Table struct {
	// HeaderRow is the 0-based index of the row whose values are the column
	// labels for everything in Rows.
	HeaderRow int `json:"header_row"`
	// Headers contains the column labels in physical column order.
	Headers []string `json:"headers"`
	// Rows contains the data rows below the header, each padded to the
	// header width.
	Rows [][]string `json:"rows"`
}

// Row returns the values of data row i keyed by column label. Labels that are
// blank in the header row are skipped.
func (t *Table) Row(i int) map[string]string {
	out := make(map[string]string, len(t.Headers))
	for c, h := range t.Headers {
		if h == "" {
			continue
		}
		if c < len(t.Rows[i]) {
			out[h] = t.Rows[i][c]
		} else {
			out[h] = ""
		}
	}
	return out
}
