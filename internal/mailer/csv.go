package mailer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadRecipientCSV reads a single-column CSV of email addresses. Blank lines
// are ignored. Cells that do not look like an email address (typically a
// header row) are dropped and counted rather than failing the whole file.
func ReadRecipientCSV(r io.Reader) (addrs []string, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, 0, fmt.Errorf("reading recipient CSV: %w", readErr)
		}
		if len(row) == 0 {
			continue
		}
		cell := row[0]
		if cell == "" {
			continue
		}
		if !ValidAddress(cell) {
			skipped++
			continue
		}
		addrs = append(addrs, cell)
	}
	return addrs, skipped, nil
}
