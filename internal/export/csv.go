package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"centime/internal/core"
)

var csvHeader = []string{"id", "date", "type", "category", "description", "amount", "account_id"}

// WriteCSV streams transactions as CSV with a header row. Amounts are
// decimal units with two digits, dates ISO formatted.
func WriteCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			t.ID,
			t.Date.String(),
			string(t.Type),
			t.Category,
			t.Description,
			fmt.Sprintf("%.2f", t.Amount.Float64()),
			t.AccountID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
