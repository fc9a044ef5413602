package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"centime/internal/core"
)

// GoogleSheets appends transactions to a spreadsheet tab using a service
// account.
type GoogleSheets struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Sink = (*GoogleSheets)(nil)

// GoogleConfig carries the credentials and target of a Sheets sink.
// Exactly one of CredentialsJSON or CredentialsFile must be set.
type GoogleConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewGoogleSheets(ctx context.Context, cfg GoogleConfig) (*GoogleSheets, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		var err error
		credentialsJSON, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleSheets{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Append writes one row per transaction below the existing data and
// returns the A1 range that was written.
func (g *GoogleSheets) Append(ctx context.Context, txns []core.Transaction) (string, error) {
	if g.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(txns) == 0 {
		return "", nil
	}

	rng := fmt.Sprintf("%s!A:A", g.sheetName)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", g.sheetName, err)
	}
	firstRow := len(resp.Values) + 1

	values := make([][]any, len(txns))
	for i, t := range txns {
		values[i] = []any{
			t.Date.String(),
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.Float64(),
		}
	}

	lastRow := firstRow + len(txns) - 1
	dataRange := fmt.Sprintf("%s!A%d:E%d", g.sheetName, firstRow, lastRow)
	vr := &gsheet.ValueRange{Values: values}
	_, err = g.svc.Spreadsheets.Values.Update(g.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}
	return dataRange, nil
}
