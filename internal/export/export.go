// Package export writes ledger transactions to external destinations:
// CSV streams and Google Sheets.
package export

import (
	"context"

	"centime/internal/core"
)

// Sink is an outbound destination for a batch of transactions. Append
// returns a destination-specific reference to where the rows landed.
type Sink interface {
	Append(ctx context.Context, txns []core.Transaction) (ref string, err error)
}
