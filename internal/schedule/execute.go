package schedule

import (
	"github.com/google/uuid"

	"centime/internal/core"
)

// ExecuteResult bundles the materialized transaction with the advanced
// definition. The caller owns persistence of both.
type ExecuteResult struct {
	Transaction core.Transaction
	Definition  core.RecurringDefinition
}

// Execute materializes one transaction from the definition's template as of
// the given date and advances the schedule. The input definition is not
// modified. Paused and exhausted definitions are rejected with
// ErrInvalidState: the UI is expected not to offer the action in those
// states, but the scheduler defends against it being invoked anyway.
func Execute(def core.RecurringDefinition, asOf core.Date) (ExecuteResult, error) {
	if !def.Active || def.NextExecution == nil {
		return ExecuteResult{}, ErrInvalidState
	}

	txn := core.Transaction{
		ID:          uuid.NewString(),
		Type:        def.Type,
		Amount:      def.Amount,
		Category:    def.Category,
		Description: def.Description,
		Date:        asOf,
	}
	if txn.Description == "" {
		txn.Description = def.Name
	}

	updated := def
	executed := asOf
	updated.LastExecuted = &executed

	// The following occurrence is strictly after asOf; landing on the same
	// day again would re-execute immediately.
	if next, ok := NextOccurrence(def, asOf.AddDays(1)); ok {
		updated.NextExecution = &next
	} else {
		updated.NextExecution = nil
	}

	return ExecuteResult{Transaction: txn, Definition: updated}, nil
}

// Toggle flips a definition between paused and scheduled. Resuming
// recomputes the next execution relative to today rather than restoring
// whatever was frozen at pause time.
func Toggle(def core.RecurringDefinition, today core.Date) core.RecurringDefinition {
	updated := def
	updated.Active = !def.Active
	if updated.Active {
		if next, ok := Next(updated, today); ok {
			updated.NextExecution = &next
		} else {
			updated.NextExecution = nil
		}
	}
	return updated
}

// Refresh recomputes the next execution for an active definition, used
// after create and update so the stored field always satisfies the
// cadence invariant.
func Refresh(def core.RecurringDefinition, today core.Date) core.RecurringDefinition {
	updated := def
	if next, ok := Next(updated, today); ok {
		updated.NextExecution = &next
	} else {
		updated.NextExecution = nil
	}
	return updated
}
