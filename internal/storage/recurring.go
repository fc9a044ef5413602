package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"centime/internal/core"
)

const recurringColumns = `id, name, type, amount_cents, category, description, frequency,
	start_date, end_date, day_of_month, day_of_week, active, auto_create,
	notify_before, last_executed, next_execution`

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, def core.RecurringDefinition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_definitions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.Name, string(def.Type), def.Amount.Cents, def.Category, def.Description,
		string(def.Frequency), def.StartDate.String(), nullDate(def.EndDate),
		nullInt(def.DayOfMonth), nullInt(def.DayOfWeek), def.Active, def.AutoCreate,
		def.NotifyBefore, nullDate(def.LastExecuted), nullDate(def.NextExecution))
	if isUniqueViolation(err) {
		return fmt.Errorf("create recurring definition %s: %w", def.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create recurring definition: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id string) (core.RecurringDefinition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recurringColumns+` FROM recurring_definitions WHERE id = ?`, id)

	def, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringDefinition{}, fmt.Errorf("recurring definition %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("get recurring definition: %w", err)
	}
	return def, nil
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, def core.RecurringDefinition) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_definitions
		SET name = ?, type = ?, amount_cents = ?, category = ?, description = ?,
		    frequency = ?, start_date = ?, end_date = ?, day_of_month = ?, day_of_week = ?,
		    active = ?, auto_create = ?, notify_before = ?, last_executed = ?, next_execution = ?
		WHERE id = ?`,
		def.Name, string(def.Type), def.Amount.Cents, def.Category, def.Description,
		string(def.Frequency), def.StartDate.String(), nullDate(def.EndDate),
		nullInt(def.DayOfMonth), nullInt(def.DayOfWeek), def.Active, def.AutoCreate,
		def.NotifyBefore, nullDate(def.LastExecuted), nullDate(def.NextExecution), def.ID)
	if err != nil {
		return fmt.Errorf("update recurring definition: %w", err)
	}
	return requireRow(res, def.ID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring definition: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringDefinition, error) {
	return r.queryRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_definitions ORDER BY name, id`)
}

// ListDueRecurring returns active definitions whose next execution is on or
// before asOf.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, asOf core.Date) ([]core.RecurringDefinition, error) {
	return r.queryRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_definitions
		WHERE active = 1 AND next_execution IS NOT NULL AND next_execution <= ?
		ORDER BY next_execution, id`, asOf.String())
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring definitions: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringDefinition{}
	for rows.Next() {
		def, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring definition: %w", err)
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func scanRecurring(row rowScanner) (core.RecurringDefinition, error) {
	var (
		def        core.RecurringDefinition
		typ, freq  string
		cents      int64
		rawStart   string
		rawEnd     sql.NullString
		dayOfMonth sql.NullInt64
		dayOfWeek  sql.NullInt64
		rawLast    sql.NullString
		rawNext    sql.NullString
	)
	if err := row.Scan(&def.ID, &def.Name, &typ, &cents, &def.Category, &def.Description,
		&freq, &rawStart, &rawEnd, &dayOfMonth, &dayOfWeek, &def.Active, &def.AutoCreate,
		&def.NotifyBefore, &rawLast, &rawNext); err != nil {
		return core.RecurringDefinition{}, err
	}

	start, err := core.ParseDate(rawStart)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	def.Type = core.TransactionType(typ)
	def.Amount = core.Money{Cents: cents}
	def.Frequency = core.Frequency(freq)
	def.StartDate = start
	def.DayOfMonth = scanInt(dayOfMonth)
	def.DayOfWeek = scanInt(dayOfWeek)

	if def.EndDate, err = scanDate(rawEnd); err != nil {
		return core.RecurringDefinition{}, err
	}
	if def.LastExecuted, err = scanDate(rawLast); err != nil {
		return core.RecurringDefinition{}, err
	}
	if def.NextExecution, err = scanDate(rawNext); err != nil {
		return core.RecurringDefinition{}, err
	}
	return def, nil
}
