package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"centime/internal/core"
)

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, type, amount_cents, category, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.String())
	if isUniqueViolation(err) {
		return fmt.Errorf("create transaction %s: %w", t.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// CreateTransferPair writes both legs of a transfer and the two balance
// adjustments in a single database transaction, so a failure never leaves
// a one-sided transfer behind.
func (r *SQLiteRepository) CreateTransferPair(ctx context.Context, out, in core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	for _, t := range []core.Transaction{out, in} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, account_id, type, amount_cents, category, description, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.AccountID, string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.String()); err != nil {
			return fmt.Errorf("create transfer leg: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents - ? WHERE id = ?`,
		out.Amount.Cents, out.AccountID); err != nil {
		return fmt.Errorf("debit transfer source: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
		in.Amount.Cents, in.AccountID); err != nil {
		return fmt.Errorf("credit transfer target: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, type, amount_cents, category, description, date
		FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, type = ?, amount_cents = ?, category = ?, description = ?, date = ?
		WHERE id = ?`,
		t.AccountID, string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.String(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, account_id, type, amount_cents, category, description, date
		FROM transactions ORDER BY date DESC, id`)
}

// ListTransactionsBetween returns transactions with from <= date <= to.
// ISO dates sort lexicographically so the range is a plain text comparison.
func (r *SQLiteRepository) ListTransactionsBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, account_id, type, amount_cents, category, description, date
		FROM transactions WHERE date >= ? AND date <= ? ORDER BY date DESC, id`,
		from.String(), to.String())
}

func (r *SQLiteRepository) ListTransactionsByAccount(ctx context.Context, accountID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, account_id, type, amount_cents, category, description, date
		FROM transactions WHERE account_id = ? ORDER BY date DESC, id`, accountID)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		typ     string
		cents   int64
		rawDate string
	)
	if err := row.Scan(&t.ID, &t.AccountID, &typ, &cents, &t.Category, &t.Description, &rawDate); err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Cents: cents}
	t.Date = date
	return t, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
