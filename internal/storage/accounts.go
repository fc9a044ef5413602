package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"centime/internal/core"
)

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, kind, balance_cents, currency, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Kind), a.Balance.Cents, a.Currency, a.Active)
	if isUniqueViolation(err) {
		return fmt.Errorf("create account %s: %w", a.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, balance_cents, currency, active FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, kind = ?, balance_cents = ?, currency = ?, active = ?
		WHERE id = ?`,
		a.Name, string(a.Kind), a.Balance.Cents, a.Currency, a.Active, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, a.ID)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, balance_cents, currency, active FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdjustAccountBalance applies a signed delta in cents to an account's
// stored balance.
func (r *SQLiteRepository) AdjustAccountBalance(ctx context.Context, id string, deltaCents int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`, deltaCents, id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	return requireRow(res, id)
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a     core.Account
		kind  string
		cents int64
	)
	if err := row.Scan(&a.ID, &a.Name, &kind, &cents, &a.Currency, &a.Active); err != nil {
		return core.Account{}, err
	}
	a.Kind = core.AccountKind(kind)
	a.Balance = core.Money{Cents: cents}
	return a, nil
}
