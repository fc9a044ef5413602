package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"centime/internal/core"
)

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_cents, current_cents, deadline, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullDate(g.Deadline), g.Completed, nullDate(g.CompletedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("create goal %s: %w", g.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_cents, current_cents, deadline, completed, completed_at
		FROM goals WHERE id = ?`, id)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET name = ?, target_cents = ?, current_cents = ?, deadline = ?, completed = ?, completed_at = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullDate(g.Deadline), g.Completed, nullDate(g.CompletedAt), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, deadline, completed, completed_at
		FROM goals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	out := []core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g              core.Goal
		target         int64
		current        int64
		rawDeadline    sql.NullString
		rawCompletedAt sql.NullString
	)
	if err := row.Scan(&g.ID, &g.Name, &target, &current, &rawDeadline, &g.Completed, &rawCompletedAt); err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = core.Money{Cents: target}
	g.CurrentAmount = core.Money{Cents: current}

	var err error
	if g.Deadline, err = scanDate(rawDeadline); err != nil {
		return core.Goal{}, err
	}
	if g.CompletedAt, err = scanDate(rawCompletedAt); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}
