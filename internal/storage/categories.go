package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"centime/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, color, budget_cents)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Color, c.Budget.Cents)
	if isUniqueViolation(err) {
		return fmt.Errorf("create category %s: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, color, budget_cents FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, type = ?, color = ?, budget_cents = ?
		WHERE id = ?`,
		c.Name, string(c.Type), c.Color, c.Budget.Cents, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update category %s: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, color, budget_cents FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c     core.Category
		kind  string
		cents int64
	)
	if err := row.Scan(&c.ID, &c.Name, &kind, &c.Color, &cents); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(kind)
	c.Budget = core.Money{Cents: cents}
	return c, nil
}
