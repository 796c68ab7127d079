package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type itemRepository struct {
	db querier
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (name, description, status, condition, value_cents, created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, item.Name, item.Description, item.Status, item.Condition, item.ValueCents, item.CreatedBy, now, now).Scan(&item.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	item := &domain.Item{}
	query := `SELECT id, name, COALESCE(description, ''), status, condition, value_cents, created_by, created_on, updated_on FROM items WHERE id = $1`
	var createdOn, updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.Description, &item.Status, &item.Condition, &item.ValueCents, &item.CreatedBy, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeItem, ID: id}
	}
	if err != nil {
		return nil, err
	}
	item.CreatedOn = createdOn.Format("2006-01-02")
	item.UpdatedOn = updatedOn.Format("2006-01-02")
	return item, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `UPDATE items SET name=$1, description=$2, status=$3, condition=$4, value_cents=$5, updated_on=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, item.Name, item.Description, item.Status, item.Condition, item.ValueCents, time.Now(), item.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: domain.EntityTypeItem, ID: item.ID}
	}
	return nil
}

func (r *itemRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Item, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, name, COALESCE(description, ''), status, condition, value_cents, created_by, created_on, updated_on FROM items`

	args := []interface{}{}
	argIdx := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Status, &item.Condition, &item.ValueCents, &item.CreatedBy, &createdOn, &updatedOn); err != nil {
			return nil, 0, err
		}
		item.CreatedOn = createdOn.Format("2006-01-02")
		item.UpdatedOn = updatedOn.Format("2006-01-02")
		items = append(items, item)
	}
	return items, count, rows.Err()
}
