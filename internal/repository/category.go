package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-backend/internal/model"
	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

type categoryRepo struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepo{db: pool}
}

func (r *categoryRepo) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	start := time.Now()

	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO categories (id, name, description, image_url, position, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Description, c.ImageURL, c.Index, c.CreatedAt, c.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "categories", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert category failed: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) GetCategoryByID(ctx context.Context, categoryID string) (*model.Category, error) {
	start := time.Now()

	query := `SELECT id, name, description, image_url, position, created_at, updated_at FROM categories WHERE id=$1`
	row := r.db.QueryRow(ctx, query, categoryID)

	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.Index, &c.CreatedAt, &c.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "select", "categories", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category failed: %w", err)
	}
	return &c, nil
}

func (r *categoryRepo) ListCategories(ctx context.Context) ([]*model.Category, error) {
	start := time.Now()

	query := `SELECT id, name, description, image_url, position, created_at, updated_at
	          FROM categories ORDER BY position ASC, name ASC`
	rows, err := r.db.Query(ctx, query)

	logger.LogDatabaseOperation(ctx, "select", "categories", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query categories failed: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.Index, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) UpdateCategory(ctx context.Context, c *model.Category) error {
	start := time.Now()

	c.UpdatedAt = time.Now()
	query := `UPDATE categories SET name=$1, description=$2, image_url=$3, position=$4, updated_at=$5 WHERE id=$6`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Description, c.ImageURL, c.Index, c.UpdatedAt, c.ID)

	logger.LogDatabaseOperation(ctx, "update", "categories", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update category failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, categoryID)

	logger.LogDatabaseOperation(ctx, "delete", "categories", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete category failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
