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

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, userID string) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepo{db: pool}
}

const userColumns = `id, name, email, password, role, profile_picture_url, access, created_at, updated_at`

func (r *userRepo) CreateUser(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, error) {
	start := time.Now()

	logger.Logger.Info("Creating user in database",
		"name", name,
		"email", email,
		"role", string(role),
	)

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO users (id, name, email, password, role, profile_picture_url, access, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.Password, user.Role,
		user.ProfilePictureURL, user.Access, user.CreatedAt, user.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		logger.Logger.Error("Failed to insert user",
			"email", email,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("insert user failed: %w", err)
	}

	return user, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns)
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))

	logger.LogDatabaseOperation(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email=$1`, userColumns)
	u, err := scanUser(r.db.QueryRow(ctx, query, email))

	logger.LogDatabaseOperation(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Logger.Warn("User not found in database", "email", email)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}
	return u, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]*model.User, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)
	rows, err := r.db.Query(ctx, query)

	logger.LogDatabaseOperation(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query users failed: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) UpdateUser(ctx context.Context, u *model.User) error {
	start := time.Now()

	u.UpdatedAt = time.Now()
	query := `UPDATE users SET name=$1, email=$2, role=$3, profile_picture_url=$4, access=$5, updated_at=$6
	          WHERE id=$7`
	tag, err := r.db.Exec(ctx, query, u.Name, u.Email, u.Role, u.ProfilePictureURL, u.Access, u.UpdatedAt, u.ID)

	logger.LogDatabaseOperation(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepo) DeleteUser(ctx context.Context, userID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID)

	logger.LogDatabaseOperation(ctx, "delete", "users", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role,
		&u.ProfilePictureURL, &u.Access, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
