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

type CoachRepository interface {
	CreateProfile(ctx context.Context, p *model.CoachProfile) (*model.CoachProfile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*model.CoachProfile, error)
	ListProfiles(ctx context.Context) ([]*model.CoachProfile, error)
	UpdateProfile(ctx context.Context, p *model.CoachProfile) error
	DeleteProfile(ctx context.Context, profileID string) error
}

type coachRepo struct {
	db *pgxpool.Pool
}

func NewCoachRepository(pool *pgxpool.Pool) CoachRepository {
	return &coachRepo{db: pool}
}

func (r *coachRepo) CreateProfile(ctx context.Context, p *model.CoachProfile) (*model.CoachProfile, error) {
	start := time.Now()

	now := time.Now()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO coach_profiles (id, user_id, bio, categories, is_bestseller, intro_video_url, position, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query, p.ID, p.UserID, p.Bio, p.Categories, p.IsBestseller,
		p.IntroVideoURL, p.Index, p.CreatedAt, p.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "coach_profiles", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert coach profile failed: %w", err)
	}
	return p, nil
}

func (r *coachRepo) GetProfileByUserID(ctx context.Context, userID string) (*model.CoachProfile, error) {
	start := time.Now()

	query := `SELECT id, user_id, bio, categories, is_bestseller, intro_video_url, position, created_at, updated_at
	          FROM coach_profiles WHERE user_id=$1`
	p, err := scanCoachProfile(r.db.QueryRow(ctx, query, userID))

	logger.LogDatabaseOperation(ctx, "select", "coach_profiles", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("get coach profile failed: %w", err)
	}
	return p, nil
}

func (r *coachRepo) ListProfiles(ctx context.Context) ([]*model.CoachProfile, error) {
	start := time.Now()

	query := `SELECT id, user_id, bio, categories, is_bestseller, intro_video_url, position, created_at, updated_at
	          FROM coach_profiles ORDER BY position ASC, created_at DESC`
	rows, err := r.db.Query(ctx, query)

	logger.LogDatabaseOperation(ctx, "select", "coach_profiles", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query coach profiles failed: %w", err)
	}
	defer rows.Close()

	var profiles []*model.CoachProfile
	for rows.Next() {
		p, err := scanCoachProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coach profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *coachRepo) UpdateProfile(ctx context.Context, p *model.CoachProfile) error {
	start := time.Now()

	p.UpdatedAt = time.Now()
	query := `UPDATE coach_profiles SET bio=$1, categories=$2, is_bestseller=$3, intro_video_url=$4, position=$5, updated_at=$6
	          WHERE id=$7`
	tag, err := r.db.Exec(ctx, query, p.Bio, p.Categories, p.IsBestseller, p.IntroVideoURL, p.Index, p.UpdatedAt, p.ID)

	logger.LogDatabaseOperation(ctx, "update", "coach_profiles", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update coach profile failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCoachNotFound
	}
	return nil
}

func (r *coachRepo) DeleteProfile(ctx context.Context, profileID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM coach_profiles WHERE id=$1`, profileID)

	logger.LogDatabaseOperation(ctx, "delete", "coach_profiles", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete coach profile failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCoachNotFound
	}
	return nil
}

func scanCoachProfile(row pgx.Row) (*model.CoachProfile, error) {
	var p model.CoachProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Bio, &p.Categories, &p.IsBestseller,
		&p.IntroVideoURL, &p.Index, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
