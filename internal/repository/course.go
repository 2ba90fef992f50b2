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

type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]*model.Course, error)
	ListCoursesByCoach(ctx context.Context, coachID string) ([]*model.Course, error)
	UpdateCourse(ctx context.Context, c *model.Course) error
	DeleteCourse(ctx context.Context, courseID string) error

	CreateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error)
	GetLessonByID(ctx context.Context, lessonID string) (*model.Lesson, error)
	ListLessonsByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error)
	UpdateLesson(ctx context.Context, l *model.Lesson) error
	DeleteLesson(ctx context.Context, lessonID string) error
}

type courseRepo struct {
	db *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{db: pool}
}

func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	start := time.Now()

	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = model.CourseDraft
	}

	query := `INSERT INTO courses (id, title, description, price, coach_id, category_id, thumbnail_url, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query, c.ID, c.Title, c.Description, c.Price, c.CoachID,
		c.CategoryID, c.ThumbnailURL, c.Status, c.CreatedAt, c.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert course failed: %w", err)
	}
	return c, nil
}

func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	start := time.Now()

	query := `SELECT id, title, description, price, coach_id, category_id, thumbnail_url, status, created_at, updated_at
	          FROM courses WHERE id=$1`
	c, err := scanCourse(r.db.QueryRow(ctx, query, courseID))

	logger.LogDatabaseOperation(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course failed: %w", err)
	}
	return c, nil
}

func (r *courseRepo) ListCourses(ctx context.Context) ([]*model.Course, error) {
	return r.listCourses(ctx, `SELECT id, title, description, price, coach_id, category_id, thumbnail_url, status, created_at, updated_at
	          FROM courses ORDER BY created_at DESC`)
}

func (r *courseRepo) ListCoursesByCoach(ctx context.Context, coachID string) ([]*model.Course, error) {
	return r.listCourses(ctx, `SELECT id, title, description, price, coach_id, category_id, thumbnail_url, status, created_at, updated_at
	          FROM courses WHERE coach_id=$1 ORDER BY created_at DESC`, coachID)
}

func (r *courseRepo) listCourses(ctx context.Context, query string, args ...any) ([]*model.Course, error) {
	start := time.Now()

	rows, err := r.db.Query(ctx, query, args...)

	logger.LogDatabaseOperation(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query courses failed: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) error {
	start := time.Now()

	c.UpdatedAt = time.Now()
	query := `UPDATE courses SET title=$1, description=$2, price=$3, category_id=$4, thumbnail_url=$5, status=$6, updated_at=$7
	          WHERE id=$8`
	tag, err := r.db.Exec(ctx, query, c.Title, c.Description, c.Price, c.CategoryID,
		c.ThumbnailURL, c.Status, c.UpdatedAt, c.ID)

	logger.LogDatabaseOperation(ctx, "update", "courses", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update course failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *courseRepo) DeleteCourse(ctx context.Context, courseID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id=$1`, courseID)

	logger.LogDatabaseOperation(ctx, "delete", "courses", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete course failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *courseRepo) CreateLesson(ctx context.Context, l *model.Lesson) (*model.Lesson, error) {
	start := time.Now()

	now := time.Now()
	l.ID = uuid.New().String()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Title == "" {
		l.Title = "New Lesson"
	}

	query := `INSERT INTO lessons (id, title, description, course_id, video_id, position, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`
	_, err := r.db.Exec(ctx, query, l.ID, l.Title, l.Description, l.CourseID, l.VideoID,
		l.Position, l.CreatedAt, l.UpdatedAt)

	logger.LogDatabaseOperation(ctx, "insert", "lessons", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("insert lesson failed: %w", err)
	}
	return l, nil
}

func (r *courseRepo) GetLessonByID(ctx context.Context, lessonID string) (*model.Lesson, error) {
	start := time.Now()

	query := `SELECT id, title, description, course_id, COALESCE(video_id, ''), position, created_at, updated_at
	          FROM lessons WHERE id=$1`
	l, err := scanLesson(r.db.QueryRow(ctx, query, lessonID))

	logger.LogDatabaseOperation(ctx, "select", "lessons", time.Since(start), err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("get lesson failed: %w", err)
	}
	return l, nil
}

func (r *courseRepo) ListLessonsByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	start := time.Now()

	query := `SELECT id, title, description, course_id, COALESCE(video_id, ''), position, created_at, updated_at
	          FROM lessons WHERE course_id=$1 ORDER BY position ASC, created_at ASC`
	rows, err := r.db.Query(ctx, query, courseID)

	logger.LogDatabaseOperation(ctx, "select", "lessons", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("query lessons failed: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson row: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *courseRepo) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	start := time.Now()

	l.UpdatedAt = time.Now()
	query := `UPDATE lessons SET title=$1, description=$2, video_id=NULLIF($3, ''), position=$4, updated_at=$5
	          WHERE id=$6`
	tag, err := r.db.Exec(ctx, query, l.Title, l.Description, l.VideoID, l.Position, l.UpdatedAt, l.ID)

	logger.LogDatabaseOperation(ctx, "update", "lessons", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("update lesson failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLessonNotFound
	}
	return nil
}

func (r *courseRepo) DeleteLesson(ctx context.Context, lessonID string) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id=$1`, lessonID)

	logger.LogDatabaseOperation(ctx, "delete", "lessons", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("delete lesson failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLessonNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.CoachID, &c.CategoryID,
		&c.ThumbnailURL, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var l model.Lesson
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.CourseID, &l.VideoID,
		&l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
