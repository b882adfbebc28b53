package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lessonColumns = `id, package_id, instructor_id, session_date, duration_minutes, location, summary, status, created_at, updated_at`

type LessonRepository struct {
	db *base.Repository
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{db: base.NewRepository(pool)}
}

// ListLessons возвращает занятия по фильтру, по времени начала
func (r *LessonRepository) ListLessons(ctx context.Context, filter service.LessonFilter) ([]*model.Lesson, error) {
	var where base.Where
	if filter.InstructorID != nil {
		where.Add("instructor_id = ?", *filter.InstructorID)
	}
	if filter.PackageID != nil {
		where.Add("package_id = ?", *filter.PackageID)
	}
	if !filter.From.IsZero() {
		where.Add("session_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		where.Add("session_date < ?", filter.To)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		where.Add("status = ANY(?)", statuses)
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons` + where.SQL() + ` ORDER BY session_date, id`

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

// GetLesson получает занятие по ID
func (r *LessonRepository) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// CreateLesson создаёт занятие
func (r *LessonRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (package_id, instructor_id, session_date, duration_minutes, location, summary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		lesson.PackageID,
		lesson.InstructorID,
		lesson.SessionDate,
		lesson.DurationMinutes,
		lesson.Location,
		lesson.Summary,
		lesson.Status,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// UpdateLesson перезаписывает занятие (last write wins)
func (r *LessonRepository) UpdateLesson(ctx context.Context, lesson *model.Lesson) error {
	query := `
		UPDATE lessons
		SET package_id = $2, instructor_id = $3, session_date = $4, duration_minutes = $5,
		    location = $6, summary = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		lesson.ID,
		lesson.PackageID,
		lesson.InstructorID,
		lesson.SessionDate,
		lesson.DurationMinutes,
		lesson.Location,
		lesson.Summary,
		lesson.Status,
	).Scan(&lesson.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("update lesson %d: %w", lesson.ID, base.ErrNoRowsAffected)
		}
		return fmt.Errorf("update lesson: %w", err)
	}

	return nil
}

// DeleteLesson удаляет занятие
func (r *LessonRepository) DeleteLesson(ctx context.Context, id int64) error {
	if err := r.db.ExecOne(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson %d: %w", id, err)
	}
	return nil
}

// CompletePastLessons отмечает проведёнными запланированные занятия, закончившиеся до before
func (r *LessonRepository) CompletePastLessons(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE lessons
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'planned'
		  AND session_date + make_interval(mins => duration_minutes) <= $1
	`

	n, err := r.db.ExecAffected(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("complete past lessons: %w", err)
	}
	return n, nil
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var lesson model.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.PackageID,
		&lesson.InstructorID,
		&lesson.SessionDate,
		&lesson.DurationMinutes,
		&lesson.Location,
		&lesson.Summary,
		&lesson.Status,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
