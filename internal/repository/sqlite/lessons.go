package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

const lessonColumns = `id, package_id, instructor_id, session_date, duration_minutes, location, summary, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListLessons возвращает занятия по фильтру, по времени начала
func (s *Store) ListLessons(ctx context.Context, filter service.LessonFilter) ([]*model.Lesson, error) {
	var w where
	if filter.InstructorID != nil {
		w.add("instructor_id = ?", *filter.InstructorID)
	}
	if filter.PackageID != nil {
		w.add("package_id = ?", *filter.PackageID)
	}
	if !filter.From.IsZero() {
		w.add("session_date >= ?", toMillis(filter.From))
	}
	if !filter.To.IsZero() {
		w.add("session_date < ?", toMillis(filter.To))
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, 0, len(filter.Statuses))
		args := make([]any, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			marks = append(marks, "?")
			args = append(args, string(status))
		}
		w.add("status IN ("+strings.Join(marks, ", ")+")", args...)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+lessonColumns+` FROM lessons`+w.sql()+` ORDER BY session_date, id`, w.args...)
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
func (s *Store) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	lesson, err := scanLesson(s.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}
	return lesson, nil
}

// CreateLesson создаёт занятие
func (s *Store) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (package_id, instructor_id, session_date, duration_minutes, location, summary, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lesson.PackageID,
		lesson.InstructorID,
		toMillis(lesson.SessionDate),
		lesson.DurationMinutes,
		lesson.Location,
		lesson.Summary,
		string(lesson.Status),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	lesson.ID = id
	lesson.CreatedAt = fromMillis(now)
	lesson.UpdatedAt = lesson.CreatedAt
	return nil
}

// UpdateLesson перезаписывает занятие (last write wins)
func (s *Store) UpdateLesson(ctx context.Context, lesson *model.Lesson) error {
	now := nowMillis()
	err := execOne(ctx, s.db,
		`UPDATE lessons
		 SET package_id = ?, instructor_id = ?, session_date = ?, duration_minutes = ?,
		     location = ?, summary = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		lesson.PackageID,
		lesson.InstructorID,
		toMillis(lesson.SessionDate),
		lesson.DurationMinutes,
		lesson.Location,
		lesson.Summary,
		string(lesson.Status),
		now,
		lesson.ID,
	)
	if err != nil {
		return fmt.Errorf("update lesson %d: %w", lesson.ID, err)
	}
	lesson.UpdatedAt = fromMillis(now)
	return nil
}

// DeleteLesson удаляет занятие
func (s *Store) DeleteLesson(ctx context.Context, id int64) error {
	if err := execOne(ctx, s.db, `DELETE FROM lessons WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete lesson %d: %w", id, err)
	}
	return nil
}

// CompletePastLessons отмечает проведёнными запланированные занятия, закончившиеся до before
func (s *Store) CompletePastLessons(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET status = 'completed', updated_at = ?
		 WHERE status = 'planned' AND session_date + duration_minutes * 60000 <= ?`,
		nowMillis(),
		toMillis(before),
	)
	if err != nil {
		return 0, fmt.Errorf("complete past lessons: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete past lessons: %w", err)
	}
	return n, nil
}

func scanLesson(row rowScanner) (*model.Lesson, error) {
	var (
		lesson                          model.Lesson
		sessionDate, createdAt, updated int64
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.PackageID,
		&lesson.InstructorID,
		&sessionDate,
		&lesson.DurationMinutes,
		&lesson.Location,
		&lesson.Summary,
		&lesson.Status,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	lesson.SessionDate = fromMillis(sessionDate)
	lesson.CreatedAt = fromMillis(createdAt)
	lesson.UpdatedAt = fromMillis(updated)
	return &lesson, nil
}
