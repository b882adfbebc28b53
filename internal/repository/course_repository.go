package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, name, category, total_hours, base_price, discounted_price, is_active, created_at`

type CourseRepository struct {
	db *base.Repository
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: base.NewRepository(pool)}
}

// GetCourse получает курс по ID
func (r *CourseRepository) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}
	return course, nil
}

// ListCourses возвращает каталог курсов
func (r *CourseRepository) ListCourses(ctx context.Context, activeOnly bool) ([]*model.Course, error) {
	var where base.Where
	if activeOnly {
		where.Add("is_active")
	}

	rows, err := r.db.Query(ctx, `SELECT `+courseColumns+` FROM courses`+where.SQL()+` ORDER BY name`, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

// CreateCourse добавляет курс
func (r *CourseRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (name, category, total_hours, base_price, discounted_price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		course.Name,
		course.Category,
		course.TotalHours,
		course.BasePrice,
		course.DiscountedPrice,
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// SetCourseActive архивирует или возвращает курс
func (r *CourseRepository) SetCourseActive(ctx context.Context, id int64, active bool) error {
	if err := r.db.ExecOne(ctx, `UPDATE courses SET is_active = $2 WHERE id = $1`, id, active); err != nil {
		return fmt.Errorf("set course active %d: %w", id, err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Category,
		&course.TotalHours,
		&course.BasePrice,
		&course.DiscountedPrice,
		&course.IsActive,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
