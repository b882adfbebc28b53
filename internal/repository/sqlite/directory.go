package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
)

// GetClient получает клиента по ID
func (s *Store) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	var (
		client    model.Client
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, phone, email, gear, is_active, created_at FROM clients WHERE id = ?`, id,
	).Scan(&client.ID, &client.FullName, &client.Phone, &client.Email, &client.Gear, &client.IsActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	client.CreatedAt = fromMillis(createdAt)
	return &client, nil
}

// CreateClient создаёт клиента
func (s *Store) CreateClient(ctx context.Context, client *model.Client) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (full_name, phone, email, gear, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		client.FullName, client.Phone, client.Email, string(client.Gear), client.IsActive, now,
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	if client.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	client.CreatedAt = fromMillis(now)
	return nil
}

// SetClientActive включает или выключает клиента
func (s *Store) SetClientActive(ctx context.Context, id int64, active bool) error {
	if err := execOne(ctx, s.db, `UPDATE clients SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("set client active %d: %w", id, err)
	}
	return nil
}

const courseColumns = `id, name, category, total_hours, base_price, discounted_price, is_active, created_at`

// GetCourse получает курс по ID
func (s *Store) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := scanCourse(s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}
	return course, nil
}

// ListCourses возвращает каталог курсов
func (s *Store) ListCourses(ctx context.Context, activeOnly bool) ([]*model.Course, error) {
	var w where
	if activeOnly {
		w.add("is_active = 1")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses`+w.sql()+` ORDER BY name`, w.args...)
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
func (s *Store) CreateCourse(ctx context.Context, course *model.Course) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (name, category, total_hours, base_price, discounted_price, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		course.Name, course.Category, course.TotalHours, course.BasePrice, course.DiscountedPrice, course.IsActive, now,
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	if course.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	course.CreatedAt = fromMillis(now)
	return nil
}

// SetCourseActive архивирует или возвращает курс
func (s *Store) SetCourseActive(ctx context.Context, id int64, active bool) error {
	if err := execOne(ctx, s.db, `UPDATE courses SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("set course active %d: %w", id, err)
	}
	return nil
}

func scanCourse(row rowScanner) (*model.Course, error) {
	var (
		course    model.Course
		createdAt int64
	)
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Category,
		&course.TotalHours,
		&course.BasePrice,
		&course.DiscountedPrice,
		&course.IsActive,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	course.CreatedAt = fromMillis(createdAt)
	return &course, nil
}

const staffColumns = `id, telegram_id, full_name, role, is_active, created_at`

// GetStaff получает сотрудника по ID
func (s *Store) GetStaff(ctx context.Context, id int64) (*model.Staff, error) {
	return s.getStaff(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id)
}

// GetStaffByTelegramID получает сотрудника по Telegram ID
func (s *Store) GetStaffByTelegramID(ctx context.Context, telegramID int64) (*model.Staff, error) {
	return s.getStaff(ctx, `SELECT `+staffColumns+` FROM staff WHERE telegram_id = ?`, telegramID)
}

func (s *Store) getStaff(ctx context.Context, query string, arg int64) (*model.Staff, error) {
	staff, err := scanStaff(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}

// ListStaff возвращает сотрудников; role == nil - всех
func (s *Store) ListStaff(ctx context.Context, role *model.Role) ([]*model.Staff, error) {
	var w where
	if role != nil {
		w.add("role = ?", string(*role))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff`+w.sql()+` ORDER BY full_name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var result []*model.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		result = append(result, staff)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff: %w", err)
	}
	return result, nil
}

// CreateStaff создаёт сотрудника
func (s *Store) CreateStaff(ctx context.Context, staff *model.Staff) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO staff (telegram_id, full_name, role, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		staff.TelegramID, staff.FullName, string(staff.Role), staff.IsActive, now,
	)
	if err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	if staff.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	staff.CreatedAt = fromMillis(now)
	return nil
}

func scanStaff(row rowScanner) (*model.Staff, error) {
	var (
		staff     model.Staff
		createdAt int64
	)
	err := row.Scan(&staff.ID, &staff.TelegramID, &staff.FullName, &staff.Role, &staff.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	staff.CreatedAt = fromMillis(createdAt)
	return &staff, nil
}
