package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const staffColumns = `id, telegram_id, full_name, role, is_active, created_at`

type StaffRepository struct {
	db *base.Repository
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: base.NewRepository(pool)}
}

// GetStaff получает сотрудника по ID
func (r *StaffRepository) GetStaff(ctx context.Context, id int64) (*model.Staff, error) {
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
}

// GetStaffByTelegramID получает сотрудника по Telegram ID
func (r *StaffRepository) GetStaffByTelegramID(ctx context.Context, telegramID int64) (*model.Staff, error) {
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff WHERE telegram_id = $1`, telegramID)
}

func (r *StaffRepository) getOne(ctx context.Context, query string, arg int64) (*model.Staff, error) {
	staff, err := scanStaff(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}

// ListStaff возвращает сотрудников; role == nil - всех
func (r *StaffRepository) ListStaff(ctx context.Context, role *model.Role) ([]*model.Staff, error) {
	var where base.Where
	if role != nil {
		where.Add("role = ?", *role)
	}

	rows, err := r.db.Query(ctx, `SELECT `+staffColumns+` FROM staff`+where.SQL()+` ORDER BY full_name`, where.Args()...)
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
func (r *StaffRepository) CreateStaff(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (telegram_id, full_name, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, staff.TelegramID, staff.FullName, staff.Role, staff.IsActive).
		Scan(&staff.ID, &staff.CreatedAt)
	if err != nil {
		return fmt.Errorf("create staff: %w", err)
	}

	return nil
}

func scanStaff(row pgx.Row) (*model.Staff, error) {
	var staff model.Staff
	err := row.Scan(
		&staff.ID,
		&staff.TelegramID,
		&staff.FullName,
		&staff.Role,
		&staff.IsActive,
		&staff.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}
