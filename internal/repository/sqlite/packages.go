package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

const packageColumns = `id, client_id, course_id, total_hours, contract_price, status, instructor_id, created_at, updated_at`

// GetPackage получает пакет по ID
func (s *Store) GetPackage(ctx context.Context, id int64) (*model.Package, error) {
	pkg, err := scanPackage(s.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package by id: %w", err)
	}
	return pkg, nil
}

// ListPackages возвращает пакеты по фильтру, новые первыми
func (s *Store) ListPackages(ctx context.Context, filter service.PackageFilter) ([]*model.Package, error) {
	var w where
	if filter.ClientID != nil {
		w.add("client_id = ?", *filter.ClientID)
	}
	if filter.InstructorID != nil {
		w.add("instructor_id = ?", *filter.InstructorID)
	}
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+packageColumns+` FROM packages`+w.sql()+` ORDER BY created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*model.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return packages, nil
}

// CreatePackage создаёт пакет
func (s *Store) CreatePackage(ctx context.Context, pkg *model.Package) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO packages (client_id, course_id, total_hours, contract_price, status, instructor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.ClientID,
		pkg.CourseID,
		pkg.TotalHours,
		pkg.ContractPrice,
		string(pkg.Status),
		pkg.InstructorID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	pkg.ID = id
	pkg.CreatedAt = fromMillis(now)
	pkg.UpdatedAt = pkg.CreatedAt
	return nil
}

// UpdatePackage обновляет статус, объём, цену и инструктора
func (s *Store) UpdatePackage(ctx context.Context, pkg *model.Package) error {
	now := nowMillis()
	err := execOne(ctx, s.db,
		`UPDATE packages SET total_hours = ?, contract_price = ?, status = ?, instructor_id = ?, updated_at = ? WHERE id = ?`,
		pkg.TotalHours,
		pkg.ContractPrice,
		string(pkg.Status),
		pkg.InstructorID,
		now,
		pkg.ID,
	)
	if err != nil {
		return fmt.Errorf("update package %d: %w", pkg.ID, err)
	}
	pkg.UpdatedAt = fromMillis(now)
	return nil
}

func scanPackage(row rowScanner) (*model.Package, error) {
	var (
		pkg                  model.Package
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&pkg.ID,
		&pkg.ClientID,
		&pkg.CourseID,
		&pkg.TotalHours,
		&pkg.ContractPrice,
		&pkg.Status,
		&pkg.InstructorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	pkg.CreatedAt = fromMillis(createdAt)
	pkg.UpdatedAt = fromMillis(updatedAt)
	return &pkg, nil
}
