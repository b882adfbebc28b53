package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const packageColumns = `id, client_id, course_id, total_hours, contract_price, status, instructor_id, created_at, updated_at`

type PackageRepository struct {
	db *base.Repository
}

func NewPackageRepository(pool *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: base.NewRepository(pool)}
}

// GetPackage получает пакет по ID
func (r *PackageRepository) GetPackage(ctx context.Context, id int64) (*model.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package by id: %w", err)
	}

	return pkg, nil
}

// ListPackages возвращает пакеты по фильтру, новые первыми
func (r *PackageRepository) ListPackages(ctx context.Context, filter service.PackageFilter) ([]*model.Package, error) {
	var where base.Where
	if filter.ClientID != nil {
		where.Add("client_id = ?", *filter.ClientID)
	}
	if filter.InstructorID != nil {
		where.Add("instructor_id = ?", *filter.InstructorID)
	}
	if filter.Status != nil {
		where.Add("status = ?", *filter.Status)
	}

	query := `SELECT ` + packageColumns + ` FROM packages` + where.SQL() + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, where.Args()...)
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
func (r *PackageRepository) CreatePackage(ctx context.Context, pkg *model.Package) error {
	query := `
		INSERT INTO packages (client_id, course_id, total_hours, contract_price, status, instructor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		pkg.ClientID,
		pkg.CourseID,
		pkg.TotalHours,
		pkg.ContractPrice,
		pkg.Status,
		pkg.InstructorID,
	).Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	return nil
}

// UpdatePackage обновляет статус, объём, цену и инструктора
func (r *PackageRepository) UpdatePackage(ctx context.Context, pkg *model.Package) error {
	query := `
		UPDATE packages
		SET total_hours = $2, contract_price = $3, status = $4, instructor_id = $5, updated_at = NOW()
		WHERE id = $1
	`

	err := r.db.ExecOne(ctx, query, pkg.ID, pkg.TotalHours, pkg.ContractPrice, pkg.Status, pkg.InstructorID)
	if err != nil {
		return fmt.Errorf("update package %d: %w", pkg.ID, err)
	}

	return nil
}

func scanPackage(row pgx.Row) (*model.Package, error) {
	var pkg model.Package
	err := row.Scan(
		&pkg.ID,
		&pkg.ClientID,
		&pkg.CourseID,
		&pkg.TotalHours,
		&pkg.ContractPrice,
		&pkg.Status,
		&pkg.InstructorID,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
