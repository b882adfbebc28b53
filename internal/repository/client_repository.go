package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	db *base.Repository
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: base.NewRepository(pool)}
}

// GetClient получает клиента по ID
func (r *ClientRepository) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	query := `
		SELECT id, full_name, phone, email, gear, is_active, created_at
		FROM clients
		WHERE id = $1
	`

	var client model.Client
	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.FullName,
		&client.Phone,
		&client.Email,
		&client.Gear,
		&client.IsActive,
		&client.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}

	return &client, nil
}

// CreateClient создаёт клиента
func (r *ClientRepository) CreateClient(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (full_name, phone, email, gear, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, client.FullName, client.Phone, client.Email, client.Gear, client.IsActive).
		Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

// SetClientActive включает или выключает клиента
func (r *ClientRepository) SetClientActive(ctx context.Context, id int64, active bool) error {
	if err := r.db.ExecOne(ctx, `UPDATE clients SET is_active = $2 WHERE id = $1`, id, active); err != nil {
		return fmt.Errorf("set client active %d: %w", id, err)
	}
	return nil
}
