package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implements the WarehouseRepository port over PostgreSQL.
type WarehouseRepo struct {
	db Querier
}

// NewWarehouseRepository builds the persistence adapter for warehouses.
func NewWarehouseRepository(db Querier) *WarehouseRepo {
	return &WarehouseRepo{db: db}
}

const warehouseColumns = `id, company_id, name, address, is_default, created_at, updated_at`

// GetByID fetches a warehouse by ID.
func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`
	return r.queryOne(query, id)
}

// ListByCompany lists the company's warehouses.
func (r *WarehouseRepo) ListByCompany(companyID string) ([]*entity.Warehouse, error) {
	query := `
		SELECT ` + warehouseColumns + `
		FROM warehouses WHERE company_id = $1
		ORDER BY is_default DESC, name`
	rows, err := r.db.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}
	return warehouses, nil
}

// GetOrCreateDefault returns the company's default warehouse, creating one
// named "Main" when the company has none yet.
func (r *WarehouseRepo) GetOrCreateDefault(companyID string) (*entity.Warehouse, error) {
	query := `
		SELECT ` + warehouseColumns + `
		FROM warehouses WHERE company_id = $1
		ORDER BY is_default DESC, created_at
		LIMIT 1`
	w, err := r.queryOne(query, companyID)
	if err != nil {
		return nil, err
	}
	if w != nil {
		return w, nil
	}

	now := time.Now()
	w = &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      "Main",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	insert := `
		INSERT INTO warehouses (id, company_id, name, address, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Exec(context.Background(), insert,
		w.ID, w.CompanyID, w.Name, w.Address, w.IsDefault, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert default warehouse: %w", err)
	}
	return w, nil
}

func (r *WarehouseRepo) queryOne(query string, args ...any) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.db.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
