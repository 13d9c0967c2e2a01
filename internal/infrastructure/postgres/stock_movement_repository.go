package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implements the StockMovementRepository port over
// PostgreSQL. The ledger is append-only: no Update or Delete exists.
type StockMovementRepo struct {
	db Querier
}

// NewStockMovementRepository builds the persistence adapter for the stock ledger.
func NewStockMovementRepository(db Querier) *StockMovementRepo {
	return &StockMovementRepo{db: db}
}

const stockMovementColumns = `
	id, company_id, warehouse_id, item_id, source_type, source_id,
	quantity, unit_cost, total_cost, movement_date, note,
	balance_quantity, balance_value, created_at, created_by`

// Create appends a movement row.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			id, company_id, warehouse_id, item_id, source_type, source_id,
			quantity, unit_cost, total_cost, movement_date, note,
			balance_quantity, balance_value, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.WarehouseID, m.ItemID, m.SourceType, m.SourceID,
		m.Quantity, m.UnitCost, m.TotalCost, m.MovementDate, m.Note,
		m.BalanceQuantity, m.BalanceValue, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID fetches a movement by ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE id = $1`
	return r.queryOne(query, id)
}

// Latest returns the most recent movement for (company, warehouse, item).
func (r *StockMovementRepo) Latest(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND warehouse_id = $2 AND item_id = $3
		ORDER BY movement_date DESC, created_at DESC, id DESC
		LIMIT 1`
	return r.queryOne(query, companyID, warehouseID, itemID)
}

// LatestForUpdate is Latest with a row lock. Inside a transaction concurrent
// writers against the same (item, warehouse) block here until commit.
func (r *StockMovementRepo) LatestForUpdate(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND warehouse_id = $2 AND item_id = $3
		ORDER BY movement_date DESC, created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE`
	return r.queryOne(query, companyID, warehouseID, itemID)
}

// LatestPerWarehouse returns the latest movement of the item in each
// warehouse that has any.
func (r *StockMovementRepo) LatestPerWarehouse(companyID, itemID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT DISTINCT ON (warehouse_id) ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND item_id = $2
		ORDER BY warehouse_id, movement_date DESC, created_at DESC, id DESC`
	return r.queryMany(query, companyID, itemID)
}

// FindBySource returns the movement linked to an originating document line.
func (r *StockMovementRepo) FindBySource(companyID, sourceType, sourceID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND source_type = $2 AND source_id = $3
		ORDER BY created_at
		LIMIT 1`
	return r.queryOne(query, companyID, sourceType, sourceID)
}

// History lists an item's movements, newest first, with optional filters.
func (r *StockMovementRepo) History(companyID, itemID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND item_id = $2`
	args := []any{companyID, itemID}

	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		query += fmt.Sprintf(" AND warehouse_id = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND movement_date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND movement_date <= $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY movement_date DESC, created_at DESC, id DESC LIMIT $%d", len(args))

	return r.queryMany(query, args...)
}

// ListAllOrdered streams the company's full ledger in posting order.
func (r *StockMovementRepo) ListAllOrdered(companyID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE company_id = $1
		ORDER BY warehouse_id, item_id, movement_date, created_at, id`
	return r.queryMany(query, companyID)
}

func (r *StockMovementRepo) queryOne(query string, args ...any) (*entity.StockMovement, error) {
	m, err := scanStockMovement(r.db.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) queryMany(query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.db.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.StockMovement
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}
	return movements, nil
}

func scanStockMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.WarehouseID, &m.ItemID, &m.SourceType, &m.SourceID,
		&m.Quantity, &m.UnitCost, &m.TotalCost, &m.MovementDate, &m.Note,
		&m.BalanceQuantity, &m.BalanceValue, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
