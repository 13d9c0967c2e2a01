package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implements the ItemRepository port over PostgreSQL.
type ItemRepo struct {
	db Querier
}

// NewItemRepository builds the persistence adapter for catalogue items.
func NewItemRepository(db Querier) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = `
	id, company_id, sku, name, description, price, tax_rate,
	track_quantity, minimum_quantity, unit_measure, created_at, updated_at`

// GetByID fetches an item by ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.queryOne(query, id)
}

// GetByCompanyAndSKU resolves an item by its SKU inside one company.
func (r *ItemRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE company_id = $1 AND sku = $2`
	return r.queryOne(query, companyID, sku)
}

// ListTracked returns the company's inventory-tracked items.
func (r *ItemRepo) ListTracked(companyID string) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE company_id = $1 AND track_quantity = TRUE
		ORDER BY name`
	rows, err := r.db.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list tracked items: %w", err)
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepo) queryOne(query string, args ...any) (*entity.Item, error) {
	it, err := scanItem(r.db.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.CompanyID, &it.SKU, &it.Name, &it.Description, &it.Price, &it.TaxRate,
		&it.TrackQuantity, &it.MinimumQuantity, &it.UnitMeasure, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
