package dto

// RecordMovementRequest payload for posting a stock movement.
// Direction "in" requires unit_cost; "out" takes its cost from the WAC.
// Direction "adjust" signs the quantity itself.
type RecordMovementRequest struct {
	WarehouseID string  `json:"warehouse_id" validate:"required,uuid4"`
	ItemID      string  `json:"item_id" validate:"required,uuid4"`
	Direction   string  `json:"direction" validate:"required,oneof=in out adjust initial"`
	Quantity    string  `json:"quantity" validate:"required"`
	UnitCost    *string `json:"unit_cost"`
	SourceType  string  `json:"source_type"`
	SourceID    *string `json:"source_id"`
	Date        string  `json:"date"` // YYYY-MM-DD, empty = today
	Note        string  `json:"note"`
}

// TransferRequest payload for a warehouse transfer.
type TransferRequest struct {
	FromWarehouseID string `json:"from_warehouse_id" validate:"required,uuid4"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,uuid4"`
	ItemID          string `json:"item_id" validate:"required,uuid4"`
	Quantity        string `json:"quantity" validate:"required"`
	Note            string `json:"note"`
}

// MovementResponse one ledger row in responses.
type MovementResponse struct {
	ID              string  `json:"id"`
	WarehouseID     string  `json:"warehouse_id"`
	ItemID          string  `json:"item_id"`
	SourceType      string  `json:"source_type"`
	SourceID        *string `json:"source_id,omitempty"`
	Quantity        string  `json:"quantity"`
	UnitCost        string  `json:"unit_cost"`
	TotalCost       string  `json:"total_cost"`
	MovementDate    string  `json:"movement_date"`
	Note            string  `json:"note,omitempty"`
	BalanceQuantity string  `json:"balance_quantity"`
	BalanceValue    string  `json:"balance_value"`
}

// StockResponse current balance of an item.
type StockResponse struct {
	Quantity string `json:"quantity"`
	Value    string `json:"total_value"`
	WAC      string `json:"weighted_average_cost"`
}
