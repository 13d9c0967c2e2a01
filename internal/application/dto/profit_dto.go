package dto

// ProfitSummaryRequest payload for the multi-invoice profit report.
type ProfitSummaryRequest struct {
	InvoiceIDs []string `json:"invoice_ids" validate:"required,min=1,dive,uuid4"`
}

// LineProfitResponse per-line breakdown of an invoice profit query.
type LineProfitResponse struct {
	InvoiceItemID string  `json:"invoice_item_id"`
	ItemID        *string `json:"item_id,omitempty"`
	Name          string  `json:"name"`
	Quantity      string  `json:"quantity"`
	Revenue       string  `json:"revenue"`
	UnitCost      string  `json:"unit_cost"`
	COGS          string  `json:"cogs"`
	GrossProfit   string  `json:"gross_profit"`
	Margin        string  `json:"margin"`
	HasCost       bool    `json:"has_cost"`
	CostSource    string  `json:"cost_source"`
}

// ProfitResponse invoice-level profit figures.
type ProfitResponse struct {
	Available   bool                 `json:"available"`
	Reason      string               `json:"reason,omitempty"`
	Revenue     string               `json:"revenue"`
	COGS        string               `json:"cogs"`
	GrossProfit string               `json:"gross_profit"`
	Margin      string               `json:"margin"`
	Lines       []LineProfitResponse `json:"items,omitempty"`
}

// ProfitSummaryResponse aggregated profit figures.
type ProfitSummaryResponse struct {
	Available        bool   `json:"available"`
	TotalRevenue     string `json:"total_revenue"`
	TotalCOGS        string `json:"total_cogs"`
	TotalProfit      string `json:"total_profit"`
	AvgMargin        string `json:"avg_margin"`
	InvoicesAnalyzed int    `json:"invoices_analyzed"`
}
