package dto

// RecordRecurringRequest webhook payload for a subscription payment.
// Amount is in currency units, already normalized by the payment layer.
type RecordRecurringRequest struct {
	CompanyID   string  `json:"company_id" validate:"required,uuid4"`
	Amount      string  `json:"amount" validate:"required"`
	MonthRef    string  `json:"month_ref" validate:"required,len=7"`
	ExternalRef *string `json:"external_ref"`
}

// RefundRequest webhook payload for a subscription refund.
type RefundRequest struct {
	CompanyID string  `json:"company_id" validate:"required,uuid4"`
	MonthRef  string  `json:"month_ref" validate:"required,len=7"`
	Reason    *string `json:"reason"`
}

// CommissionResponse outcome of a commission recording call.
type CommissionResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message,omitempty"`
	EventID          string  `json:"event_id,omitempty"`
	DirectCommission string  `json:"direct_commission,omitempty"`
	UplineCommission *string `json:"upline_commission,omitempty"`
}

// ClawbackResponse outcome of a refund clawback.
type ClawbackResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ClawedBackCnt int    `json:"clawed_back_count"`
}

// PartnerStatsResponse partner dashboard figures.
type PartnerStatsResponse struct {
	ActiveClients      int    `json:"active_clients"`
	MonthlyCommissions string `json:"monthly_commissions"`
	PendingPayout      string `json:"pending_payout"`
	TotalEarned        string `json:"total_earned"`
}
