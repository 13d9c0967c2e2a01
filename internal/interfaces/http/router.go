package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturino/ledger-api/internal/application/auth"
	"github.com/facturino/ledger-api/internal/application/commission"
	"github.com/facturino/ledger-api/internal/application/inventory"
	"github.com/facturino/ledger-api/internal/application/partner"
	"github.com/facturino/ledger-api/internal/application/profit"
	"github.com/facturino/ledger-api/internal/domain/entity"
)

// RouterDeps are the dependencies of the router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CommissionUC *commission.UseCase
	StatsUC      *partner.StatsUseCase
	StockUC      *inventory.UseCase
	ProfitUC     *profit.UseCase
	JWTSecret    string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (Bearer token required)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Affiliate program: webhooks and bounties are admin-only, stats are
	// open to any authenticated user.
	affiliateHandler := NewAffiliateHandler(deps.CommissionUC, deps.StatsUC)
	affiliate := protected.Group("/affiliate")
	webhooks := affiliate.Group("/webhooks", RequireRole(entity.RoleAdmin))
	webhooks.Post("/subscription-payment", affiliateHandler.SubscriptionPayment)
	webhooks.Post("/subscription-refund", affiliateHandler.SubscriptionRefund)
	affiliate.Post("/companies/:id/bounty", RequireRole(entity.RoleAdmin), affiliateHandler.CompanyBounty)
	affiliate.Post("/partners/:id/bounty", RequireRole(entity.RoleAdmin), affiliateHandler.PartnerBounty)
	affiliate.Get("/partners/:id/stats", affiliateHandler.PartnerStats)

	// Stock ledger
	stockHandler := NewStockHandler(deps.StockUC)
	stock := protected.Group("/stock")
	stock.Post("/movements", stockHandler.RecordMovement)
	stock.Post("/movements/:id/reverse", stockHandler.ReverseMovement)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Get("/items/:id/stock", stockHandler.ItemStock)
	stock.Get("/items/:id/movements", stockHandler.MovementHistory)
	stock.Get("/reports/valuation", stockHandler.Valuation)
	stock.Get("/reports/low-stock", stockHandler.LowStock)

	// Invoice profitability
	profitHandler := NewProfitHandler(deps.ProfitUC)
	invoices := protected.Group("/invoices")
	invoices.Get("/:id/profit", profitHandler.InvoiceProfit)
	invoices.Post("/profit-summary", profitHandler.ProfitSummary)
}
