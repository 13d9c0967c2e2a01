package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/application/auth"
	"github.com/facturino/ledger-api/internal/application/commission"
	"github.com/facturino/ledger-api/internal/application/inventory"
	"github.com/facturino/ledger-api/internal/application/partner"
	"github.com/facturino/ledger-api/internal/application/profit"
	domaincommission "github.com/facturino/ledger-api/internal/domain/commission"
	"github.com/facturino/ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/facturino/ledger-api/internal/interfaces/http"
	"github.com/facturino/ledger-api/pkg/config"
	"github.com/facturino/ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	eventRepo := postgres.NewAffiliateEventRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)

	commissionUC := commission.NewUseCase(
		postgres.NewCommissionTxRunner(pool),
		partnerRepo, userRepo, eventRepo,
		commission.Config{
			Rates: domaincommission.Rates{
				DirectFree:       decimal.NewFromFloat(cfg.Affiliate.DirectRateFree),
				DirectPlus:       decimal.NewFromFloat(cfg.Affiliate.DirectRatePlus),
				DirectWithUpline: decimal.NewFromFloat(cfg.Affiliate.DirectRateMultiLevel),
				Upline:           decimal.NewFromFloat(cfg.Affiliate.UplineRate),
			},
			CompanyBounty:      decimal.NewFromFloat(cfg.Affiliate.CompanyBounty),
			PartnerBounty:      decimal.NewFromFloat(cfg.Affiliate.PartnerBounty),
			BountyMinCompanies: cfg.Affiliate.BountyMinCompanies,
			BountyMinDays:      cfg.Affiliate.BountyMinDays,
		},
		log,
	)
	statsUC := partner.NewStatsUseCase(partnerRepo, eventRepo, log)
	stockUC := inventory.NewUseCase(
		postgres.NewStockTxRunner(pool),
		movementRepo, itemRepo, warehouseRepo,
		inventory.Policy{AllowNegative: cfg.Stock.AllowNegative},
		log,
	)
	profitUC := profit.NewUseCase(invoiceRepo, itemRepo, movementRepo, companyRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CommissionUC: commissionUC,
		StatsUC:      statsUC,
		StockUC:      stockUC,
		ProfitUC:     profitUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
