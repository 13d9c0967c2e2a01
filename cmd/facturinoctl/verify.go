package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	domaininventory "github.com/facturino/ledger-api/internal/domain/inventory"
	"github.com/facturino/ledger-api/internal/infrastructure/postgres"
)

var verifyCompanyID string

var verifyLedgerCmd = &cobra.Command{
	Use:   "verify-ledger",
	Short: "Replay a company's stock ledger and check every balance snapshot",
	Long: `Replays the append-only stock ledger of one company from the first
movement, folding each row onto the previous balance, and compares the
computed balances against the stored snapshots. Any mismatch points at a
corrupted or hand-edited ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifyCompanyID == "" {
			return fmt.Errorf("--company is required")
		}
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer pool.Close()

		movements, err := postgres.NewStockMovementRepository(pool).ListAllOrdered(verifyCompanyID)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}

		type key struct{ warehouseID, itemID string }
		balances := map[key]domaininventory.Balance{}
		faults := 0

		for _, m := range movements {
			k := key{m.WarehouseID, m.ItemID}
			prev, ok := balances[k]
			if !ok {
				prev = domaininventory.Balance{Quantity: decimal.Zero, Value: decimal.Zero}
			}

			var next domaininventory.Balance
			if m.IsIn() {
				next, _ = domaininventory.ApplyIn(prev, m.Quantity, m.UnitCost)
			} else {
				next, _, _ = domaininventory.ApplyOut(prev, m.Quantity.Neg())
			}

			if !next.Quantity.Equal(m.BalanceQuantity) || !next.Value.Equal(m.BalanceValue) {
				faults++
				log.Error().
					Str("movement_id", m.ID).
					Str("warehouse_id", m.WarehouseID).
					Str("item_id", m.ItemID).
					Str("expected_quantity", next.Quantity.String()).
					Str("stored_quantity", m.BalanceQuantity.String()).
					Str("expected_value", next.Value.String()).
					Str("stored_value", m.BalanceValue.String()).
					Msg("balance snapshot mismatch")
			}
			// Continue from the stored snapshot, so one fault does not
			// cascade into every later row.
			balances[k] = domaininventory.Balance{Quantity: m.BalanceQuantity, Value: m.BalanceValue}
		}

		if faults > 0 {
			return fmt.Errorf("ledger verification failed: %d mismatched snapshots in %d movements", faults, len(movements))
		}
		log.Info().
			Int("movements", len(movements)).
			Int("ledgers", len(balances)).
			Msg("ledger verified, all snapshots consistent")
		return nil
	},
}

func init() {
	verifyLedgerCmd.Flags().StringVar(&verifyCompanyID, "company", "", "company ID whose ledger to verify")
}
