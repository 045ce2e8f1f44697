package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"ventas-backend/internal/db"
	"ventas-backend/internal/logger"
)

// resetTables is ordered children first, although CASCADE makes the order
// irrelevant for TRUNCATE.
var resetTables = []string{
	"payments",
	"installments",
	"sale_items",
	"invoices",
	"sales",
	"calendar_events",
	"products",
	"customers",
}

var resetSequences = []string{"sale_number_sequence", "invoice_number_sequence"}

func resetCmd() *cobra.Command {
	var (
		confirm   bool
		keepPrefs bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all business data and restart numbering (testing only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to reset without --yes")
			}
			cfg, err := setup()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := resetDatabase(cmd.Context(), pool, keepPrefs); err != nil {
				return err
			}
			log := logger.WithComponent("reset")
			log.Info().Bool("kept_preferences", keepPrefs).Msg("database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm that all data will be deleted")
	cmd.Flags().BoolVar(&keepPrefs, "keep-preferences", true, "keep saved UI preferences")
	return cmd
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool, keepPrefs bool) error {
	tables := resetTables
	if !keepPrefs {
		tables = append(tables, "preferences")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}
	for _, seq := range resetSequences {
		if _, err := tx.Exec(ctx, "ALTER SEQUENCE "+seq+" RESTART WITH 1"); err != nil {
			return fmt.Errorf("restarting %s: %w", seq, err)
		}
	}
	return tx.Commit(ctx)
}
