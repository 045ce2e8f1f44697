package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ventas-backend/internal/config"
	"ventas-backend/internal/database"
	"ventas-backend/internal/db"
	"ventas-backend/internal/logger"
	"ventas-backend/internal/timeutil"
)

var (
	configPath    string
	migrationsDir string
)

func main() {
	root := &cobra.Command{
		Use:           "ventas-backend",
		Short:         "Ventas local API: customers, sales, installments and invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "directory with SQL migrations")

	root.AddCommand(serveCmd(), migrateCmd(), tokenCmd(), backupCmd(), resetCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads config and applies the logger and business time zone.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("logger setup: %w", err)
	}
	timeutil.SetLocation(cfg.Locale.TimeZone)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			log := logger.WithComponent("server")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(ctx, cfg)
			defer a.Close()

			if a.pool != nil {
				if err := database.NewMigrator(a.pool, migrationsDir, logger.WithComponent("migrator")).RunMigrations(ctx); err != nil {
					log.Error().Err(err).Msg("migrations failed")
				}
			}

			go a.hub.Run(ctx)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           a.handler(cfg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Bool("database", a.pool != nil).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return database.NewMigrator(pool, migrationsDir, logger.WithComponent("migrator")).RunMigrations(cmd.Context())
		},
	}
}

func tokenCmd() *cobra.Command {
	var client string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the desktop shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			token, err := newJWTManager(cfg).GenerateToken(client)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "desktop", "client name stored in the token")
	return cmd
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a JSON snapshot of every table to the backup bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			a := newApp(cmd.Context(), cfg)
			defer a.Close()
			if a.pool == nil {
				return errors.New("database unavailable")
			}
			res, err := a.backup.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", res.Key, res.Size)
			return nil
		},
	}
}
