package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/makkenzo/niches-hunter-api/internal/storage/postgres"
	"github.com/makkenzo/niches-hunter-api/internal/util"
	"github.com/makkenzo/niches-hunter-api/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nhctl",
		Short:         "Operator tooling for the Niches Hunter API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			lg, err := logger.NewZapLogger(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.cfg, a.logger = cfg, lg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "./configs/config.dev.yaml", "Path to configuration file")

	root.AddCommand(newMigrateCmd(a), newAPIKeyCmd(a), newWalletCmd(a))
	return root
}

func (a *app) pool(ctx context.Context) (*pgxpool.Pool, error) {
	return postgres.NewPgxPool(ctx, &a.cfg.Database, a.logger)
}

func (a *app) walletService(pool *pgxpool.Pool) *service.WalletService {
	return service.NewWalletService(
		postgres.NewWalletRepository(pool, a.logger),
		postgres.NewAccountRepository(pool, a.logger),
		postgres.NewAPIKeyRepository(pool, a.logger),
		a.cfg.APIAccess,
		a.logger,
	)
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|version|redo]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version", "redo"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.Migrate(cmd.Context(), a.cfg.Database.URL, args[0], a.logger)
		},
	}
	return cmd
}

func newAPIKeyCmd(a *app) *cobra.Command {
	var userFlag, name string

	create := &cobra.Command{
		Use:   "create",
		Short: "Issue an API key for a user and print it once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			pool, err := a.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := service.NewAPIKeyService(postgres.NewAPIKeyRepository(pool, a.logger), a.walletService(pool), a.cfg.APIAccess.MaxActiveKeys, a.logger)
			key, err := svc.CreateAPIKey(cmd.Context(), userID, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated API Key (SAVE THIS securely!):\n%s\n\n", key.Key)
			fmt.Fprintf(out, "ID: %s\nDisplay prefix: %s\n", key.ID, key.DisplayPrefix)
			return nil
		},
	}
	create.Flags().StringVar(&userFlag, "user", "", "Owner user id")
	create.Flags().StringVar(&name, "name", "cli", "Key name")
	_ = create.MarkFlagRequired("user")

	cmd := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	cmd.AddCommand(create)
	return cmd
}

func newWalletCmd(a *app) *cobra.Command {
	var userFlag, reference string
	var cents int64

	credit := &cobra.Command{
		Use:   "credit",
		Short: "Credit a user's API wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			if cents <= 0 {
				return fmt.Errorf("--cents must be positive")
			}
			if reference == "" {
				reference = "manual_" + uuid.NewString()
			}
			pool, err := a.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := a.walletService(pool).CreditTopUp(cmd.Context(), userID, cents, reference)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Reference %s was already applied, nothing credited\n", reference)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credited %s to %s (reference %s)\n", util.CentsToDollars(cents), userID, reference)
			return nil
		},
	}
	credit.Flags().StringVar(&userFlag, "user", "", "Wallet owner user id")
	credit.Flags().Int64Var(&cents, "cents", 0, "Amount in cents")
	credit.Flags().StringVar(&reference, "reference", "", "Idempotency reference (defaults to a random one)")
	_ = credit.MarkFlagRequired("user")
	_ = credit.MarkFlagRequired("cents")

	cmd := &cobra.Command{Use: "wallet", Short: "Inspect and adjust API wallets"}
	cmd.AddCommand(credit)
	return cmd
}
