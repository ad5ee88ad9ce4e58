package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volunteer-match/cmd/skillctl/commands"
	"volunteer-match/internal/config"
	"volunteer-match/internal/pkg/logger"
)

func main() {
	appCtx := &commands.AppContext{Ctx: context.Background()}

	rootCmd := &cobra.Command{
		Use:           "skillctl",
		Short:         "Operate the volunteer skills engine",
		Long:          `Administrative commands for the volunteer skills engine: schema migrations, catalog seeding, test tokens and offline matching queries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(appCtx)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			appCtx.Close()
		},
	}

	rootCmd.AddCommand(commands.MigrateCmd(appCtx))
	rootCmd.AddCommand(commands.SeedCmd(appCtx))
	rootCmd.AddCommand(commands.TokenCmd(appCtx))
	rootCmd.AddCommand(commands.EvaluateCmd(appCtx))
	rootCmd.AddCommand(commands.SearchCmd(appCtx))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initApp(appCtx *commands.AppContext) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appCtx.Cfg = cfg

	appCtx.Logger, err = logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	appCtx.Logger.Debug("configuration loaded", zap.String("storage", cfg.App.StorageDriver))
	return nil
}
