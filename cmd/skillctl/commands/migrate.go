package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"volunteer-match/internal/database/migration"
	dbpostgres "volunteer-match/internal/database/postgres"
)

func MigrateCmd(app *AppContext) *cobra.Command {
	var (
		dir    string
		status bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.App.StorageDriver == "memory" {
				return fmt.Errorf("migrate needs STORAGE_DRIVER=postgres")
			}
			pool, err := dbpostgres.Connect(app.Ctx, app.Cfg.Database, app.Logger.Named("db"))
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer func() { _ = pool.Close() }()

			if dir == "" {
				dir = app.Cfg.Database.MigrationsDir
			}
			runner := migration.Runner{Dir: dir, Log: app.Logger.Named("migration")}
			if status {
				states, err := runner.Status(app.Ctx, pool.SQLDB())
				if err != nil {
					return fmt.Errorf("failed to read migration status: %w", err)
				}
				for _, st := range states {
					applied := "pending"
					if st.AppliedAt != nil {
						applied = st.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(cmd.OutOrStdout(), "V%-4d %-30s %s\n", st.Version, st.Label, applied)
				}
				return nil
			}

			n, err := runner.Run(app.Ctx, pool.SQLDB())
			if err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "List migrations and whether they are applied")
	cmd.Flags().StringVar(&dir, "dir", "", "Read migrations from this directory instead of the embedded set")
	return cmd
}
