package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"volunteer-match/internal/database/seeder"
)

func SeedCmd(app *AppContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the skill catalog",
		Long:  `Creates the categories and skills listed in a YAML catalog. Entries that already exist by name are skipped, so the command can be re-run safely.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := seeder.CatalogSeeder{}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read catalog: %w", err)
				}
				s.Raw = raw
			}

			c, err := app.Container()
			if err != nil {
				return err
			}
			target := seeder.Target{Categories: c.Usecases.Categories, Skills: c.Usecases.Skills}
			if err := (seeder.Runner{Seeders: []seeder.Seeder{s}, Log: app.Logger}).Run(app.Ctx, target); err != nil {
				return err
			}

			cats, err := c.Usecases.Categories.ListCategories(app.Ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ready: %d categories\n", len(cats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the built-in one")
	return cmd
}
