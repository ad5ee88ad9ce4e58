package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func EvaluateCmd(app *AppContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "evaluate <mission-id> <volunteer-id>",
		Short: "Check whether a volunteer may apply to a mission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			missionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid mission id: %w", err)
			}
			volunteerID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid volunteer id: %w", err)
			}

			c, err := app.Container()
			if err != nil {
				return err
			}
			res, err := c.Usecases.Eligibility.Evaluate(app.Ctx, missionID, volunteerID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	return cmd
}
