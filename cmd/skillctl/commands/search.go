package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/usecase"
)

func SearchCmd(app *AppContext) *cobra.Command {
	var (
		skillIDs     []string
		matchType    string
		minLevel     string
		verifiedOnly bool
		requireAll   bool
		limit        int
		mission      string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank volunteers by skills or against a mission",
		Example: `  skillctl search --skill 6f1c... --skill 0b2e... --match any
  skillctl search --mission 9d4a... --verified-only=false --require-all=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			if mission != "" {
				missionID, err := uuid.Parse(mission)
				if err != nil {
					return fmt.Errorf("invalid --mission: %w", err)
				}
				res, err := c.Usecases.Search.SearchByMission(app.Ctx, missionID, usecase.MissionSearchQuery{
					RequireAllRequired: requireAll,
					VerifiedOnly:       verifiedOnly,
					Limit:              limit,
				})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), res, asJSON)
			}

			if len(skillIDs) == 0 {
				return fmt.Errorf("pass --mission or at least one --skill")
			}
			q := usecase.SkillSearchQuery{
				VerifiedOnly: verifiedOnly,
				Limit:        limit,
			}
			if minLevel != "" {
				if q.MinProficiency, err = proficiency.Parse(minLevel); err != nil {
					return err
				}
			}
			for _, raw := range skillIDs {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid --skill %q: %w", raw, err)
				}
				q.SkillIDs = append(q.SkillIDs, id)
			}
			if q.MatchType, err = matching.ParseMatchType(matchType); err != nil {
				return err
			}

			res, err := c.Usecases.Search.SearchBySkills(app.Ctx, q)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().StringArrayVarP(&skillIDs, "skill", "s", nil, "Skill id to match (repeatable)")
	cmd.Flags().StringVar(&matchType, "match", "all", "all or any")
	cmd.Flags().StringVar(&minLevel, "min-proficiency", "", "Minimum proficiency level")
	cmd.Flags().BoolVar(&verifiedOnly, "verified-only", true, "Only count verified skills")
	cmd.Flags().BoolVar(&requireAll, "require-all", true, "With --mission, drop candidates missing a required skill")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results")
	cmd.Flags().StringVarP(&mission, "mission", "m", "", "Rank candidates for this mission instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	return cmd
}
