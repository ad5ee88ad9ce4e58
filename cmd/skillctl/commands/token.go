package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"volunteer-match/internal/pkg/jwt"
)

func TokenCmd(app *AppContext) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := jwt.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			id := uuid.New()
			if subject != "" {
				parsed, err := uuid.Parse(subject)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				id = parsed
			}
			if ttl <= 0 {
				ttl = app.Cfg.Auth.AccessExpiresIn
			}

			tok, err := jwt.NewHMACService(app.Cfg.Auth.AccessSecret, ttl).GenerateAccessToken(id, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "user_id=%s role=%s\n", id, r)
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(jwt.RoleVolunteer), "volunteer, organization or admin")
	cmd.Flags().StringVarP(&subject, "user", "u", "", "User id to embed (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_ACCESS_EXPIRES_IN)")
	return cmd
}
