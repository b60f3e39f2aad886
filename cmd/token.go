package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/auth"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	UserID string
	Email  string
	Role   string
	TTL    time.Duration
}

// NewTokenCommand issues a bearer token for a user, creating the user row
// if it does not exist yet.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed session token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.Role(strings.ToUpper(opts.Role))
			if !role.Valid() {
				return fmt.Errorf("invalid role %q: must be ADMIN or CUSTOMER", opts.Role)
			}
			if opts.Email == "" {
				opts.Email = opts.UserID + "@localhost"
			}

			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if _, err := userControllers.EnsureUser(db.WithContext(cmd.Context()), opts.UserID, opts.Email, role); err != nil {
				return fmt.Errorf("ensure user: %w", err)
			}

			token, err := auth.NewIssuer(cfg.JWTSecret, opts.TTL).Issue(opts.UserID, role)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "user email (defaults to <user>@localhost)")
	cmd.Flags().StringVar(&opts.Role, "role", string(models.RoleCustomer), "ADMIN or CUSTOMER")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
