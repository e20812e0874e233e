package main

import (
	"github.com/spf13/cobra"

	"tellfind/internal/config"
	"tellfind/internal/models"
)

func newLoginCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		name  string
		email string
		role  string
		site  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a field user",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedRole, err := models.ParseUserRole(role)
			if err != nil {
				return err
			}
			user := models.User{Name: name, Email: email, Role: parsedRole, Site: site}

			return withEnv(cfg, func(env *appEnv) error {
				if err := env.sessions.SetCurrent(user); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("logged in as %s (%s) at %s\n", user.Name, user.Role, user.Site)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(models.RoleWorker), "role (admin or worker)")
	cmd.Flags().StringVar(&site, "site", "", "excavation site")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				if err := env.sessions.Clear(); err != nil {
					return err
				}
				return writePlain("logged out\n")
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cfg, func(env *appEnv) error {
				user, err := env.currentUser()
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("%s <%s> (%s) at %s\n", user.Name, user.Email, user.Role, user.Site)
			})
		},
	}
}
