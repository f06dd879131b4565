/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/auth"
	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var (
	userName     string
	userPassword string
	userAdmin    bool
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Creates a user account directly in the database. Usage:

	postboard users create --username bob --password secret --admin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		users := services.NewUserService(store.NewUserRepository(conn), auth.NewHasher(cfg.Auth.BcryptCost))
		user, err := users.Register(cmd.Context(), userName, userPassword, userAdmin)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		zerolog.Ctx(cmd.Context()).Info().Str("username", user.Username).Bool("is_admin", user.IsAdmin).Msg("user created")
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		users := services.NewUserService(store.NewUserRepository(conn), auth.NewHasher(cfg.Auth.BcryptCost))
		if err := users.Delete(cmd.Context(), userName); err != nil {
			return fmt.Errorf("delete user %q: %w", userName, err)
		}
		zerolog.Ctx(cmd.Context()).Info().Str("username", userName).Msg("user deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersCreateCmd.Flags().StringVar(&userName, "username", "", "account name")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "account password")
	usersCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "allow editing and deleting posts")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersDeleteCmd.Flags().StringVar(&userName, "username", "", "account name")
	_ = usersDeleteCmd.MarkFlagRequired("username")
}
