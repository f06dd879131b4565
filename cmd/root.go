/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postboard",
	Short: "Posts board backend with cookie sessions",
	Long: `postboard serves a small posts board: users register and log in,
sessions travel in a cookie, and admins may edit or delete posts.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		logger := logutil.New(cfg.Log, os.Stderr)
		log.Logger = logger
		cmd.SetContext(logutil.WithLogger(cmd.Context(), logger))
	},
}

// Execute adds all child commands to the root command and runs it until
// SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
