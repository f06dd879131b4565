/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/services"
	"github.com/postboard/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// postsCmd represents the posts command
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage posts",
}

var (
	postTitle   string
	postContent string
)

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		posts := services.NewPostService(store.NewPostRepository(conn, cfg.Database.Driver))
		post, err := posts.Create(cmd.Context(), postTitle, postContent)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created post %d\n", post.ID)
		return nil
	},
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		posts, err := services.NewPostService(store.NewPostRepository(conn, cfg.Database.Driver)).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
		for _, post := range posts {
			fmt.Fprintf(w, "%d\t%s\t%s\n", post.ID, post.Title, post.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsListCmd)

	postsCreateCmd.Flags().StringVar(&postTitle, "title", "", "post title")
	postsCreateCmd.Flags().StringVar(&postContent, "content", "", "post body")
	_ = postsCreateCmd.MarkFlagRequired("title")
	_ = postsCreateCmd.MarkFlagRequired("content")
}
