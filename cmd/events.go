/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/mq"
	"github.com/postboard/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect post change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print post change events as they arrive",
	Long: `Subscribes to POST_EVENTS_CHANNEL on the configured MQ_BACKEND and
prints one JSON line per event until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := zerolog.Ctx(cmd.Context())

		bus, err := mq.Open(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer bus.Close()

		out := cmd.OutOrStdout()
		err = bus.Subscribe(cmd.Context(), cfg.MQ.PostEventsChannel, func(ctx context.Context, msg mq.Message) error {
			var event types.PostEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				// ack malformed payloads so they are not redelivered
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("skipping malformed post event")
				return nil
			}
			line, err := json.Marshal(event)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(line))
			return err
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
