package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"contactrelay/internal/fetcher"
	"contactrelay/internal/model"
	"contactrelay/pkg/config"
)

func newSubmitCommand(rt *runtimeState) *cobra.Command {
	var (
		relayURL string
		sub      model.ContactSubmission
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a contact message through the relay service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := fetcher.NewRelayClient(nil, relayURL, rt.logger)
			resp := client.Submit(cmd.Context(), sub)

			enc := json.NewEncoder(rt.writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.Success {
				return errors.New(resp.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay", config.GetEnv("RELAY_URL", "http://localhost:3000/send-email"), "Relay endpoint (env RELAY_URL)")
	cmd.Flags().StringVar(&sub.Name, "name", "", "Sender name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "Sender email")
	cmd.Flags().StringVar(&sub.Message, "message", "", "Message text")
	return cmd
}
