package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/choreboard/internal/notify"
)

func newVAPIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid",
		Short: "Generate a VAPID key pair for web push",
		// Skip config loading; keys are generated offline.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := notify.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CHOREBOARD_VAPID_PUBLIC_KEY=%s\nCHOREBOARD_VAPID_PRIVATE_KEY=%s\n", pub, priv)
			return nil
		},
	}
}
