package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/floodworks/sesloc/internal/remote"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deliver queued locations",
	Long:  "Drain the durable queue, confirming each entry against the backend, then refresh the local view.",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Sync(context.Background())
	if err != nil {
		if errors.Is(err, remote.ErrNoToken) {
			return errors.New("this deployment has no write token; sync is disabled")
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Skipped:
		fmt.Fprintln(out, "Sync already in progress.")
	case result.Confirmed == 0 && result.Pending == 0:
		fmt.Fprintln(out, "Nothing to sync.")
	case result.Pending == 0:
		fmt.Fprintf(out, "Synced %d queued item(s).\n", result.Confirmed)
	default:
		fmt.Fprintf(out, "Synced %d. %d still pending.\n", result.Confirmed, result.Pending)
	}

	return nil
}
