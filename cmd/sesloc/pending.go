package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the number of queued locations",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	// A read-only deployment never surfaces a pending indicator.
	if a.cfg.Logger.ViewOnly {
		fmt.Fprintln(out, "View-only deployment.")
		return nil
	}

	count, err := a.engine.PendingCount()
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Fprintln(out, "Nothing pending.")
		return nil
	}

	fmt.Fprintf(out, "%d location(s) pending sync.\n", count)
	return nil
}
