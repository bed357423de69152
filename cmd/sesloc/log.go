package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/floodworks/sesloc/internal/engine"
	"github.com/floodworks/sesloc/internal/record"
	"github.com/floodworks/sesloc/internal/remote"
	"github.com/spf13/cobra"
)

var (
	logCategory    string
	logName        string
	logDescription string
	logLat         float64
	logLng         float64
	logAccuracy    float64
	logSource      string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a new location",
	Long:  "Capture a point of interest and deliver it to the backend, queueing it durably if the backend is unreachable.",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logCategory, "category", string(record.CategoryOther),
		"Category: Drain, Boat launch, Flood prone, Access issue, Other")
	logCmd.Flags().StringVar(&logName, "name", "", "Location name (required)")
	logCmd.Flags().StringVar(&logDescription, "description", "", "Free-text description")
	logCmd.Flags().Float64Var(&logLat, "lat", 0, "Latitude in degrees (required)")
	logCmd.Flags().Float64Var(&logLng, "lng", 0, "Longitude in degrees (required)")
	logCmd.Flags().Float64Var(&logAccuracy, "accuracy", 0, "Fix accuracy in metres (omit when unknown)")
	logCmd.Flags().StringVar(&logSource, "source", record.SourceGPS, "Fix source: gps or pin")

	logCmd.MarkFlagRequired("name")
	logCmd.MarkFlagRequired("lat")
	logCmd.MarkFlagRequired("lng")
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fix := record.Fix{
		Lat:    logLat,
		Lng:    logLng,
		Source: logSource,
	}
	if cmd.Flags().Changed("accuracy") {
		acc := logAccuracy
		fix.Accuracy = &acc
	}

	draft := record.Draft{
		Category:    record.ParseCategory(logCategory),
		Name:        logName,
		Description: logDescription,
		Fix:         fix,
	}

	rec, err := record.New(draft, a.cfg.Logger.CreatedBy)
	if err != nil {
		return err
	}

	result, err := a.engine.SubmitNew(context.Background(), rec)
	if err != nil {
		if errors.Is(err, remote.ErrNoToken) {
			return errors.New("this deployment has no write token; logging is disabled")
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch result.Status {
	case engine.StatusConfirmed:
		fmt.Fprintln(out, "Saved a new location.")
	case engine.StatusQueued:
		fmt.Fprintln(out, "Saved to queue. Sync when online.")
	}

	return nil
}
