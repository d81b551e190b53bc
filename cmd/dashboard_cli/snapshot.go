package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/analytics"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/records"
	"github.com/2beens/gymdash/pkg"

	"github.com/spf13/cobra"
)

var (
	snapshotTimezone string
	snapshotNow      string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <export.json>",
	Short: "Compute the dashboard of an exported user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotTimezone, "tz", "UTC", "IANA time zone the dashboard is computed in")
	snapshotCmd.Flags().StringVar(&snapshotNow, "now", "", "reference time (RFC3339), defaults to the current time")
}

func readExport(path string) (*records.Export, error) {
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("read export: [%s] not found", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var export records.Export
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if err := export.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export: %w", err)
	}
	return &export, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	loc, err := time.LoadLocation(snapshotTimezone)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	now := time.Now()
	if snapshotNow != "" {
		if now, err = time.Parse(time.RFC3339, snapshotNow); err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
	}

	export, err := readExport(args[0])
	if err != nil {
		return err
	}

	snapshot := analytics.ComputeSnapshot(analytics.Inputs{
		Workouts:  export.Workouts,
		Sessions:  export.Sessions,
		Schedules: export.Schedules,
		Routines:  export.Routines,
		Profile:   export.Profile,
	}, now.In(loc))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(dashboard.NewResponse(snapshot, loc))
}
