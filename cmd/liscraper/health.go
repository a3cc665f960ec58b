package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// healthCmd probes every dependency and reports aggregate health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the store, cache, and browser session",
	Long: `Probe every dependency and report per-component health.

The exit code is non-zero only when the persistent store is
unreachable; a missing cache or browser session degrades the service
but does not fail it.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := buildService(ctx, globalFlags())
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	report := svc.orch.Health(ctx)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if report.Status == "failed" {
		os.Exit(1)
	}
	return nil
}
