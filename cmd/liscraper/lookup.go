package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	errs "liscraper/pkg/errors"
)

var (
	forceRefresh bool
	clientID     string
	maxPosts     int
	cookieFile   string
	headless     bool
)

// lookupCmd serves one company snapshot through the tiered retrieval flow
var lookupCmd = &cobra.Command{
	Use:   "lookup <company-id>",
	Short: "Retrieve a company snapshot (cache, store, or live scrape)",
	Long: `Retrieve a company's profile, recent posts, and associated people.

The lookup is served from the snapshot cache when fresh, hydrated from
the store when previously scraped, and otherwise scraped live. Use
--force to skip both tiers and scrape now.

Lookups count against the shared per-minute and per-hour quotas; a
rejected lookup reports when to retry.`,
	Example: `  # Look up a company by its public id
  liscraper lookup acme-corp

  # Force a fresh scrape even when cached data exists
  liscraper lookup acme-corp --force`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVarP(&forceRefresh, "force", "f", false, "skip cache and store, scrape live")
	lookupCmd.Flags().StringVar(&clientID, "client-id", "", "quota client id (default: hostname)")
	lookupCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "override the post count target")
	lookupCmd.Flags().StringVar(&cookieFile, "cookie-file", "", "path to the persisted cookie bundle")
	lookupCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
}

func runLookup(cmd *cobra.Command, args []string) error {
	externalID := strings.TrimSpace(args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := globalFlags()
	if maxPosts > 0 {
		flags["max-posts"] = maxPosts
	}
	if cookieFile != "" {
		flags["cookie-file"] = cookieFile
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}

	svc, err := buildService(ctx, flags)
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	id := clientID
	if id == "" {
		id, _ = os.Hostname()
		if id == "" {
			id = "local"
		}
	}

	limit, err := svc.limiter.Check(ctx, id)
	if err != nil {
		var typed *errs.Error
		if errors.As(err, &typed) && typed.Type == errs.ErrorTypeRateLimit {
			return fmt.Errorf("quota exceeded, retry in %s", limit.RetryAfter.Round(time.Second))
		}
		return err
	}

	result, err := svc.orch.GetOrRefresh(ctx, externalID, forceRefresh)
	if err != nil {
		return err
	}

	if result.Advisory != "" {
		fmt.Fprintln(os.Stderr, "advisory: "+result.Advisory)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
