// Command aggregator queries USDA FoodData Central for a fixed set of sample
// foods and writes the portion units seen per food category as JSON.
//
//	aggregator [api_key]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nutrition/internal/cli"
	"nutrition/internal/config"
	"nutrition/internal/datasource/file"
	"nutrition/internal/datasource/httpds"
	"nutrition/internal/fdc"
	"nutrition/internal/portion"
)

const signupURL = "https://fdc.nal.usda.gov/api-key-signup/"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "aggregator [api_key]",
		Short:   "Build a food category to portion unit map from USDA FoodData Central",
		Example: "  aggregator $FDC_API_KEY",
		Args:    cobra.MaximumNArgs(1),
		RunE:    run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	stderr := cmd.ErrOrStderr()

	env, closeMetrics, err := cli.Setup("aggregator", stderr, func(c *config.Config) {
		if len(args) > 0 {
			c.Aggregator.APIKey = args[0]
		}
	})
	if err != nil {
		return cli.Fail(stderr, err)
	}
	defer closeMetrics()

	ac := env.Config.Aggregator
	out := cmd.OutOrStdout()
	if ac.APIKey == "" || ac.APIKey == fdc.DemoKey {
		cli.Warn.Fprintln(out, "Using DEMO_KEY - rate limits are lower!")
		fmt.Fprintf(out, "   Sign up for a free API key at: %s\n\n", signupURL)
	}

	queries := portion.DefaultQueries
	if ac.QueriesFile != "" {
		queries, err = file.ReadList(cmd.Context(), ac.QueriesFile)
		if err != nil {
			return cli.Fail(stderr, err)
		}
	}

	hc := httpds.NewClient(httpds.Config{
		Timeout:    ac.Timeout,
		MaxRetries: ac.MaxRetries,
		Job:        env.Tool,
		Logger:     env.Logger,
	})
	agg, err := portion.New(portion.Options{
		Client:       fdc.NewClient(hc, ac.BaseURL, ac.APIKey),
		DataTypes:    portion.DefaultDataTypes,
		PageSize:     ac.PageSize,
		MaxResults:   ac.MaxResults,
		Interval:     ac.RequestInterval,
		FetchDetails: ac.FetchDetails,
		Job:          env.Tool,
		Logger:       env.Logger,
	})
	if err != nil {
		return cli.Fail(stderr, err)
	}

	fmt.Fprintf(out, "Fetching USDA food data for %d categories...\n", len(queries))
	if err := agg.Run(cmd.Context(), queries); err != nil {
		return cli.Fail(stderr, err)
	}
	report := agg.Report(time.Now())

	if err := save(ac.Output, report); err != nil {
		return cli.Fail(stderr, err)
	}
	cli.Good.Fprintf(out, "\n✓ Saved to %s\n", ac.Output)
	printSummary(out, report)
	return nil
}

// save publishes the report only once it is fully encoded.
func save(path string, r portion.Report) error {
	f, err := file.Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()
	if err := portion.WriteJSON(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Commit()
}

func printSummary(w io.Writer, r portion.Report) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	cli.Title.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Categories: %d\n", r.Metadata.TotalCategories)
	fmt.Fprintf(w, "Total Portion Units: %d\n", r.Metadata.TotalPortionUnits)
	if n := len(r.Metadata.FailedQueries); n > 0 {
		cli.Warn.Fprintf(w, "Failed Queries: %d (%s)\n", n, strings.Join(r.Metadata.FailedQueries, ", "))
	}

	fmt.Fprintln(w, "\nSample Categories:")
	names := r.CategoryNames()
	for _, c := range names[:min(10, len(names))] {
		fmt.Fprintf(w, "  • %s: %d portion types\n", c, len(r.Categories[c]))
	}

	units := r.AllPortionUnits
	fmt.Fprintln(w, "\nAll Portion Units Found:")
	fmt.Fprintf(w, "  %s...\n", strings.Join(units[:min(20, len(units))], ", "))
}
