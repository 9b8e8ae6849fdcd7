// Command formatter converts an ingredient nutrition CSV into a SQL script of
// batched INSERT statements wrapped in one transaction.
//
//	formatter <input.csv> [output.sql] [batch_size]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nutrition/internal/cli"
	"nutrition/internal/config"
	"nutrition/internal/convert"
	"nutrition/internal/datasource/file"
)

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
		Use:     "formatter <input.csv> [output.sql] [batch_size]",
		Short:   "Convert an ingredient CSV into batched SQL INSERT statements",
		Example: "  formatter ingredients.csv output.sql 100",
		Args: cobra.MatchAll(cobra.RangeArgs(1, 3), func(_ *cobra.Command, args []string) error {
			if len(args) == 3 {
				_, err := cli.PositiveInt("batch_size", args[2])
				return err
			}
			return nil
		}),
		RunE: run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	input := args[0]

	env, closeMetrics, err := cli.Setup("formatter", cmd.ErrOrStderr(), func(c *config.Config) {
		if len(args) > 1 {
			c.Formatter.Output = args[1]
		}
		if len(args) > 2 {
			c.Formatter.BatchSize, _ = cli.PositiveInt("batch_size", args[2])
		}
	})
	if err != nil {
		return cli.Fail(cmd.ErrOrStderr(), err)
	}
	defer closeMetrics()

	fc := env.Config.Formatter
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reading CSV from: %s\n", input)
	fmt.Fprintf(out, "Writing SQL to: %s\n", fc.Output)
	fmt.Fprintf(out, "Batch size: %d rows per INSERT\n", fc.BatchSize)
	fmt.Fprintln(out, cli.Rule)

	sum, err := convert.Run(cmd.Context(), convert.Options{
		Input:       file.NewLocal(input),
		Output:      fc.Output,
		BatchSize:   fc.BatchSize,
		Table:       fc.Table,
		HeaderMap:   fc.HeaderMap,
		CreateTable: fc.CreateTable,
		Job:         env.Tool,
		Logger:      env.Logger,
	})
	if err != nil {
		return cli.Fail(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintln(out, cli.Rule)
	cli.Good.Fprintln(out, "Conversion complete!")
	fmt.Fprintf(out, "Total rows read: %d\n", sum.Read)
	fmt.Fprintf(out, "Rows inserted: %d\n", sum.Written)
	fmt.Fprintf(out, "Rows skipped: %d\n", sum.Skipped)
	if sum.Malformed > 0 {
		cli.Warn.Fprintf(out, "Malformed lines: %d\n", sum.Malformed)
	}
	if sum.Duplicates > 0 {
		cli.Warn.Fprintf(out, "Duplicate names: %d\n", sum.Duplicates)
	}
	fmt.Fprintf(out, "Batches created: %d\n", sum.Batches)
	fmt.Fprintf(out, "Output file: %s\n", sum.Output)
	return nil
}
