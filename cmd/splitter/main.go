// Command splitter cuts a generated SQL script into numbered chunk files that
// each fit in a web SQL editor.
//
//	splitter <input.sql> [output_dir] [rows_per_file]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"nutrition/internal/cli"
	"nutrition/internal/config"
	"nutrition/internal/split"
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
		Use:     "splitter <input.sql> [output_dir] [rows_per_file]",
		Short:   "Split a large SQL script into smaller chunk files",
		Example: "  splitter fruits_veg_ingredients.sql /tmp/split_sql 500",
		Args: cobra.MatchAll(cobra.RangeArgs(1, 3), func(_ *cobra.Command, args []string) error {
			if len(args) == 3 {
				_, err := cli.PositiveInt("rows_per_file", args[2])
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

	env, closeMetrics, err := cli.Setup("splitter", cmd.ErrOrStderr(), func(c *config.Config) {
		if len(args) > 1 {
			c.Splitter.OutputDir = args[1]
		}
		if len(args) > 2 {
			c.Splitter.RowsPerFile, _ = cli.PositiveInt("rows_per_file", args[2])
		}
	})
	if err != nil {
		return cli.Fail(cmd.ErrOrStderr(), err)
	}
	defer closeMetrics()

	sc := env.Config.Splitter
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reading SQL from: %s\n", input)
	fmt.Fprintf(out, "Output directory: %s\n", sc.OutputDir)
	fmt.Fprintf(out, "Rows per file: %d\n", sc.RowsPerFile)
	fmt.Fprintln(out, cli.Rule)

	res, err := split.Run(cmd.Context(), split.Options{
		Input:     input,
		OutputDir: sc.OutputDir,
		Prefix:    sc.Prefix,
		PerFile:   sc.RowsPerFile,
		Workers:   sc.Workers,
		Job:       env.Tool,
		Logger:    env.Logger,
	})
	if errors.Is(err, split.ErrNoStatements) {
		cli.Warn.Fprintf(out, "Found 0 INSERT statements; nothing to split\n")
		return nil
	}
	if err != nil {
		return cli.Fail(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintf(out, "Found %d INSERT statements\n", res.Statements)
	for _, w := range res.Files {
		fmt.Fprintf(out, "Created: %s (%d batches)\n", filepath.Base(w.Path), w.Statements)
	}
	fmt.Fprintln(out, cli.Rule)
	cli.Good.Fprintf(out, "Split complete! Created %d files\n", len(res.Files))
	fmt.Fprintln(out)
	cli.Title.Fprintln(out, "To run in your SQL editor:")
	fmt.Fprintf(out, "1. Open each file (%s, etc.)\n", filepath.Base(res.Files[0].Path))
	fmt.Fprintln(out, "2. Copy and paste into the SQL editor")
	fmt.Fprintln(out, "3. Run each file in order")
	return nil
}
