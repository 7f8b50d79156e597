package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Reduce the augmented file to minimal software/organization records",
	Long:  "Reads the augmented file from the work directory and writes one record per row with a curated or proposed identifier.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runMinimize(ctx, cmd.OutOrStdout())
	},
}

func runMinimize(ctx context.Context, out io.Writer) error {
	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.Pipeline.Minimize(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d records, %d human_curated, %d by_name, %d skipped)\n",
		res.OutputPath, res.Stats.RecordsWritten, res.Stats.HumanCurated, res.Stats.ByName, res.Stats.Skipped)
	return nil
}

func init() {
	rootCmd.AddCommand(minimizeCmd)
}
