package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Augment an input file and minimize the result",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := inputArg(args)
		if input == "" {
			fmt.Fprintln(cmd.OutOrStdout(), usageMessage)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runBoth(ctx, cmd.OutOrStdout(), input)
	},
}

func runBoth(ctx context.Context, out io.Writer, input string) error {
	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	augmented, minimal, err := env.Pipeline.Run(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "augmented: %s (%d lookups, %d matched)\n",
		augmented.OutputPath, augmented.Stats.Lookups, augmented.Stats.Matched)
	fmt.Fprintf(out, "minimal:   %s (%d records)\n",
		minimal.OutputPath, minimal.Stats.RecordsWritten)
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
