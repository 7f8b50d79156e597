package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const usageMessage = "Please put the path to the input file as the first argument"

var augmentCmd = &cobra.Command{
	Use:   "augment [input]",
	Short: "Propose ROR identifiers for rows without a curated one",
	Long:  "Reads a CSV or XLSX export, queries the registry for every row that has an organization name but no curated identifier, and writes the rows plus proposed_name and proposed_ror_id next to the input.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := inputArg(args)
		if input == "" {
			fmt.Fprintln(cmd.OutOrStdout(), usageMessage)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runAugment(ctx, cmd.OutOrStdout(), input)
	},
}

func runAugment(ctx context.Context, out io.Writer, input string) error {
	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.Pipeline.Augment(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s (%d rows, %d lookups, %d matched)\n",
		res.OutputPath, res.Stats.RecordsWritten, res.Stats.Lookups, res.Stats.Matched)
	fmt.Fprintln(out, "done")
	return nil
}

// inputArg returns the trimmed first argument, or "" when absent.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

func init() {
	rootCmd.AddCommand(augmentCmd)
}
