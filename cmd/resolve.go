package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Look up a single organization name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func runResolve(ctx context.Context, out io.Writer, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return eris.New("resolve: name is required")
	}

	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	res := env.Resolver.Resolve(ctx, name)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(res), "resolve: encode")
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
