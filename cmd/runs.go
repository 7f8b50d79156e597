package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/internal/store"
)

const historyDisabledMessage = "Run history is disabled. Set store.database_url (ROR_STORE_DATABASE_URL) to enable it."

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded stage runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stage, _ := cmd.Flags().GetString("stage")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		return runRunsList(cmd.Context(), cmd.OutOrStdout(), store.RunFilter{
			Stage:  model.Stage(stage),
			Status: model.RunStatus(status),
			Limit:  limit,
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunsShow(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stage, _ := cmd.Flags().GetString("stage")
		return runRunsStats(cmd.Context(), cmd.OutOrStdout(), store.RunFilter{
			Stage: model.Stage(stage),
			Limit: 10000, // high limit for stats
		})
	},
}

func runRunsList(ctx context.Context, out io.Writer, filter store.RunFilter) error {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Fprintln(out, historyDisabledMessage)
		return nil
	}
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "runs list")
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	formatRunsList(out, runs)
	return nil
}

func runRunsShow(ctx context.Context, out io.Writer, id string) error {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Fprintln(out, historyDisabledMessage)
		return nil
	}
	defer st.Close() //nolint:errcheck

	run, err := st.GetRun(ctx, id)
	if err != nil {
		return eris.Wrap(err, "runs show")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func runRunsStats(ctx context.Context, out io.Writer, filter store.RunFilter) error {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Fprintln(out, historyDisabledMessage)
		return nil
	}
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "runs stats")
	}

	formatRunStats(out, computeRunStats(runs))
	return nil
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total    int
	Complete int
	Failed   int
	Running  int
	AvgDur   time.Duration

	// Augment and Minimize total row counts of their own stage only; an
	// augment run's written rows are intermediate rows, not records.
	Augment  model.RunStats
	Minimize model.RunStats
}

// computeRunStats computes aggregate statistics from a list of runs.
func computeRunStats(runs []model.Run) runStats {
	var s runStats
	s.Total = len(runs)

	var totalDur time.Duration
	var durCount int

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			s.Complete++
			if r.CompletedAt != nil {
				totalDur += r.CompletedAt.Sub(r.StartedAt)
				durCount++
			}
		case model.RunStatusFailed:
			s.Failed++
		default:
			s.Running++
		}

		switch r.Stage {
		case model.StageAugment:
			addStats(&s.Augment, r.Stats)
		case model.StageMinimize:
			addStats(&s.Minimize, r.Stats)
		}
	}

	if durCount > 0 {
		s.AvgDur = totalDur / time.Duration(durCount)
	}
	return s
}

func addStats(dst *model.RunStats, src model.RunStats) {
	dst.RowsRead += src.RowsRead
	dst.Lookups += src.Lookups
	dst.Matched += src.Matched
	dst.RecordsWritten += src.RecordsWritten
	dst.Skipped += src.Skipped
	dst.HumanCurated += src.HumanCurated
	dst.ByName += src.ByName
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s runStats) {
	matchRate := 0.0
	if s.Augment.Lookups > 0 {
		matchRate = float64(s.Augment.Matched) / float64(s.Augment.Lookups) * 100
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Running:\t%d\n", s.Running)
	_, _ = fmt.Fprintln(w, "Augment:")
	_, _ = fmt.Fprintf(w, "  Rows read:\t%d\n", s.Augment.RowsRead)
	_, _ = fmt.Fprintf(w, "  Lookups:\t%d\n", s.Augment.Lookups)
	_, _ = fmt.Fprintf(w, "  Matched:\t%d (%.1f%%)\n", s.Augment.Matched, matchRate)
	_, _ = fmt.Fprintf(w, "  Intermediate rows:\t%d\n", s.Augment.RecordsWritten)
	_, _ = fmt.Fprintln(w, "Minimize:")
	_, _ = fmt.Fprintf(w, "  Rows read:\t%d\n", s.Minimize.RowsRead)
	_, _ = fmt.Fprintf(w, "  Records written:\t%d\n", s.Minimize.RecordsWritten)
	_, _ = fmt.Fprintf(w, "    human_curated:\t%d\n", s.Minimize.HumanCurated)
	_, _ = fmt.Fprintf(w, "    by_name:\t%d\n", s.Minimize.ByName)
	_, _ = fmt.Fprintf(w, "  Skipped:\t%d\n", s.Minimize.Skipped)
	_, _ = fmt.Fprintf(w, "Avg duration:\t%s\n", s.AvgDur.Round(time.Millisecond))
	_ = w.Flush()
}

// formatRunsList writes runs as an aligned table.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGE\tSTATUS\tROWS\tWRITTEN\tMATCHED\tSTARTED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t----\t-------\t-------\t-------\t--------")

	for _, r := range runs {
		dur := "-"
		if r.CompletedAt != nil {
			dur = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Stage,
			r.Status,
			r.Stats.RowsRead,
			r.Stats.RecordsWritten,
			r.Stats.Matched,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.Flags().String("stage", "", "filter by stage (augment, minimize)")
	runsCmd.Flags().String("status", "", "filter by status (running, complete, failed)")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	runsStatsCmd.Flags().String("stage", "", "filter by stage (augment, minimize)")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}
