package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidmeta/internal/history"
)

var errHistoryDisabled = errors.New("history is disabled; set history.enabled = true in the config file")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune recorded runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

type historyEntryView struct {
	RunID      string          `json:"run_id"`
	ItemIndex  int             `json:"item_index"`
	Source     string          `json:"source,omitempty"`
	Operation  string          `json:"operation"`
	Status     history.Status  `json:"status"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	RecordedAt time.Time       `json:"recorded_at"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			var entries []history.Entry
			if runID != "" {
				entries, err = store.ByRun(cmd.Context(), runID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if wantJSON(ctx, cmd) {
				views := make([]historyEntryView, 0, len(entries))
				for _, entry := range entries {
					views = append(views, historyEntryView{
						RunID:      entry.RunID,
						ItemIndex:  entry.ItemIndex,
						Source:     entry.Source,
						Operation:  entry.Operation,
						Status:     entry.Status,
						ErrorKind:  entry.ErrorKind,
						Error:      entry.Error,
						DurationMS: entry.Duration.Milliseconds(),
						RecordedAt: entry.RecordedAt,
						Result:     json.RawMessage(entry.Result),
					})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history entries")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				kind := statusOK
				detail := ""
				if entry.Status == history.StatusFailed {
					kind = statusError
					detail = truncate(entry.Error, 60)
				}
				rows = append(rows, []string{
					shortID(entry.RunID),
					strconv.Itoa(entry.ItemIndex),
					truncate(entry.Source, 40),
					entry.Operation,
					renderStatusCell(kind, colorize),
					entry.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "#", "Source", "Operation", "Status", "Recorded", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show every entry for one run id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := cfg.HistoryRetention()
			if olderThan != "" {
				if age, err = parseAge(olderThan); err != nil {
					return err
				}
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			// retention_days = 0 keeps history forever; only an explicit
			// --older-than prunes then.
			if olderThan == "" && age <= 0 {
				if wantJSON(ctx, cmd) {
					return writeJSON(cmd, map[string]any{"removed": 0, "skipped": true})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History retention is unlimited (history.retention_days = 0); nothing pruned. Use --older-than to prune anyway.")
				return nil
			}

			removed, err := store.Prune(cmd.Context(), age)
			if err != nil {
				return err
			}
			if wantJSON(ctx, cmd) {
				return writeJSON(cmd, map[string]any{"removed": removed, "older_than": age.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries older than %s\n", removed, age)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "Age cutoff such as 72h or 30d (default history.retention_days)")
	return cmd
}
