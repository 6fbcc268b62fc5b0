package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidmeta/internal/preflight"
)

type statusCheckView struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type statusView struct {
	ConfigPath   string            `json:"config_path"`
	ConfigExists bool              `json:"config_exists"`
	Checks       []statusCheckView `json:"checks"`
	History      historyStatusView `json:"history"`
}

type historyStatusView struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
	Entries int    `json:"entries"`
	Runs    int    `json:"runs"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check ffprobe, directories, and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			view := statusView{
				ConfigPath:   ctx.configPath,
				ConfigExists: ctx.configSeen,
				History:      historyStatusView{Enabled: cfg.History.Enabled},
			}
			for _, result := range preflight.RunAll(cfg) {
				view.Checks = append(view.Checks, statusCheckView{Name: result.Name, Passed: result.Passed, Detail: result.Detail})
			}
			if cfg.History.Enabled {
				view.History.Path = cfg.Paths.HistoryPath
				if store, err := ctx.openHistory(); err != nil {
					view.History.Error = err.Error()
				} else {
					stats, statsErr := store.Stats(cmd.Context())
					_ = store.Close()
					if statsErr != nil {
						view.History.Error = statsErr.Error()
					} else {
						view.History.Entries = stats.Entries
						view.History.Runs = stats.Runs
						view.History.Failed = stats.Failed
					}
				}
			}

			if wantJSON(ctx, cmd) {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(view.Checks)+2)
			rows = append(rows, []string{"Config", renderStatusCell(statusInfo, colorize), configDetail(view)})
			for _, check := range view.Checks {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				rows = append(rows, []string{check.Name, renderStatusCell(kind, colorize), check.Detail})
			}
			rows = append(rows, historyRow(view.History, colorize))
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			return nil
		},
	}
}

func configDetail(view statusView) string {
	if view.ConfigExists {
		return view.ConfigPath
	}
	return view.ConfigPath + " (not found; defaults in use)"
}

func historyRow(h historyStatusView, colorize bool) []string {
	switch {
	case !h.Enabled:
		return []string{"History", renderStatusCell(statusWarn, colorize), "Disabled"}
	case h.Error != "":
		return []string{"History", renderStatusCell(statusError, colorize), h.Error}
	default:
		detail := fmt.Sprintf("%s (%d entries across %d runs, %d failed)", h.Path, h.Entries, h.Runs, h.Failed)
		return []string{"History", renderStatusCell(statusOK, colorize), detail}
	}
}
