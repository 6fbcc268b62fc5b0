package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vidmeta/internal/source"
)

const defaultScratchMaxAge = 24 * time.Hour

func newScratchCommand(ctx *commandContext) *cobra.Command {
	scratchCmd := &cobra.Command{
		Use:   "scratch",
		Short: "Manage temporary payload and download files",
	}
	scratchCmd.AddCommand(newScratchCleanCommand(ctx))
	return scratchCmd
}

func newScratchCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch files left behind by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := defaultScratchMaxAge
			if maxAge != "" {
				if age, err = parseAge(maxAge); err != nil {
					return err
				}
			}
			logger, err := ctx.loggerValue()
			if err != nil {
				return err
			}

			result := source.Sweep(cfg.Paths.ScratchDir, age, logger)
			var errs []error
			for _, failure := range result.Errors {
				errs = append(errs, fmt.Errorf("%s: %w", failure.Path, failure.Error))
			}

			if wantJSON(ctx, cmd) {
				if err := writeJSON(cmd, map[string]any{
					"removed": result.Removed,
					"skipped": result.Skipped,
					"errors":  len(result.Errors),
				}); err != nil {
					return err
				}
				return errors.Join(errs...)
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Skipped:
				fmt.Fprintln(out, "Scratch directory is in use by an active run; nothing removed")
			case len(result.Removed) == 0:
				fmt.Fprintf(out, "No scratch files older than %s\n", age)
			default:
				fmt.Fprintf(out, "Removed %d scratch files\n", len(result.Removed))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&maxAge, "max-age", "", "Minimum age of files to remove, e.g. 12h or 2d (default 24h)")
	return cmd
}
