package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vidmeta/internal/config"
	"vidmeta/internal/metadata"
	"vidmeta/internal/pipeline"
	"vidmeta/internal/preflight"
	"vidmeta/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		operation      string
		field          string
		includeRaw     bool
		continueOnFail bool
	)

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Process JSON Lines items from a file or stdin",
		Long: "Each input line is an object with a \"json\" field plus either a \"source\" path/URL\n" +
			"or a \"binary\" payload ({\"data\": base64, \"file_name\", \"mime_type\"}).\n" +
			"One output item is written per line.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := pipeline.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("operation") {
				if opts.Operation, err = metadata.ParseOperation(operation); err != nil {
					return err
				}
			}
			if flags.Changed("field") {
				opts.OutputField = field
			}
			if flags.Changed("raw") {
				opts.IncludeRaw = includeRaw
			}
			if flags.Changed("continue-on-fail") {
				opts.ContinueOnFail = continueOnFail
			}

			items, err := readItems(cmd, args)
			if err != nil {
				return err
			}
			if err := requireFFprobe(cfg); err != nil {
				return err
			}

			runner, closeRunner, err := ctx.newRunner(opts)
			if err != nil {
				return err
			}
			defer closeRunner()

			outcomes, runErr := runner.Run(cmd.Context(), items)
			outputs := make([]pipeline.Item, 0, len(outcomes))
			for _, outcome := range outcomes {
				outputs = append(outputs, outcome.Item)
			}
			if err := pipeline.EncodeItems(cmd.OutOrStdout(), outputs); err != nil {
				return errors.Join(runErr, err)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&operation, "operation", "", "extractMetadata, getDuration, or getResolution")
	cmd.Flags().StringVar(&field, "field", "", "Output field for the derived record")
	cmd.Flags().BoolVar(&includeRaw, "raw", false, "Attach the verbatim ffprobe report (extractMetadata only)")
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "Record failures on the item instead of aborting")
	return cmd
}

func readItems(cmd *cobra.Command, args []string) ([]pipeline.Item, error) {
	var reader io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		path, err := config.ExpandPath(args[0])
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open items: %w", err)
		}
		defer file.Close()
		reader = file
	}
	return pipeline.DecodeItems(reader)
}

func requireFFprobe(cfg *config.Config) error {
	result := preflight.CheckFFprobe(cfg)
	if result.Passed {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "ffprobe", result.Detail, nil)
}
