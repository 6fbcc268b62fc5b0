package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vidmeta/internal/metadata"
	"vidmeta/internal/pipeline"
)

func newProbeCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newMetadataCommand(ctx),
		newProbeCommand(ctx, "duration <input>", "Print the container duration", metadata.OperationDuration),
		newProbeCommand(ctx, "resolution <input>", "Print the first video stream's resolution", metadata.OperationResolution),
	}
}

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	var includeRaw bool
	cmd := &cobra.Command{
		Use:   "metadata <input>",
		Short: "Extract full metadata from a file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := includeRaw
			if !cmd.Flags().Changed("raw") {
				raw = ctx.configValue().Pipeline.IncludeRaw
			}
			return runSingle(ctx, cmd, metadata.OperationExtract, args[0], raw)
		},
	}
	cmd.Flags().BoolVar(&includeRaw, "raw", false, "Attach the verbatim ffprobe report under \"raw\"")
	return cmd
}

func newProbeCommand(ctx *commandContext, use, short string, op metadata.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(ctx, cmd, op, args[0], false)
		},
	}
}

func runSingle(ctx *commandContext, cmd *cobra.Command, op metadata.Operation, input string, includeRaw bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	runner, closeRunner, err := ctx.newRunner(pipeline.Options{
		Operation:   op,
		OutputField: cfg.Pipeline.OutputField,
		IncludeRaw:  includeRaw,
		ScratchDir:  cfg.Paths.ScratchDir,
	})
	if err != nil {
		return err
	}
	defer closeRunner()

	outcomes, err := runner.Run(cmd.Context(), []pipeline.Item{{JSON: map[string]any{}, Source: input}})
	if err != nil {
		return err
	}
	result := outcomes[0].Result

	if wantJSON(ctx, cmd) {
		return writeJSON(cmd, result)
	}
	rows, err := summaryRows(op, result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderFieldTable(rows))
	return nil
}

func summaryRows(op metadata.Operation, result json.RawMessage) ([][]string, error) {
	switch op {
	case metadata.OperationDuration:
		// duration_seconds is null when the probe value did not parse.
		var d struct {
			DurationSeconds   *float64 `json:"duration_seconds"`
			DurationFormatted string   `json:"duration_formatted"`
		}
		if err := json.Unmarshal(result, &d); err != nil {
			return nil, fmt.Errorf("decode duration: %w", err)
		}
		seconds := "-"
		if d.DurationSeconds != nil {
			seconds = strconv.FormatFloat(*d.DurationSeconds, 'f', -1, 64)
		}
		return [][]string{
			{"Duration", d.DurationFormatted},
			{"Seconds", seconds},
		}, nil
	case metadata.OperationResolution:
		var r metadata.ResolutionResult
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, fmt.Errorf("decode resolution: %w", err)
		}
		return [][]string{
			{"Resolution", r.Resolution},
			{"Quality", string(r.Quality)},
			{"Aspect ratio", r.AspectRatio},
		}, nil
	default:
		var md metadata.Metadata
		if err := json.Unmarshal(result, &md); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		return metadataRows(md), nil
	}
}

func metadataRows(md metadata.Metadata) [][]string {
	rows := [][]string{
		{"File", textValue(md.Filename)},
		{"Format", textValue(md.FormatLongName)},
		{"Duration", md.DurationFormatted},
		{"Size", md.SizeMB + " MB"},
		{"Bitrate", md.BitrateKbps + " kbps"},
	}
	if v := md.Video; v != nil {
		rows = append(rows,
			[]string{"Video codec", textValue(v.Codec)},
			[]string{"Resolution", v.Resolution + " (" + string(metadata.ClassifyQuality(v.Height)) + ")"},
			[]string{"Aspect ratio", v.AspectRatio},
			[]string{"Frame rate", floatValue(v.FPS)},
		)
	}
	if a := md.Audio; a != nil {
		audio := textValue(a.Codec)
		if a.SampleRateKHz != nil {
			audio += " " + *a.SampleRateKHz + " kHz"
		}
		if a.ChannelLayout != nil {
			audio += " " + *a.ChannelLayout
		}
		rows = append(rows, []string{"Audio", audio})
	}
	rows = append(rows, []string{"Streams", streamSummary(md.StreamsCount)})
	return rows
}

func streamSummary(counts metadata.StreamCounts) string {
	title := cases.Title(language.English)
	parts := []string{strconv.Itoa(counts.Total) + " total"}
	for _, entry := range []struct {
		kind  string
		count int
	}{
		{"video", counts.Video},
		{"audio", counts.Audio},
		{"subtitle", counts.Subtitle},
	} {
		if entry.count > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", title.String(entry.kind), entry.count))
		}
	}
	return strings.Join(parts, ", ")
}

func textValue(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func floatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
