package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// wantJSON reports whether output should be JSON: always when --json is set
// or stdout is not a terminal.
func wantJSON(ctx *commandContext, cmd *cobra.Command) bool {
	return ctx.jsonRequested() || !isTerminal(cmd.OutOrStdout())
}
