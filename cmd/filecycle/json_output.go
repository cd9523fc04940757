package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout. Paths are
// written verbatim rather than HTML-escaped.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONResult writes v and then returns runErr, so a failed operation
// still prints its partial result before the command exits non-zero.
func writeJSONResult(cmd *cobra.Command, v any, runErr error) error {
	if err := writeJSON(cmd, v); err != nil {
		return err
	}
	return runErr
}
