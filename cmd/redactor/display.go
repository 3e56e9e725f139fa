package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// displayName turns enum values such as "pixelate" into "Pixelate".
func displayName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

func displayList(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = displayName(v)
	}
	return strings.Join(out, ", ")
}

// formatTimestamp renders seconds as m:ss.mmm.
func formatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	minutes := total / 60000
	rest := total % 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, rest/1000, rest%1000)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// writeJSON prints v indented on stdout for --json modes.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
