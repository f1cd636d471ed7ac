package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"entraops/capolicy/pkg/deploy"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is tabular text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// PrintResults writes per-template deployment results in the chosen format.
func PrintResults(w io.Writer, format OutputFormat, results []deploy.Result) error {
	if format == FormatJSON {
		return printJSON(w, resultsForJSON(results))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tFILE\tACTION\tPOLICY\tDETAIL")
	for _, r := range results {
		detail := r.DisplayName
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Sequence, r.TemplateFile, r.Action, r.PolicyID, detail)
	}
	return tw.Flush()
}

// PrintSummary writes the run totals as a single line.
func PrintSummary(w io.Writer, s deploy.Summary) {
	fmt.Fprintf(w, "%d templates: %d created, %d updated, %d skipped, %d failed\n",
		s.Total(), s.Created, s.Updated, s.Skipped, s.Failed)
}

type jsonResult struct {
	Sequence     string   `json:"sequence"`
	TemplateFile string   `json:"template_file"`
	DisplayName  string   `json:"display_name,omitempty"`
	Action       string   `json:"action"`
	PolicyID     string   `json:"policy_id,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func resultsForJSON(results []deploy.Result) []jsonResult {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{
			Sequence:     r.Sequence,
			TemplateFile: r.TemplateFile,
			DisplayName:  r.DisplayName,
			Action:       string(r.Action),
			PolicyID:     r.PolicyID,
			Warnings:     r.Warnings,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		out = append(out, jr)
	}
	return out
}

func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
