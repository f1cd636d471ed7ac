package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"entraops/capolicy/pkg/deploy"
)

func sampleResults() []deploy.Result {
	return []deploy.Result{
		{Sequence: "CA01", TemplateFile: "01-a.json", DisplayName: "CA01 - A", Action: deploy.ActionCreate, PolicyID: "p1"},
		{Sequence: "CA02", TemplateFile: "02-b.json", Action: deploy.ActionError, Err: errors.New("ambiguous")},
	}
}

func TestParseOutputFormat(t *testing.T) {
	if _, err := ParseOutputFormat("text"); err != nil {
		t.Errorf("text: %v", err)
	}
	if _, err := ParseOutputFormat("json"); err != nil {
		t.Errorf("json: %v", err)
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func TestPrintResultsText(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintResults(&buf, FormatText, sampleResults()); err != nil {
		t.Fatalf("PrintResults: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CA01", "create", "p1", "ambiguous"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintResults(&buf, FormatJSON, sampleResults()); err != nil {
		t.Fatalf("PrintResults: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d entries, want 2", len(decoded))
	}
	if decoded[1]["error"] != "ambiguous" {
		t.Errorf("entry 1 = %v", decoded[1])
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, deploy.Summary{Created: 2, Updated: 1, Failed: 1})
	if got := buf.String(); !strings.Contains(got, "4 templates") || !strings.Contains(got, "2 created") {
		t.Errorf("summary = %q", got)
	}
}
