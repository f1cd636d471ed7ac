package deploy

// Action classifies what the sync engine did (or would do) with a template.
type Action string

const (
	// ActionCreate indicates no existing policy matched and a new one was created.
	ActionCreate Action = "create"

	// ActionUpdate indicates exactly one existing policy matched and was patched.
	ActionUpdate Action = "update"

	// ActionSkip indicates the template was not applied, typically in dry-run mode.
	ActionSkip Action = "skip"

	// ActionError indicates the template failed to sync.
	ActionError Action = "error"
)

// Result records the outcome of syncing a single template.
type Result struct {
	// Sequence is the prefix-and-number value assigned to the template.
	Sequence string

	// TemplateFile is the source file name within the templates directory.
	TemplateFile string

	// DisplayName is the policy display name after substitution.
	DisplayName string

	// MatchName is the name fragment used to locate existing policies.
	MatchName string

	// Action is what happened to the template.
	Action Action

	// PolicyID is the identifier of the created or updated policy, when known.
	PolicyID string

	// Warnings lists substitution anomalies that did not stop the sync.
	Warnings []string

	// Err holds the failure when Action is ActionError.
	Err error
}

// Summary aggregates the outcomes of a deployment run.
type Summary struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// Summarize tallies per-template results into a Summary.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Action {
		case ActionCreate:
			s.Created++
		case ActionUpdate:
			s.Updated++
		case ActionSkip:
			s.Skipped++
		case ActionError:
			s.Failed++
		}
	}
	return s
}

// Total returns the number of templates the summary covers.
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Skipped + s.Failed
}
