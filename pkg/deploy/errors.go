package deploy

import "fmt"

// AmbiguousMatchError reports that policy lookup returned more than one
// candidate for a derived match name. Updating an arbitrary one of several
// candidates is non-deterministic, so the template's sync is refused until
// the operator disambiguates the remote state.
type AmbiguousMatchError struct {
	// MatchName is the derived name that matched multiple policies.
	MatchName string

	// Count is the number of matching policies.
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("match name %q matches %d existing policies; refusing to pick one", e.MatchName, e.Count)
}

// GroupResolutionError reports that a directory group could not be found
// or created. The template depending on the group cannot proceed without
// its identifier.
type GroupResolutionError struct {
	// GroupName is the display name that failed to resolve.
	GroupName string

	// Cause is the underlying directory error.
	Cause error
}

func (e *GroupResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve group %q: %v", e.GroupName, e.Cause)
}

func (e *GroupResolutionError) Unwrap() error {
	return e.Cause
}
