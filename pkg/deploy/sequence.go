package deploy

import "fmt"

// Sequencer yields prefix-and-number values ("CA01", "CA02", ...) for
// templates in input order. It is injectable so tests can pin sequence
// assignment instead of depending on iteration side effects.
type Sequencer struct {
	prefix string
	next   int
}

// NewSequencer creates a sequencer for the given run prefix, starting at
// the given sequence number (normally 1).
func NewSequencer(prefix string, start int) *Sequencer {
	if start < 1 {
		start = 1
	}
	return &Sequencer{prefix: prefix, next: start}
}

// Next returns the next prefix-and-number value. Numbers are zero-padded
// to two digits; a run past 99 templates widens naturally.
func (s *Sequencer) Next() string {
	value := fmt.Sprintf("%s%02d", s.prefix, s.next)
	s.next++
	return value
}
