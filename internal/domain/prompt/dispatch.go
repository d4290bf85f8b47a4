package prompt

import "time"

// DispatchKind names a scheduled, once-per-prompt notification.
type DispatchKind string

const (
	DispatchOpen        DispatchKind = "prompt_open"
	DispatchClosingSoon DispatchKind = "prompt_24h"
	DispatchVotingOpen  DispatchKind = "voting_open"
)

// ClosingSoonLead is how long before the reveal the closing reminder goes out.
const ClosingSoonLead = 24 * time.Hour

// DueDispatches lists the kinds whose threshold has passed at now, in
// lifecycle order.
func DueDispatches(p Prompt, now time.Time) []DispatchKind {
	var due []DispatchKind
	if !now.Before(p.ActiveAt) {
		due = append(due, DispatchOpen)
	}
	if !now.Before(p.RevealAt.Add(-ClosingSoonLead)) && !now.Before(p.ActiveAt) {
		due = append(due, DispatchClosingSoon)
	}
	if !now.Before(p.RevealAt) {
		due = append(due, DispatchVotingOpen)
	}
	return due
}
