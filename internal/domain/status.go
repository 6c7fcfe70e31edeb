package domain

import "strings"

// ParseStatus coerces arbitrary status strings into a known representation.
// Empty input maps to StatusDraft; unknown values are returned as-is so
// callers can surface them in validation errors.
func ParseStatus(input string) Status {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return StatusDraft
	}
	return Status(trimmed)
}

// ValidStatus reports whether status is one of the lifecycle states.
func ValidStatus(status Status) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusArchived, StatusScheduled:
		return true
	default:
		return false
	}
}

// transitions holds the allowed lifecycle moves. Archived notes can only be
// revived through draft; published notes never move back to scheduled.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusScheduled, StatusPublished, StatusArchived},
	StatusScheduled: {StatusPublished, StatusDraft, StatusArchived},
	StatusPublished: {StatusArchived, StatusDraft},
	StatusArchived:  {StatusDraft},
}

// CanTransition reports whether a note may move from one status to another.
// Idempotent moves (same state) are always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
