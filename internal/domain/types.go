package domain

// Status represents lifecycle states for TIL notes
type Status string

const (
	// StatusDraft indicates a note still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies a note included in rendered output
	StatusPublished Status = "published"
	// StatusArchived marks a note retained for history but excluded from indexes
	StatusArchived Status = "archived"
	// StatusScheduled marks a note with a future publish time configured
	StatusScheduled Status = "scheduled"
)
