package domain

import internaldomain "github.com/goliatone/go-til/internal/domain"

// Status represents lifecycle states for TIL notes.
type Status = internaldomain.Status

const (
	// StatusDraft indicates a note still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies a note included in rendered output.
	StatusPublished = internaldomain.StatusPublished
	// StatusArchived marks a note retained for history but excluded from indexes.
	StatusArchived = internaldomain.StatusArchived
	// StatusScheduled marks a note with a future publish time configured.
	StatusScheduled = internaldomain.StatusScheduled
)
