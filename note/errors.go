package note

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("note: not found")
	ErrIDRequired         = errors.New("note: note id required")
	ErrSlugRequired       = errors.New("note: slug is required")
	ErrSlugInvalid        = errors.New("note: slug contains invalid characters")
	ErrSlugExists         = errors.New("note: slug already exists in category")
	ErrTitleRequired      = errors.New("note: title is required")
	ErrSourcePathRequired = errors.New("note: source path is required")
	ErrSourcePathExists   = errors.New("note: source path already indexed")
	ErrStatusInvalid      = errors.New("note: status invalid")
	ErrStatusTransition   = errors.New("note: status transition invalid")
	ErrMetadataInvalid    = errors.New("note: metadata invalid")
	ErrSchedulingDisabled = errors.New("note: scheduling feature disabled")
	ErrScheduleWindow     = errors.New("note: publish_at must be before unpublish_at")
	ErrScheduleTimestamp  = errors.New("note: schedule timestamp is invalid")
	ErrLinkTargetRequired = errors.New("note: link target is required")
	ErrLinkKindInvalid    = errors.New("note: link kind invalid")
	ErrRepositoryRequired = errors.New("note: repository is required")
	ErrLinkRepoRequired   = errors.New("note: link repository is required")
)

// NotFoundError represents missing records from index lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SlugExistsError reports the conflicting slug and category when an index
// operation collides with an existing note.
type SlugExistsError struct {
	Slug     string
	Category string
	Existing uuid.UUID
}

func (e *SlugExistsError) Error() string {
	if e == nil {
		return ErrSlugExists.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return ErrSlugExists.Error()
	}
	if category := strings.TrimSpace(e.Category); category != "" {
		return fmt.Sprintf("%s: slug=%s category=%s", ErrSlugExists.Error(), slug, category)
	}
	return fmt.Sprintf("%s: slug=%s", ErrSlugExists.Error(), slug)
}

func (e *SlugExistsError) Unwrap() error {
	return ErrSlugExists
}

// StatusTransitionError reports an invalid lifecycle move.
type StatusTransitionError struct {
	NoteID uuid.UUID
	From   string
	To     string
}

func (e *StatusTransitionError) Error() string {
	if e == nil {
		return ErrStatusTransition.Error()
	}
	return fmt.Sprintf("%s: %s -> %s", ErrStatusTransition.Error(), e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error {
	return ErrStatusTransition
}

// SourcePathExistsError reports a source path that is already claimed by a
// different note.
type SourcePathExistsError struct {
	SourcePath string
	Existing   uuid.UUID
}

func (e *SourcePathExistsError) Error() string {
	if e == nil {
		return ErrSourcePathExists.Error()
	}
	path := strings.TrimSpace(e.SourcePath)
	if path == "" {
		return ErrSourcePathExists.Error()
	}
	return fmt.Sprintf("%s: path=%s", ErrSourcePathExists.Error(), path)
}

func (e *SourcePathExistsError) Unwrap() error {
	return ErrSourcePathExists
}
