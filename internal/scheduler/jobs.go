package scheduler

import "github.com/google/uuid"

const (
	JobTypeNotePublish   = "til.note.publish"
	JobTypeNoteUnpublish = "til.note.unpublish"
)

func NotePublishJobKey(id uuid.UUID) string {
	return "til:note:" + id.String() + ":publish"
}

func NoteUnpublishJobKey(id uuid.UUID) string {
	return "til:note:" + id.String() + ":unpublish"
}
