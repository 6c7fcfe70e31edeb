package notes

import tilnote "github.com/goliatone/go-til/note"

type (
	Service              = tilnote.Service
	NoteListOption       = tilnote.NoteListOption
	CreateNoteRequest    = tilnote.CreateNoteRequest
	UpdateNoteRequest    = tilnote.UpdateNoteRequest
	DeleteNoteRequest    = tilnote.DeleteNoteRequest
	PublishNoteRequest   = tilnote.PublishNoteRequest
	UnpublishNoteRequest = tilnote.UnpublishNoteRequest
	ArchiveNoteRequest   = tilnote.ArchiveNoteRequest
	ScheduleNoteRequest  = tilnote.ScheduleNoteRequest
	ReplaceLinksRequest  = tilnote.ReplaceLinksRequest
	LinkInput            = tilnote.LinkInput

	NotFoundError         = tilnote.NotFoundError
	SlugExistsError       = tilnote.SlugExistsError
	SourcePathExistsError = tilnote.SourcePathExistsError
	StatusTransitionError = tilnote.StatusTransitionError
)

var (
	WithLinks      = tilnote.WithLinks
	IncludeDeleted = tilnote.IncludeDeleted
	VisibleOnly    = tilnote.VisibleOnly
	InCategory     = tilnote.InCategory
	WithStatus     = tilnote.WithStatus
	WithTag        = tilnote.WithTag
	WithLimit      = tilnote.WithLimit
	WithOffset     = tilnote.WithOffset
	OrderBy        = tilnote.OrderBy
)

var (
	ErrNotFound           = tilnote.ErrNotFound
	ErrIDRequired         = tilnote.ErrIDRequired
	ErrSlugRequired       = tilnote.ErrSlugRequired
	ErrSlugInvalid        = tilnote.ErrSlugInvalid
	ErrSlugExists         = tilnote.ErrSlugExists
	ErrTitleRequired      = tilnote.ErrTitleRequired
	ErrSourcePathRequired = tilnote.ErrSourcePathRequired
	ErrSourcePathExists   = tilnote.ErrSourcePathExists
	ErrStatusInvalid      = tilnote.ErrStatusInvalid
	ErrStatusTransition   = tilnote.ErrStatusTransition
	ErrMetadataInvalid    = tilnote.ErrMetadataInvalid
	ErrSchedulingDisabled = tilnote.ErrSchedulingDisabled
	ErrScheduleWindow     = tilnote.ErrScheduleWindow
	ErrScheduleTimestamp  = tilnote.ErrScheduleTimestamp
	ErrLinkTargetRequired = tilnote.ErrLinkTargetRequired
	ErrLinkKindInvalid    = tilnote.ErrLinkKindInvalid
	ErrRepositoryRequired = tilnote.ErrRepositoryRequired
	ErrLinkRepoRequired   = tilnote.ErrLinkRepoRequired
)
