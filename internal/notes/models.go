package notes

import tilnote "github.com/goliatone/go-til/note"

type (
	Note          = tilnote.Note
	Link          = tilnote.Link
	CategoryCount = tilnote.CategoryCount
	TagCount      = tilnote.TagCount
	Stats         = tilnote.Stats
)
