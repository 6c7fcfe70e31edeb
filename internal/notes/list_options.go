package notes

import (
	"strconv"
	"strings"
)

// Tokens understood by parseNoteListOptions. The public note package emits
// the same strings from its option constructors.
const (
	noteListWithLinks      NoteListOption = "note:list:with_links"
	noteListIncludeDeleted NoteListOption = "note:list:include_deleted"
	noteListVisibleOnly    NoteListOption = "note:list:visible"
	noteListCategoryPrefix NoteListOption = "note:list:category:"
	noteListStatusPrefix   NoteListOption = "note:list:status:"
	noteListTagPrefix      NoteListOption = "note:list:tag:"
	noteListLimitPrefix    NoteListOption = "note:list:limit:"
	noteListOffsetPrefix   NoteListOption = "note:list:offset:"
	noteListOrderPrefix    NoteListOption = "note:list:order:"
)

type noteListOptions struct {
	withLinks      bool
	includeDeleted bool
	visibleOnly    bool
	category       string
	status         string
	tag            string
	limit          int
	offset         int
	orderBy        string
	descending     bool
}

func parseNoteListOptions(args ...NoteListOption) noteListOptions {
	var opts noteListOptions
	for _, raw := range args {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		switch {
		case token == noteListWithLinks:
			opts.withLinks = true
		case token == noteListIncludeDeleted:
			opts.includeDeleted = true
		case token == noteListVisibleOnly:
			opts.visibleOnly = true
		case strings.HasPrefix(token, noteListCategoryPrefix):
			opts.category = strings.TrimPrefix(token, noteListCategoryPrefix)
		case strings.HasPrefix(token, noteListStatusPrefix):
			opts.status = strings.TrimPrefix(token, noteListStatusPrefix)
		case strings.HasPrefix(token, noteListTagPrefix):
			opts.tag = strings.TrimPrefix(token, noteListTagPrefix)
		case strings.HasPrefix(token, noteListLimitPrefix):
			if n, err := strconv.Atoi(strings.TrimPrefix(token, noteListLimitPrefix)); err == nil && n > 0 {
				opts.limit = n
			}
		case strings.HasPrefix(token, noteListOffsetPrefix):
			if n, err := strconv.Atoi(strings.TrimPrefix(token, noteListOffsetPrefix)); err == nil && n > 0 {
				opts.offset = n
			}
		case strings.HasPrefix(token, noteListOrderPrefix):
			field := strings.TrimPrefix(token, noteListOrderPrefix)
			if strings.HasPrefix(field, "-") {
				opts.descending = true
				field = strings.TrimPrefix(field, "-")
			}
			opts.orderBy = normalizeOrderField(field)
		}
	}
	return opts
}

// normalizeOrderField whitelists sortable columns; unknown fields fall back
// to created_at so raw tokens can never inject SQL.
func normalizeOrderField(field string) string {
	switch strings.TrimSpace(field) {
	case "slug", "category", "title", "status", "word_count", "created_at", "updated_at", "published_at":
		return strings.TrimSpace(field)
	case "":
		return ""
	default:
		return "created_at"
	}
}

func (o noteListOptions) filter() ListFilter {
	return ListFilter{
		Category:       o.category,
		Status:         o.status,
		Tag:            o.tag,
		IncludeDeleted: o.includeDeleted,
		Limit:          o.limit,
		Offset:         o.offset,
		OrderBy:        o.orderBy,
		Descending:     o.descending,
	}
}
