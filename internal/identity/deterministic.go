package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// NoteUUID derives the stable identifier for a note from its source path.
// Paths are slash-normalized so the same file imports identically on every
// platform.
func NoteUUID(sourcePath string) uuid.UUID {
	normalized := strings.ReplaceAll(strings.TrimSpace(sourcePath), "\\", "/")
	return UUID("til:note:" + normalized)
}

// LinkUUID derives the identifier for a link occurrence inside a note. The
// position keeps repeated targets within one note distinct.
func LinkUUID(noteID uuid.UUID, target string, position int) uuid.UUID {
	return UUID("til:link:" + noteID.String() + ":" + strings.TrimSpace(target) + ":" + strconv.Itoa(position))
}

// CategoryUUID derives the identifier for a category from its directory name.
func CategoryUUID(category string) uuid.UUID {
	return UUID("til:category:" + strings.ToLower(strings.TrimSpace(category)))
}
