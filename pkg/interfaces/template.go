package interfaces

import (
	"io"
)

// TemplateRenderer renders site pages. Implementations resolve names against
// a theme's template set; RenderString accepts inline template source for
// callers that build markup on the fly. When an output writer is supplied the
// rendered markup goes there and the returned string is empty.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
