package noop

import (
	"io"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// Template returns a renderer that bypasses rendering. The container installs
// it until a theme directory is configured, so lint and sync flows never
// require templates on disk.
func Template() interfaces.TemplateRenderer {
	return templateAdapter{}
}

type templateAdapter struct{}

func (templateAdapter) RenderTemplate(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (templateAdapter) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}
