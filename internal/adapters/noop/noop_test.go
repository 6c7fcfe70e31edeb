package noop_test

import (
	"testing"

	"github.com/goliatone/go-til/internal/adapters/noop"
	"github.com/goliatone/go-til/pkg/interfaces"
)

func TestAdaptersImplementInterfaces(t *testing.T) {
	var _ interfaces.TemplateRenderer = noop.Template()
}

func TestTemplateRendersNothing(t *testing.T) {
	renderer := noop.Template()

	out, err := renderer.RenderTemplate("note.html", map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
