package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-til/internal/wikilink"
	"github.com/goliatone/go-til/note"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// ExtractLinks collects every outgoing reference in the document body as
// note.LinkInput records: wiki links in scan order first, then standard
// Markdown links, images, and autolinks in traversal order. Positions are
// sequential so re-imports assign the same deterministic link identity.
func ExtractLinks(doc *interfaces.Document, opts interfaces.ParseOptions) []note.LinkInput {
	if doc == nil || len(doc.Body) == 0 {
		return nil
	}

	var inputs []note.LinkInput

	for _, wl := range wikilink.Parse(doc.Body) {
		text := wl.Alias
		if text == "" {
			text = wl.RawTarget
		}
		inputs = append(inputs, note.LinkInput{
			Kind:       note.LinkKindWiki,
			TargetSlug: wl.Target,
			Text:       text,
		})
	}

	root := ParseAST(doc.Body, opts)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		// Links with empty destinations are legal Markdown but carry nothing
		// worth indexing.
		switch node := n.(type) {
		case *ast.Link:
			if target := string(node.Destination); target != "" {
				inputs = append(inputs, note.LinkInput{
					Kind:      note.LinkKindInline,
					TargetURL: target,
					Text:      nodeText(node, doc.Body),
				})
			}
		case *ast.Image:
			if target := string(node.Destination); target != "" {
				inputs = append(inputs, note.LinkInput{
					Kind:      note.LinkKindImage,
					TargetURL: target,
					Text:      nodeText(node, doc.Body),
				})
			}
		case *ast.AutoLink:
			if target := string(node.URL(doc.Body)); target != "" {
				inputs = append(inputs, note.LinkInput{
					Kind:      note.LinkKindAutolink,
					TargetURL: target,
					Text:      string(node.Label(doc.Body)),
				})
			}
		}
		return ast.WalkContinue, nil
	})

	for i := range inputs {
		inputs[i].Position = i
	}
	return inputs
}

// nodeText concatenates the text content of a node's descendants.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			buf.Write(typed.Segment.Value(source))
		case *ast.String:
			buf.Write(typed.Value)
		default:
			buf.WriteString(nodeText(child, source))
		}
	}
	return buf.String()
}
