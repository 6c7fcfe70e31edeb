package nav

import "strings"

// Item is a single navigation entry in render order.
type Item struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Count    int    `json:"count,omitempty"`
	Active   bool   `json:"active,omitempty"`
	External bool   `json:"external,omitempty"`

	category string
}

// Tree is the resolved navigation: home first, categories alphabetically,
// pinned links last.
type Tree struct {
	Items []*Item `json:"items"`
}

// Active returns the marked item, nil when no entry matches the current
// route.
func (t *Tree) Active() *Item {
	if t == nil {
		return nil
	}
	for _, item := range t.Items {
		if item.Active {
			return item
		}
	}
	return nil
}

// Pinned is a hand-configured entry appended after the category items.
type Pinned struct {
	Label string
	URL   string
}

// NavOptions identify the page being rendered so its entry can be marked
// active.
type NavOptions struct {
	// ActiveCategory marks the entry for this category.
	ActiveCategory string
	// ActivePath marks the entry whose URL matches this route path. It is
	// ignored when ActiveCategory is set.
	ActivePath string
}

type activeMarker struct {
	category string
	path     string
}

func newActiveMarker(opts NavOptions) activeMarker {
	return activeMarker{
		category: strings.ToLower(strings.TrimSpace(opts.ActiveCategory)),
		path:     normalizeRoutePath(opts.ActivePath),
	}
}

func (m activeMarker) matches(category, url string) bool {
	if m.category != "" {
		return category != "" && category == m.category
	}
	if m.path == "" {
		return false
	}
	return normalizeRoutePath(url) == m.path
}

// normalizeRoutePath makes "/go", "go", and "/go/" compare equal while
// keeping the root path and external URLs intact.
func normalizeRoutePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.Contains(path, "://") {
		return strings.TrimSuffix(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}
