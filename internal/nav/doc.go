// Package nav resolves the site navigation tree: the home entry, one entry
// per category with a visible-note count, and any pinned links from
// configuration. URLs come from the shared go-urlkit route table so the
// navigation and the rendered pages can never disagree about paths.
package nav
