// Package lint verifies the structural health of a notes tree: Markdown
// well-formedness, link targets that resolve, fence language tags, and front
// matter schema conformance. Rules run per file but share a corpus built from
// the whole tree so wiki links and relative paths resolve the same way the
// rendered site would.
package lint
