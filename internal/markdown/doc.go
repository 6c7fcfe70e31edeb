// Package markdown loads, parses, and indexes the note files that make up a
// TIL log. The files stay canonical: this package derives everything the rest
// of the system needs (front matter, HTML, links, checksums) and writes it
// into the note index, which can be rebuilt from the tree at any time.
package markdown
