// Package index regenerates the human-facing listings a TIL repository
// keeps at its root: the README digest and per-category pages. Generated
// content lives between managed markers so hand-written prose around it
// survives regeneration.
package index
