// Package site renders the notes tree into a static site: one page per
// visible note, one listing per category, and a home page, plus feeds,
// sitemap, robots, and theme assets. Rendering fans out over a worker pool
// and a build manifest keeps re-runs incremental; output flows through the
// storage provider so sinks stay pluggable.
package site
