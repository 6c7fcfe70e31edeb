package site

import (
	"path"
	"strings"
)

// buildOutputPath maps a route to its on-disk artifact. Routes map to
// directory-style outputs so static hosts serve them without extension
// rewrites: "/" becomes index.html and "/go/" becomes go/index.html.
func buildOutputPath(route string) string {
	cleaned := strings.Trim(strings.TrimSpace(route), "/")
	if cleaned == "" {
		return "index.html"
	}
	return path.Join(cleaned, "index.html")
}

// joinOutputPath anchors a relative artifact path under the output directory.
func joinOutputPath(outputDir, rel string) string {
	rel = strings.TrimPrefix(strings.TrimSpace(rel), "/")
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return rel
	}
	return path.Join(outputDir, rel)
}

// normalizeRoute keeps route keys stable across the manifest and sitemap:
// always a leading slash, no trailing slash except the root.
func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" || route == "/" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return strings.TrimSuffix(route, "/")
}
