package lint

import (
	"regexp"
	"strings"
)

// fenceBlock is one fenced code block found while scanning a note body.
type fenceBlock struct {
	// Line is the 1-based body line of the opening marker.
	Line    int
	Marker  string
	Info    string
	Lang    string
	Content []string
	Closed  bool
}

// runFenceLang flags fences with a missing or unknown language tag at the
// configured severity. Content that contradicts the tag is only ever a
// warning; the heuristics are deliberately narrow.
func runFenceLang(rc *ruleContext) {
	for _, block := range rc.fences {
		line := rc.fileLine(block.Line)
		if block.Lang == "" {
			rc.emit(line, "fenced code block has no language tag")
			continue
		}
		if !rc.linter.fenceLanguageKnown(block.Lang) {
			rc.emit(line, "unknown fence language %q", block.Lang)
			continue
		}
		if reason := fenceContentMismatch(block); reason != "" {
			rc.warn(line, "fence tagged %q but %s", block.Lang, reason)
		}
	}
}

// scanFences walks a body line by line and collects fenced code blocks. A
// closing marker must use the opening character with at least as many
// repetitions and carry no info string.
func scanFences(lines []string) []fenceBlock {
	var (
		blocks   []fenceBlock
		open     *fenceBlock
		openChar byte
		openLen  int
	)

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)

		if open != nil {
			char, count, ok := fenceRun(trimmed)
			if ok && indent <= 3 && char == openChar && count >= openLen && strings.TrimSpace(trimmed[count:]) == "" {
				open.Closed = true
				blocks = append(blocks, *open)
				open = nil
				continue
			}
			open.Content = append(open.Content, line)
			continue
		}

		if indent > 3 {
			continue
		}
		char, count, ok := fenceRun(trimmed)
		if !ok {
			continue
		}
		info := strings.TrimSpace(trimmed[count:])
		// A backtick fence cannot carry backticks in its info string.
		if char == '`' && strings.Contains(info, "`") {
			continue
		}
		open = &fenceBlock{
			Line:   i + 1,
			Marker: strings.Repeat(string(char), count),
			Info:   info,
			Lang:   fenceLang(info),
		}
		openChar, openLen = char, count
	}

	if open != nil {
		blocks = append(blocks, *open)
	}
	return blocks
}

func fenceRun(trimmed string) (byte, int, bool) {
	if trimmed == "" {
		return 0, 0, false
	}
	char := trimmed[0]
	if char != '`' && char != '~' {
		return 0, 0, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == char {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return char, n, true
}

func fenceLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// proseLines marks which body lines sit outside fenced code blocks. Marker
// lines count as fence content.
func proseLines(lines []string, blocks []fenceBlock) []bool {
	prose := make([]bool, len(lines))
	for i := range prose {
		prose[i] = true
	}
	for _, block := range blocks {
		end := block.Line - 1 + len(block.Content)
		if block.Closed {
			end++
		}
		for i := block.Line - 1; i <= end && i < len(lines); i++ {
			prose[i] = false
		}
	}
	return prose
}

// Language tags ---------------------------------------------------------------

var fenceLanguageList = []string{
	"awk", "bash", "bat", "c", "c#", "c++", "clojure", "cmake", "console",
	"cpp", "cs", "csharp", "css", "csv", "dart", "diff", "docker",
	"dockerfile", "dotenv", "elixir", "erlang", "fish", "fsharp", "go",
	"golang", "graphql", "groovy", "haskell", "hcl", "html", "http", "ini",
	"java", "javascript", "js", "json", "jsonc", "jsx", "kotlin", "lua",
	"make", "makefile", "markdown", "md", "mermaid", "nginx", "nix", "objc",
	"ocaml", "perl", "php", "plain", "plaintext", "powershell", "properties",
	"proto", "protobuf", "ps1", "py", "python", "r", "rb", "regex", "ruby",
	"rust", "scala", "scss", "sed", "sh", "shell", "shell-session", "sql",
	"svelte", "swift", "terraform", "text", "toml", "ts", "tsx", "twig",
	"txt", "typescript", "vim", "vue", "xml", "yaml", "yml", "zig", "zsh",
}

func knownFenceLanguages() map[string]struct{} {
	tags := make(map[string]struct{}, len(fenceLanguageList))
	for _, tag := range fenceLanguageList {
		tags[tag] = struct{}{}
	}
	return tags
}

var fenceAliases = map[string]string{
	"bash":      "shell",
	"c#":        "csharp",
	"c++":       "cpp",
	"cs":        "csharp",
	"golang":    "go",
	"js":        "javascript",
	"md":        "markdown",
	"plain":     "text",
	"plaintext": "text",
	"py":        "python",
	"rb":        "ruby",
	"sh":        "shell",
	"ts":        "typescript",
	"txt":       "text",
	"yml":       "yaml",
	"zsh":       "shell",
}

func canonicalFenceLang(lang string) string {
	if canonical, ok := fenceAliases[lang]; ok {
		return canonical
	}
	return lang
}

// Content heuristics ----------------------------------------------------------

var yamlEntryPattern = regexp.MustCompile(`^\s*(#.*|- .*|[A-Za-z0-9_."'-]+:(\s.*)?)$`)

// fenceContentMismatch checks a tagged fence against two narrow probes: a
// curly-brace language tag over content shaped entirely like YAML mappings,
// and a json tag over content that cannot start a JSON value.
func fenceContentMismatch(block fenceBlock) string {
	content := nonEmptyLines(block.Content)
	if len(content) < 2 {
		return ""
	}

	switch canonicalFenceLang(block.Lang) {
	case "c", "cpp", "csharp", "go", "java", "javascript", "php", "rust", "typescript":
		if allYAMLShaped(content) && !anyCodeShaped(content) {
			return "the content looks like YAML"
		}
	case "json":
		first := strings.TrimSpace(content[0])
		if first != "" && !strings.ContainsAny(first[:1], `{["-0123456789tfn`) {
			return "the content does not look like JSON"
		}
	}
	return ""
}

func nonEmptyLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func allYAMLShaped(lines []string) bool {
	for _, line := range lines {
		if !yamlEntryPattern.MatchString(line) {
			return false
		}
	}
	return true
}

var codeMarkers = []string{"{", "}", ";", "=>", "func ", "class ", "using ", "package ", "#include"}

func anyCodeShaped(lines []string) bool {
	for _, line := range lines {
		for _, marker := range codeMarkers {
			if strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}
