package wikilink

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-til/note"
)

// Link is one [[target]] reference found in a note body. Target holds the
// normalized slug form used for resolution; RawTarget keeps the text as the
// author wrote it, including any #section anchor.
type Link struct {
	Target    string
	RawTarget string
	Alias     string
	Embed     bool
	Line      int
	Offset    int
}

// Malformed records a span that opens with [[ but never closes on the same
// line, or whose target cannot be normalized. Scanners surface these instead
// of dropping them so verification can report the exact location.
type Malformed struct {
	Line   int
	Offset int
	Span   string
	Reason string
}

const (
	openMarker  = "[["
	closeMarker = "]]"
)

// Parse returns the well-formed wiki links in body, in document order.
func Parse(body []byte) []Link {
	links, _ := Scan(body)
	return links
}

// Scan walks body line by line and returns every well-formed wiki link plus
// the spans that fail to parse. Fenced code blocks and inline code spans are
// skipped so notes documenting the [[...]] syntax do not produce links.
func Scan(body []byte) ([]Link, []Malformed) {
	var (
		links     []Link
		malformed []Malformed
		inFence   bool
		fenceTick byte
		offset    int
		lineNo    int
	)

	for _, line := range bytes.SplitAfter(body, []byte("\n")) {
		lineNo++
		text := strings.TrimSuffix(string(line), "\n")
		text = strings.TrimSuffix(text, "\r")

		if marker, ok := fenceMarker(text); ok {
			if !inFence {
				inFence = true
				fenceTick = marker
			} else if marker == fenceTick {
				inFence = false
			}
			offset += len(line)
			continue
		}
		if inFence {
			offset += len(line)
			continue
		}

		lineLinks, lineBad := scanLine(MaskCodeSpans(text), lineNo, offset)
		links = append(links, lineLinks...)
		malformed = append(malformed, lineBad...)
		offset += len(line)
	}

	return links, malformed
}

func scanLine(text string, lineNo, lineOffset int) ([]Link, []Malformed) {
	var (
		links []Link
		bad   []Malformed
	)

	pos := 0
	for pos < len(text) {
		open := strings.Index(text[pos:], openMarker)
		if open < 0 {
			break
		}
		open += pos

		embed := open > 0 && text[open-1] == '!'
		rest := text[open+len(openMarker):]

		end := strings.Index(rest, closeMarker)
		if end < 0 {
			bad = append(bad, Malformed{
				Line:   lineNo,
				Offset: lineOffset + open,
				Span:   truncateSpan(text[open:]),
				Reason: "missing closing ]]",
			})
			break
		}

		inner := rest[:end]
		if nested := strings.Index(inner, openMarker); nested >= 0 {
			bad = append(bad, Malformed{
				Line:   lineNo,
				Offset: lineOffset + open,
				Span:   truncateSpan(text[open : open+len(openMarker)+nested]),
				Reason: "missing closing ]]",
			})
			pos = open + len(openMarker) + nested
			continue
		}

		pos = open + len(openMarker) + end + len(closeMarker)

		link, problem := parseInner(inner, embed, lineNo, lineOffset+open)
		if problem != nil {
			bad = append(bad, *problem)
			continue
		}
		if link != nil {
			links = append(links, *link)
		}
	}

	return links, bad
}

func parseInner(inner string, embed bool, lineNo, offset int) (*Link, *Malformed) {
	raw := inner
	alias := ""
	if pipe := strings.Index(inner, "|"); pipe >= 0 {
		alias = strings.TrimSpace(inner[pipe+1:])
		raw = inner[:pipe]
	}

	raw = strings.TrimSpace(raw)
	target := raw
	if hash := strings.Index(target, "#"); hash >= 0 {
		target = strings.TrimSpace(target[:hash])
	}

	// [[#section]] is a same-note anchor, not a cross-note reference.
	if target == "" && strings.HasPrefix(strings.TrimSpace(raw), "#") {
		return nil, nil
	}
	if target == "" {
		return nil, &Malformed{
			Line:   lineNo,
			Offset: offset,
			Span:   truncateSpan(openMarker + inner + closeMarker),
			Reason: "empty link target",
		}
	}

	normalized, err := note.NormalizeSlug(target)
	if err != nil || normalized == "" {
		return nil, &Malformed{
			Line:   lineNo,
			Offset: offset,
			Span:   truncateSpan(openMarker + inner + closeMarker),
			Reason: "target does not normalize to a slug",
		}
	}

	return &Link{
		Target:    normalized,
		RawTarget: raw,
		Alias:     alias,
		Embed:     embed,
		Line:      lineNo,
		Offset:    offset,
	}, nil
}

// fenceMarker reports whether the line opens or closes a fenced code block.
func fenceMarker(line string) (byte, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return 0, false
	}
	if strings.HasPrefix(trimmed, "```") {
		return '`', true
	}
	if strings.HasPrefix(trimmed, "~~~") {
		return '~', true
	}
	return 0, false
}

// MaskCodeSpans blanks out inline `code` spans so their content is not
// scanned for link markers. Byte offsets are preserved.
func MaskCodeSpans(line string) string {
	if !strings.Contains(line, "`") {
		return line
	}

	out := []byte(line)
	i := 0
	for i < len(out) {
		if out[i] != '`' {
			i++
			continue
		}
		run := i
		for run < len(out) && out[run] == '`' {
			run++
		}
		ticks := run - i

		end := findTickRun(out, run, ticks)
		if end < 0 {
			i = run
			continue
		}
		for j := run; j < end; j++ {
			out[j] = ' '
		}
		i = end + ticks
	}
	return string(out)
}

// findTickRun locates a run of exactly n backticks starting at or after pos.
func findTickRun(line []byte, pos, n int) int {
	for i := pos; i < len(line); i++ {
		if line[i] != '`' {
			continue
		}
		run := i
		for run < len(line) && line[run] == '`' {
			run++
		}
		if run-i == n {
			return i
		}
		i = run - 1
	}
	return -1
}

func truncateSpan(span string) string {
	const max = 40
	if len(span) <= max {
		return span
	}
	return span[:max] + "..."
}
