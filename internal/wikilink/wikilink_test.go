package wikilink

import "testing"

func TestParseBasicForms(t *testing.T) {
	body := []byte("Compare with [[Go Channels]] and [[sync-pool|the pool note]].\n" +
		"Embedded diagram: ![[scheduler diagram]]\n")

	links := Parse(body)
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d: %#v", len(links), links)
	}

	if links[0].Target != "go-channels" {
		t.Fatalf("expected normalized target go-channels, got %q", links[0].Target)
	}
	if links[0].RawTarget != "Go Channels" {
		t.Fatalf("expected raw target preserved, got %q", links[0].RawTarget)
	}
	if links[0].Alias != "" {
		t.Fatalf("expected no alias, got %q", links[0].Alias)
	}
	if links[0].Line != 1 {
		t.Fatalf("expected line 1, got %d", links[0].Line)
	}

	if links[1].Target != "sync-pool" || links[1].Alias != "the pool note" {
		t.Fatalf("alias form parsed wrong: %#v", links[1])
	}

	if !links[2].Embed {
		t.Fatalf("expected embed link: %#v", links[2])
	}
	if links[2].Target != "scheduler-diagram" {
		t.Fatalf("expected embed target scheduler-diagram, got %q", links[2].Target)
	}
	if links[2].Line != 2 {
		t.Fatalf("expected embed on line 2, got %d", links[2].Line)
	}
}

func TestParseSectionAnchors(t *testing.T) {
	links := Parse([]byte("See [[go-channels#select]] and [[#local-heading]]."))

	if len(links) != 1 {
		t.Fatalf("expected 1 link (anchor-only skipped), got %d", len(links))
	}
	if links[0].Target != "go-channels" {
		t.Fatalf("expected anchor stripped for resolution, got %q", links[0].Target)
	}
	if links[0].RawTarget != "go-channels#select" {
		t.Fatalf("expected raw target kept with anchor, got %q", links[0].RawTarget)
	}
}

func TestScanReportsMalformedSpans(t *testing.T) {
	body := []byte("First [[unclosed on this line\nthen [[]] empty\nand [[fine]]\n")

	links, malformed := Scan(body)
	if len(links) != 1 || links[0].Target != "fine" {
		t.Fatalf("expected only the valid link, got %#v", links)
	}
	if len(malformed) != 2 {
		t.Fatalf("expected 2 malformed spans, got %#v", malformed)
	}
	if malformed[0].Line != 1 || malformed[0].Reason != "missing closing ]]" {
		t.Fatalf("unexpected first malformed span: %#v", malformed[0])
	}
	if malformed[1].Line != 2 || malformed[1].Reason != "empty link target" {
		t.Fatalf("unexpected second malformed span: %#v", malformed[1])
	}
}

func TestScanSkipsCodeRegions(t *testing.T) {
	body := []byte("Inline `[[not-a-link]]` stays code.\n" +
		"```md\n" +
		"[[inside-fence]]\n" +
		"```\n" +
		"But [[real-link]] counts.\n")

	links, malformed := Scan(body)
	if len(malformed) != 0 {
		t.Fatalf("expected no malformed spans, got %#v", malformed)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link outside code regions, got %#v", links)
	}
	if links[0].Target != "real-link" {
		t.Fatalf("expected real-link, got %q", links[0].Target)
	}
	if links[0].Line != 5 {
		t.Fatalf("expected link on line 5, got %d", links[0].Line)
	}
}

func TestScanRecoversAfterNestedOpen(t *testing.T) {
	links, malformed := Scan([]byte("Broken [[outer [[inner]] trailing"))

	if len(links) != 1 || links[0].Target != "inner" {
		t.Fatalf("expected inner link recovered, got %#v", links)
	}
	if len(malformed) != 1 {
		t.Fatalf("expected outer span reported, got %#v", malformed)
	}
}

func TestScanOffsetsAreByteAccurate(t *testing.T) {
	body := []byte("ab [[one]]\ncd [[two]]\n")

	links, _ := Scan(body)
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Offset != 3 {
		t.Fatalf("expected first offset 3, got %d", links[0].Offset)
	}
	if links[1].Offset != 14 {
		t.Fatalf("expected second offset 14, got %d", links[1].Offset)
	}
}
