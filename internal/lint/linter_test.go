package lint

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/pkg/interfaces"
)

func TestCheckTreeCleanSubtree(t *testing.T) {
	linter := newTestLinter(t)

	report, err := linter.CheckTree(context.Background(), "go")
	if err != nil {
		t.Fatalf("check tree: %v", err)
	}
	if report.Checked != 2 {
		t.Fatalf("expected 2 files checked, got %d", report.Checked)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
	if report.Failed() {
		t.Fatal("expected a clean report")
	}
}

func TestCheckTreeReportsBrokenFiles(t *testing.T) {
	linter := newTestLinter(t)

	report, err := linter.CheckTree(context.Background(), ".")
	if err != nil {
		t.Fatalf("check tree: %v", err)
	}
	if report.Checked != 10 {
		t.Fatalf("expected 10 files checked, got %d", report.Checked)
	}

	counts := countByRule(report)
	expected := map[string]int{
		RuleMarkdownParse:     4,
		RuleLinkURL:           4,
		RuleFenceLang:         3,
		RuleFrontMatterSchema: 1,
		RuleNoteTitle:         2,
	}
	for rule, want := range expected {
		if counts[rule] != want {
			t.Fatalf("expected %d %s findings, got %d: %+v", want, rule, counts[rule], report.Findings)
		}
	}

	if !report.Failed() {
		t.Fatal("expected the report to fail")
	}
	if got := report.Warnings(); got != 4 {
		t.Fatalf("expected 4 warnings, got %d", got)
	}
}

func TestCheckTreeFindingDetail(t *testing.T) {
	linter := newTestLinter(t)

	report, err := linter.CheckTree(context.Background(), ".")
	if err != nil {
		t.Fatalf("check tree: %v", err)
	}

	unterminated := findingsFor(report, "broken/unterminated.md")
	if len(unterminated) != 1 {
		t.Fatalf("expected 1 finding for unterminated fence, got %+v", unterminated)
	}
	if unterminated[0].Line != 7 || !strings.Contains(unterminated[0].Message, "never closed") {
		t.Fatalf("unexpected unterminated fence finding: %+v", unterminated[0])
	}

	badURL := findingsFor(report, "broken/bad-url.md")
	if len(badURL) != 4 {
		t.Fatalf("expected 4 link findings, got %+v", badURL)
	}
	wantLines := []int{5, 7, 9, 11}
	for i, finding := range badURL {
		if finding.Rule != RuleLinkURL {
			t.Fatalf("expected %s finding, got %+v", RuleLinkURL, finding)
		}
		if finding.Line != wantLines[i] {
			t.Fatalf("expected finding %d on line %d, got %+v", i, wantLines[i], finding)
		}
	}

	fences := findingsFor(report, "broken/fences.md")
	if len(fences) != 3 {
		t.Fatalf("expected 3 fence findings, got %+v", fences)
	}
	if fences[0].Line != 7 || fences[0].Severity != interfaces.SeverityError {
		t.Fatalf("unexpected missing-tag finding: %+v", fences[0])
	}
	if fences[1].Line != 13 || !strings.Contains(fences[1].Message, "klingon") {
		t.Fatalf("unexpected unknown-tag finding: %+v", fences[1])
	}
	if fences[2].Line != 19 || fences[2].Severity != interfaces.SeverityWarning {
		t.Fatalf("expected the content mismatch to warn, got %+v", fences[2])
	}

	schema := findingsFor(report, "broken/front-matter.md")
	if len(schema) != 1 || schema[0].Line != 1 || !strings.Contains(schema[0].Message, "/status") {
		t.Fatalf("unexpected schema findings: %+v", schema)
	}

	badYAML := findingsFor(report, "broken/bad-yaml.md")
	if len(badYAML) != 1 || badYAML[0].Rule != RuleMarkdownParse {
		t.Fatalf("expected a parse finding for bad YAML, got %+v", badYAML)
	}
	if !strings.Contains(badYAML[0].Message, "does not parse") {
		t.Fatalf("unexpected load failure message: %+v", badYAML[0])
	}
}

func TestCheckFileUsesTreeContext(t *testing.T) {
	linter := newTestLinter(t)

	// The wiki link in channels.md resolves against a note in the same
	// tree, so a single-file check still loads the corpus.
	report, err := linter.CheckFile(context.Background(), "go/channels.md")
	if err != nil {
		t.Fatalf("check file: %v", err)
	}
	if report.Checked != 1 {
		t.Fatalf("expected 1 file checked, got %d", report.Checked)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}

	report, err = linter.CheckFile(context.Background(), "broken/bad-url.md")
	if err != nil {
		t.Fatalf("check file: %v", err)
	}
	if len(report.Findings) != 4 {
		t.Fatalf("expected 4 findings, got %+v", report.Findings)
	}
	for _, finding := range report.Findings {
		if finding.Rule != RuleLinkURL {
			t.Fatalf("expected only %s findings, got %+v", RuleLinkURL, finding)
		}
	}
}

func TestCheckFileMissing(t *testing.T) {
	linter := newTestLinter(t)

	_, err := linter.CheckFile(context.Background(), "missing.md")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestSeverityOverrides(t *testing.T) {
	linter := newTestLinter(t,
		WithSeverity(RuleNoteTitle, interfaces.SeverityOff),
		WithSeverity(RuleFenceLang, interfaces.SeverityWarning),
	)

	report, err := linter.CheckTree(context.Background(), ".")
	if err != nil {
		t.Fatalf("check tree: %v", err)
	}

	counts := countByRule(report)
	if counts[RuleNoteTitle] != 0 {
		t.Fatalf("expected note/title to be off, got %d findings", counts[RuleNoteTitle])
	}
	for _, finding := range findingsFor(report, "broken/fences.md") {
		if finding.Severity != interfaces.SeverityWarning {
			t.Fatalf("expected fence findings to warn, got %+v", finding)
		}
	}
	if !report.Failed() {
		t.Fatal("expected remaining error findings to fail the report")
	}
}

func TestAllowedSchemesOverride(t *testing.T) {
	linter := newTestLinter(t, WithAllowedSchemes("htp", "https"))

	report, err := linter.CheckFile(context.Background(), "broken/bad-url.md")
	if err != nil {
		t.Fatalf("check file: %v", err)
	}
	if len(report.Findings) != 3 {
		t.Fatalf("expected 3 findings with htp allowed, got %+v", report.Findings)
	}
	for _, finding := range report.Findings {
		if strings.Contains(finding.Message, "htp://example.com") {
			t.Fatalf("htp link should pass with the scheme allowed: %+v", finding)
		}
	}
}

func TestFenceLanguagesOverride(t *testing.T) {
	linter := newTestLinter(t, WithFenceLanguages("klingon"))

	report, err := linter.CheckFile(context.Background(), "broken/fences.md")
	if err != nil {
		t.Fatalf("check file: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings with klingon known, got %+v", report.Findings)
	}
	for _, finding := range report.Findings {
		if strings.Contains(finding.Message, "unknown fence language") {
			t.Fatalf("klingon should be accepted: %+v", finding)
		}
	}
}

func TestRulesListing(t *testing.T) {
	linter := newTestLinter(t)

	infos := linter.Rules()
	wantIDs := []string{
		RuleMarkdownParse,
		RuleLinkURL,
		RuleFenceLang,
		RuleFrontMatterSchema,
		RuleNoteTitle,
	}
	if len(infos) != len(wantIDs) {
		t.Fatalf("expected %d rules, got %d", len(wantIDs), len(infos))
	}
	for i, info := range infos {
		if info.ID != wantIDs[i] {
			t.Fatalf("expected rule %s at %d, got %s", wantIDs[i], i, info.ID)
		}
		if info.Description == "" {
			t.Fatalf("rule %s has no description", info.ID)
		}
	}
	if infos[4].Default != interfaces.SeverityWarning {
		t.Fatalf("expected %s to default to warning, got %s", RuleNoteTitle, infos[4].Default)
	}
}

func TestNewRequiresDocumentSource(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrDocumentSourceRequired) {
		t.Fatalf("expected ErrDocumentSourceRequired, got %v", err)
	}
}

// Helpers --------------------------------------------------------------------

func newTestLinter(tb testing.TB, opts ...Option) *Linter {
	tb.Helper()

	svc, err := markdown.NewService(markdown.Config{
		BasePath: filepath.Join("testdata", "corpus"),
	}, nil)
	if err != nil {
		tb.Fatalf("new markdown service: %v", err)
	}

	linter, err := New(svc, opts...)
	if err != nil {
		tb.Fatalf("new linter: %v", err)
	}
	return linter
}

func findingsFor(report *interfaces.Report, path string) []interfaces.Finding {
	var matched []interfaces.Finding
	for _, finding := range report.Findings {
		if finding.Path == path {
			matched = append(matched, finding)
		}
	}
	return matched
}

func countByRule(report *interfaces.Report) map[string]int {
	counts := map[string]int{}
	for _, finding := range report.Findings {
		counts[finding.Rule]++
	}
	return counts
}
