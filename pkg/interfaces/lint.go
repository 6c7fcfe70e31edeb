package interfaces

import "context"

// Severity grades lint findings.
type Severity string

const (
	SeverityOff     Severity = "off"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one rule violation located in a note file.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

// Report aggregates findings across a lint run.
type Report struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

// Failed reports whether the run produced error-severity findings.
func (r *Report) Failed() bool {
	if r == nil {
		return false
	}
	for _, finding := range r.Findings {
		if finding.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings counts warning-severity findings.
func (r *Report) Warnings() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, finding := range r.Findings {
		if finding.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// RuleInfo describes a registered lint rule.
type RuleInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Default     Severity `json:"default"`
}

// Linter verifies the structural validity of the note corpus: well-formed
// Markdown, syntactically valid link targets, and consistent fence language
// tags.
type Linter interface {
	CheckFile(ctx context.Context, path string) (*Report, error)
	CheckTree(ctx context.Context, dir string) (*Report, error)
	Rules() []RuleInfo
}
