package lint

import (
	"encoding/json"
	"errors"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// frontMatterSchema constrains the conventional TIL header fields. Custom
// keys pass through untouched; only the fields the importer interprets are
// pinned down.
const frontMatterSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"title": "til-note-front-matter",
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"slug": {"type": "string", "minLength": 1},
		"summary": {"type": "string"},
		"status": {"enum": ["draft", "published", "archived"]},
		"tags": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"source": {"type": "string", "minLength": 1},
		"date": {"type": "string"},
		"draft": {"type": "boolean"},
		"publish_at": {"type": "string"},
		"unpublish_at": {"type": "string"}
	}
}`

func compileFrontMatterSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("frontmatter.json", strings.NewReader(frontMatterSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("frontmatter.json")
}

// runFrontMatterSchema validates the raw front matter mapping against the
// note schema. Findings land on line 1 where the block lives.
func runFrontMatterSchema(rc *ruleContext) {
	raw := rc.doc.FrontMatter.Raw
	if len(raw) == 0 {
		return
	}

	payload, err := jsonRoundTrip(raw)
	if err != nil {
		rc.emit(1, "front matter does not encode as JSON: %v", err)
		return
	}

	err = rc.linter.schema.Validate(payload)
	if err == nil {
		return
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		rc.emit(1, "front matter validation: %v", err)
		return
	}

	for _, issue := range collectSchemaIssues(validationErr) {
		if issue.location == "" {
			rc.emit(1, "front matter: %s", issue.message)
			continue
		}
		rc.emit(1, "front matter %s: %s", issue.location, issue.message)
	}
}

type schemaIssue struct {
	location string
	message  string
}

// collectSchemaIssues flattens a validation error tree into its leaf causes.
func collectSchemaIssues(err *jsonschema.ValidationError) []schemaIssue {
	if err == nil {
		return nil
	}
	var issues []schemaIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, schemaIssue{
				location: strings.TrimSpace(node.InstanceLocation),
				message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// jsonRoundTrip re-encodes the front matter map so typed values, time.Time
// in particular, take the shapes the schema validator understands.
func jsonRoundTrip(raw map[string]any) (any, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
