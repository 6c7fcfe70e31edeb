package note

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestNoteJSONUsesMetadataField(t *testing.T) {
	noteID := uuid.New()

	record := Note{
		ID:       noteID,
		Slug:     "dokploy-first-deploy",
		Category: "devops",
		Title:    "Deploying with Dokploy",
		Status:   "draft",
		Metadata: map[string]any{
			"difficulty": "easy",
		},
	}

	payload, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal note: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := raw["metadata"]; !ok {
		t.Fatalf("expected metadata field in JSON payload")
	}
	if _, ok := raw["Metadata"]; ok {
		t.Fatalf("expected Metadata field to be absent from JSON payload")
	}

	input := fmt.Sprintf(`{"id":"%s","slug":"dokploy-first-deploy","metadata":{"difficulty":"easy"}}`, noteID)
	var decoded Note
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		t.Fatalf("unmarshal note: %v", err)
	}
	if decoded.Metadata == nil {
		t.Fatalf("expected metadata to decode")
	}
	if got, ok := decoded.Metadata["difficulty"].(string); !ok || got != "easy" {
		t.Fatalf("expected metadata difficulty %q got %v", "easy", decoded.Metadata["difficulty"])
	}
}
