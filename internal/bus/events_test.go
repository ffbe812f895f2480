package bus

import (
	"encoding/json"
	"testing"
)

func TestExportStoredEventParsing(t *testing.T) {
	raw := `{
		"title": "Ala i Bartek",
		"files": [
			{"name": "message_1.json", "content": "{\"participants\":[]}"},
			{"name": "message_2.json", "content": "{\"participants\":[]}"}
		]
	}`

	var event ExportStoredEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("failed to parse ExportStoredEvent: %v", err)
	}

	if event.Title != "Ala i Bartek" {
		t.Errorf("expected title 'Ala i Bartek', got '%s'", event.Title)
	}
	if len(event.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(event.Files))
	}
	if event.Files[0].Name != "message_1.json" {
		t.Errorf("expected first file name 'message_1.json', got '%s'", event.Files[0].Name)
	}
	if event.Files[1].Content == "" {
		t.Error("expected inline content on second file")
	}
}

func TestAnalysisCompletedEventRoundTrip(t *testing.T) {
	event := AnalysisCompletedEvent{
		ReportID: "3e6f9c2a-0000-4000-8000-000000000000",
		Platform: "telegram",
		Title:    "Wakacje 2024",
		Health:   72,
		Messages: 15231,
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed AnalysisCompletedEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed != event {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, event)
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectExportStored != "chatlens.export.stored" {
		t.Errorf("expected SubjectExportStored 'chatlens.export.stored', got '%s'", SubjectExportStored)
	}
	if SubjectAnalysisCompleted != "chatlens.analysis.completed" {
		t.Errorf("expected SubjectAnalysisCompleted 'chatlens.analysis.completed', got '%s'", SubjectAnalysisCompleted)
	}
}
