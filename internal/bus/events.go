package bus

// ExportFile is one export file carried inline on the bus. Content is the
// raw file text: JSON for the JSON platforms, plain text for WhatsApp.
type ExportFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ExportStoredEvent asks for an analysis of a freshly stored export. Files
// from the same conversation are merged before analysis.
type ExportStoredEvent struct {
	Title string       `json:"title,omitempty"`
	Files []ExportFile `json:"files"`
}

// AnalysisCompletedEvent announces a finished, stored report.
type AnalysisCompletedEvent struct {
	ReportID string `json:"report_id"`
	Platform string `json:"platform"`
	Title    string `json:"title"`
	Health   int    `json:"health"`
	Messages int    `json:"messages"`
}
