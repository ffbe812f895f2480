package analytics

// The types below are produced by an external model pass over the
// conversation and attached to an Analysis after the fact. Their scores are
// consumed as-is; nothing in this package computes them.

// SentimentAnalysis holds tone scores on -1..1.
type SentimentAnalysis struct {
	Average   float64            `json:"average"`
	PerPerson map[string]float64 `json:"perPerson,omitempty"`
}

// ConflictAnalysis counts detected conflict episodes.
type ConflictAnalysis struct {
	ConflictCount int `json:"conflictCount"`
}

// ViralScores rates standout messages by shareability.
type ViralScores struct {
	Best []ViralMessage `json:"best"`
}

type ViralMessage struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// PursuitWithdrawal describes a pursue/withdraw dynamic between two people,
// with intensity on 0-100.
type PursuitWithdrawal struct {
	Pursuer    string  `json:"pursuer"`
	Withdrawer string  `json:"withdrawer"`
	Intensity  float64 `json:"intensity"`
}

// GhostRisk is a per-person 0-100 risk that this person goes quiet for good,
// plus how often ghosting episodes already happened, as a 0-100 frequency.
type GhostRisk struct {
	PerPerson map[string]float64 `json:"perPerson"`
	Frequency float64            `json:"frequency"`
}
