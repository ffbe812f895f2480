package processor

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentio-labs/chatlens/internal/analytics"
	"github.com/sentio-labs/chatlens/internal/chat"
	"github.com/sentio-labs/chatlens/internal/scoring"
	"github.com/sentio-labs/chatlens/internal/wrapped"
)

// Report is the full analysis document produced for one conversation. It is
// what gets persisted and returned to clients; raw messages are not part of
// it.
type Report struct {
	ID           uuid.UUID             `json:"id"`
	Platform     chat.Platform         `json:"platform"`
	Title        string                `json:"title"`
	Participants []string              `json:"participants"`
	Metadata     chat.Metadata         `json:"metadata"`
	Analysis     *analytics.Analysis   `json:"analysis"`
	HealthScore  scoring.HealthScore   `json:"healthScore"`
	ThreatMeters []scoring.ThreatMeter `json:"threatMeters"`
	DamageReport scoring.DamageReport  `json:"damageReport"`
	Slides       []wrapped.Slide       `json:"slides"`

	// Present only when the caller supplied screening answers.
	CPSResults   map[string]scoring.CPSPatternResult `json:"cpsResults,omitempty"`
	CPSRiskLevel string                              `json:"cpsRiskLevel,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Enrichment carries externally computed qualitative context. Everything
// here is optional and arrives already resolved; the pipeline never calls
// out to produce it.
type Enrichment struct {
	HealthComponents  *scoring.HealthComponents    `json:"healthComponents,omitempty"`
	HealthExplanation string                       `json:"healthExplanation,omitempty"`
	ModelHealth       *float64                     `json:"modelHealth,omitempty"`
	Flags             *scoring.PassFlags           `json:"flags,omitempty"`
	Sentiment         *analytics.SentimentAnalysis `json:"sentiment,omitempty"`
	Conflict          *analytics.ConflictAnalysis  `json:"conflict,omitempty"`
	Viral             *analytics.ViralScores       `json:"viral,omitempty"`
	PursuitWithdrawal *analytics.PursuitWithdrawal `json:"pursuitWithdrawal,omitempty"`
	GhostRisk         *analytics.GhostRisk         `json:"ghostRisk,omitempty"`
	CPSAnswers        map[string]scoring.CPSAnswer `json:"cpsAnswers,omitempty"`
}

// attach copies the optional sections onto the analysis so downstream
// scoring sees them in their canonical place.
func (e *Enrichment) attach(a *analytics.Analysis) {
	if e == nil {
		return
	}
	if e.Sentiment != nil {
		a.Sentiment = e.Sentiment
	}
	if e.Conflict != nil {
		a.Conflict = e.Conflict
	}
	if e.Viral != nil {
		a.Viral = e.Viral
	}
	if e.PursuitWithdrawal != nil {
		a.PursuitWithdrawal = e.PursuitWithdrawal
	}
	if e.GhostRisk != nil {
		a.GhostRisk = e.GhostRisk
	}
}

// healthComponents derives the five health inputs from the quantitative
// analysis when the caller did not supply model-judged ones. Deterministic
// by construction: balance and reciprocity come from the reciprocity index,
// emotional safety from the worst risk meter, growth from the volume trend.
func healthComponents(a *analytics.Analysis, meters []scoring.ThreatMeter) scoring.HealthComponents {
	c := scoring.HealthComponents{
		Balance:          50,
		Reciprocity:      50,
		ResponsePattern:  50,
		EmotionalSafety:  emotionalSafety(meters),
		GrowthTrajectory: 50,
	}
	if a == nil {
		return c
	}
	if idx := a.Reciprocity; idx != nil {
		c.Balance = idx.MessageBalance
		c.Reciprocity = idx.Overall
		c.ResponsePattern = idx.ResponseSymmetry
	}
	if a.Patterns != nil {
		c.GrowthTrajectory = 50 + 25*float64(a.Patterns.TrendSign)
	}
	return c
}

// emotionalSafety is the inverse of the worst risk-direction meter. The
// trust meter points the other way and is excluded. No meters means no
// evidence, which scores neutral.
func emotionalSafety(meters []scoring.ThreatMeter) float64 {
	worst := -1.0
	for _, m := range meters {
		if m.Key == scoring.MeterTrust {
			continue
		}
		if m.Score > worst {
			worst = m.Score
		}
	}
	if worst < 0 {
		return 50
	}
	return 100 - worst
}
