// Package analytics computes deterministic conversation statistics from the
// canonical model: per-person volumes, response timing, engagement ratios,
// long-range patterns, an hourly heatmap and a reciprocity index. Everything
// here is pure computation; sections that require an external model pass
// (sentiment, conflicts, ghost risk) are attached post-hoc by the caller.
package analytics

import (
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// SessionGap is the silence that closes a conversation session. Gaps above
// it also stop counting as response times.
const SessionGap = 4 * time.Hour

const (
	lateNightStartHour = 23
	lateNightEndHour   = 5

	burstMaxGap      = 2 * time.Minute
	burstMinMessages = 10

	topWordMinRunes   = 4
	topWordCount      = 5
	topPhraseMinHits  = 3
	topPhraseCount    = 3
	topEmojiCount     = 3
	topReactionCount  = 3
)

// Analysis is the full quantitative profile of one conversation.
type Analysis struct {
	Participants []string                `json:"participants"`
	PerPerson    map[string]*PersonStats `json:"perPerson"`
	Timing       *TimingStats            `json:"timing"`
	Engagement   *EngagementStats        `json:"engagement"`
	Patterns     *PatternStats           `json:"patterns"`
	Heatmap      *Heatmap                `json:"heatmap"`
	Reciprocity  *ReciprocityIndex       `json:"reciprocity"`

	// Attached by an external model pass when available.
	Sentiment         *SentimentAnalysis `json:"sentimentAnalysis,omitempty"`
	Conflict          *ConflictAnalysis  `json:"conflictAnalysis,omitempty"`
	Viral             *ViralScores       `json:"viralScores,omitempty"`
	PursuitWithdrawal *PursuitWithdrawal `json:"pursuitWithdrawal,omitempty"`
	GhostRisk         *GhostRisk         `json:"ghostRisk,omitempty"`
}

// Compute runs every quantitative section over the conversation.
func Compute(conv *chat.Conversation) *Analysis {
	timing := ComputeTiming(conv)
	return &Analysis{
		Participants: conv.ParticipantNames(),
		PerPerson:    ComputePerPerson(conv),
		Timing:       timing,
		Engagement:   ComputeEngagement(conv),
		Patterns:     ComputePatterns(conv),
		Heatmap:      ComputeHeatmap(conv),
		Reciprocity:  ComputeReciprocity(conv, timing),
	}
}

// countable reports whether a message participates in statistics. System
// entries and unsent messages carry no conversational content.
func countable(m chat.Message) bool {
	return m.Type != chat.TypeSystem && m.Type != chat.TypeUnsent
}

func countableMessages(conv *chat.Conversation) []chat.Message {
	out := make([]chat.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if countable(m) {
			out = append(out, m)
		}
	}
	return out
}
