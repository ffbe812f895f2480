package analytics

import (
	"github.com/sentio-labs/chatlens/internal/chat"
)

// EngagementStats measures how invested each side is: share of the message
// volume, share of reactions given, and double-text behavior.
type EngagementStats struct {
	MessageShare       map[string]float64 `json:"messageShare"`
	ReactionShare      map[string]float64 `json:"reactionShare"`
	DoubleTexts        map[string]int     `json:"doubleTexts"`
	DoubleTextRate     map[string]float64 `json:"doubleTextRate"`
	LongestDailyStreak int                `json:"longestDailyStreak"`
}

// ComputeEngagement derives involvement ratios. A double text is a run of
// two or more consecutive messages from one sender with no reply in between;
// each run counts once.
func ComputeEngagement(conv *chat.Conversation) *EngagementStats {
	msgs := countableMessages(conv)

	stats := &EngagementStats{
		MessageShare:   make(map[string]float64),
		ReactionShare:  make(map[string]float64),
		DoubleTexts:    make(map[string]int),
		DoubleTextRate: make(map[string]float64),
	}
	if len(msgs) == 0 {
		return stats
	}

	msgCounts := make(map[string]int)
	reactionCounts := make(map[string]int)
	reactionTotal := 0

	runLen := 1
	for i, m := range msgs {
		msgCounts[m.Sender]++
		for _, r := range m.Reactions {
			reactionCounts[r.Actor] += r.Count
			reactionTotal += r.Count
		}
		if i == 0 {
			continue
		}
		if m.Sender == msgs[i-1].Sender {
			runLen++
			continue
		}
		if runLen >= 2 {
			stats.DoubleTexts[msgs[i-1].Sender]++
		}
		runLen = 1
	}
	if runLen >= 2 {
		stats.DoubleTexts[msgs[len(msgs)-1].Sender]++
	}

	for sender, n := range msgCounts {
		stats.MessageShare[sender] = float64(n) / float64(len(msgs)) * 100
		if n > 0 {
			stats.DoubleTextRate[sender] = float64(stats.DoubleTexts[sender]) / float64(n) * 100
		}
	}
	if reactionTotal > 0 {
		for actor, n := range reactionCounts {
			stats.ReactionShare[actor] = float64(n) / float64(reactionTotal) * 100
		}
	}

	stats.LongestDailyStreak = longestDailyStreak(msgs)
	return stats
}

// longestDailyStreak counts the longest run of consecutive calendar days
// with at least one message. Messages arrive in ascending order.
func longestDailyStreak(msgs []chat.Message) int {
	if len(msgs) == 0 {
		return 0
	}
	seen := make(map[int64]bool)
	var days []int64
	for _, m := range msgs {
		day := m.Timestamp.Unix() / 86400
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}
