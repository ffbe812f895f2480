package analytics

import (
	"sort"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// ResponseStats summarizes how fast one person answers the other side.
type ResponseStats struct {
	Count         int     `json:"count"`
	AvgSeconds    float64 `json:"avgSeconds"`
	MedianSeconds float64 `json:"medianSeconds"`
	P90Seconds    float64 `json:"p90Seconds"`
	StdDevSeconds float64 `json:"stdDevSeconds"`
}

// TimingStats covers the rhythm of the conversation: sessions separated by
// SessionGap of silence, who opens and closes them, response latencies and
// late-night activity.
type TimingStats struct {
	SessionCount       int                       `json:"sessionCount"`
	AvgSessionMessages float64                   `json:"avgSessionMessages"`
	Initiations        map[string]int            `json:"initiations"`
	Endings            map[string]int            `json:"endings"`
	ResponseTimes      map[string]*ResponseStats `json:"responseTimes"`
	LateNightCounts    map[string]int            `json:"lateNightCounts"`
	LateNightShare     float64                   `json:"lateNightShare"`
}

// ComputeTiming splits the conversation into sessions and derives who starts
// them, who ends them and how quickly each side responds. A response is an
// adjacent sender change within a session; gaps longer than SessionGap open
// a new session instead of counting as a slow reply.
func ComputeTiming(conv *chat.Conversation) *TimingStats {
	msgs := countableMessages(conv)

	stats := &TimingStats{
		Initiations:     make(map[string]int),
		Endings:         make(map[string]int),
		ResponseTimes:   make(map[string]*ResponseStats),
		LateNightCounts: make(map[string]int),
	}
	if len(msgs) == 0 {
		return stats
	}

	responseSeconds := make(map[string][]float64)
	lateNightTotal := 0

	stats.SessionCount = 1
	stats.Initiations[msgs[0].Sender]++

	for i, m := range msgs {
		hour := m.Timestamp.Hour()
		if hour >= lateNightStartHour || hour < lateNightEndHour {
			stats.LateNightCounts[m.Sender]++
			lateNightTotal++
		}

		if i == 0 {
			continue
		}
		prev := msgs[i-1]
		gap := m.Timestamp.Sub(prev.Timestamp)
		if gap > SessionGap {
			stats.Endings[prev.Sender]++
			stats.SessionCount++
			stats.Initiations[m.Sender]++
			continue
		}
		if m.Sender != prev.Sender {
			responseSeconds[m.Sender] = append(responseSeconds[m.Sender], gap.Seconds())
		}
	}
	stats.Endings[msgs[len(msgs)-1].Sender]++

	stats.AvgSessionMessages = float64(len(msgs)) / float64(stats.SessionCount)
	stats.LateNightShare = float64(lateNightTotal) / float64(len(msgs)) * 100

	for sender, samples := range responseSeconds {
		sort.Float64s(samples)
		stats.ResponseTimes[sender] = &ResponseStats{
			Count:         len(samples),
			AvgSeconds:    mean(samples),
			MedianSeconds: median(samples),
			P90Seconds:    percentile(samples, 0.9),
			StdDevSeconds: stdDev(samples),
		}
	}
	return stats
}
