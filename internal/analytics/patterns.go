package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// MonthCount is one month's message volume, keyed as "2006-01".
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Burst is a rapid exchange: a run of messages with at most burstMaxGap
// between neighbours.
type Burst struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// PatternStats captures the long-range shape of the conversation.
type PatternStats struct {
	MonthlyVolume       []MonthCount `json:"monthlyVolume"`
	WeekdayCount        int          `json:"weekdayCount"`
	WeekendCount        int          `json:"weekendCount"`
	TrendSlope          float64      `json:"trendSlope"`
	TrendSign           int          `json:"trendSign"`
	Bursts              []Burst      `json:"bursts"`
	LongestSilenceHours float64      `json:"longestSilenceHours"`
}

// ComputePatterns aggregates monthly volumes, fits a linear trend over them
// and finds message bursts and the longest silence.
func ComputePatterns(conv *chat.Conversation) *PatternStats {
	msgs := countableMessages(conv)
	stats := &PatternStats{}
	if len(msgs) == 0 {
		return stats
	}

	monthly := make(map[string]int)
	for _, m := range msgs {
		monthly[m.Timestamp.Format("2006-01")]++
		switch m.Timestamp.Weekday() {
		case time.Saturday, time.Sunday:
			stats.WeekendCount++
		default:
			stats.WeekdayCount++
		}
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		stats.MonthlyVolume = append(stats.MonthlyVolume, MonthCount{Month: month, Count: monthly[month]})
	}

	stats.TrendSlope, stats.TrendSign = monthlyTrend(stats.MonthlyVolume)
	stats.Bursts = findBursts(msgs)
	stats.LongestSilenceHours = longestSilence(msgs)
	return stats
}

// monthlyTrend fits a least-squares line through the monthly counts. Slopes
// within 2% of the mean monthly volume count as flat.
func monthlyTrend(volume []MonthCount) (float64, int) {
	n := len(volume)
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, mc := range volume {
		x, y := float64(i), float64(mc.Count)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope := (fn*sumXY - sumX*sumY) / denom

	meanVolume := sumY / fn
	switch {
	case math.Abs(slope) <= 0.02*meanVolume:
		return slope, 0
	case slope > 0:
		return slope, 1
	default:
		return slope, -1
	}
}

func findBursts(msgs []chat.Message) []Burst {
	var bursts []Burst
	runStart := 0
	for i := 1; i <= len(msgs); i++ {
		if i < len(msgs) && msgs[i].Timestamp.Sub(msgs[i-1].Timestamp) <= burstMaxGap {
			continue
		}
		if runLen := i - runStart; runLen >= burstMinMessages {
			bursts = append(bursts, Burst{
				Start: msgs[runStart].Timestamp,
				End:   msgs[i-1].Timestamp,
				Count: runLen,
			})
		}
		runStart = i
	}
	return bursts
}

func longestSilence(msgs []chat.Message) float64 {
	var longest time.Duration
	for i := 1; i < len(msgs); i++ {
		if gap := msgs[i].Timestamp.Sub(msgs[i-1].Timestamp); gap > longest {
			longest = gap
		}
	}
	return longest.Hours()
}
