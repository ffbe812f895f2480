package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// CountedItem is a ranked value with its occurrence count.
type CountedItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// topCounted ranks a frequency map by count, breaking ties alphabetically so
// results are deterministic, and keeps the first n entries.
func topCounted(counts map[string]int, n int) []CountedItem {
	items := make([]CountedItem, 0, len(counts))
	for v, c := range counts {
		items = append(items, CountedItem{Value: v, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Value < items[j].Value
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median expects values to be sorted.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// percentile expects values to be sorted and p in [0, 1]. Nearest-rank on
// the scaled index.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx >= n {
		idx = n - 1
	}
	return values[idx]
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// balanceScore maps two magnitudes to 0-100: equal shares score 100, a total
// one-sided split scores 0. Two empty sides count as balanced.
func balanceScore(a, b float64) float64 {
	if a+b == 0 {
		return 100
	}
	return 100 * (1 - math.Abs(a-b)/(a+b))
}

// tokenize lowercases content and splits it into word tokens.
func tokenize(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// isEmojiRune covers the pictograph blocks that matter for chat text:
// emoticons and symbols, dingbats and regional indicators. Variation
// selectors and ZWJ are not counted on their own.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF:
		return true
	}
	return false
}

func countEmoji(content string) map[string]int {
	counts := make(map[string]int)
	for _, r := range content {
		if isEmojiRune(r) {
			counts[string(r)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
