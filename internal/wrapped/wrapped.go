// Package wrapped renders a conversation and its quantitative analysis into
// the ordered highlight slides of the year-in-review style report. Slides
// whose underlying signal is degenerate are left out entirely rather than
// emitted as placeholders. The sequence always opens with an intro slide
// and closes with a summary slide.
package wrapped

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sentio-labs/chatlens/internal/analytics"
	"github.com/sentio-labs/chatlens/internal/chat"
)

// Slide types. The names are a rendering contract with report consumers.
const (
	SlideIntro           = "intro"
	SlideTotalMessages   = "total-messages"
	SlideWhoTextsMore    = "who-texts-more"
	SlideResponseTime    = "response-time"
	SlideTopEmoji        = "top-emoji"
	SlideNightOwl        = "night-owl"
	SlideMostActiveMonth = "most-active-month"
	SlideBusiestDay      = "busiest-day"
	SlideDoubleText      = "double-text"
	SlideSummary         = "summary"
)

// Slide is one screen of the report.
type Slide struct {
	Type     string            `json:"type"`
	Gradient string            `json:"gradient"`
	Emoji    string            `json:"emoji"`
	Title    string            `json:"title"`
	Value    string            `json:"value"`
	Subtitle string            `json:"subtitle"`
	Detail   string            `json:"detail,omitempty"`
	PersonA  string            `json:"personA,omitempty"`
	PersonB  string            `json:"personB,omitempty"`
	Stats    map[string]string `json:"stats,omitempty"`
}

// plPrinter groups digits the Polish way (12 345, not 12,345).
var plPrinter = message.NewPrinter(language.Polish)

func formatCount(n int) string {
	return plPrinter.Sprintf("%d", n)
}

// Generate renders the slide sequence. Conditional slides appear only when
// their signal exists: the two-person slides need two participants, the
// emoji slide needs at least one emoji, and so on. Zero messages still
// produce a valid intro and summary with zeroed figures.
func Generate(conv *chat.Conversation, a *analytics.Analysis) []Slide {
	slides := []Slide{introSlide(conv), totalMessagesSlide(conv)}
	if s, ok := whoTextsMoreSlide(conv, a); ok {
		slides = append(slides, s)
	}
	if s, ok := responseTimeSlide(conv, a); ok {
		slides = append(slides, s)
	}
	if s, ok := topEmojiSlide(a); ok {
		slides = append(slides, s)
	}
	if s, ok := nightOwlSlide(a); ok {
		slides = append(slides, s)
	}
	if s, ok := mostActiveMonthSlide(a); ok {
		slides = append(slides, s)
	}
	if s, ok := busiestDaySlide(a); ok {
		slides = append(slides, s)
	}
	if s, ok := doubleTextSlide(a); ok {
		slides = append(slides, s)
	}
	slides = append(slides, summarySlide(conv, a))
	return slides
}

func introSlide(conv *chat.Conversation) Slide {
	title := conv.Title
	if title == "" {
		title = "Wasza rozmowa"
	}
	return Slide{
		Type:     SlideIntro,
		Gradient: "from-violet-600 via-purple-500 to-fuchsia-500",
		Emoji:    "✨",
		Title:    "Wasze Wrapped",
		Value:    title,
		Subtitle: fmt.Sprintf("%s · %s", platformLabel(conv.Platform), dateRangeLabel(conv)),
	}
}

func totalMessagesSlide(conv *chat.Conversation) Slide {
	total := conv.Metadata.TotalMessages
	days := conv.Metadata.DurationDays
	perDay := 0.0
	if days > 0 {
		perDay = float64(total) / float64(days)
	}
	return Slide{
		Type:     SlideTotalMessages,
		Gradient: "from-sky-500 to-indigo-600",
		Emoji:    "💬",
		Title:    "Tyle do siebie napisaliście",
		Value:    formatCount(total),
		Subtitle: fmt.Sprintf("%s przez %s %s", messagesWord(total), formatCount(days), daysWord(days)),
		Detail:   fmt.Sprintf("średnio %.1f dziennie", perDay),
	}
}

// topTwo ranks participants by message count, ties by name, and returns the
// two most active ones.
func topTwo(a *analytics.Analysis) (first, second string, counts map[string]int, ok bool) {
	if a == nil || len(a.PerPerson) < 2 {
		return "", "", nil, false
	}
	counts = make(map[string]int, len(a.PerPerson))
	names := make([]string, 0, len(a.PerPerson))
	for name, ps := range a.PerPerson {
		counts[name] = ps.MessageCount
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names[0], names[1], counts, true
}

func whoTextsMoreSlide(conv *chat.Conversation, a *analytics.Analysis) (Slide, bool) {
	if len(conv.Participants) < 2 {
		return Slide{}, false
	}
	first, second, counts, ok := topTwo(a)
	if !ok {
		return Slide{}, false
	}
	total := counts[first] + counts[second]
	if total == 0 {
		return Slide{}, false
	}
	shareFirst := int(math.Round(float64(counts[first]) / float64(total) * 100))
	value := first
	if counts[first] == counts[second] {
		value = "Remis!"
	}
	return Slide{
		Type:     SlideWhoTextsMore,
		Gradient: "from-rose-500 to-orange-400",
		Emoji:    "⌨️",
		Title:    "Kto pisze więcej?",
		Value:    value,
		Subtitle: fmt.Sprintf("%s %d%% · %s %d%%", first, shareFirst, second, 100-shareFirst),
		PersonA:  first,
		PersonB:  second,
		Stats: map[string]string{
			first:  formatCount(counts[first]),
			second: formatCount(counts[second]),
		},
	}, true
}

func responseTimeSlide(conv *chat.Conversation, a *analytics.Analysis) (Slide, bool) {
	if len(conv.Participants) < 2 || a == nil || a.Timing == nil {
		return Slide{}, false
	}
	type sample struct {
		name   string
		median float64
	}
	var samples []sample
	for name, rs := range a.Timing.ResponseTimes {
		if rs == nil || rs.Count == 0 {
			continue
		}
		samples = append(samples, sample{name, rs.MedianSeconds})
	}
	if len(samples) == 0 {
		return Slide{}, false
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].median != samples[j].median {
			return samples[i].median < samples[j].median
		}
		return samples[i].name < samples[j].name
	})

	stats := make(map[string]string, len(samples))
	for _, s := range samples {
		stats[s.name] = formatSeconds(s.median)
	}
	slide := Slide{
		Type:     SlideResponseTime,
		Gradient: "from-emerald-500 to-teal-600",
		Emoji:    "⚡",
		Title:    "Czas odpowiedzi",
		Value:    formatSeconds(samples[0].median),
		Subtitle: fmt.Sprintf("tak szybko odpisuje %s", samples[0].name),
		Stats:    stats,
	}
	slide.PersonA = samples[0].name
	if len(samples) > 1 {
		slide.PersonB = samples[1].name
	}
	return slide, true
}

func topEmojiSlide(a *analytics.Analysis) (Slide, bool) {
	if a == nil {
		return Slide{}, false
	}
	totalEmoji := 0
	merged := make(map[string]int)
	for _, ps := range a.PerPerson {
		totalEmoji += ps.EmojiCount
		for _, item := range ps.TopEmoji {
			merged[item.Value] += item.Count
		}
	}
	if totalEmoji == 0 || len(merged) == 0 {
		return Slide{}, false
	}
	best, bestCount := "", 0
	for emoji, count := range merged {
		if count > bestCount || (count == bestCount && emoji < best) {
			best, bestCount = emoji, count
		}
	}
	return Slide{
		Type:     SlideTopEmoji,
		Gradient: "from-amber-400 to-yellow-500",
		Emoji:    best,
		Title:    "Wasza ulubiona emotka",
		Value:    best,
		Subtitle: fmt.Sprintf("użyta %s razy", formatCount(bestCount)),
	}, true
}

func nightOwlSlide(a *analytics.Analysis) (Slide, bool) {
	if a == nil || a.Timing == nil {
		return Slide{}, false
	}
	total := 0
	best, bestCount := "", 0
	for name, count := range a.Timing.LateNightCounts {
		total += count
		if count > bestCount || (count == bestCount && count > 0 && name < best) {
			best, bestCount = name, count
		}
	}
	if total == 0 {
		return Slide{}, false
	}
	return Slide{
		Type:     SlideNightOwl,
		Gradient: "from-indigo-900 to-slate-900",
		Emoji:    "🦉",
		Title:    "Nocna zmiana",
		Value:    best,
		Subtitle: fmt.Sprintf("%s %s między 23:00 a 5:00", formatCount(bestCount), messagesWord(bestCount)),
		Detail:   fmt.Sprintf("łącznie %s nocnych wiadomości", formatCount(total)),
	}, true
}

func mostActiveMonthSlide(a *analytics.Analysis) (Slide, bool) {
	if a == nil || a.Patterns == nil || len(a.Patterns.MonthlyVolume) == 0 {
		return Slide{}, false
	}
	best := a.Patterns.MonthlyVolume[0]
	for _, mc := range a.Patterns.MonthlyVolume[1:] {
		if mc.Count > best.Count {
			best = mc
		}
	}
	return Slide{
		Type:     SlideMostActiveMonth,
		Gradient: "from-pink-500 to-rose-600",
		Emoji:    "📅",
		Title:    "Najgorętszy miesiąc",
		Value:    monthLabel(best.Month),
		Subtitle: fmt.Sprintf("%s %s", formatCount(best.Count), messagesWord(best.Count)),
	}, true
}

func busiestDaySlide(a *analytics.Analysis) (Slide, bool) {
	if a == nil || a.Heatmap == nil {
		return Slide{}, false
	}
	day, hour, count := a.Heatmap.PeakSlot()
	if count == 0 {
		return Slide{}, false
	}
	return Slide{
		Type:     SlideBusiestDay,
		Gradient: "from-orange-500 to-red-600",
		Emoji:    "🔥",
		Title:    "Wasz rytm tygodnia",
		Value:    weekdayLabel(day),
		Subtitle: fmt.Sprintf("szczyt około %02d:00", hour),
	}, true
}

func doubleTextSlide(a *analytics.Analysis) (Slide, bool) {
	if a == nil || a.Engagement == nil {
		return Slide{}, false
	}
	best, bestCount := "", 0
	for name, count := range a.Engagement.DoubleTexts {
		if count > bestCount || (count == bestCount && count > 0 && name < best) {
			best, bestCount = name, count
		}
	}
	if bestCount == 0 {
		return Slide{}, false
	}
	return Slide{
		Type:     SlideDoubleText,
		Gradient: "from-cyan-500 to-blue-600",
		Emoji:    "📱",
		Title:    "Mistrz podwójnych wiadomości",
		Value:    best,
		Subtitle: fmt.Sprintf("%s razy pisał(a) dalej bez odpowiedzi", formatCount(bestCount)),
	}, true
}

func summarySlide(conv *chat.Conversation, a *analytics.Analysis) Slide {
	stats := map[string]string{
		"wiadomości": formatCount(conv.Metadata.TotalMessages),
		"dni":        formatCount(conv.Metadata.DurationDays),
	}
	if a != nil && a.Timing != nil {
		stats["sesje"] = formatCount(a.Timing.SessionCount)
	}
	if a != nil && a.Engagement != nil {
		stats["najdłuższa seria dni"] = formatCount(a.Engagement.LongestDailyStreak)
	}
	title := conv.Title
	if title == "" {
		title = "Wasza rozmowa"
	}
	return Slide{
		Type:     SlideSummary,
		Gradient: "from-fuchsia-600 via-pink-500 to-amber-400",
		Emoji:    "🎉",
		Title:    "Podsumowanie",
		Value:    title,
		Subtitle: fmt.Sprintf("%s · %s", platformLabel(conv.Platform), dateRangeLabel(conv)),
		Stats:    stats,
	}
}
