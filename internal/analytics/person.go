package analytics

import (
	"strings"
	"unicode/utf8"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// PersonStats aggregates one participant's side of the conversation.
type PersonStats struct {
	MessageCount       int     `json:"messageCount"`
	WordCount          int     `json:"wordCount"`
	CharCount          int     `json:"charCount"`
	AvgWordsPerMessage float64 `json:"avgWordsPerMessage"`
	AvgCharsPerMessage float64 `json:"avgCharsPerMessage"`
	LongestMessage     int     `json:"longestMessage"`
	ShortestMessage    int     `json:"shortestMessage"`
	UniqueWords        int     `json:"uniqueWords"`
	VocabularyRichness float64 `json:"vocabularyRichness"`
	QuestionsAsked     int     `json:"questionsAsked"`

	EmojiCount int           `json:"emojiCount"`
	TopEmoji   []CountedItem `json:"topEmoji"`
	TopWords   []CountedItem `json:"topWords"`
	TopPhrases []CountedItem `json:"topPhrases"`

	MediaCount   int `json:"mediaCount"`
	LinkCount    int `json:"linkCount"`
	StickerCount int `json:"stickerCount"`
	CallCount    int `json:"callCount"`
	UnsentCount  int `json:"unsentCount"`

	ReactionsGiven       int           `json:"reactionsGiven"`
	ReactionsReceived    int           `json:"reactionsReceived"`
	TopReactionsGiven    []CountedItem `json:"topReactionsGiven"`
	TopReactionsReceived []CountedItem `json:"topReactionsReceived"`
}

// personAccum carries the frequency maps that back the ranked lists.
type personAccum struct {
	stats             *PersonStats
	words             map[string]int
	uniqueWords       map[string]bool
	phrases           map[string]int
	emoji             map[string]int
	reactionsGiven    map[string]int
	reactionsReceived map[string]int
}

// ComputePerPerson builds statistics for every participant, including those
// with zero messages.
func ComputePerPerson(conv *chat.Conversation) map[string]*PersonStats {
	accums := make(map[string]*personAccum, len(conv.Participants))
	for _, p := range conv.Participants {
		accums[p.Name] = &personAccum{
			stats:             &PersonStats{},
			words:             make(map[string]int),
			uniqueWords:       make(map[string]bool),
			phrases:           make(map[string]int),
			emoji:             make(map[string]int),
			reactionsGiven:    make(map[string]int),
			reactionsReceived: make(map[string]int),
		}
	}

	for _, m := range conv.Messages {
		acc, ok := accums[m.Sender]
		if !ok {
			continue
		}
		if m.Type == chat.TypeUnsent {
			acc.stats.UnsentCount++
			continue
		}
		if m.Type == chat.TypeSystem {
			continue
		}

		s := acc.stats
		s.MessageCount++

		chars := utf8.RuneCountInString(m.Content)
		s.CharCount += chars
		if chars > s.LongestMessage {
			s.LongestMessage = chars
		}
		if chars > 0 && (s.ShortestMessage == 0 || chars < s.ShortestMessage) {
			s.ShortestMessage = chars
		}
		if strings.Contains(m.Content, "?") {
			s.QuestionsAsked++
		}

		tokens := tokenize(m.Content)
		s.WordCount += len(tokens)
		for i, tok := range tokens {
			acc.uniqueWords[tok] = true
			if utf8.RuneCountInString(tok) >= topWordMinRunes {
				acc.words[tok]++
			}
			if i > 0 {
				acc.phrases[tokens[i-1]+" "+tok]++
			}
		}
		for e, n := range countEmoji(m.Content) {
			acc.emoji[e] += n
			s.EmojiCount += n
		}

		switch m.Type {
		case chat.TypeSticker:
			s.StickerCount++
		case chat.TypeCall:
			s.CallCount++
		}
		if m.HasMedia {
			s.MediaCount++
		}
		if m.HasLink {
			s.LinkCount++
		}

		for _, r := range m.Reactions {
			s.ReactionsReceived += r.Count
			acc.reactionsReceived[r.Emoji] += r.Count
			if giver, ok := accums[r.Actor]; ok {
				giver.stats.ReactionsGiven += r.Count
				giver.reactionsGiven[r.Emoji] += r.Count
			}
		}
	}

	out := make(map[string]*PersonStats, len(accums))
	for name, acc := range accums {
		s := acc.stats
		if s.MessageCount > 0 {
			s.AvgWordsPerMessage = float64(s.WordCount) / float64(s.MessageCount)
			s.AvgCharsPerMessage = float64(s.CharCount) / float64(s.MessageCount)
		}
		s.UniqueWords = len(acc.uniqueWords)
		if s.WordCount > 0 {
			s.VocabularyRichness = float64(s.UniqueWords) / float64(s.WordCount) * 100
		}

		s.TopEmoji = topCounted(acc.emoji, topEmojiCount)
		s.TopWords = topCounted(acc.words, topWordCount)
		s.TopPhrases = topPhrases(acc.phrases)
		s.TopReactionsGiven = topCounted(acc.reactionsGiven, topReactionCount)
		s.TopReactionsReceived = topCounted(acc.reactionsReceived, topReactionCount)
		out[name] = s
	}
	return out
}

// topPhrases keeps only pairs repeated enough times to be a habit.
func topPhrases(counts map[string]int) []CountedItem {
	filtered := make(map[string]int)
	for phrase, n := range counts {
		if n >= topPhraseMinHits {
			filtered[phrase] = n
		}
	}
	return topCounted(filtered, topPhraseCount)
}
