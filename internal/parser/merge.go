package parser

import (
	"fmt"
	"sort"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// File is one uploaded export: the name drives detection, the bytes are the
// raw export content.
type File struct {
	Name string
	Data []byte
}

// Merge parses every file and unions the results into one conversation.
// Overlapping exports of the same thread are deduplicated on the
// (sender, timestamp, content) identity, so merging is order-independent.
// A single file passes through untouched. All files must come from the same
// platform.
func Merge(files []File) (*chat.Conversation, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	convs := make([]*chat.Conversation, 0, len(files))
	for _, f := range files {
		conv, err := Parse(f.Name, f.Data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		convs = append(convs, conv)
	}
	if len(convs) == 1 {
		return convs[0], nil
	}

	platform := convs[0].Platform
	for _, c := range convs[1:] {
		if c.Platform != platform {
			return nil, invalidf(platform, "platform", "cannot merge with a %s export", c.Platform)
		}
	}

	type msgKey struct {
		sender  string
		ts      int64
		content string
	}
	seen := make(map[msgKey]bool)
	var merged []chat.Message

	var participants []chat.Participant
	seenParticipant := make(map[string]bool)
	title := ""

	for _, c := range convs {
		if title == "" {
			title = c.Title
		}
		for _, p := range c.Participants {
			key := p.PlatformID
			if key == "" {
				key = p.Name
			}
			if seenParticipant[key] {
				continue
			}
			seenParticipant[key] = true
			participants = append(participants, p)
		}
		for _, m := range c.Messages {
			key := msgKey{m.Sender, m.Timestamp.UnixNano(), m.Content}
			if seen[key] {
				continue
			}
			seen[key] = true
			// Reply targets point at per-file indexes, which the merge
			// invalidates.
			m.ReplyToIndex = nil
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	for i := range merged {
		merged[i].Index = i
	}

	return &chat.Conversation{
		Platform:     platform,
		Title:        title,
		Participants: participants,
		Messages:     merged,
		Metadata:     chat.BuildMetadata(participants, merged),
	}, nil
}
