// Package chat holds the canonical conversation model every platform parser
// converges on. Values are built once by a parser (or merge) and never
// mutated afterwards; the analytics engine consumes them read-only.
package chat

import "time"

// Platform identifies the export format a conversation came from.
type Platform string

const (
	PlatformMessenger Platform = "messenger"
	PlatformInstagram Platform = "instagram"
	PlatformTelegram  Platform = "telegram"
	PlatformDiscord   Platform = "discord"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformUnknown   Platform = "unknown"
)

// MessageType classifies a message's content.
type MessageType string

const (
	TypeText    MessageType = "text"
	TypeMedia   MessageType = "media"
	TypeLink    MessageType = "link"
	TypeSticker MessageType = "sticker"
	TypeCall    MessageType = "call"
	TypeSystem  MessageType = "system"
	TypeUnsent  MessageType = "unsent"
)

// Participant is one distinct conversation member. PlatformID carries the
// platform-stable author id for Telegram/Discord, where display names can
// collide or change; Meta-family identity is by display name only.
type Participant struct {
	Name       string `json:"name"`
	PlatformID string `json:"platformId,omitempty"`
}

// Reaction is one normalized reaction record. Discord's API reports only an
// emoji and a count, so its actor is "unknown" and Count carries the total;
// every other platform emits one record per reactor with Count = 1.
type Reaction struct {
	Emoji string `json:"emoji"`
	Actor string `json:"actor"`
	Count int    `json:"count"`
}

// Message is the canonical unified message.
//
// Index is contiguous and 0-based, strictly increasing, and consistent with
// ascending Timestamp order. Sender is always a name present in the
// conversation's participant list.
type Message struct {
	Index        int         `json:"index"`
	Sender       string      `json:"sender"`
	Content      string      `json:"content"`
	Timestamp    time.Time   `json:"timestamp"`
	Type         MessageType `json:"type"`
	Reactions    []Reaction  `json:"reactions,omitempty"`
	HasMedia     bool        `json:"hasMedia"`
	HasLink      bool        `json:"hasLink"`
	IsUnsent     bool        `json:"isUnsent"`
	Mentions     []string    `json:"mentions,omitempty"`
	ReplyToIndex *int        `json:"replyToIndex,omitempty"`
	IsEdited     bool        `json:"isEdited,omitempty"`
}

// DateRange is the first and last message timestamp of a conversation.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Metadata summarizes a parsed conversation. TotalMessages excludes system
// and unsent entries; DurationDays is inclusive of both end days.
type Metadata struct {
	TotalMessages int       `json:"totalMessages"`
	DateRange     DateRange `json:"dateRange"`
	IsGroup       bool      `json:"isGroup"`
	DurationDays  int       `json:"durationDays"`
}

// Conversation is the canonical parsed conversation.
type Conversation struct {
	Platform     Platform      `json:"platform"`
	Title        string        `json:"title"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	Metadata     Metadata      `json:"metadata"`
}

// ParticipantNames returns the display names in participant order.
func (c *Conversation) ParticipantNames() []string {
	names := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		names[i] = p.Name
	}
	return names
}

// BuildMetadata derives Metadata from an already-ordered message slice.
// Messages must be in ascending timestamp order.
func BuildMetadata(participants []Participant, messages []Message) Metadata {
	m := Metadata{IsGroup: len(participants) > 2}

	for _, msg := range messages {
		if msg.Type == TypeSystem || msg.Type == TypeUnsent {
			continue
		}
		m.TotalMessages++
	}

	if len(messages) == 0 {
		return m
	}

	m.DateRange = DateRange{
		Start: messages[0].Timestamp,
		End:   messages[len(messages)-1].Timestamp,
	}
	m.DurationDays = int(m.DateRange.End.Sub(m.DateRange.Start).Hours()/24) + 1
	return m
}
