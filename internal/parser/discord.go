package parser

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// DiscordParser handles exports built from Discord API message objects. The
// API returns newest-first pages, so messages are sorted ascending before
// indexes are assigned. Bot authors are excluded entirely.
type DiscordParser struct{}

func (p *DiscordParser) Platform() chat.Platform { return chat.PlatformDiscord }

type discordShell struct {
	Guild    *discordChannel `json:"guild"`
	Channel  *discordChannel `json:"channel"`
	Messages json.RawMessage `json:"messages"`
}

type discordChannel struct {
	Name string `json:"name"`
}

type discordMessage struct {
	ID               string            `json:"id"`
	Type             int               `json:"type"`
	Content          string            `json:"content"`
	Author           discordAuthor     `json:"author"`
	Timestamp        string            `json:"timestamp"`
	EditedTimestamp  *string           `json:"edited_timestamp"`
	Attachments      []json.RawMessage `json:"attachments"`
	Embeds           []json.RawMessage `json:"embeds"`
	StickerItems     []discordSticker  `json:"sticker_items"`
	Mentions         []discordAuthor   `json:"mentions"`
	Reactions        []discordReaction `json:"reactions"`
	MessageReference *discordRef       `json:"message_reference"`
}

type discordAuthor struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Bot        bool   `json:"bot"`
}

type discordSticker struct {
	Name string `json:"name"`
}

type discordReaction struct {
	Emoji discordEmoji `json:"emoji"`
	Count int          `json:"count"`
}

type discordEmoji struct {
	Name string `json:"name"`
}

type discordRef struct {
	MessageID string `json:"message_id"`
}

// Message types that carry user content: 0 is a default message, 19 a reply.
// Everything else (pins, joins, boosts, calls) becomes a system entry.
func discordIsUserType(t int) bool {
	return t == 0 || t == 19
}

func (a discordAuthor) displayName() string {
	if a.GlobalName != "" {
		return a.GlobalName
	}
	return a.Username
}

func (p *DiscordParser) Validate(data []byte) bool {
	var shell discordShell
	if json.Unmarshal(data, &shell) != nil {
		return false
	}
	if shell.Messages == nil {
		return false
	}
	var messages []json.RawMessage
	return json.Unmarshal(shell.Messages, &messages) == nil
}

func (p *DiscordParser) Parse(data []byte) (*chat.Conversation, error) {
	var shell discordShell
	if err := json.Unmarshal(data, &shell); err != nil {
		return nil, invalidf(p.Platform(), "json", "is not an object: %v", err)
	}
	if shell.Messages == nil {
		return nil, invalidf(p.Platform(), "messages", "is missing")
	}
	var rawMessages []discordMessage
	if err := json.Unmarshal(shell.Messages, &rawMessages); err != nil {
		return nil, invalidf(p.Platform(), "messages", "is not an array of API message objects: %v", err)
	}
	if len(rawMessages) == 0 {
		return nil, invalidf(p.Platform(), "messages", "is empty")
	}

	var participants []chat.Participant
	nameByID := make(map[string]string)

	resolveSender := func(a discordAuthor) string {
		if name, ok := nameByID[a.ID]; ok {
			return name
		}
		name := a.displayName()
		nameByID[a.ID] = name
		participants = append(participants, chat.Participant{Name: name, PlatformID: a.ID})
		return name
	}

	type staged struct {
		msg     chat.Message
		id      string
		replyTo string
	}
	var stagedMessages []staged

	for _, rm := range rawMessages {
		if rm.Author.Bot {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, rm.Timestamp)
		if err != nil {
			continue
		}

		msg := chat.Message{
			Sender:    resolveSender(rm.Author),
			Content:   rm.Content,
			Timestamp: ts.UTC(),
			IsEdited:  rm.EditedTimestamp != nil,
		}

		switch {
		case !discordIsUserType(rm.Type):
			msg.Type = chat.TypeSystem
		case len(rm.StickerItems) > 0:
			msg.Type = chat.TypeSticker
			if msg.Content == "" {
				msg.Content = rm.StickerItems[0].Name
			}
		case len(rm.Attachments) > 0:
			msg.Type = chat.TypeMedia
		case msg.Content == "" && len(rm.Embeds) > 0:
			msg.Type = chat.TypeLink
		case isBareURL(msg.Content):
			msg.Type = chat.TypeLink
		default:
			msg.Type = chat.TypeText
		}

		msg.HasMedia = len(rm.Attachments) > 0
		msg.HasLink = len(rm.Embeds) > 0 || containsURL(msg.Content)

		for _, m := range rm.Mentions {
			msg.Mentions = append(msg.Mentions, m.displayName())
		}

		// The API exposes aggregate reaction counts with no actor list.
		for _, rr := range rm.Reactions {
			if rr.Emoji.Name == "" {
				continue
			}
			msg.Reactions = append(msg.Reactions, chat.Reaction{
				Emoji: rr.Emoji.Name,
				Actor: "unknown",
				Count: rr.Count,
			})
		}

		entry := staged{msg: msg, id: rm.ID}
		if rm.MessageReference != nil {
			entry.replyTo = rm.MessageReference.MessageID
		}
		stagedMessages = append(stagedMessages, entry)
	}

	sort.SliceStable(stagedMessages, func(i, j int) bool {
		return stagedMessages[i].msg.Timestamp.Before(stagedMessages[j].msg.Timestamp)
	})

	indexByID := make(map[string]int, len(stagedMessages))
	messages := make([]chat.Message, len(stagedMessages))
	for i := range stagedMessages {
		stagedMessages[i].msg.Index = i
		indexByID[stagedMessages[i].id] = i
		messages[i] = stagedMessages[i].msg
	}
	for i := range stagedMessages {
		if ref := stagedMessages[i].replyTo; ref != "" {
			if target, ok := indexByID[ref]; ok {
				t := target
				messages[i].ReplyToIndex = &t
			}
		}
	}

	title := "Discord"
	if shell.Channel != nil && shell.Channel.Name != "" {
		title = shell.Channel.Name
	} else if shell.Guild != nil && shell.Guild.Name != "" {
		title = shell.Guild.Name
	}

	return &chat.Conversation{
		Platform:     p.Platform(),
		Title:        title,
		Participants: participants,
		Messages:     messages,
		Metadata:     chat.BuildMetadata(participants, messages),
	}, nil
}
