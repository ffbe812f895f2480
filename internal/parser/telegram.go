package parser

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// TelegramParser handles Telegram Desktop JSON exports. Entries are already
// chronological. Senders are identified by from_id so a display-name change
// mid-history collapses to a single participant.
type TelegramParser struct{}

func (p *TelegramParser) Platform() chat.Platform { return chat.PlatformTelegram }

type telegramShell struct {
	Name     json.RawMessage `json:"name"`
	Type     json.RawMessage `json:"type"`
	ID       json.RawMessage `json:"id"`
	Messages json.RawMessage `json:"messages"`
}

type telegramMessage struct {
	ID               int64              `json:"id"`
	Type             string             `json:"type"`
	Date             string             `json:"date"`
	DateUnixtime     string             `json:"date_unixtime"`
	From             string             `json:"from"`
	FromID           string             `json:"from_id"`
	Text             textValue          `json:"text"`
	Photo            string             `json:"photo"`
	File             string             `json:"file"`
	MediaType        string             `json:"media_type"`
	StickerEmoji     string             `json:"sticker_emoji"`
	DurationSeconds  *int               `json:"duration_seconds"`
	Reactions        []telegramReaction `json:"reactions"`
	Action           string             `json:"action"`
	Edited           string             `json:"edited"`
	ReplyToMessageID int64              `json:"reply_to_message_id"`
}

type telegramReaction struct {
	Emoji  string                  `json:"emoji"`
	Count  int                     `json:"count"`
	Recent []telegramReactionActor `json:"recent"`
}

type telegramReactionActor struct {
	From string `json:"from"`
	Date string `json:"date"`
}

// textValue models Telegram's polymorphic text field: a plain string, or an
// array mixing strings with rich-text entity objects.
type textValue struct {
	raw json.RawMessage
}

func (t *textValue) UnmarshalJSON(data []byte) error {
	t.raw = append(t.raw[:0], data...)
	return nil
}

// Flatten concatenates the field into plain text, preserving entity order.
func (t textValue) Flatten() string {
	if len(t.raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(t.raw, &s) == nil {
		return s
	}
	var parts []json.RawMessage
	if json.Unmarshal(t.raw, &parts) != nil {
		return ""
	}
	var b strings.Builder
	for _, part := range parts {
		var ps string
		if json.Unmarshal(part, &ps) == nil {
			b.WriteString(ps)
			continue
		}
		var entity struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(part, &entity) == nil {
			b.WriteString(entity.Text)
		}
	}
	return b.String()
}

// Media kinds that classify an entry as a media message even without a photo
// or file path.
var telegramMediaTypes = map[string]bool{
	"video_file":    true,
	"voice_message": true,
	"audio_file":    true,
	"video_message": true,
	"animation":     true,
	"sticker":       true,
}

func (p *TelegramParser) Validate(data []byte) bool {
	var shell telegramShell
	if json.Unmarshal(data, &shell) != nil {
		return false
	}
	if shell.Name == nil || shell.Type == nil || shell.ID == nil || shell.Messages == nil {
		return false
	}
	var id float64
	if json.Unmarshal(shell.ID, &id) != nil {
		return false
	}
	var messages []json.RawMessage
	return json.Unmarshal(shell.Messages, &messages) == nil
}

func (p *TelegramParser) Parse(data []byte) (*chat.Conversation, error) {
	var shell telegramShell
	if err := json.Unmarshal(data, &shell); err != nil {
		return nil, invalidf(p.Platform(), "json", "is not an object: %v", err)
	}
	if shell.Name == nil {
		return nil, invalidf(p.Platform(), "name", "is missing")
	}
	if shell.Type == nil {
		return nil, invalidf(p.Platform(), "type", "is missing")
	}
	if shell.ID == nil {
		return nil, invalidf(p.Platform(), "id", "is missing")
	}
	if shell.Messages == nil {
		return nil, invalidf(p.Platform(), "messages", "is missing")
	}

	// A deleted peer exports as "name": null.
	var title string
	if string(shell.Name) != "null" {
		if err := json.Unmarshal(shell.Name, &title); err != nil {
			return nil, invalidf(p.Platform(), "name", "is not a string")
		}
	}
	var chatID float64
	if err := json.Unmarshal(shell.ID, &chatID); err != nil {
		return nil, invalidf(p.Platform(), "id", "is not a number")
	}
	var rawMessages []telegramMessage
	if err := json.Unmarshal(shell.Messages, &rawMessages); err != nil {
		return nil, invalidf(p.Platform(), "messages", "is not an array of objects: %v", err)
	}
	if len(rawMessages) == 0 {
		return nil, invalidf(p.Platform(), "messages", "is empty")
	}

	var participants []chat.Participant
	nameByID := make(map[string]string)

	resolveSender := func(rm telegramMessage) string {
		key := rm.FromID
		if key == "" {
			key = rm.From
		}
		if name, ok := nameByID[key]; ok {
			return name
		}
		nameByID[key] = rm.From
		participants = append(participants, chat.Participant{Name: rm.From, PlatformID: rm.FromID})
		return rm.From
	}

	var messages []chat.Message
	indexByMessageID := make(map[int64]int)
	replyTargets := make(map[int]int64)

	for _, rm := range rawMessages {
		if rm.Type != "message" {
			continue
		}
		if rm.From == "" {
			continue
		}
		ts, ok := telegramTimestamp(rm)
		if !ok {
			continue
		}

		msg := chat.Message{
			Sender:    resolveSender(rm),
			Content:   rm.Text.Flatten(),
			Timestamp: ts,
			IsEdited:  rm.Edited != "",
		}

		switch {
		case rm.Action != "":
			msg.Type = chat.TypeSystem
			if msg.Content == "" {
				msg.Content = rm.Action
			}
		case rm.DurationSeconds != nil:
			msg.Type = chat.TypeCall
		case rm.StickerEmoji != "":
			msg.Type = chat.TypeSticker
			msg.Content = rm.StickerEmoji
		case rm.Photo != "" || rm.File != "" || telegramMediaTypes[rm.MediaType]:
			msg.Type = chat.TypeMedia
		case isBareURL(msg.Content):
			msg.Type = chat.TypeLink
		default:
			msg.Type = chat.TypeText
		}

		msg.HasMedia = rm.Photo != "" || rm.File != "" || telegramMediaTypes[rm.MediaType]
		msg.HasLink = containsURL(msg.Content)

		for _, rr := range rm.Reactions {
			if rr.Emoji == "" {
				continue
			}
			// Only attributed reactions survive normalization.
			for _, actor := range rr.Recent {
				msg.Reactions = append(msg.Reactions, chat.Reaction{
					Emoji: rr.Emoji,
					Actor: actor.From,
					Count: 1,
				})
			}
		}

		idx := len(messages)
		msg.Index = idx
		indexByMessageID[rm.ID] = idx
		if rm.ReplyToMessageID != 0 {
			replyTargets[idx] = rm.ReplyToMessageID
		}
		messages = append(messages, msg)
	}

	// Replies can only be resolved once every target has its final index.
	// References to excluded entries stay nil.
	for idx, targetID := range replyTargets {
		if target, ok := indexByMessageID[targetID]; ok {
			t := target
			messages[idx].ReplyToIndex = &t
		}
	}

	return &chat.Conversation{
		Platform:     p.Platform(),
		Title:        title,
		Participants: participants,
		Messages:     messages,
		Metadata:     chat.BuildMetadata(participants, messages),
	}, nil
}

func telegramTimestamp(rm telegramMessage) (time.Time, bool) {
	if rm.DateUnixtime != "" {
		if sec, err := strconv.ParseInt(rm.DateUnixtime, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC(), true
		}
	}
	if rm.Date != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", rm.Date); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
