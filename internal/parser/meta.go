package parser

import (
	"encoding/json"
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
	"github.com/sentio-labs/chatlens/internal/mojibake"
)

// MetaParser handles Messenger and Instagram exports, which share one layout:
// a participants array plus a newest-first messages array. Every string in
// these exports may carry the Latin-1 double-encoding defect, so all text
// goes through mojibake.Repair.
type MetaParser struct {
	platform chat.Platform
}

func (p *MetaParser) Platform() chat.Platform { return p.platform }

// metaShell stages the top level as raw JSON so a missing field can be told
// apart from an empty one.
type metaShell struct {
	Participants json.RawMessage `json:"participants"`
	Messages     json.RawMessage `json:"messages"`
	Title        string          `json:"title"`
}

type metaParticipant struct {
	Name string `json:"name"`
}

type metaMessage struct {
	SenderName  string           `json:"sender_name"`
	TimestampMS int64            `json:"timestamp_ms"`
	Content     string           `json:"content"`
	Photos      []metaAttachment `json:"photos"`
	Videos      []metaAttachment `json:"videos"`
	AudioFiles  []metaAttachment `json:"audio_files"`
	Sticker     *metaAttachment  `json:"sticker"`
	Share       *metaShare       `json:"share"`
	Reactions   []metaReaction   `json:"reactions"`
	IsUnsent    bool             `json:"is_unsent"`
}

type metaAttachment struct {
	URI string `json:"uri"`
}

type metaShare struct {
	Link      string `json:"link"`
	ShareText string `json:"share_text"`
}

type metaReaction struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

func (p *MetaParser) Validate(data []byte) bool {
	var shell metaShell
	if json.Unmarshal(data, &shell) != nil {
		return false
	}
	if shell.Participants == nil || shell.Messages == nil {
		return false
	}
	var participants []metaParticipant
	if json.Unmarshal(shell.Participants, &participants) != nil {
		return false
	}
	var messages []json.RawMessage
	return json.Unmarshal(shell.Messages, &messages) == nil
}

func (p *MetaParser) Parse(data []byte) (*chat.Conversation, error) {
	var shell metaShell
	if err := json.Unmarshal(data, &shell); err != nil {
		return nil, invalidf(p.platform, "json", "is not an object: %v", err)
	}
	if shell.Participants == nil {
		return nil, invalidf(p.platform, "participants", "is missing")
	}
	if shell.Messages == nil {
		return nil, invalidf(p.platform, "messages", "is missing")
	}

	var rawParticipants []metaParticipant
	if err := json.Unmarshal(shell.Participants, &rawParticipants); err != nil {
		return nil, invalidf(p.platform, "participants", "is not an array of objects: %v", err)
	}
	var rawMessages []metaMessage
	if err := json.Unmarshal(shell.Messages, &rawMessages); err != nil {
		return nil, invalidf(p.platform, "messages", "is not an array of objects: %v", err)
	}

	participants := make([]chat.Participant, 0, len(rawParticipants))
	seen := make(map[string]bool, len(rawParticipants))
	for _, rp := range rawParticipants {
		name := mojibake.Repair(rp.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, chat.Participant{Name: name})
	}

	messages := make([]chat.Message, 0, len(rawMessages))
	for _, rm := range rawMessages {
		sender := mojibake.Repair(rm.SenderName)
		if sender == "" {
			continue
		}
		msg := chat.Message{
			Sender:    sender,
			Content:   mojibake.Repair(rm.Content),
			Timestamp: time.UnixMilli(rm.TimestampMS).UTC(),
		}
		msg.Type = classifyMeta(rm, &msg)
		msg.HasMedia = len(rm.Photos) > 0 || len(rm.Videos) > 0 || len(rm.AudioFiles) > 0
		msg.HasLink = (rm.Share != nil && rm.Share.Link != "") || containsURL(msg.Content)
		msg.IsUnsent = rm.IsUnsent

		for _, rr := range rm.Reactions {
			msg.Reactions = append(msg.Reactions, chat.Reaction{
				Emoji: mojibake.Repair(rr.Reaction),
				Actor: mojibake.Repair(rr.Actor),
				Count: 1,
			})
		}

		messages = append(messages, msg)

		// Senders who left the thread are absent from the participants
		// array but must still resolve.
		if !seen[sender] {
			seen[sender] = true
			participants = append(participants, chat.Participant{Name: sender})
		}
	}

	// Meta exports are newest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	for i := range messages {
		messages[i].Index = i
	}

	return &chat.Conversation{
		Platform:     p.platform,
		Title:        mojibake.Repair(shell.Title),
		Participants: participants,
		Messages:     messages,
		Metadata:     chat.BuildMetadata(participants, messages),
	}, nil
}

// classifyMeta applies the fixed precedence for Meta messages: unsent, then
// sticker, then share, then media attachments, then text. A share message
// with no caption surfaces the link as its content.
func classifyMeta(rm metaMessage, msg *chat.Message) chat.MessageType {
	switch {
	case rm.IsUnsent:
		return chat.TypeUnsent
	case rm.Sticker != nil:
		return chat.TypeSticker
	case rm.Share != nil:
		if msg.Content == "" {
			msg.Content = rm.Share.Link
		}
		return chat.TypeLink
	case len(rm.Photos) > 0 || len(rm.Videos) > 0 || len(rm.AudioFiles) > 0:
		return chat.TypeMedia
	default:
		return chat.TypeText
	}
}
