package parser

import (
	"github.com/sentio-labs/chatlens/internal/chat"
)

// Parser decodes a single platform's export format into the canonical model.
// Validate is a cheap structural check; Parse does the full conversion and
// returns an InvalidFormatError naming the first bad field on failure.
type Parser interface {
	Platform() chat.Platform
	Validate(data []byte) bool
	Parse(data []byte) (*chat.Conversation, error)
}

var parsers = map[chat.Platform]Parser{
	chat.PlatformMessenger: &MetaParser{platform: chat.PlatformMessenger},
	chat.PlatformInstagram: &MetaParser{platform: chat.PlatformInstagram},
	chat.PlatformTelegram:  &TelegramParser{},
	chat.PlatformDiscord:   &DiscordParser{},
	chat.PlatformWhatsApp:  &WhatsAppParser{},
}

// For returns the parser registered for a platform.
func For(platform chat.Platform) (Parser, bool) {
	p, ok := parsers[platform]
	return p, ok
}

// Parse detects the platform of a single export file and converts it.
func Parse(fileName string, data []byte) (*chat.Conversation, error) {
	platform := DetectBytes(fileName, data)
	p, ok := For(platform)
	if !ok {
		return nil, invalidf(chat.PlatformUnknown, "format", "does not match any supported export shape")
	}
	return p.Parse(data)
}
