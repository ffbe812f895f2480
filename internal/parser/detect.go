// Package parser turns raw chat exports from Messenger, Instagram, Telegram,
// Discord and WhatsApp into the canonical conversation model. Detection and
// parsing are separate steps: Detect sniffs the platform from file name and
// JSON shape, Parse decodes the platform's export format.
package parser

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// detectRule inspects a decoded export and claims it for a platform. Rules
// run in a fixed order and the first claim wins.
type detectRule func(fileName string, doc map[string]any) (chat.Platform, bool)

var detectRules = []detectRule{
	detectDiscord,
	detectTelegram,
	detectMeta,
}

// Detect identifies the source platform of an export. WhatsApp is the only
// text format and is recognized by file extension alone; everything else is
// distinguished by JSON shape. Returns PlatformUnknown when no rule matches.
func Detect(fileName string, doc any) chat.Platform {
	if strings.EqualFold(filepath.Ext(fileName), ".txt") {
		return chat.PlatformWhatsApp
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return chat.PlatformUnknown
	}
	for _, rule := range detectRules {
		if platform, ok := rule(fileName, obj); ok {
			return platform
		}
	}
	return chat.PlatformUnknown
}

// DetectBytes decodes data as JSON and runs Detect on the result. Files that
// are not JSON only ever match the WhatsApp extension rule.
func DetectBytes(fileName string, data []byte) chat.Platform {
	if strings.EqualFold(filepath.Ext(fileName), ".txt") {
		return chat.PlatformWhatsApp
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return chat.PlatformUnknown
	}
	return Detect(fileName, doc)
}

// Discord exports wrap an API message array: the first message carries an
// author object with a username.
func detectDiscord(_ string, obj map[string]any) (chat.Platform, bool) {
	msgs, ok := obj["messages"].([]any)
	if !ok || len(msgs) == 0 {
		return chat.PlatformUnknown, false
	}
	first, ok := msgs[0].(map[string]any)
	if !ok {
		return chat.PlatformUnknown, false
	}
	author, ok := first["author"].(map[string]any)
	if !ok {
		return chat.PlatformUnknown, false
	}
	_, ok = author["username"]
	return chat.PlatformDiscord, ok
}

// Telegram exports carry name/type/numeric id at the top level and message
// entries with a from sender plus date or date_unixtime.
func detectTelegram(_ string, obj map[string]any) (chat.Platform, bool) {
	if _, ok := obj["name"].(string); !ok {
		return chat.PlatformUnknown, false
	}
	if _, ok := obj["type"].(string); !ok {
		return chat.PlatformUnknown, false
	}
	if _, ok := obj["id"].(float64); !ok {
		return chat.PlatformUnknown, false
	}
	msgs, ok := obj["messages"].([]any)
	if !ok {
		return chat.PlatformUnknown, false
	}
	for _, raw := range msgs {
		m, ok := raw.(map[string]any)
		if !ok {
			return chat.PlatformUnknown, false
		}
		if t, _ := m["type"].(string); t != "message" {
			continue
		}
		if _, ok := m["from"]; !ok {
			return chat.PlatformUnknown, false
		}
		_, hasUnix := m["date_unixtime"]
		_, hasDate := m["date"]
		return chat.PlatformTelegram, hasUnix || hasDate
	}
	return chat.PlatformUnknown, false
}

// Thread path prefixes that only appear in Messenger exports. Instagram uses
// the same participants/messages layout but a different folder scheme.
var messengerThreadPrefixes = []string{
	"inbox",
	"e2ee_cutover",
	"filtered_threads",
	"message_requests",
}

// Meta-family exports share a participants+messages shape. Messenger and
// Instagram are told apart by thread_path and by is_still_participant, which
// Instagram omits.
func detectMeta(_ string, obj map[string]any) (chat.Platform, bool) {
	if _, ok := obj["participants"].([]any); !ok {
		return chat.PlatformUnknown, false
	}
	if _, ok := obj["messages"].([]any); !ok {
		return chat.PlatformUnknown, false
	}

	if tp, ok := obj["thread_path"].(string); ok {
		for _, prefix := range messengerThreadPrefixes {
			if strings.HasPrefix(tp, prefix) {
				return chat.PlatformMessenger, true
			}
		}
	}
	if _, ok := obj["thread_path"]; ok {
		return chat.PlatformMessenger, true
	}
	if _, ok := obj["is_still_participant"]; !ok {
		return chat.PlatformInstagram, true
	}
	return chat.PlatformMessenger, true
}
