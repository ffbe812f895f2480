package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// WhatsAppParser handles the plain-text export format. Two timestamp grammars
// exist in the wild: the bracketed iOS style and the dash-separated Android
// style, both with day-first dates and optional seconds. Lines that match
// neither grammar continue the previous message.
type WhatsAppParser struct{}

func (p *WhatsAppParser) Platform() chat.Platform { return chat.PlatformWhatsApp }

var (
	waBracketRe = regexp.MustCompile(`^\[(\d{1,2})[./](\d{1,2})[./](\d{2,4}),? (\d{1,2}):(\d{2})(?::(\d{2}))? ?([AP]M)?\] (.*)$`)
	waDashRe    = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{2,4}),? (\d{1,2}):(\d{2})(?::(\d{2}))? ?([AP]M)? - (.*)$`)
)

// Exact-match markers WhatsApp substitutes for content it does not export.
var (
	waMediaMarkers = map[string]bool{
		"<Media omitted>":       true,
		"<Pominięto multimedia>": true,
		"image omitted":         true,
		"video omitted":         true,
		"audio omitted":         true,
		"document omitted":      true,
		"sticker omitted":       true,
		"GIF omitted":           true,
	}
	waUnsentMarkers = map[string]bool{
		"This message was deleted":      true,
		"You deleted this message":      true,
		"Ta wiadomość została usunięta": true,
		"Usunięto tę wiadomość":         true,
	}
	waCallMarkers = map[string]bool{
		"Missed voice call":               true,
		"Missed video call":               true,
		"Nieodebrane połączenie głosowe":  true,
		"Nieodebrane połączenie wideo":    true,
	}
)

// stripInvisible removes the direction marks and BOMs WhatsApp sprinkles into
// exports and normalizes the narrow no-break space it uses before AM/PM.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200e', '\u200f', '\ufeff':
			return -1
		case '\u00a0', '\u202f':
			return ' '
		}
		return r
	}, s)
}

func (p *WhatsAppParser) Validate(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := stripInvisible(scanner.Text())
		if waBracketRe.MatchString(line) || waDashRe.MatchString(line) {
			return true
		}
	}
	return false
}

func (p *WhatsAppParser) Parse(data []byte) (*chat.Conversation, error) {
	var participants []chat.Participant
	seen := make(map[string]bool)
	var messages []chat.Message

	var current *chat.Message

	flush := func() {
		if current != nil {
			messages = append(messages, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := stripInvisible(scanner.Text())

		match := waBracketRe.FindStringSubmatch(line)
		if match == nil {
			match = waDashRe.FindStringSubmatch(line)
		}
		if match == nil {
			// Continuation of the previous message body.
			if current != nil {
				current.Content += "\n" + line
			}
			continue
		}

		ts, ok := waTimestamp(match)
		if !ok {
			if current != nil {
				current.Content += "\n" + line
			}
			continue
		}

		flush()
		rest := match[8]
		sep := strings.Index(rest, ": ")
		if sep < 0 {
			// Encryption notices and group events have no sender and
			// carry nothing the analysis can use.
			continue
		}

		sender := strings.TrimSpace(rest[:sep])
		content := rest[sep+2:]
		if sender == "" {
			continue
		}
		if !seen[sender] {
			seen[sender] = true
			participants = append(participants, chat.Participant{Name: sender})
		}

		msg := chat.Message{
			Sender:    sender,
			Content:   content,
			Timestamp: ts,
		}
		classifyWhatsApp(&msg)
		current = &msg
	}
	flush()

	if len(messages) == 0 {
		return nil, invalidf(p.Platform(), "messages", "has no lines matching the WhatsApp timestamp grammar")
	}

	for i := range messages {
		messages[i].Index = i
	}

	return &chat.Conversation{
		Platform:     p.Platform(),
		Participants: participants,
		Messages:     messages,
		Metadata:     chat.BuildMetadata(participants, messages),
	}, nil
}

func classifyWhatsApp(msg *chat.Message) {
	trimmed := strings.TrimSpace(msg.Content)
	switch {
	case waUnsentMarkers[trimmed]:
		msg.Type = chat.TypeUnsent
		msg.IsUnsent = true
		msg.Content = ""
	case waMediaMarkers[trimmed] || strings.HasSuffix(trimmed, "(file attached)"):
		msg.Type = chat.TypeMedia
		msg.HasMedia = true
	case waCallMarkers[trimmed]:
		msg.Type = chat.TypeCall
	case isBareURL(trimmed):
		msg.Type = chat.TypeLink
	default:
		msg.Type = chat.TypeText
	}
	msg.HasLink = containsURL(msg.Content)
}

// waTimestamp builds a timestamp from a grammar match: day-first date with a
// tolerant swap for month-first exports, two-digit years, optional seconds
// and optional AM/PM.
func waTimestamp(match []string) (time.Time, bool) {
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	hour, _ := strconv.Atoi(match[4])
	minute, _ := strconv.Atoi(match[5])
	second := 0
	if match[6] != "" {
		second, _ = strconv.Atoi(match[6])
	}

	if month > 12 && day <= 12 {
		day, month = month, day
	}
	if year < 100 {
		year += 2000
	}
	switch match[7] {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}
