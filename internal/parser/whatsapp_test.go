package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/sentio-labs/chatlens/internal/chat"
)

func TestWhatsAppParseAndroidFormat(t *testing.T) {
	fixture := strings.Join([]string{
		"1.02.2024, 21:37 - Messages and calls are end-to-end encrypted.",
		"1.02.2024, 21:37 - Kasia: hej, co tam?",
		"1.02.2024, 21:38 - Wojtek: wszystko ok",
		"i u ciebie?",
		"1.02.2024, 21:40 - Kasia: <Media omitted>",
		"1.02.2024, 21:41 - Wojtek: Ta wiadomość została usunięta",
		"1.02.2024, 21:42 - Kasia: https://example.com/artykul",
		"2.02.2024, 09:15 - Wojtek: zobacz https://example.com w srodku",
	}, "\n")

	p := &WhatsAppParser{}
	conv, err := p.Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if conv.Platform != chat.PlatformWhatsApp {
		t.Errorf("platform = %q", conv.Platform)
	}
	// The encryption notice has no sender and is dropped.
	if len(conv.Messages) != 6 {
		t.Fatalf("got %d messages, want 6", len(conv.Messages))
	}

	if got := conv.Messages[1].Content; got != "wszystko ok\ni u ciebie?" {
		t.Errorf("continuation not appended: %q", got)
	}

	wantTypes := []chat.MessageType{
		chat.TypeText,
		chat.TypeText,
		chat.TypeMedia,
		chat.TypeUnsent,
		chat.TypeLink,
		chat.TypeText,
	}
	for i, want := range wantTypes {
		if conv.Messages[i].Type != want {
			t.Errorf("message %d type = %q, want %q", i, conv.Messages[i].Type, want)
		}
	}

	if conv.Messages[3].Content != "" {
		t.Errorf("deleted message should have empty content, got %q", conv.Messages[3].Content)
	}
	if !conv.Messages[3].IsUnsent {
		t.Error("deleted message should set isUnsent")
	}
	if !conv.Messages[5].HasLink {
		t.Error("embedded link should set hasLink")
	}
	if conv.Messages[5].Type != chat.TypeText {
		t.Error("embedded link must not change the type")
	}

	names := conv.ParticipantNames()
	if len(names) != 2 || names[0] != "Kasia" || names[1] != "Wojtek" {
		t.Errorf("participants = %v", names)
	}

	ts := conv.Messages[0].Timestamp
	if ts.Day() != 1 || ts.Month() != 2 || ts.Year() != 2024 || ts.Hour() != 21 || ts.Minute() != 37 {
		t.Errorf("day-first date parsed wrong: %v", ts)
	}
}

func TestWhatsAppParseBracketFormat(t *testing.T) {
	fixture := strings.Join([]string{
		"[2.01.2024, 21:37:12] Kasia: czesc",
		"[2.01.2024, 21:38:05] Wojtek: \u200eimage omitted",
		"[2.01.2024, 21:39:00] Kasia: Nieodebrane połączenie głosowe",
		"[2.01.2024, 21:40:30] Wojtek: <Pominięto multimedia>",
	}, "\n")

	conv, err := (&WhatsAppParser{}).Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(conv.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(conv.Messages))
	}

	wantTypes := []chat.MessageType{
		chat.TypeText,
		chat.TypeMedia,
		chat.TypeCall,
		chat.TypeMedia,
	}
	for i, want := range wantTypes {
		if conv.Messages[i].Type != want {
			t.Errorf("message %d type = %q, want %q", i, conv.Messages[i].Type, want)
		}
	}

	if s := conv.Messages[0].Timestamp.Second(); s != 12 {
		t.Errorf("seconds not parsed: %d", s)
	}
}

func TestWhatsAppAmPmAndSwappedDate(t *testing.T) {
	fixture := "1/13/2024, 9:15 PM - Kasia: hej"
	conv, err := (&WhatsAppParser{}).Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	ts := conv.Messages[0].Timestamp
	if ts.Month() != 1 || ts.Day() != 13 {
		t.Errorf("month-first date not recognized: %v", ts)
	}
	if ts.Hour() != 21 {
		t.Errorf("PM hour = %d, want 21", ts.Hour())
	}
}

func TestWhatsAppParseNoMatchingLines(t *testing.T) {
	_, err := (&WhatsAppParser{}).Parse([]byte("to nie jest eksport\nzwykly tekst"))
	var ife *InvalidFormatError
	if !errors.As(err, &ife) {
		t.Fatalf("want InvalidFormatError, got %v", err)
	}
	if ife.Platform != chat.PlatformWhatsApp {
		t.Errorf("platform = %q", ife.Platform)
	}
}

func TestWhatsAppValidate(t *testing.T) {
	p := &WhatsAppParser{}
	if !p.Validate([]byte("2.01.2024, 21:37 - Kasia: hej")) {
		t.Error("valid line should validate")
	}
	if p.Validate([]byte(`{"messages": []}`)) {
		t.Error("json should not validate as whatsapp")
	}
}
