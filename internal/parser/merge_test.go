package parser

import (
	"errors"
	"strings"
	"testing"
)

func waFile(name string, lines ...string) File {
	return File{Name: name, Data: []byte(strings.Join(lines, "\n"))}
}

func TestMergeNoFiles(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("want ErrNoFiles, got %v", err)
	}
}

func TestMergeSingleFilePassthrough(t *testing.T) {
	conv, err := Merge([]File{waFile("chat.txt",
		"1.02.2024, 10:00 - Kasia: raz",
		"1.02.2024, 10:05 - Wojtek: dwa",
	)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(conv.Messages))
	}
}

func TestMergeDeduplicatesOverlap(t *testing.T) {
	a := waFile("a.txt",
		"1.02.2024, 10:00 - Kasia: raz",
		"1.02.2024, 10:05 - Wojtek: dwa",
	)
	b := waFile("b.txt",
		"1.02.2024, 10:05 - Wojtek: dwa",
		"1.02.2024, 10:10 - Kasia: trzy",
	)

	conv, err := Merge([]File{a, b})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conv.Messages) != 3 {
		t.Fatalf("got %d messages, want 3 after dedup", len(conv.Messages))
	}
	want := []string{"raz", "dwa", "trzy"}
	for i, w := range want {
		if conv.Messages[i].Content != w {
			t.Errorf("message %d = %q, want %q", i, conv.Messages[i].Content, w)
		}
		if conv.Messages[i].Index != i {
			t.Errorf("message %d index = %d", i, conv.Messages[i].Index)
		}
	}
	if conv.Metadata.TotalMessages != 3 {
		t.Errorf("totalMessages = %d", conv.Metadata.TotalMessages)
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	a := waFile("a.txt",
		"1.02.2024, 10:00 - Kasia: raz",
		"1.02.2024, 10:05 - Wojtek: dwa",
	)
	b := waFile("b.txt",
		"1.02.2024, 10:05 - Wojtek: dwa",
		"1.02.2024, 10:10 - Kasia: trzy",
	)

	ab, err := Merge([]File{a, b})
	if err != nil {
		t.Fatalf("Merge(a,b) failed: %v", err)
	}
	ba, err := Merge([]File{b, a})
	if err != nil {
		t.Fatalf("Merge(b,a) failed: %v", err)
	}

	if len(ab.Messages) != len(ba.Messages) {
		t.Fatalf("counts differ: %d vs %d", len(ab.Messages), len(ba.Messages))
	}
	for i := range ab.Messages {
		if ab.Messages[i].Content != ba.Messages[i].Content {
			t.Errorf("message %d differs: %q vs %q", i, ab.Messages[i].Content, ba.Messages[i].Content)
		}
	}
}

func TestMergeRejectsMixedPlatforms(t *testing.T) {
	a := waFile("a.txt", "1.02.2024, 10:00 - Kasia: raz")
	b := File{
		Name: "message_1.json",
		Data: []byte(`{"participants": [{"name": "ola_xo"}], "messages": [{"sender_name": "ola_xo", "timestamp_ms": 1704100000000, "content": "hej"}]}`),
	}
	if _, err := Merge([]File{a, b}); err == nil {
		t.Error("mixed platforms should fail")
	}
}

func TestMergeRejectsUnknownFormat(t *testing.T) {
	_, err := Merge([]File{{Name: "export.json", Data: []byte(`{"foo": 1}`)}})
	var ife *InvalidFormatError
	if !errors.As(err, &ife) {
		t.Errorf("want InvalidFormatError, got %v", err)
	}
}
