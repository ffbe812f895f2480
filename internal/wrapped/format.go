package wrapped

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentio-labs/chatlens/internal/chat"
)

var platformLabels = map[chat.Platform]string{
	chat.PlatformMessenger: "Messenger",
	chat.PlatformInstagram: "Instagram",
	chat.PlatformTelegram:  "Telegram",
	chat.PlatformDiscord:   "Discord",
	chat.PlatformWhatsApp:  "WhatsApp",
}

func platformLabel(p chat.Platform) string {
	if label, ok := platformLabels[p]; ok {
		return label
	}
	return "Czat"
}

func dateRangeLabel(conv *chat.Conversation) string {
	start := conv.Metadata.DateRange.Start
	end := conv.Metadata.DateRange.End
	if start.IsZero() || end.IsZero() {
		return "brak dat"
	}
	return start.Format("02.01.2006") + " – " + end.Format("02.01.2006")
}

var polishMonths = [12]string{
	"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec",
	"lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień",
}

// monthLabel turns a "2006-01" bucket key into "styczeń 2006".
func monthLabel(bucket string) string {
	parts := strings.SplitN(bucket, "-", 2)
	if len(parts) != 2 {
		return bucket
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return bucket
	}
	return polishMonths[month-1] + " " + parts[0]
}

// Weekday names indexed like time.Weekday, Sunday first.
var polishWeekdays = [7]string{
	"niedziela", "poniedziałek", "wtorek", "środa", "czwartek", "piątek", "sobota",
}

func weekdayLabel(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return polishWeekdays[day]
}

// formatSeconds renders a duration the way the report speaks: seconds under
// a minute, minutes under an hour, hours otherwise.
func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.0f sek.", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.0f min", seconds/60)
	default:
		return fmt.Sprintf("%.1f godz.", seconds/3600)
	}
}

// messagesWord picks the Polish form for a message count.
func messagesWord(n int) string {
	if n == 1 {
		return "wiadomość"
	}
	return "wiadomości"
}

func daysWord(n int) string {
	if n == 1 {
		return "dzień"
	}
	return "dni"
}
