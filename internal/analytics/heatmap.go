package analytics

import (
	"github.com/sentio-labs/chatlens/internal/chat"
)

// Heatmap is a weekday-by-hour activity grid. Rows follow time.Weekday, so
// row 0 is Sunday.
type Heatmap struct {
	Combined  [7][24]int             `json:"combined"`
	PerPerson map[string]*[7][24]int `json:"perPerson"`
}

// ComputeHeatmap bins every countable message into its weekday and hour.
func ComputeHeatmap(conv *chat.Conversation) *Heatmap {
	hm := &Heatmap{PerPerson: make(map[string]*[7][24]int)}
	for _, p := range conv.Participants {
		hm.PerPerson[p.Name] = &[7][24]int{}
	}

	for _, m := range conv.Messages {
		if !countable(m) {
			continue
		}
		day := int(m.Timestamp.Weekday())
		hour := m.Timestamp.Hour()
		hm.Combined[day][hour]++
		if grid, ok := hm.PerPerson[m.Sender]; ok {
			grid[day][hour]++
		}
	}
	return hm
}

// PeakSlot returns the busiest weekday and hour of the combined grid.
func (h *Heatmap) PeakSlot() (day, hour, count int) {
	for d := 0; d < 7; d++ {
		for hr := 0; hr < 24; hr++ {
			if h.Combined[d][hr] > count {
				day, hour, count = d, hr, h.Combined[d][hr]
			}
		}
	}
	return day, hour, count
}
