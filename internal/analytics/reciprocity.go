package analytics

import (
	"sort"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// ReciprocityIndex scores how evenly the relationship flows in both
// directions, on 0-100 where 100 is perfectly even. In group chats the two
// most active senders are compared.
type ReciprocityIndex struct {
	PersonA           string  `json:"personA"`
	PersonB           string  `json:"personB"`
	MessageBalance    float64 `json:"messageBalance"`
	InitiationBalance float64 `json:"initiationBalance"`
	ResponseSymmetry  float64 `json:"responseSymmetry"`
	ReactionBalance   float64 `json:"reactionBalance"`
	Overall           float64 `json:"overall"`
}

// ComputeReciprocity compares message volume, session initiations, median
// response times and reactions given between the two most active senders.
// With fewer than two participants every component stays at a neutral 50.
func ComputeReciprocity(conv *chat.Conversation, timing *TimingStats) *ReciprocityIndex {
	idx := &ReciprocityIndex{
		MessageBalance:    50,
		InitiationBalance: 50,
		ResponseSymmetry:  50,
		ReactionBalance:   50,
		Overall:           50,
	}
	if len(conv.Participants) < 2 {
		return idx
	}

	msgCounts := make(map[string]int)
	reactionsGiven := make(map[string]int)
	for _, m := range conv.Messages {
		if !countable(m) {
			continue
		}
		msgCounts[m.Sender]++
		for _, r := range m.Reactions {
			reactionsGiven[r.Actor] += r.Count
		}
	}

	names := conv.ParticipantNames()
	sort.Slice(names, func(i, j int) bool {
		if msgCounts[names[i]] != msgCounts[names[j]] {
			return msgCounts[names[i]] > msgCounts[names[j]]
		}
		return names[i] < names[j]
	})
	a, b := names[0], names[1]
	idx.PersonA, idx.PersonB = a, b

	idx.MessageBalance = balanceScore(float64(msgCounts[a]), float64(msgCounts[b]))
	idx.InitiationBalance = balanceScore(float64(timing.Initiations[a]), float64(timing.Initiations[b]))
	idx.ResponseSymmetry = balanceScore(medianResponse(timing, a), medianResponse(timing, b))
	idx.ReactionBalance = balanceScore(float64(reactionsGiven[a]), float64(reactionsGiven[b]))
	idx.Overall = (idx.MessageBalance + idx.InitiationBalance + idx.ResponseSymmetry + idx.ReactionBalance) / 4
	return idx
}

func medianResponse(timing *TimingStats, name string) float64 {
	rs, ok := timing.ResponseTimes[name]
	if !ok {
		return 0
	}
	return rs.MedianSeconds
}
