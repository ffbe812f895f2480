package scoring

import (
	"fmt"
	"math"
)

// Health score component weights. They sum to exactly 1.0.
const (
	weightBalance          = 0.25
	weightReciprocity      = 0.20
	weightResponsePattern  = 0.20
	weightEmotionalSafety  = 0.20
	weightGrowthTrajectory = 0.15
)

// Health labels by overall band.
const (
	labelHealthy   = "Zdrowa"
	labelStable    = "Stabilna"
	labelAttention = "Wymaga uwagi"
	labelWorrying  = "Niepokojąca"
)

// HealthComponents carries the five component scores, each in [0, 100].
// Out-of-range values are clamped before weighting.
type HealthComponents struct {
	Balance          float64 `json:"balance"`
	Reciprocity      float64 `json:"reciprocity"`
	ResponsePattern  float64 `json:"responsePattern"`
	EmotionalSafety  float64 `json:"emotionalSafety"`
	GrowthTrajectory float64 `json:"growthTrajectory"`
}

// HealthScore is the weighted overall health of a conversation.
type HealthScore struct {
	Overall     int              `json:"overall"`
	Components  HealthComponents `json:"components"`
	Label       string           `json:"label"`
	Explanation string           `json:"explanation,omitempty"`
}

// ComputeHealthScore folds the five components into a single 0-100 score.
// When explanation is empty one is derived from the components themselves.
func ComputeHealthScore(c HealthComponents, explanation string) HealthScore {
	c.Balance = clamp(c.Balance, 0, 100)
	c.Reciprocity = clamp(c.Reciprocity, 0, 100)
	c.ResponsePattern = clamp(c.ResponsePattern, 0, 100)
	c.EmotionalSafety = clamp(c.EmotionalSafety, 0, 100)
	c.GrowthTrajectory = clamp(c.GrowthTrajectory, 0, 100)

	weighted := c.Balance*weightBalance +
		c.Reciprocity*weightReciprocity +
		c.ResponsePattern*weightResponsePattern +
		c.EmotionalSafety*weightEmotionalSafety +
		c.GrowthTrajectory*weightGrowthTrajectory
	overall := int(math.Round(clamp(weighted, 0, 100)))

	if explanation == "" {
		explanation = explainHealth(c)
	}
	return HealthScore{
		Overall:     overall,
		Components:  c,
		Label:       HealthLabel(overall),
		Explanation: explanation,
	}
}

// HealthLabel maps an overall score to its Polish band label.
func HealthLabel(overall int) string {
	switch {
	case overall >= 80:
		return labelHealthy
	case overall >= 60:
		return labelStable
	case overall >= 40:
		return labelAttention
	default:
		return labelWorrying
	}
}

type namedComponent struct {
	name  string
	score float64
}

func healthComponentList(c HealthComponents) []namedComponent {
	return []namedComponent{
		{"równowaga", c.Balance},
		{"wzajemność", c.Reciprocity},
		{"rytm odpowiedzi", c.ResponsePattern},
		{"bezpieczeństwo emocjonalne", c.EmotionalSafety},
		{"trajektoria rozwoju", c.GrowthTrajectory},
	}
}

// explainHealth names the weakest component when it falls below 50 and the
// strongest when it reaches 70. Ties resolve to the first component in
// weight order.
func explainHealth(c HealthComponents) string {
	list := healthComponentList(c)
	weakest, strongest := list[0], list[0]
	for _, nc := range list[1:] {
		if nc.score < weakest.score {
			weakest = nc
		}
		if nc.score > strongest.score {
			strongest = nc
		}
	}

	var parts []string
	if weakest.score < 50 {
		parts = append(parts, fmt.Sprintf("Najsłabszy obszar: %s (%d/100).", weakest.name, int(math.Round(weakest.score))))
	}
	if strongest.score >= 70 {
		parts = append(parts, fmt.Sprintf("Najmocniejszy obszar: %s (%d/100).", strongest.name, int(math.Round(strongest.score))))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + " " + parts[1]
	}
}
