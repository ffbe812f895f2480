package scoring

import (
	"math"

	"github.com/sentio-labs/chatlens/internal/analytics"
)

// Emotional damage blend weights.
const (
	damageWeightSentiment = 0.35
	damageWeightConflicts = 0.25
	damageWeightImbalance = 0.20
	damageWeightHealth    = 0.20
)

// defaultModelHealth stands in when the model never judged the
// relationship. Neutral, neither helping nor hurting the blend.
const defaultModelHealth = 50.0

// Therapy benefit thresholds.
const (
	conflictRateHigh = 2.0 // conflicts per month
	reciprocityLow   = 40.0
)

// Therapy benefit verdicts.
const (
	TherapyHigh     = "HIGH"
	TherapyModerate = "MODERATE"
	TherapyLow      = "LOW"
)

// PassFlags carries the green and red relationship flags counted during the
// second qualitative pass.
type PassFlags struct {
	GreenFlags int `json:"greenFlags"`
	RedFlags   int `json:"redFlags"`
}

// DamageReport is the blunt-instrument summary card: how much damage, what
// grade, whether it can be repaired, and whether a professional would help.
type DamageReport struct {
	EmotionalDamage    float64 `json:"emotionalDamage"`
	CommunicationGrade string  `json:"communicationGrade"`
	RepairPotential    float64 `json:"repairPotential"`
	TherapyBenefit     string  `json:"therapyBenefit"`
}

// ComputeDamageReport blends sentiment, conflict density, reciprocity
// imbalance and the model-judged health into the report. modelHealth and
// flags are optional; nil means the corresponding pass never ran.
func ComputeDamageReport(a *analytics.Analysis, modelHealth *float64, flags *PassFlags) DamageReport {
	var avgSentiment float64
	if a != nil && a.Sentiment != nil {
		avgSentiment = a.Sentiment.Average
	}
	var conflicts int
	if a != nil && a.Conflict != nil {
		conflicts = a.Conflict.ConflictCount
	}
	months := 1
	var trendSign int
	if a != nil && a.Patterns != nil {
		if n := len(a.Patterns.MonthlyVolume); n > 0 {
			months = n
		}
		trendSign = a.Patterns.TrendSign
	}
	reciprocity := 50.0
	if a != nil && a.Reciprocity != nil {
		reciprocity = clamp(a.Reciprocity.Overall, 0, 100)
	}
	health := defaultModelHealth
	if modelHealth != nil {
		health = clamp(*modelHealth, 0, 100)
	}

	negativity := math.Max(0, -avgSentiment) * 100
	conflictLoad := math.Min(100, float64(conflicts)/float64(months)*25)
	imbalanceLoad := math.Min(100, math.Abs(reciprocity-50)*2)

	damage := clamp(
		negativity*damageWeightSentiment+
			conflictLoad*damageWeightConflicts+
			imbalanceLoad*damageWeightImbalance+
			(100-health)*damageWeightHealth,
		0, 100)

	return DamageReport{
		EmotionalDamage:    damage,
		CommunicationGrade: communicationGrade(reciprocity),
		RepairPotential:    repairPotential(flags, trendSign),
		TherapyBenefit:     therapyBenefit(float64(conflicts)/float64(months), avgSentiment, reciprocity, health),
	}
}

func communicationGrade(reciprocity float64) string {
	switch {
	case reciprocity >= 80:
		return "A"
	case reciprocity >= 65:
		return "B"
	case reciprocity >= 45:
		return "C"
	case reciprocity >= 25:
		return "D"
	default:
		return "F"
	}
}

// repairPotential rewards a favourable green-to-red flag ratio and a rising
// volume trend. No flags at all means no ratio evidence, not a perfect one.
func repairPotential(flags *PassFlags, trendSign int) float64 {
	var ratio float64
	if flags != nil && flags.GreenFlags+flags.RedFlags > 0 {
		ratio = float64(flags.GreenFlags) / float64(flags.GreenFlags+flags.RedFlags)
	}
	potential := math.Min(100, ratio*60)
	if trendSign > 0 {
		potential += 20
	}
	return clamp(potential, 0, 100)
}

func therapyBenefit(conflictRate, avgSentiment, reciprocity, health float64) string {
	if conflictRate > conflictRateHigh || avgSentiment < 0 || health < 40 {
		return TherapyHigh
	}
	if reciprocity < reciprocityLow || (health >= 40 && health < 60) {
		return TherapyModerate
	}
	return TherapyLow
}
