package scoring

import (
	"github.com/sentio-labs/chatlens/internal/analytics"
)

// Meter keys, in report order.
const (
	MeterGhostRisk      = "ghost_risk"
	MeterCodependency   = "codependency"
	MeterPowerImbalance = "power_imbalance"
	MeterTrust          = "trust"
)

// Threat levels by score band.
const (
	levelLow      = "low"
	levelModerate = "moderate"
	levelElevated = "elevated"
	levelCritical = "critical"
)

// Codependency blends three imbalance signals. A component above
// codepFactorThreshold is called out as a named factor.
const (
	codepWeightInitiation = 0.40
	codepWeightDoubleText = 0.35
	codepWeightResponse   = 0.25
	codepFactorThreshold  = 50.0
)

// Power imbalance blend weights.
const (
	powerWeightMessages    = 0.5
	powerWeightReactions   = 0.3
	powerWeightInitiations = 0.2
)

// Trust blend weights. The third term rewards the absence of ghosting.
const (
	trustWeightReciprocity = 0.40
	trustWeightConsistency = 0.40
	trustWeightGhostFree   = 0.20
)

// ThreatMeter is one gauge on the risk dashboard. Score is in [0, 100],
// higher meaning more of the named threat; for the trust meter higher means
// more trust.
type ThreatMeter struct {
	Key     string   `json:"key"`
	Score   float64  `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors,omitempty"`
}

// ComputeThreatMeters builds the four meters in fixed order: ghost risk,
// codependency, power imbalance, trust. Conversations with fewer than two
// participants have no relationship to gauge and yield no meters.
func ComputeThreatMeters(a *analytics.Analysis) []ThreatMeter {
	if a == nil || len(a.Participants) < 2 {
		return nil
	}
	idx := a.Reciprocity
	if idx == nil {
		idx = &analytics.ReciprocityIndex{
			MessageBalance:    50,
			InitiationBalance: 50,
			ResponseSymmetry:  50,
			ReactionBalance:   50,
			Overall:           50,
		}
	}
	return []ThreatMeter{
		ghostRiskMeter(a),
		codependencyMeter(a, idx),
		powerImbalanceMeter(idx),
		trustMeter(a, idx),
	}
}

func newMeter(key string, score float64, factors []string) ThreatMeter {
	score = clamp(score, 0, 100)
	return ThreatMeter{Key: key, Score: score, Level: threatLevel(score), Factors: factors}
}

func threatLevel(score float64) string {
	switch {
	case score < 30:
		return levelLow
	case score < 50:
		return levelModerate
	case score < 75:
		return levelElevated
	default:
		return levelCritical
	}
}

// ghostRiskMeter reports the worst per-person ghost risk, zero when the
// ghosting section is absent.
func ghostRiskMeter(a *analytics.Analysis) ThreatMeter {
	var worst float64
	if a.GhostRisk != nil {
		for _, score := range a.GhostRisk.PerPerson {
			if score > worst {
				worst = score
			}
		}
	}
	return newMeter(MeterGhostRisk, worst, nil)
}

func codependencyMeter(a *analytics.Analysis, idx *analytics.ReciprocityIndex) ThreatMeter {
	initImb := 100 - clamp(idx.InitiationBalance, 0, 100)
	respImb := 100 - clamp(idx.ResponseSymmetry, 0, 100)

	var dtImb float64
	if a.Engagement != nil {
		rateA := doubleTextRate(a.Engagement, idx.PersonA)
		rateB := doubleTextRate(a.Engagement, idx.PersonB)
		dtImb = imbalance(rateA, rateB)
	}

	score := codepWeightInitiation*initImb +
		codepWeightDoubleText*dtImb +
		codepWeightResponse*respImb

	var factors []string
	if initImb > codepFactorThreshold {
		factors = append(factors, "jednostronne inicjowanie rozmów")
	}
	if dtImb > codepFactorThreshold {
		factors = append(factors, "nierówne pisanie podwójnych wiadomości")
	}
	if respImb > codepFactorThreshold {
		factors = append(factors, "wyraźna asymetria czasu odpowiedzi")
	}
	return newMeter(MeterCodependency, score, factors)
}

func doubleTextRate(e *analytics.EngagementStats, person string) float64 {
	if person == "" {
		return 0
	}
	return e.DoubleTextRate[person]
}

func powerImbalanceMeter(idx *analytics.ReciprocityIndex) ThreatMeter {
	msgImb := 100 - clamp(idx.MessageBalance, 0, 100)
	reactImb := 100 - clamp(idx.ReactionBalance, 0, 100)
	initImb := 100 - clamp(idx.InitiationBalance, 0, 100)
	score := powerWeightMessages*msgImb +
		powerWeightReactions*reactImb +
		powerWeightInitiations*initImb
	return newMeter(MeterPowerImbalance, score, nil)
}

func trustMeter(a *analytics.Analysis, idx *analytics.ReciprocityIndex) ThreatMeter {
	consistency := responseConsistency(a.Timing, idx.PersonA, idx.PersonB)

	var ghostFreq float64
	if a.GhostRisk != nil {
		ghostFreq = clamp(a.GhostRisk.Frequency, 0, 100)
	}

	score := trustWeightReciprocity*clamp(idx.Overall, 0, 100) +
		trustWeightConsistency*consistency +
		trustWeightGhostFree*(100-ghostFreq)
	return newMeter(MeterTrust, score, nil)
}

// responseConsistency scores how steady each person's reply cadence is,
// from the coefficient of variation of their response times. No usable
// samples score a neutral 50.
func responseConsistency(timing *analytics.TimingStats, people ...string) float64 {
	if timing == nil {
		return 50
	}
	var sum float64
	var n int
	for _, person := range people {
		rs, ok := timing.ResponseTimes[person]
		if !ok || rs == nil || rs.AvgSeconds <= 0 {
			continue
		}
		cv := rs.StdDevSeconds / rs.AvgSeconds
		sum += clamp(100*(1-cv), 0, 100)
		n++
	}
	if n == 0 {
		return 50
	}
	return sum / float64(n)
}
