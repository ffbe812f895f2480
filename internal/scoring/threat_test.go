package scoring

import (
	"math"
	"testing"

	"github.com/sentio-labs/chatlens/internal/analytics"
)

func TestComputeThreatMetersSingleParticipant(t *testing.T) {
	a := &analytics.Analysis{Participants: []string{"Ala"}}
	if got := ComputeThreatMeters(a); len(got) != 0 {
		t.Fatalf("got %d meters for a single participant, want none", len(got))
	}
	if got := ComputeThreatMeters(nil); len(got) != 0 {
		t.Fatalf("got %d meters for nil analysis, want none", len(got))
	}
}

func TestComputeThreatMetersOrderAndBounds(t *testing.T) {
	// Two participants, every optional section absent.
	a := &analytics.Analysis{Participants: []string{"Ala", "Bartek"}}
	meters := ComputeThreatMeters(a)
	if len(meters) != 4 {
		t.Fatalf("got %d meters, want 4", len(meters))
	}

	wantOrder := []string{MeterGhostRisk, MeterCodependency, MeterPowerImbalance, MeterTrust}
	for i, m := range meters {
		if m.Key != wantOrder[i] {
			t.Errorf("meter %d key = %q, want %q", i, m.Key, wantOrder[i])
		}
		if math.IsNaN(m.Score) || math.IsInf(m.Score, 0) {
			t.Errorf("meter %q score is not finite: %f", m.Key, m.Score)
		}
		if m.Score < 0 || m.Score > 100 {
			t.Errorf("meter %q score = %f, want within [0,100]", m.Key, m.Score)
		}
		if m.Level == "" {
			t.Errorf("meter %q has no level", m.Key)
		}
	}
}

func TestComputeThreatMetersScores(t *testing.T) {
	a := &analytics.Analysis{
		Participants: []string{"Ala", "Bartek"},
		Reciprocity: &analytics.ReciprocityIndex{
			PersonA:           "Ala",
			PersonB:           "Bartek",
			MessageBalance:    80,
			InitiationBalance: 20,
			ResponseSymmetry:  60,
			ReactionBalance:   40,
			Overall:           50,
		},
		Engagement: &analytics.EngagementStats{
			DoubleTextRate: map[string]float64{"Ala": 30, "Bartek": 10},
		},
		Timing: &analytics.TimingStats{
			ResponseTimes: map[string]*analytics.ResponseStats{
				"Ala":    {Count: 10, AvgSeconds: 100, StdDevSeconds: 50},
				"Bartek": {Count: 10, AvgSeconds: 200, StdDevSeconds: 20},
			},
		},
		GhostRisk: &analytics.GhostRisk{
			PerPerson: map[string]float64{"Ala": 20, "Bartek": 60},
			Frequency: 30,
		},
	}

	meters := ComputeThreatMeters(a)
	if len(meters) != 4 {
		t.Fatalf("got %d meters, want 4", len(meters))
	}
	byKey := make(map[string]ThreatMeter, len(meters))
	for _, m := range meters {
		byKey[m.Key] = m
	}

	t.Run("ghost risk takes the worst person", func(t *testing.T) {
		m := byKey[MeterGhostRisk]
		if math.Abs(m.Score-60) > 0.001 {
			t.Errorf("score = %f, want 60", m.Score)
		}
		if m.Level != "elevated" {
			t.Errorf("level = %q, want elevated", m.Level)
		}
	})

	t.Run("codependency blends three imbalances", func(t *testing.T) {
		m := byKey[MeterCodependency]
		// initiation 80, double-text 50, response 40.
		want := 0.40*80 + 0.35*50 + 0.25*40
		if math.Abs(m.Score-want) > 0.001 {
			t.Errorf("score = %f, want %f", m.Score, want)
		}
		if len(m.Factors) != 1 || m.Factors[0] != "jednostronne inicjowanie rozmów" {
			t.Errorf("factors = %v, want only the initiation factor", m.Factors)
		}
	})

	t.Run("power imbalance", func(t *testing.T) {
		m := byKey[MeterPowerImbalance]
		want := 0.5*20 + 0.3*60 + 0.2*80
		if math.Abs(m.Score-want) > 0.001 {
			t.Errorf("score = %f, want %f", m.Score, want)
		}
		if m.Level != "moderate" {
			t.Errorf("level = %q, want moderate", m.Level)
		}
	})

	t.Run("trust rewards steadiness and no ghosting", func(t *testing.T) {
		m := byKey[MeterTrust]
		// consistency: Ala cv 0.5 -> 50, Bartek cv 0.1 -> 90, mean 70.
		want := 0.40*50 + 0.40*70 + 0.20*(100-30)
		if math.Abs(m.Score-want) > 0.001 {
			t.Errorf("score = %f, want %f", m.Score, want)
		}
	})
}

func TestThreatLevelBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "low"},
		{29.9, "low"},
		{30, "moderate"},
		{49.9, "moderate"},
		{50, "elevated"},
		{74.9, "elevated"},
		{75, "critical"},
		{100, "critical"},
	}
	for _, tt := range tests {
		if got := threatLevel(tt.score); got != tt.want {
			t.Errorf("threatLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestImbalance(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{0, 0, 0},
		{10, 10, 0},
		{30, 10, 50},
		{10, 0, 100},
		{0, 10, 100},
	}
	for _, tt := range tests {
		if got := imbalance(tt.a, tt.b); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("imbalance(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}
