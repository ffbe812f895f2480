package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sentio-labs/chatlens/internal/analytics"
	"github.com/sentio-labs/chatlens/internal/bus"
	"github.com/sentio-labs/chatlens/internal/chat"
	"github.com/sentio-labs/chatlens/internal/parser"
	"github.com/sentio-labs/chatlens/internal/registry"
	"github.com/sentio-labs/chatlens/internal/scoring"
	"github.com/sentio-labs/chatlens/internal/wrapped"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProcessor() *Processor {
	return New(nil, nil, registry.New(), testLogger())
}

func waExport(lines ...string) []bus.ExportFile {
	return []bus.ExportFile{{Name: "chat.txt", Content: strings.Join(lines, "\n")}}
}

// Two people across two months, with a declining month-over-month volume.
func sampleExport() []bus.ExportFile {
	return waExport(
		"10.01.2024, 10:00 - Ala: hej, jak minął dzień?",
		"10.01.2024, 10:05 - Bartek: całkiem dobrze, a u ciebie?",
		"10.01.2024, 10:10 - Ala: też spoko",
		"10.01.2024, 10:12 - Ala: wpadniesz wieczorem?",
		"15.01.2024, 23:30 - Bartek: nie śpisz jeszcze?",
		"2.02.2024, 12:00 - Ala: obejrzałam ten serial",
		"2.02.2024, 12:30 - Bartek: i jak było?",
	)
}

func TestAnalyze(t *testing.T) {
	p := newTestProcessor()

	rep, err := p.Analyze(context.Background(), Request{Files: sampleExport()})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if rep.ID == uuid.Nil {
		t.Error("report id not assigned")
	}
	if rep.Platform != chat.PlatformWhatsApp {
		t.Errorf("platform = %q", rep.Platform)
	}
	if got := rep.Participants; len(got) != 2 || got[0] != "Ala" || got[1] != "Bartek" {
		t.Errorf("participants = %v", got)
	}
	if rep.Metadata.TotalMessages != 7 {
		t.Errorf("total messages = %d, want 7", rep.Metadata.TotalMessages)
	}
	if rep.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
	if rep.Analysis == nil {
		t.Fatal("analysis missing")
	}

	t.Run("threat meters", func(t *testing.T) {
		wantOrder := []string{
			scoring.MeterGhostRisk,
			scoring.MeterCodependency,
			scoring.MeterPowerImbalance,
			scoring.MeterTrust,
		}
		if len(rep.ThreatMeters) != len(wantOrder) {
			t.Fatalf("got %d meters, want %d", len(rep.ThreatMeters), len(wantOrder))
		}
		for i, want := range wantOrder {
			if rep.ThreatMeters[i].Key != want {
				t.Errorf("meter %d = %q, want %q", i, rep.ThreatMeters[i].Key, want)
			}
		}
	})

	t.Run("health components derived from analysis", func(t *testing.T) {
		c := rep.HealthScore.Components
		idx := rep.Analysis.Reciprocity
		if c.Balance != idx.MessageBalance {
			t.Errorf("balance = %v, want message balance %v", c.Balance, idx.MessageBalance)
		}
		if c.Reciprocity != idx.Overall {
			t.Errorf("reciprocity = %v, want overall %v", c.Reciprocity, idx.Overall)
		}
		if c.ResponsePattern != idx.ResponseSymmetry {
			t.Errorf("response pattern = %v, want symmetry %v", c.ResponsePattern, idx.ResponseSymmetry)
		}

		wantGrowth := 50 + 25*float64(rep.Analysis.Patterns.TrendSign)
		if c.GrowthTrajectory != wantGrowth {
			t.Errorf("growth = %v, want %v", c.GrowthTrajectory, wantGrowth)
		}

		worst := 0.0
		for _, m := range rep.ThreatMeters {
			if m.Key != scoring.MeterTrust && m.Score > worst {
				worst = m.Score
			}
		}
		if c.EmotionalSafety != 100-worst {
			t.Errorf("emotional safety = %v, want %v", c.EmotionalSafety, 100-worst)
		}
	})

	t.Run("score surfaces filled", func(t *testing.T) {
		if rep.HealthScore.Overall < 0 || rep.HealthScore.Overall > 100 {
			t.Errorf("overall = %d", rep.HealthScore.Overall)
		}
		if rep.HealthScore.Label == "" {
			t.Error("label empty")
		}
		if rep.HealthScore.Explanation == "" {
			t.Error("explanation empty")
		}
		if rep.DamageReport.CommunicationGrade == "" {
			t.Error("grade empty")
		}
		if rep.DamageReport.TherapyBenefit == "" {
			t.Error("therapy verdict empty")
		}
	})

	t.Run("slides bracketed", func(t *testing.T) {
		if len(rep.Slides) < 3 {
			t.Fatalf("got %d slides", len(rep.Slides))
		}
		if rep.Slides[0].Type != wrapped.SlideIntro {
			t.Errorf("first slide = %q", rep.Slides[0].Type)
		}
		if last := rep.Slides[len(rep.Slides)-1].Type; last != wrapped.SlideSummary {
			t.Errorf("last slide = %q", last)
		}
	})

	t.Run("no screening without answers", func(t *testing.T) {
		if rep.CPSResults != nil {
			t.Errorf("unexpected screening results: %v", rep.CPSResults)
		}
		if rep.CPSRiskLevel != "" {
			t.Errorf("unexpected risk level %q", rep.CPSRiskLevel)
		}
	})
}

func TestAnalyzeTitleOverride(t *testing.T) {
	p := newTestProcessor()

	rep, err := p.Analyze(context.Background(), Request{
		Title: "Czat z Bartkiem",
		Files: sampleExport(),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if rep.Title != "Czat z Bartkiem" {
		t.Errorf("title = %q", rep.Title)
	}
}

func TestAnalyzeEnrichment(t *testing.T) {
	p := newTestProcessor()

	// Four of seven gaslighting questions answered yes.
	yes, no := true, false
	answers := map[string]scoring.CPSAnswer{}
	for _, p := range scoring.Catalog() {
		if p.Key != scoring.PatternGaslighting {
			continue
		}
		for i, q := range p.Questions {
			v := &yes
			if i >= 4 {
				v = &no
			}
			answers[q.ID] = scoring.CPSAnswer{Value: v, Confidence: 80}
		}
	}

	modelHealth := 30.0
	sentiment := &analytics.SentimentAnalysis{
		Average:   -0.2,
		PerPerson: map[string]float64{"Ala": -0.1, "Bartek": -0.3},
	}
	req := Request{
		Files: sampleExport(),
		Enrichment: &Enrichment{
			HealthComponents: &scoring.HealthComponents{
				Balance:          80,
				Reciprocity:      60,
				ResponsePattern:  70,
				EmotionalSafety:  50,
				GrowthTrajectory: 40,
			},
			HealthExplanation: "Rozmowa w dobrej formie.",
			ModelHealth:       &modelHealth,
			Flags:             &scoring.PassFlags{GreenFlags: 2, RedFlags: 1},
			Sentiment:         sentiment,
			CPSAnswers:        answers,
		},
	}

	rep, err := p.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	t.Run("supplied components win", func(t *testing.T) {
		if rep.HealthScore.Overall != 62 {
			t.Errorf("overall = %d, want 62", rep.HealthScore.Overall)
		}
		if rep.HealthScore.Label != "Stabilna" {
			t.Errorf("label = %q", rep.HealthScore.Label)
		}
		if rep.HealthScore.Explanation != "Rozmowa w dobrej formie." {
			t.Errorf("explanation = %q", rep.HealthScore.Explanation)
		}
	})

	t.Run("sentiment attached to analysis", func(t *testing.T) {
		if rep.Analysis.Sentiment == nil || rep.Analysis.Sentiment.Average != -0.2 {
			t.Errorf("sentiment = %+v", rep.Analysis.Sentiment)
		}
	})

	t.Run("flags shape repair potential", func(t *testing.T) {
		// Declining volume, so no trend bonus: (2/3)*60.
		if got := rep.DamageReport.RepairPotential; math.Abs(got-40) > 0.001 {
			t.Errorf("repair potential = %v, want 40", got)
		}
	})

	t.Run("screening results", func(t *testing.T) {
		r, ok := rep.CPSResults[scoring.PatternGaslighting]
		if !ok {
			t.Fatal("gaslighting result missing")
		}
		if r.YesCount != 4 || r.Total != 7 || r.Percentage != 57 {
			t.Errorf("result = %+v", r)
		}
		if r.Frequency != scoring.FrequencyRecurring || !r.MeetsThreshold {
			t.Errorf("frequency = %q meets=%v", r.Frequency, r.MeetsThreshold)
		}
		if rep.CPSRiskLevel != scoring.RiskModerate {
			t.Errorf("risk level = %q", rep.CPSRiskLevel)
		}
	})
}

func TestAnalyzeParseFailures(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	if _, err := p.Analyze(ctx, Request{}); !errors.Is(err, parser.ErrNoFiles) {
		t.Errorf("empty request: want ErrNoFiles, got %v", err)
	}

	_, err := p.Analyze(ctx, Request{Files: []bus.ExportFile{
		{Name: "export.json", Content: `{"foo": 1}`},
	}})
	var ife *parser.InvalidFormatError
	if !errors.As(err, &ife) {
		t.Errorf("unknown format: want InvalidFormatError, got %v", err)
	}
}

func TestAnalyzeAsync(t *testing.T) {
	reg := registry.New()
	p := New(nil, nil, reg, testLogger())

	op := p.AnalyzeAsync(Request{Files: sampleExport()})
	if op.ID == uuid.Nil {
		t.Fatal("operation id not assigned")
	}

	final := waitForOperation(t, reg, op.ID)
	if final.Status != registry.StatusCompleted {
		t.Fatalf("status = %q, error = %q", final.Status, final.Error)
	}
	if final.ReportID == "" {
		t.Error("report id missing from completed operation")
	}
	if final.Percent != 100 || final.Stage != "done" {
		t.Errorf("progress = %d%% %q", final.Percent, final.Stage)
	}
}

func TestAnalyzeAsyncFailure(t *testing.T) {
	reg := registry.New()
	p := New(nil, nil, reg, testLogger())

	op := p.AnalyzeAsync(Request{Files: []bus.ExportFile{
		{Name: "export.json", Content: "not json"},
	}})

	final := waitForOperation(t, reg, op.ID)
	if final.Status != registry.StatusFailed {
		t.Fatalf("status = %q", final.Status)
	}
	if final.Error == "" {
		t.Error("failed operation carries no error")
	}
}

func waitForOperation(t *testing.T, reg *registry.Registry, id uuid.UUID) registry.Operation {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		op, ok := reg.Get(id)
		if !ok {
			t.Fatalf("operation %s vanished", id)
		}
		if op.Status != registry.StatusRunning {
			return op
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("operation %s still running after deadline", id)
	return registry.Operation{}
}

func TestHandleExportStored(t *testing.T) {
	p := newTestProcessor()

	// Malformed payloads are logged and dropped, never panic.
	p.HandleExportStored(bus.SubjectExportStored, []byte("not json"))

	evt := bus.ExportStoredEvent{Title: "Nasza rozmowa", Files: sampleExport()}
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	p.HandleExportStored(bus.SubjectExportStored, data)
}
