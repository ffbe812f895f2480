package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sentio-labs/chatlens/internal/analytics"
	"github.com/sentio-labs/chatlens/internal/bus"
	"github.com/sentio-labs/chatlens/internal/chat"
	"github.com/sentio-labs/chatlens/internal/metrics"
	"github.com/sentio-labs/chatlens/internal/parser"
	"github.com/sentio-labs/chatlens/internal/registry"
	"github.com/sentio-labs/chatlens/internal/scoring"
	"github.com/sentio-labs/chatlens/internal/store"
	"github.com/sentio-labs/chatlens/internal/wrapped"
)

// Processor orchestrates the analysis pipeline: parse and merge export
// files, compute analytics, score, build slides, persist, announce. Store
// and bus are optional; with both nil the pipeline still produces a full
// report, which is how tests run it.
type Processor struct {
	store    *store.Store
	bus      *bus.Client
	registry *registry.Registry
	logger   *slog.Logger
}

func New(s *store.Store, b *bus.Client, reg *registry.Registry, logger *slog.Logger) *Processor {
	return &Processor{
		store:    s,
		bus:      b,
		registry: reg,
		logger:   logger,
	}
}

// Request is one analysis job. Title overrides the parsed conversation
// title when set. Enrichment is optional model-judged context.
type Request struct {
	Title      string           `json:"title,omitempty"`
	Files      []bus.ExportFile `json:"files"`
	Enrichment *Enrichment      `json:"enrichment,omitempty"`
}

// progressFunc receives pipeline stage updates.
type progressFunc func(stage string, percent int)

// Analyze runs the full pipeline synchronously and returns the report.
func (p *Processor) Analyze(ctx context.Context, req Request) (*Report, error) {
	return p.analyze(ctx, req, func(string, int) {})
}

// AnalyzeAsync registers an operation, runs the pipeline in the background
// and tracks progress through the registry. The returned operation carries
// the id to poll.
func (p *Processor) AnalyzeAsync(req Request) registry.Operation {
	op := p.registry.Begin()

	go func() {
		ctx := context.Background()
		rep, err := p.analyze(ctx, req, func(stage string, percent int) {
			p.registry.Update(op.ID, stage, percent)
		})
		if err != nil {
			p.logger.Error("analysis failed", "operation_id", op.ID, "error", err)
			p.registry.Fail(op.ID, err)
			return
		}
		p.registry.Complete(op.ID, rep.ID.String())
	}()

	return op
}

func (p *Processor) analyze(ctx context.Context, req Request, progress progressFunc) (*Report, error) {
	start := time.Now()

	progress("parsing", 10)
	conv, err := p.parse(req)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		conv.Title = req.Title
	}

	progress("computing", 40)
	analysis := analytics.Compute(conv)
	req.Enrichment.attach(analysis)

	progress("scoring", 70)
	meters := scoring.ComputeThreatMeters(analysis)

	components := healthComponents(analysis, meters)
	explanation := ""
	var modelHealth *float64
	var flags *scoring.PassFlags
	if e := req.Enrichment; e != nil {
		if e.HealthComponents != nil {
			components = *e.HealthComponents
		}
		explanation = e.HealthExplanation
		modelHealth = e.ModelHealth
		flags = e.Flags
	}
	health := scoring.ComputeHealthScore(components, explanation)

	rep := &Report{
		ID:           uuid.New(),
		Platform:     conv.Platform,
		Title:        conv.Title,
		Participants: analysis.Participants,
		Metadata:     conv.Metadata,
		Analysis:     analysis,
		HealthScore:  health,
		ThreatMeters: meters,
		DamageReport: scoring.ComputeDamageReport(analysis, modelHealth, flags),
		Slides:       wrapped.Generate(conv, analysis),
		CreatedAt:    time.Now().UTC(),
	}
	if e := req.Enrichment; e != nil && len(e.CPSAnswers) > 0 {
		rep.CPSResults = scoring.CalculatePatternResults(e.CPSAnswers)
		rep.CPSRiskLevel = scoring.GetOverallRiskLevel(rep.CPSResults)
	}

	progress("saving", 90)
	if err := p.persist(ctx, rep); err != nil {
		return nil, err
	}
	p.announce(rep)

	metrics.ObserveAnalysis(time.Since(start).Seconds())
	return rep, nil
}

// parse merges the request files into one conversation, recording the
// outcome per platform.
func (p *Processor) parse(req Request) (*chat.Conversation, error) {
	files := make([]parser.File, len(req.Files))
	for i, f := range req.Files {
		files[i] = parser.File{Name: f.Name, Data: []byte(f.Content)}
	}

	conv, err := parser.Merge(files)
	if err != nil {
		platform := chat.PlatformUnknown
		if len(files) > 0 {
			platform = parser.DetectBytes(files[0].Name, files[0].Data)
		}
		metrics.RecordParse(string(platform), err)
		return nil, fmt.Errorf("parse export: %w", err)
	}
	metrics.RecordParse(string(conv.Platform), nil)
	return conv, nil
}

func (p *Processor) persist(ctx context.Context, rep *Report) error {
	if p.store == nil {
		return nil
	}

	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	rec := store.ReportRecord{
		ID:       rep.ID,
		Platform: string(rep.Platform),
		Title:    rep.Title,
		Payload:  payload,
	}
	if err := p.store.SaveReport(ctx, rec); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	metrics.ReportsStoredTotal.Inc()
	return nil
}

func (p *Processor) announce(rep *Report) {
	if p.bus == nil {
		return
	}

	evt := bus.AnalysisCompletedEvent{
		ReportID: rep.ID.String(),
		Platform: string(rep.Platform),
		Title:    rep.Title,
		Health:   rep.HealthScore.Overall,
		Messages: rep.Metadata.TotalMessages,
	}
	if err := p.bus.Publish(bus.SubjectAnalysisCompleted, evt); err != nil {
		p.logger.Error("failed to publish completion event", "report_id", rep.ID, "error", err)
	}
}

// HandleExportStored is the NATS handler for chatlens.export.stored.
func (p *Processor) HandleExportStored(subject string, data []byte) {
	ctx := context.Background()

	var evt bus.ExportStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse export event", "error", err)
		return
	}

	p.logger.Info("processing export", "files", len(evt.Files), "title", evt.Title)

	rep, err := p.Analyze(ctx, Request{Title: evt.Title, Files: evt.Files})
	if err != nil {
		p.logger.Error("analysis failed", "title", evt.Title, "error", err)
		return
	}

	p.logger.Info("export analysed",
		"report_id", rep.ID,
		"platform", rep.Platform,
		"messages", rep.Metadata.TotalMessages,
		"health", rep.HealthScore.Overall,
	)
}
