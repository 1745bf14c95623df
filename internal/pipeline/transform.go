package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

// FusionTransformer implements Transformer with the domain fuser.
type FusionTransformer struct {
	fuser   *domain.Fuser
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a FusionTransformer.
func NewTransformer(fuser *domain.Fuser, logger *slog.Logger, metrics *observability.Metrics) *FusionTransformer {
	return &FusionTransformer{
		fuser:   fuser,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *FusionTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.FusionReport, error) {
	req, err := domain.ParseFusionRequest(raw)
	if err != nil {
		return domain.FusionReport{}, err
	}

	report, err := t.fuser.Fuse(req)
	if err != nil {
		return domain.FusionReport{}, err
	}

	for _, rule := range report.Corrections {
		t.metrics.Corrections.WithLabelValues(rule).Inc()
	}
	level := "none"
	if report.Reliability != nil {
		level = report.Reliability.Level
	}
	t.metrics.Reliability.WithLabelValues(level).Inc()

	t.logger.DebugContext(ctx, "report fused",
		"location", report.Location.Key,
		"reported_code", report.ReportedCode,
		"effective_code", report.EffectiveCode,
		"corrections", report.Corrections,
		"reliability", level,
	)
	return report, nil
}
