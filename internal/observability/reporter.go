package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// Reporter is the error telemetry sink. Reports are logged and counted; they
// never block or change the caller's control flow.
type Reporter struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewReporter creates a Reporter.
func NewReporter(logger *slog.Logger, metrics *Metrics) *Reporter {
	return &Reporter{logger: logger, metrics: metrics}
}

// Report records err under the given service tag with extra context.
func (r *Reporter) Report(ctx context.Context, err error, service string, extra map[string]any) {
	if err == nil {
		return
	}
	r.metrics.ErrorsReported.WithLabelValues(service).Inc()

	attrs := make([]any, 0, 4+2*len(extra))
	attrs = append(attrs, "error", err, "service", service)
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		attrs = append(attrs, k, extra[k])
	}
	r.logger.ErrorContext(ctx, "error reported", attrs...)
}
