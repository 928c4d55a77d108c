package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/forecast-alert-service/internal/domain"
	"github.com/couchcryptid/forecast-alert-service/internal/observability"
)

// ForecastTransformer implements Transformer by running the rule engine over
// each forecast run and wrapping the result in a report envelope.
type ForecastTransformer struct {
	sourceTag string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTransformer creates a ForecastTransformer that tags reports with sourceTag.
func NewTransformer(sourceTag string, metrics *observability.Metrics, logger *slog.Logger) *ForecastTransformer {
	return &ForecastTransformer{
		sourceTag: sourceTag,
		metrics:   metrics,
		logger:    logger,
	}
}

// Transform parses, annotates, and serializes one forecast run. A "source"
// message header overrides the configured provenance tag.
func (t *ForecastTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	records, err := domain.AnnotateDocument(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("annotate forecast: %w", err)
	}
	t.metrics.ObserveAnnotations(records)

	source := t.sourceTag
	if s := raw.Headers["source"]; s != "" {
		source = s
	}

	out, err := domain.SerializeReport(raw.Key, domain.NewReport(source, records))
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("forecast annotated",
		"forecast_key", string(raw.Key),
		"days", len(records),
		"alert_count", out.Headers["alert_count"],
		"max_level", out.Headers["max_level"],
	)
	return out, nil
}
