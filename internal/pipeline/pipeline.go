package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/forecast-alert-service/internal/domain"
	"github.com/couchcryptid/forecast-alert-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize raw forecast runs from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw forecast run into an annotated output event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-annotate-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any forecasts yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-annotate-load cycle. Returns false if the pipeline should stop.
//
// Offsets are committed only once every run in the batch is settled: loaded
// to the sink or rejected as malformed. A failed load is retried with the
// same events, so a commit can never move past a run that was not delivered.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.ForecastsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = initialBackoff

	reports := p.annotateBatch(ctx, rawBatch)
	if len(reports) > 0 {
		if !p.loadWithRetry(ctx, reports, backoff) {
			return false
		}
		p.metrics.ForecastsProduced.Add(float64(len(reports)))
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}

	p.commitBatch(ctx, rawBatch)
	return true
}

// annotateBatch transforms each forecast run in the batch. Rejected runs are
// logged, counted, and left out of the result.
func (p *Pipeline) annotateBatch(ctx context.Context, rawBatch []domain.RawEvent) []domain.OutputEvent {
	reports := make([]domain.OutputEvent, 0, len(rawBatch))
	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping forecast",
				"error", err,
				"forecast_key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			continue
		}
		reports = append(reports, out)
	}
	return reports
}

// loadWithRetry writes reports to the sink, backing off between attempts,
// until it succeeds or the context is cancelled. Returns false on cancellation.
func (p *Pipeline) loadWithRetry(ctx context.Context, reports []domain.OutputEvent, backoff *time.Duration) bool {
	for {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			*backoff = initialBackoff
			return true
		}
		p.logger.Error("load batch failed, retrying",
			"error", err,
			"batch_size", len(reports),
			"retry_in", *backoff,
		)
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}
}

type partitionKey struct {
	topic     string
	partition int
}

// commitBatch commits the highest offset seen per partition. A Kafka commit
// covers every earlier offset on the partition.
func (p *Pipeline) commitBatch(ctx context.Context, rawBatch []domain.RawEvent) {
	latest := make(map[partitionKey]domain.RawEvent)
	var order []partitionKey
	for _, raw := range rawBatch {
		k := partitionKey{topic: raw.Topic, partition: raw.Partition}
		prev, seen := latest[k]
		if !seen {
			order = append(order, k)
		}
		if !seen || raw.Offset >= prev.Offset {
			latest[k] = raw
		}
	}
	for _, k := range order {
		p.commitOffset(ctx, latest[k])
	}
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context was cancelled.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
