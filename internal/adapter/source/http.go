package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/forecast-alert-service/internal/observability"
	"github.com/sony/gobreaker/v2"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"

	// maxDocumentBytes bounds the forecast document read from the upstream.
	maxDocumentBytes = 10 << 20
)

// HTTPSource fetches the forecast document from the upstream model service.
// Calls go through a circuit breaker that opens after consecutive failures
// so a down upstream fails fast instead of tying up request handlers.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewHTTPSource creates an upstream source for url with a per-request timeout.
func NewHTTPSource(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: newBreaker(logger),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "forecast-upstream",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not an upstream failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func (s *HTTPSource) Name() string { return "http" }

// Fetch returns the forecast document served by the upstream.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := s.breaker.Execute(func() ([]byte, error) {
		return s.doRequest(ctx)
	})
	s.metrics.SourceDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(s.Name(), outcomeError).Inc()
		return nil, err
	}
	s.metrics.SourceRequests.WithLabelValues(s.Name(), outcomeSuccess).Inc()
	return data, nil
}

// CheckReadiness fails while the circuit breaker is open.
func (s *HTTPSource) CheckReadiness(_ context.Context) error {
	if s.breaker.State() == gobreaker.StateOpen {
		return errors.New("forecast upstream circuit breaker is open")
	}
	return nil
}

func (s *HTTPSource) doRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("forecast upstream error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read forecast upstream response: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("forecast upstream response exceeds %d bytes", maxDocumentBytes)
	}
	return data, nil
}
