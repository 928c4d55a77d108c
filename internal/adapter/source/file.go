package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/forecast-alert-service/internal/observability"
)

// FileSource reads the forecast document written by the ML model. The file is
// re-read on every fetch so a new model run is picked up without a restart.
type FileSource struct {
	path    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFileSource creates a source backed by the file at path.
func NewFileSource(path string, metrics *observability.Metrics, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, metrics: metrics, logger: logger}
}

func (s *FileSource) Name() string { return "file" }

// Fetch returns the current contents of the forecast file.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	start := time.Now()
	data, err := os.ReadFile(s.path)
	s.metrics.SourceDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(s.Name(), outcomeError).Inc()
		return nil, fmt.Errorf("read forecast file: %w", err)
	}
	s.metrics.SourceRequests.WithLabelValues(s.Name(), outcomeSuccess).Inc()
	s.logger.Debug("forecast file read", "path", s.path, "bytes", len(data))
	return data, nil
}

// CheckReadiness reports whether the forecast file exists and is a regular file.
func (s *FileSource) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("forecast file unavailable: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("forecast file %s is not a regular file", s.path)
	}
	return nil
}
