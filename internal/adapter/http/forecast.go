package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/forecast-alert-service/internal/domain"
	"github.com/couchcryptid/forecast-alert-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// ForecastSource supplies the raw forecast document produced by the model.
type ForecastSource interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// ForecastAPI serves the annotated forecast.
type ForecastAPI struct {
	source    ForecastSource
	sourceTag string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewForecastAPI creates the /api/forecast handler. sourceTag is reported as
// the provenance of every response.
func NewForecastAPI(source ForecastSource, sourceTag string, metrics *observability.Metrics, logger *slog.Logger) *ForecastAPI {
	return &ForecastAPI{
		source:    source,
		sourceTag: sourceTag,
		metrics:   metrics,
		logger:    logger,
	}
}

func (a *ForecastAPI) handleForecast(w http.ResponseWriter, r *http.Request) {
	data, err := a.source.Fetch(r.Context())
	if err != nil {
		a.fail(w, "fetch forecast failed", err)
		return
	}

	records, err := domain.AnnotateDocument(data)
	if err != nil {
		a.fail(w, "annotate forecast failed", err)
		return
	}
	a.metrics.ObserveAnnotations(records)

	sharedobs.WriteJSON(w, http.StatusOK, domain.NewReport(a.sourceTag, records))
}

// fail logs the cause and returns a generic error; details stay server-side.
func (a *ForecastAPI) fail(w http.ResponseWriter, msg string, err error) {
	a.logger.Error(msg, "error", err, "source", a.source.Name())
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}
