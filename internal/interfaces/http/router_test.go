package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/logging"
	monprom "github.com/turtacn/MolGraph-Pipeline/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolGraph-Pipeline/internal/interfaces/http/handlers"
)

func TestNewRouterWiring(t *testing.T) {
	collector, err := monprom.NewMetricsCollector(monprom.CollectorConfig{Namespace: "testns"}, nil)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil, "dev"),
		Logger:        logging.NewNopLogger(),
		Collector:     collector,
		Mode:          "test",
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
		// No convert handler wired in this configuration.
		{http.MethodPost, "/api/v1/convert", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
