package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCrashMetrics(t *testing.T) {
	DatasetRecords.Set(42)
	InvalidShapesTotal.WithLabelValues("zero_area").Inc()

	assert.Equal(t, 42.0, testutil.ToFloat64(DatasetRecords))
	assert.GreaterOrEqual(t, testutil.ToFloat64(InvalidShapesTotal.WithLabelValues("zero_area")), 1.0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "crashmap_dataset_records 42")
	assert.Contains(t, string(body), `crashmap_invalid_shapes_total{reason="zero_area"}`)
}
