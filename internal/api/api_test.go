package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crash-map/internal/config"
	"crash-map/internal/crash"
	"crash-map/internal/selection"
)

const squareVertices = `{"vertices":[[0,0],[0,2],[2,2],[2,0]]}`

func testRecords() []crash.Record {
	return []crash.Record{
		{ID: "1", Lat: 1, Lon: 1, Year: 2019, Severity: "Fatal"},
		{ID: "2", Lat: 5, Lon: 5, Year: 2019, Severity: "Minor"},
		{ID: "3", Lat: 0, Lon: 1, Year: 2020, Severity: "Minor"},
		{ID: "4", Lat: 1.5, Lon: 0.5, Year: 2021, Severity: "Serious"},
	}
}

func newTestServer(t *testing.T, fc config.FilterConfig, sel selection.Store) *httptest.Server {
	t.Helper()
	if sel == nil {
		sel = selection.NewMemoryStore(16, time.Hour)
	}
	srv := NewServer(crash.NewDataset(testRecords()), sel, fc, time.Hour)
	ts := httptest.NewServer(http.StripPrefix("/api", BuildRoutes(srv)))
	t.Cleanup(ts.Close)
	return ts
}

func defaultFilter() config.FilterConfig {
	return config.FilterConfig{PreviewLimit: 1000, Workers: 1}
}

func do(t *testing.T, method, url, body, session string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(selection.SessionHeader, session)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeSelect(t *testing.T, b []byte) selectResponse {
	t.Helper()
	var res selectResponse
	require.NoError(t, json.Unmarshal(b, &res))
	return res
}

func ids(recs []crash.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestSelectSquare(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	resp, b := do(t, http.MethodPost, ts.URL+"/api/select", squareVertices, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeSelect(t, b)
	assert.True(t, res.Valid)
	assert.True(t, res.Drawn)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []string{"1", "3", "4"}, ids(res.Records))
	assert.NotEmpty(t, resp.Header.Get(selection.SessionHeader), "new session id is issued")
}

func TestSelectGeoJSON(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	feature := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}}`
	_, b := do(t, http.MethodPost, ts.URL+"/api/select?year=2019,2020", feature, "")
	res := decodeSelect(t, b)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"1", "3"}, ids(res.Records))
}

func TestSelectInvalidShapes(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{name: "two vertices", body: `{"vertices":[[0,0],[1,1]]}`, reason: "fewer than 3"},
		{name: "no vertices", body: `{"vertices":[]}`, reason: "fewer than 3"},
		{name: "collinear", body: `{"vertices":[[0,0],[1,1],[2,2]]}`, reason: "zero area"},
		{name: "bow tie", body: `{"vertices":[[0,0],[2,1],[2,0],[0,2]]}`, reason: "self-intersecting"},
		{name: "bad vertex", body: `{"vertices":[[0,0,0],[1,1],[2,0]]}`, reason: "lat, lng"},
		{name: "circle point", body: `{"type":"Point","coordinates":[1,1]}`, reason: "unsupported"},
		{name: "not json", body: `polygon please`, reason: "decode"},
		{name: "empty body", body: ``, reason: "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, b := do(t, http.MethodPost, ts.URL+"/api/select", tt.body, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			res := decodeSelect(t, b)
			assert.False(t, res.Valid)
			assert.Zero(t, res.Count)
			assert.Empty(t, res.Records)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestSelectRemembered(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)
	session := uuid.NewString()

	_, b := do(t, http.MethodGet, ts.URL+"/api/select", "", session)
	res := decodeSelect(t, b)
	assert.False(t, res.Drawn)
	assert.False(t, res.Valid)

	do(t, http.MethodPost, ts.URL+"/api/select", squareVertices, session)

	_, b = do(t, http.MethodGet, ts.URL+"/api/select?severity=Minor", "", session)
	res = decodeSelect(t, b)
	assert.True(t, res.Drawn)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{"3"}, ids(res.Records))

	// 退化选区也会覆盖上一次的选区
	do(t, http.MethodPost, ts.URL+"/api/select", `{"vertices":[[0,0],[1,1]]}`, session)
	_, b = do(t, http.MethodGet, ts.URL+"/api/select", "", session)
	res = decodeSelect(t, b)
	assert.True(t, res.Drawn)
	assert.False(t, res.Valid)
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte) error { return errors.New("down") }
func (failingStore) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func TestSelectStoreFailureDoesNotBreakSelection(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), failingStore{})
	session := uuid.NewString()

	_, b := do(t, http.MethodPost, ts.URL+"/api/select", squareVertices, session)
	assert.Equal(t, 3, decodeSelect(t, b).Count)

	_, b = do(t, http.MethodGet, ts.URL+"/api/select", "", session)
	assert.False(t, decodeSelect(t, b).Drawn)
}

func TestSelectParallelMatchesSequential(t *testing.T) {
	seq := newTestServer(t, defaultFilter(), nil)
	par := newTestServer(t, config.FilterConfig{PreviewLimit: 1000, Workers: 2, ParallelMin: 1}, nil)

	_, a := do(t, http.MethodPost, seq.URL+"/api/select", squareVertices, "")
	_, b := do(t, http.MethodPost, par.URL+"/api/select", squareVertices, "")
	assert.Equal(t, ids(decodeSelect(t, a).Records), ids(decodeSelect(t, b).Records))
}

func TestSelectLimit(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	_, b := do(t, http.MethodPost, ts.URL+"/api/select?limit=1", squareVertices, "")
	res := decodeSelect(t, b)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []string{"1"}, ids(res.Records))
}

func TestRecords(t *testing.T) {
	ts := newTestServer(t, config.FilterConfig{PreviewLimit: 2, Workers: 1}, nil)

	resp, b := do(t, http.MethodGet, ts.URL+"/api/records?year=2019&year=2021", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res recordsResponse
	require.NoError(t, json.Unmarshal(b, &res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"1", "2"}, ids(res.Records))
	require.NotNil(t, res.Center)
	assert.InDelta(t, 2.5, res.Center.Lat, 1e-9)
	assert.InDelta(t, 6.5/3, res.Center.Lon, 1e-9)

	_, b = do(t, http.MethodGet, ts.URL+"/api/records?severity=", "", "")
	res = recordsResponse{}
	require.NoError(t, json.Unmarshal(b, &res))
	assert.Zero(t, res.Total)
	assert.Nil(t, res.Center)
	assert.Empty(t, res.Records)
}

func TestBadQuery(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	for _, url := range []string{"/api/records?year=abc", "/api/records?limit=-1", "/api/records.geojson?year=x"} {
		resp, b := do(t, http.MethodGet, ts.URL+url, "", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, url)
		assert.Contains(t, string(b), "error")
	}
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/select?year=abc", squareVertices, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordsGeoJSON(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	resp, b := do(t, http.MethodGet, ts.URL+"/api/records.geojson?severity=Minor", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("content-type"), "geo+json")

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, []float64{5, 5}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, []float64{1, 0}, fc.Features[1].Geometry.Coordinates, "[lon, lat] order")
}

func TestFiltersAndHealth(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	_, b := do(t, http.MethodGet, ts.URL+"/api/filters", "", "")
	var f filtersResponse
	require.NoError(t, json.Unmarshal(b, &f))
	assert.Equal(t, []int{2019, 2020, 2021}, f.Years)
	assert.Equal(t, []string{"Fatal", "Minor", "Serious"}, f.Severities)

	resp, b := do(t, http.MethodGet, ts.URL+"/api/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","records":4}`, string(b))

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/select", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSelectTooLarge(t *testing.T) {
	ts := newTestServer(t, defaultFilter(), nil)

	big := `{"vertices":[` + strings.Repeat("[0,0],", maxSelectionBytes/6+10) + `[0,0]]}`
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/select", big, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
