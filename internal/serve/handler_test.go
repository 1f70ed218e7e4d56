package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/boss/internal/classifier"
	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/sfa"
)

// sign votes for class 1 when the series sums to a positive value.
type sign struct{}

func (sign) ClassifyDistribution(series []float64) ([]float64, error) {
	if len(series) > 4 {
		return nil, errors.New("sign is undefined for long series")
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	if sum > 0 {
		return []float64{0.25, 0.75}, nil
	}
	return []float64{1, 0}, nil
}

func (sign) Members() []boss.Member {
	return []boss.Member{{Params: classifier.Params{WindowSize: 1, WordLength: 8, AlphabetSize: 4, Norm: true}, Accuracy: 0.8}}
}

func (sign) TrainAccuracy() float64 {
	return 0.9
}

func newTestHandler(t *testing.T, c Classifier) http.Handler {
	t.Helper()
	h, err := NewHandler(&Config{RequestTimeout: time.Second, MaxDataItemsLen: 3}, c)
	require.NoError(t, err)
	return h
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		status      int
		labels      []int
	}{
		{
			name: "positive", method: http.MethodPost, contentType: "application/json",
			body:   `{"data": [{"series": [1, 2]}, {"series": [-1, -2]}, {"series": [3]}]}`,
			status: http.StatusOK, labels: []int{1, 0, 1},
		},
		{name: "method", method: http.MethodGet, contentType: "application/json", status: http.StatusMethodNotAllowed},
		{name: "content_type", method: http.MethodPost, contentType: "text/plain", body: `{}`, status: http.StatusUnsupportedMediaType},
		{name: "malformed", method: http.MethodPost, contentType: "application/json", body: `{"data": [`, status: http.StatusBadRequest},
		{name: "unknown_field", method: http.MethodPost, contentType: "application/json", body: `{"rows": []}`, status: http.StatusBadRequest},
		{
			name: "too_many", method: http.MethodPost, contentType: "application/json",
			body:   `{"data": [{"series": [1]}, {"series": [1]}, {"series": [1]}, {"series": [1]}]}`,
			status: http.StatusBadRequest,
		},
		{
			name: "empty_series", method: http.MethodPost, contentType: "application/json",
			body: `{"data": [{"series": [1]}, {"series": []}]}`, status: http.StatusBadRequest,
		},
		{
			name: "classify_error", method: http.MethodPost, contentType: "application/json",
			body: `{"data": [{"series": [1, 2, 3, 4, 5]}]}`, status: http.StatusInternalServerError,
		},
	}
	h := newTestHandler(t, sign{})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, "/classify", strings.NewReader(test.body))
			req.Header.Set("Content-Type", test.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, test.status, rec.Code, rec.Body.String())
			if test.labels == nil {
				return
			}
			var resp response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp.Data, len(test.labels))
			for i, label := range test.labels {
				assert.Equal(t, label, resp.Data[i].Label)
				assert.Len(t, resp.Data[i].Distribution, 2)
			}
		})
	}
}

func TestNewHandler_Nil(t *testing.T) {
	_, err := NewHandler(&Config{}, nil)
	assert.Error(t, err)
}

func TestMembersHandler(t *testing.T) {
	h := NewMembersHandler(sign{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp membersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.9, resp.TrainAccuracy)
	assert.Equal(t, sign{}.Members(), resp.Members)
	assert.Contains(t, rec.Body.String(), `"windowSize":1`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/members", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_Ensemble(t *testing.T) {
	items := make([]dataset.Sequence, 10)
	for i := range items {
		data := make([]float64, 24)
		for j := range data {
			data[j] = float64((j*(i%2+1)+i)%7) - 3
		}
		items[i] = dataset.Sequence{Data: data, Label: i % 2}
	}
	train, err := dataset.New("serve", items, 2)
	require.NoError(t, err)

	e, err := boss.NewEnsemble(boss.WithMaxEnsembleSize(3))
	require.NoError(t, err)
	require.NoError(t, e.Build(context.Background(), train))

	body, err := json.Marshal(map[string]interface{}{
		"data": []map[string]interface{}{{"series": items[0].Data}, {"series": items[1].Data}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	newTestHandler(t, e).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, it := range resp.Data {
		assert.Contains(t, []int{0, 1}, it.Label)
		assert.InDelta(t, 1.0, it.Distribution[0]+it.Distribution[1], 1e-12)
	}
}

// tooShort passes the window check but fails like a member with a longer
// window.
type tooShort struct {
	sign
}

func (tooShort) ClassifyDistribution(series []float64) ([]float64, error) {
	return nil, fmt.Errorf("length %d, window 50: %w", len(series), sfa.ErrSeriesTooShort)
}

func postSeries(t *testing.T, h http.Handler, series ...[]float64) *httptest.ResponseRecorder {
	t.Helper()
	data := make([]map[string]interface{}, len(series))
	for i := range series {
		data[i] = map[string]interface{}{"series": series[i]}
	}
	body, err := json.Marshal(map[string]interface{}{"data": data})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ShortSeries(t *testing.T) {
	items := make([]dataset.Sequence, 10)
	for i := range items {
		data := make([]float64, 24)
		for j := range data {
			data[j] = float64((j*(i%2+1)+i)%7) - 3
		}
		items[i] = dataset.Sequence{Data: data, Label: i % 2}
	}
	train, err := dataset.New("serve", items, 2)
	require.NoError(t, err)

	e, err := boss.NewEnsemble(boss.WithMaxEnsembleSize(3))
	require.NoError(t, err)
	require.NoError(t, e.Build(context.Background(), train))
	require.NotZero(t, e.Len())

	tests := []struct {
		name   string
		series [][]float64
		item   string
	}{
		{name: "three_values", series: [][]float64{{1, 2, 3}}, item: "item 0"},
		{name: "empty", series: [][]float64{{}}, item: "item 0"},
		{name: "second_item", series: [][]float64{items[0].Data, {1, 2, 3}}, item: "item 1"},
	}
	h := newTestHandler(t, e)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postSeries(t, h, test.series...)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), test.item)
			assert.Contains(t, rec.Body.String(), "shorter than the window")
		})
	}
}

func TestHandler_ClassifyErrors(t *testing.T) {
	empty, err := boss.NewEnsemble()
	require.NoError(t, err)

	tests := []struct {
		name       string
		classifier Classifier
		status     int
	}{
		{name: "series_too_short", classifier: tooShort{}, status: http.StatusBadRequest},
		{name: "empty_ensemble", classifier: empty, status: http.StatusServiceUnavailable},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postSeries(t, newTestHandler(t, test.classifier), []float64{1, 2, 3})
			assert.Equal(t, test.status, rec.Code, rec.Body.String())
		})
	}
}
