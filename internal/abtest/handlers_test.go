package abtest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/abtest"
)

func postAnalyze(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/abtests/analyze", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h := &abtest.Handler{Validate: validator.New()}
	h.Analyze(rec, req)
	return rec
}

func TestAnalyzeHandlerReportsWinner(t *testing.T) {
	t.Parallel()

	rec := postAnalyze(t, map[string]any{
		"variantA": map[string]any{"name": "A", "sent": 100, "converted": 5},
		"variantB": map[string]any{"name": "B", "sent": 100, "converted": 25},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data abtest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "B", resp.Data.Winner)
	require.Equal(t, 95, resp.Data.Confidence)
}

func TestAnalyzeHandlerBelowMinimumSample(t *testing.T) {
	t.Parallel()

	rec := postAnalyze(t, map[string]any{
		"variantA": map[string]any{"name": "A", "sent": 50, "converted": 5},
		"variantB": map[string]any{"name": "B", "sent": 100, "converted": 25},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data abtest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Data.Winner)
	require.Equal(t, 0, resp.Data.Confidence)
}

func TestAnalyzeHandlerRejectsInconsistentCounters(t *testing.T) {
	t.Parallel()

	rec := postAnalyze(t, map[string]any{
		"variantA": map[string]any{"name": "A", "sent": 100, "converted": 200},
		"variantB": map[string]any{"name": "B", "sent": 100, "converted": 25},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "INVALID_VARIANT", resp.Error.Code)
}

func TestAnalyzeHandlerRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/abtests/analyze", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h := &abtest.Handler{Validate: validator.New()}
	h.Analyze(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
