package vision

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/decision"
	"idverify/internal/verification"
)

func modelServer(t *testing.T, answer string) (*httptest.Server, *http.Request) {
	t.Helper()

	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": answer}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func testImage() verification.Image {
	return verification.Image{MediaType: "image/jpeg", Data: []byte("img")}
}

func TestRecognize(t *testing.T) {
	answer := "```json\n{\"document_type\":\"driver_license\",\"name\":\"山田 太郎\",\"birth_date\":\"1990-06-15\",\"confidence\":0.92}\n```"
	srv, captured := modelServer(t, answer)
	client := NewClient(srv.URL, "test-key", "test-model")

	result, err := client.Recognize(t.Context(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "driver_license", result.DocumentType)
	assert.Equal(t, "山田 太郎", result.Fields.Name)
	assert.Equal(t, "1990-06-15", result.Fields.BirthDate)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, "Bearer test-key", captured.Header.Get("Authorization"))
}

func TestCompare(t *testing.T) {
	answer := `{"score":0.87,"result":"PASS","notes":"same person","face_quality":{"brightness":0.8}}`
	srv, _ := modelServer(t, answer)
	client := NewClient(srv.URL, "test-key", "test-model")

	result, err := client.Compare(t.Context(), testImage(), testImage())
	require.NoError(t, err)

	assert.Equal(t, 0.87, result.Score)
	assert.Equal(t, "PASS", result.Bucket)
	require.NotNil(t, result.Quality)
	assert.Equal(t, 0.8, result.Quality.Brightness)
}

func TestCheck(t *testing.T) {
	t.Run("valid verdict", func(t *testing.T) {
		answer := `{"result":"SUSPICIOUS","confidence":0.7,"risk_factors":["edge_artifacts"]}`
		srv, _ := modelServer(t, answer)
		client := NewClient(srv.URL, "test-key", "test-model")

		report, err := client.Check(t.Context(), testImage())
		require.NoError(t, err)
		assert.Equal(t, decision.AuthenticitySuspicious, report.Result)
		assert.Equal(t, []string{"edge_artifacts"}, report.RiskFactors)
	})

	t.Run("unknown verdict rejected", func(t *testing.T) {
		srv, _ := modelServer(t, `{"result":"MAYBE","confidence":0.5}`)
		client := NewClient(srv.URL, "test-key", "test-model")

		_, err := client.Check(t.Context(), testImage())
		assert.Error(t, err)
	})
}

func TestAskErrorPaths(t *testing.T) {
	t.Run("upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, "test-key", "test-model")
		_, err := client.Recognize(t.Context(), testImage())
		assert.ErrorContains(t, err, "status 429")
	})

	t.Run("non-json answer", func(t *testing.T) {
		srv, _ := modelServer(t, "I cannot read this document.")
		client := NewClient(srv.URL, "test-key", "test-model")

		_, err := client.Recognize(t.Context(), testImage())
		assert.Error(t, err)
	})
}
