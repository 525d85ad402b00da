package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   any
		status int
		key    string
	}{
		{name: "encodable", data: map[string]float64{"avg": 0.25}, status: http.StatusOK, key: "avg"},
		{name: "non_finite", data: map[string]float64{"avg": math.Inf(1)}, status: http.StatusInternalServerError, key: "error"},
		{name: "nan", data: struct{ V float64 }{math.NaN()}, status: http.StatusInternalServerError, key: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(Options{Logger: slog.New(slog.DiscardHandler)})
			rec := httptest.NewRecorder()

			s.writeJSON(context.Background(), rec, http.StatusOK, tt.data)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any

			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, tt.key)
		})
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, statusFor(nil))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
}
