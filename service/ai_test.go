package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuslib/backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIClient(url string) *AIClient {
	return NewAIClient(url, "test-key", "google/gemini-2.5-flash", logger.NewNop())
}

func TestAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "google/gemini-2.5-flash", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Try \"Hyperion\" by Dan Simmons."}}]}`))
	}))
	defer srv.Close()

	got, err := newTestAIClient(srv.URL).Complete(context.Background(), "be helpful", "recommend sci-fi")
	require.NoError(t, err)
	assert.Equal(t, `Try "Hyperion" by Dan Simmons.`, got)
}

func TestAIClientFallbackOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	got, err := newTestAIClient(srv.URL).Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, fallbackResponse, got)
}

func TestAIClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestAIClient(srv.URL).Complete(context.Background(), "s", "u")
	assert.EqualError(t, err, "failed to get AI recommendation")
}

func TestAIClientMissingKey(t *testing.T) {
	c := NewAIClient("http://unused", "", "m", logger.NewNop())
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")
}
