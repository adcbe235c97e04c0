package intent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func geminiReply(t *testing.T, body string) string {
	t.Helper()
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": body}}}},
		},
	}
	encoded, err := json.Marshal(reply)
	require.NoError(t, err)
	return string(encoded)
}

func TestGeminiInterpret(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(t, `{"summary":"satu telur","items":[{"itemId":"itm-egg","variant":"whole","quantity":1,"matchReason":"telur"}]}`)))
	}))
	defer server.Close()

	delegate := Gemini{APIKey: "test-key", Model: "gemini-2.0-flash", BaseURL: server.URL, Timeout: time.Second}
	result, err := delegate.Interpret(context.Background(), Request{Snapshot: testSnapshot(), Query: "satu tray telur"})
	require.NoError(t, err)
	require.Len(t, result.Intents, 1)
	require.Equal(t, "itm-egg", result.Intents[0].ItemID)
	require.Equal(t, "satu telur", result.Summary)

	require.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	require.NotNil(t, captured.GenerationConfig.ResponseSchema)
	require.Contains(t, captured.Contents[0].Parts[0].Text, "satu tray telur")
	require.Contains(t, captured.Contents[0].Parts[0].Text, "itm-egg")
}

func TestGeminiRehydrationContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Contents[0].Parts[0].Text, "repeat this previous order")
		_, _ = w.Write([]byte(geminiReply(t, `{"summary":"repeat","items":[]}`)))
	}))
	defer server.Close()

	delegate := Gemini{APIKey: "k", BaseURL: server.URL, Timeout: time.Second}
	result, err := delegate.Interpret(context.Background(), Request{
		Snapshot: testSnapshot(),
		History:  []HistoricalLine{{Name: "Telur Ayam", Quantity: 2, Price: 58000}},
	})
	require.NoError(t, err)
	require.Empty(t, result.Intents)
}

func TestGeminiFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrDelegateRateLimited},
		{"quota exhausted", http.StatusTooManyRequests, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`, ErrDelegateQuota},
		{"forbidden is quota", http.StatusForbidden, `{}`, ErrDelegateQuota},
		{"gateway timeout", http.StatusGatewayTimeout, `{}`, ErrDelegateTimeout},
		{"server error is protocol", http.StatusInternalServerError, `{}`, ErrProtocolViolation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			delegate := Gemini{APIKey: "k", BaseURL: server.URL, Timeout: time.Second}
			_, err := delegate.Interpret(context.Background(), Request{Snapshot: testSnapshot(), Query: "telur"})
			require.True(t, errors.Is(err, tc.want), "expected %v, got %v", tc.want, err)
		})
	}
}

func TestGeminiTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	delegate := Gemini{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond}
	_, err := delegate.Interpret(context.Background(), Request{Snapshot: testSnapshot(), Query: "telur"})
	require.True(t, errors.Is(err, ErrDelegateTimeout), "got %v", err)
}

func TestGeminiCallerCancellationIsNotTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	delegate := Gemini{APIKey: "k", BaseURL: server.URL, Timeout: time.Second}
	_, err := delegate.Interpret(ctx, Request{Snapshot: testSnapshot(), Query: "telur"})
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	require.False(t, errors.Is(err, ErrDelegateTimeout), "got %v", err)
}

func TestGeminiFreeTextReplyIsProtocolViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geminiReply(t, "Sure! I'd suggest one tray of eggs.")))
	}))
	defer server.Close()

	delegate := Gemini{APIKey: "k", BaseURL: server.URL, Timeout: time.Second}
	_, err := delegate.Interpret(context.Background(), Request{Snapshot: testSnapshot(), Query: "telur"})
	require.True(t, errors.Is(err, ErrProtocolViolation), "got %v", err)
}
