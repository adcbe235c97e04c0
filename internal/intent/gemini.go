package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Gemini calls a generateContent-style endpoint with a forced JSON response
// schema and validates the reply against the snapshot that was sent.
type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient may be overridden for instrumentation; defaults to http.DefaultClient.
	HTTPClient *http.Client
}

const defaultGeminiHost = "https://generativelanguage.googleapis.com"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType string `json:"responseMimeType"`
		ResponseSchema   any    `json:"responseSchema"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Interpret sends the snapshot and query to the delegate and parses the
// structured reply. The call is bounded by the configured timeout.
func (g Gemini) Interpret(ctx context.Context, req Request) (Result, error) {
	payload, err := buildUserPayload(req)
	if err != nil {
		return Result{}, err
	}

	body := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemInstructions}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: payload}}}},
	}
	body.GenerationConfig.ResponseMimeType = "application/json"
	body.GenerationConfig.ResponseSchema = responseSchema

	encoded, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("encode delegate request: %w", err)
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, g.endpoint(), bytes.NewReader(encoded))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		// Caller cancellation is not a delegate failure.
		if errors.Is(err, context.Canceled) {
			return Result{}, fmt.Errorf("delegate call: %w", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: %v", ErrDelegateTimeout, err)
		}
		return Result{}, fmt.Errorf("delegate call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read delegate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, classifyHTTPFailure(resp.StatusCode, raw)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("%w: empty candidate list", ErrProtocolViolation)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	return parseAndValidate([]byte(text), req.Snapshot)
}

func (g Gemini) endpoint() string {
	host := strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if host == "" {
		host = defaultGeminiHost
	}
	model := strings.TrimSpace(g.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", host, model)
}

// classifyHTTPFailure maps delegate HTTP failures onto the distinct error
// kinds so callers can tell retry-worthy from terminal conditions.
func classifyHTTPFailure(status int, raw []byte) error {
	var parsed geminiResponse
	apiStatus := ""
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil {
		apiStatus = parsed.Error.Status
	}
	switch {
	case status == http.StatusTooManyRequests && apiStatus == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", ErrDelegateQuota, apiStatus)
	case status == http.StatusTooManyRequests:
		return ErrDelegateRateLimited
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrDelegateQuota, status)
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", ErrDelegateTimeout, status)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrProtocolViolation, status)
	}
}
