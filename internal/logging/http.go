package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const redacted = "[REDACTED]"

// DefaultQueryPreview is how many characters of a query are logged.
// Queries carry whole attached files, so they are never logged in full.
const DefaultQueryPreview = 200

// HTTPLogger logs FastGPT request/response exchanges at debug level
type HTTPLogger struct {
	logger       *ComponentLogger
	queryPreview int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:       logger.With("http"),
		queryPreview: DefaultQueryPreview,
	}
}

// SetQueryPreview sets how many characters of the query field are logged
func (h *HTTPLogger) SetQueryPreview(n int) {
	h.queryPreview = n
}

// LogRequest logs an outgoing request with credentials removed
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method":  req.Method,
		"url":     req.URL.String(),
		"headers": redactHeaders(req.Header),
	}
	if len(body) > 0 {
		fields["body_size"] = len(body)
		fields["body"] = h.summarizeRequestBody(body)
	}
	h.logger.Debug("request", fields)
}

// LogResponse logs the status and, for FastGPT bodies, the meta block
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if len(body) > 0 {
		fields["body_size"] = len(body)
		for k, v := range summarizeResponseBody(body) {
			fields[k] = v
		}
	}
	h.logger.Debug("response", fields)
}

// LogError logs a transport failure
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	h.logger.Error("transport error", err, Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
}

// summarizeRequestBody returns the decoded JSON body with secrets redacted
// and the query shortened. Non-JSON bodies are returned truncated.
func (h *HTTPLogger) summarizeRequestBody(body []byte) interface{} {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return truncate(string(body), h.queryPreview)
	}
	out := redactSensitiveFields(parsed).(map[string]interface{})
	if q, ok := out["query"].(string); ok {
		out["query"] = truncate(q, h.queryPreview)
	}
	return out
}

// summarizeResponseBody extracts the meta and token count of a FastGPT body,
// or the error messages of an API error body
func summarizeResponseBody(body []byte) Fields {
	var parsed struct {
		Meta *struct {
			ID   string `json:"id"`
			Node string `json:"node"`
			Ms   int64  `json:"ms"`
		} `json:"meta"`
		Data *struct {
			Tokens     int               `json:"tokens"`
			References []json.RawMessage `json:"references"`
		} `json:"data"`
		Error []struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Fields{"body": truncate(string(body), DefaultQueryPreview)}
	}

	fields := Fields{}
	if parsed.Meta != nil {
		fields["id"] = parsed.Meta.ID
		fields["node"] = parsed.Meta.Node
		fields["api_ms"] = parsed.Meta.Ms
	}
	if parsed.Data != nil {
		fields["tokens"] = parsed.Data.Tokens
		fields["references"] = len(parsed.Data.References)
	}
	if len(parsed.Error) > 0 {
		msgs := make([]string, 0, len(parsed.Error))
		for _, e := range parsed.Error {
			msgs = append(msgs, e.Msg)
		}
		fields["api_error"] = strings.Join(msgs, "; ")
	}
	return fields
}

// RoundTripper wraps an http.RoundTripper and logs each exchange
type RoundTripper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	now     func() time.Time
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger) *RoundTripper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripper{wrapped: wrapped, logger: logger, now: time.Now}
}

// RoundTrip implements http.RoundTripper
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := rt.now()

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(respBody))
	if readErr != nil {
		rt.logger.LogError(readErr, req)
	}
	rt.logger.LogResponse(resp, respBody, rt.now().Sub(start))

	return resp, nil
}

func redactHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		switch {
		case isSensitiveHeader(k):
			headers[k] = redacted
		case len(v) > 0:
			headers[k] = v[0]
		}
	}
	return headers
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "cookie", "set-cookie":
		return true
	}
	return false
}

// truncate shortens s to max runes
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "...[truncated]"
}

var sensitiveKeys = []string{"api_key", "apikey", "password", "secret", "authorization"}

// redactSensitiveFields walks decoded JSON and replaces secret values
func redactSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			if isSensitiveKey(k) {
				result[k] = redacted
				continue
			}
			result[k] = redactSensitiveFields(val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
