package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quocvuong92/fastgpt-cli/internal/config"
	"github.com/quocvuong92/fastgpt-cli/internal/constants"
	"github.com/quocvuong92/fastgpt-cli/internal/logging"
)

// maxErrorBody caps how many characters of a non-JSON error body end up in a message
const maxErrorBody = 500

// fastGPTRequest is the FastGPT API request body
type fastGPTRequest struct {
	Query     string `json:"query"`
	Cache     bool   `json:"cache"`
	WebSearch bool   `json:"web_search"`
}

// fastGPTResponse is the FastGPT API response body
type fastGPTResponse struct {
	Meta struct {
		ID   string `json:"id"`
		Node string `json:"node"`
		Ms   int64  `json:"ms"`
	} `json:"meta"`
	Data *struct {
		Output     string      `json:"output"`
		References []Reference `json:"references"`
		Tokens     int         `json:"tokens"`
	} `json:"data"`
	Error []apiErrorItem `json:"error"`
}

type apiErrorItem struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// FastGPTClient is the Kagi FastGPT API client
type FastGPTClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	logger     *logging.ComponentLogger
}

// NewFastGPTClient creates a client bound to the key and endpoint in cfg.
// When cfg.Verbose is set, every exchange is logged through logger.
func NewFastGPTClient(cfg *config.Config, logger *logging.Logger) *FastGPTClient {
	if logger == nil {
		logger = logging.Nop()
	}

	transport := http.DefaultTransport
	if cfg.Verbose {
		transport = logging.NewLoggingRoundTripper(http.DefaultTransport, logging.NewHTTPLogger(logger))
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = constants.DefaultAPIURL
	}

	return &FastGPTClient{
		httpClient: &http.Client{
			Timeout:   constants.DefaultAPITimeout,
			Transport: transport,
		},
		apiURL: apiURL,
		apiKey: cfg.APIKey,
		logger: logger.With("api"),
	}
}

// Execute sends the flattened payload and decodes the answer.
// There are no retries; the user re-asks on failure.
func (c *FastGPTClient) Execute(ctx context.Context, r *Request) (*Response, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, &APIError{Kind: ErrAuth, Message: "no API key configured"}
	}

	reqBody := fastGPTRequest{
		Query:     r.Payload.Prompt(),
		Cache:     r.Cache,
		WebSearch: true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", constants.AuthScheme+" "+c.apiKey)

	c.logger.Debug("sending query", logging.Fields{
		"files":     len(r.Payload.Files),
		"turns":     len(r.Payload.Turns),
		"cache":     r.Cache,
		"query_len": len(reqBody.Query),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	return decodeResponse(body, r.References)
}

// statusError classifies a non-2xx response
func statusError(status int, body []byte) *APIError {
	kind := ErrServer
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = ErrAuth
	}
	return &APIError{Kind: kind, StatusCode: status, Message: errorMessage(body)}
}

// errorMessage extracts error[].msg from an API error body, falling back to the body text
func errorMessage(body []byte) string {
	var parsed struct {
		Error []apiErrorItem `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		msgs := make([]string, 0, len(parsed.Error))
		for _, e := range parsed.Error {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	text := strings.TrimSpace(string(body))
	if r := []rune(text); len(r) > maxErrorBody {
		text = string(r[:maxErrorBody]) + "..."
	}
	return text
}

func decodeResponse(body []byte, withReferences bool) (*Response, error) {
	var parsed fastGPTResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	if parsed.Data == nil {
		msg := "response has no data"
		if len(parsed.Error) > 0 {
			msg = errorMessage(body)
		}
		return nil, &APIError{Kind: ErrMalformedResponse, Message: msg}
	}

	out := &Response{
		Answer: parsed.Data.Output,
		Tokens: parsed.Data.Tokens,
		ID:     parsed.Meta.ID,
		Node:   parsed.Meta.Node,
		Ms:     parsed.Meta.Ms,
		Raw:    json.RawMessage(body),
	}
	if withReferences {
		out.References = parsed.Data.References
	}
	return out, nil
}
