package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quocvuong92/fastgpt-cli/internal/conversation"
)

// QueryExecutor sends one assembled conversation to the question-answering
// service. FastGPTClient is the HTTP implementation; tests substitute fakes.
type QueryExecutor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Ensure FastGPTClient implements QueryExecutor
var _ QueryExecutor = (*FastGPTClient)(nil)

// Request is one query for the executor
type Request struct {
	Payload conversation.Payload
	// Cache allows the server to answer from its response cache
	Cache bool
	// References controls whether references are returned to the caller
	References bool
}

// Reference is a web source cited by an answer
type Reference struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Response is a successful answer
type Response struct {
	Answer     string
	References []Reference
	Tokens     int
	ID         string
	Node       string
	Ms         int64
	// Raw is the response body exactly as received
	Raw json.RawMessage
}

// Error kinds. Match with errors.Is; an *APIError unwraps to one of them.
var (
	ErrAuth              = errors.New("authentication failed")
	ErrNetwork           = errors.New("network error")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a failed query
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v (status %d)", e.Kind, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	default:
		return e.Kind.Error()
	}
}

func (e *APIError) Unwrap() error {
	return e.Kind
}
