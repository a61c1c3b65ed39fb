// Package api provides the client for the Kagi FastGPT question-answering API.
//
// # Files
//
//   - client.go: QueryExecutor interface, request/response types and error kinds
//   - fastgpt.go: FastGPTClient, the HTTP implementation
//
// # Usage
//
//	client := api.NewFastGPTClient(cfg, logger)
//	resp, err := client.Execute(ctx, &api.Request{
//	    Payload:    state.AssemblePayload(),
//	    Cache:      cfg.Cache,
//	    References: cfg.References,
//	})
//	switch {
//	case errors.Is(err, api.ErrAuth):
//	    // bad or missing key
//	case errors.Is(err, api.ErrNetwork):
//	    // transport failure or timeout
//	}
//
// # Errors
//
// Every failure returned by Execute is an *APIError whose Kind is one of
// ErrAuth, ErrNetwork, ErrServer or ErrMalformedResponse.
//
// # Interface Design
//
// The session depends on QueryExecutor only, so tests inject a fake
// executor instead of talking to the network.
package api
