package http

import (
	"fmt"
	"net/http"
)

// BearerTransport is a RoundTripper that attaches a fresh engine token to every request.
type BearerTransport struct {
	// Base is the underlying RoundTripper (typically http.DefaultTransport).
	Base http.RoundTripper

	// Auth issues the tokens.
	Auth *TokenAuth
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	token, err := t.Auth.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to issue engine token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(reqCopy)
}
