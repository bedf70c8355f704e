// Package model defines shared types for the relay pipeline.
package model

import (
	"context"
	"io"
	"net/http"
)

// RelayRequest represents an inbound request to be forwarded to the target.
type RelayRequest struct {
	Ctx           context.Context
	Method        string
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64
}

// RelayResponse represents the target's response to be streamed back.
type RelayResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}
