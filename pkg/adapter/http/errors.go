package http

import (
	"errors"

	"github.com/marmos91/embedhttp/internal/protocol/http1"
)

// ============================================================================
// Request Outcome Errors
// ============================================================================

// These classify how a connection ended. Protocol outcomes are answered with
// an error response; infrastructure faults are logged and the connection is
// closed. Use errors.Is to test for them.
var (
	// ErrMalformedRequest: the parser rejected the input, or the connection
	// deadline expired before the header block ended. Answered with 400.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrRequestTooLarge: more than MaxRequestBytes arrived. Answered with 400.
	ErrRequestTooLarge = errors.New("request too large")

	// ErrUnknownEndpoint: no endpoint is registered at the path. Answered with 404.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrHandlerFault: the handler returned an error or panicked. Answered with 500.
	ErrHandlerFault = errors.New("handler fault")

	// ErrEmptyHandlerResult: the handler returned nothing. Answered with 400.
	ErrEmptyHandlerResult = errors.New("empty handler result")

	// ErrAcceptFault: accepting a connection failed. The accept loop continues.
	ErrAcceptFault = errors.New("accept fault")

	// ErrConnectionFault: a socket error while reading or writing. The
	// connection is closed without a guaranteed response.
	ErrConnectionFault = errors.New("connection fault")

	// ErrNoData: the peer sent nothing before the connection deadline or
	// closed without sending. The connection is closed without a response.
	ErrNoData = errors.New("no request data")

	// ErrShutdownTimeout: connections were still active when the shutdown
	// timeout expired.
	ErrShutdownTimeout = errors.New("shutdown timeout")
)

// StatusFor maps a dispatch outcome to the HTTP status written to the client.
// A nil error is a success.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http1.StatusOK
	case errors.Is(err, ErrMalformedRequest),
		errors.Is(err, ErrRequestTooLarge),
		errors.Is(err, ErrEmptyHandlerResult):
		return http1.StatusBadRequest
	case errors.Is(err, ErrUnknownEndpoint):
		return http1.StatusNotFound
	default:
		return http1.StatusInternalServerError
	}
}

// faultKind returns the metrics label for an infrastructure or handler
// fault, or "" for outcomes that are not faults.
func faultKind(err error) string {
	switch {
	case errors.Is(err, ErrHandlerFault):
		return "handler"
	case errors.Is(err, ErrAcceptFault):
		return "accept"
	case errors.Is(err, ErrConnectionFault):
		return "connection"
	default:
		return ""
	}
}
