package http1

import "fmt"

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusInternalServerError = 500
)

// StatusText returns the reason phrase for the statuses this package emits.
func StatusText(status int) string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

// Error responses are fixed; build them once.
var (
	badRequestResponse          = errorResponse(StatusBadRequest)
	notFoundResponse            = errorResponse(StatusNotFound)
	internalServerErrorResponse = errorResponse(StatusInternalServerError)
)

func errorResponse(status int) []byte {
	body := fmt.Sprintf("Error %d: %s", status, StatusText(status))
	return []byte(fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Length: %d\r\nContent-Type: text/plain\r\n\r\n%s",
		status, StatusText(status), len(body), body))
}

// OK frames a success response. No headers are sent; the peer reads the
// payload until the connection closes.
func OK(payload []byte) []byte {
	const head = "HTTP/1.1 200 OK\r\n\r\n"
	out := make([]byte, 0, len(head)+len(payload))
	out = append(out, head...)
	return append(out, payload...)
}

func BadRequest() []byte {
	return clone(badRequestResponse)
}

func NotFound() []byte {
	return clone(notFoundResponse)
}

func InternalServerError() []byte {
	return clone(internalServerErrorResponse)
}

// Encode returns the wire bytes for status. The payload is only used for
// StatusOK. Unknown statuses are encoded as 500.
func Encode(status int, payload []byte) []byte {
	switch status {
	case StatusOK:
		return OK(payload)
	case StatusBadRequest:
		return BadRequest()
	case StatusNotFound:
		return NotFound()
	default:
		return InternalServerError()
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
