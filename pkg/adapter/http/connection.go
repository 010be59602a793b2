package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/embedhttp/internal/logger"
	"github.com/marmos91/embedhttp/internal/protocol/http1"
	"github.com/marmos91/embedhttp/pkg/endpoint"
)

// unmatchedLabel is the metrics endpoint label for requests that never
// reached a registered endpoint.
const unmatchedLabel = "unmatched"

// HTTPConnection serves exactly one request on one accepted connection:
// await data, buffer the burst, parse, dispatch, respond, close.
type HTTPConnection struct {
	server *HTTPAdapter
	conn   net.Conn

	id         string
	acceptedAt time.Time

	// deadline bounds the whole connection, computed at acceptance
	deadline time.Time
}

func NewHTTPConnection(server *HTTPAdapter, conn net.Conn) *HTTPConnection {
	now := time.Now()
	return &HTTPConnection{
		server:     server,
		conn:       conn,
		id:         uuid.NewString(),
		acceptedAt: now,
		deadline:   now.Add(server.config.MaxConnectionDuration),
	}
}

// RemoteAddr returns the peer address as a string.
func (c *HTTPConnection) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}

// Serve runs the connection to completion and closes it.
// It implements panic recovery to prevent a single misbehaving connection
// from crashing the entire server.
func (c *HTTPConnection) Serve() {
	defer func() {
		if r := recover(); r != nil {
			c.server.recordFault(fmt.Errorf("%w: panic in connection %s from %s: %v",
				ErrConnectionFault, c.id, c.RemoteAddr(), r))
		}
		// Already-closed sockets are not an error
		_ = c.conn.Close()
	}()

	raw, err := c.readRequest()
	if len(raw) > 0 {
		c.server.metrics.RecordBytesTransferred("in", int64(len(raw)))
	}

	var (
		response []byte
		label    = unmatchedLabel
	)
	switch {
	case errors.Is(err, ErrNoData):
		logger.Debug("HTTP connection %s from %s closed without data", c.id, c.RemoteAddr())
		return
	case errors.Is(err, ErrConnectionFault):
		c.server.recordFault(fmt.Errorf("connection %s from %s: %w", c.id, c.RemoteAddr(), err))
		return
	case errors.Is(err, ErrRequestTooLarge):
		logger.Debug("HTTP connection %s from %s: %v", c.id, c.RemoteAddr(), err)
		response = http1.BadRequest()
	default:
		var payload []byte
		payload, label, err = c.handle(raw)
		response = http1.Encode(StatusFor(err), payload)
	}

	status := StatusFor(err)
	if err := c.writeResponse(response); err != nil {
		c.server.recordFault(fmt.Errorf("connection %s from %s: %w", c.id, c.RemoteAddr(), err))
		return
	}

	c.server.metrics.RecordBytesTransferred("out", int64(len(response)))
	c.server.metrics.RecordRequest(label, status, time.Since(c.acceptedAt))

	if c.server.config.LogTraffic {
		logger.Info("HTTP %s %s request=%q response=%q", c.id, c.RemoteAddr(), raw, response)
	}
}

// readRequest buffers one request burst.
//
// Go has no "bytes available" query, so each sample is a read bounded by a
// PollInterval read deadline. A sample that times out with data buffered
// means the peer has paused and the request is complete. A sample that times
// out with nothing buffered keeps waiting until the connection deadline.
// Peer half-close also ends the burst.
//
// When the connection deadline expires mid-burst, whatever arrived is
// returned for evaluation.
func (c *HTTPConnection) readRequest() ([]byte, error) {
	cfg := c.server.config
	chunk := http1.GetReadBuffer()
	defer http1.PutReadBuffer(chunk)

	var buf []byte
	for {
		now := time.Now()
		if !now.Before(c.deadline) {
			if len(buf) == 0 {
				return nil, ErrNoData
			}
			logger.Debug("HTTP connection %s deadline reached while buffering (%d bytes)", c.id, len(buf))
			return buf, nil
		}

		readDeadline := now.Add(cfg.PollInterval)
		if readDeadline.After(c.deadline) {
			readDeadline = c.deadline
		}
		if err := c.conn.SetReadDeadline(readDeadline); err != nil {
			return buf, fmt.Errorf("%w: set read deadline: %w", ErrConnectionFault, err)
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			if len(buf)+n > cfg.MaxRequestBytes {
				return buf, fmt.Errorf("%w: more than %d bytes", ErrRequestTooLarge, cfg.MaxRequestBytes)
			}
			buf = append(buf, chunk[:n]...)
			if cfg.Framing == FramingContentLength && http1.ContentLengthComplete(buf) {
				return buf, nil
			}
		}

		switch {
		case err == nil:
			continue
		case isTimeout(err):
			if len(buf) > 0 && n == 0 && cfg.Framing == FramingBurst {
				return buf, nil
			}
		case errors.Is(err, io.EOF):
			if len(buf) == 0 {
				return nil, ErrNoData
			}
			return buf, nil
		default:
			return buf, fmt.Errorf("%w: read: %w", ErrConnectionFault, err)
		}
	}
}

// handle parses raw and dispatches the request. It returns the success
// payload, the endpoint label for metrics and the outcome error.
func (c *HTTPConnection) handle(raw []byte) ([]byte, string, error) {
	req, err := c.parse(raw)
	if err != nil {
		logger.Debug("HTTP connection %s: %v", c.id, err)
		return nil, unmatchedLabel, err
	}

	logger.Debug("HTTP %s %s %s from %s (%d body bytes)",
		req.Method, req.Path, req.Version, c.RemoteAddr(), len(req.Body))

	d, ok := c.server.table.Lookup(req.Path)
	if !ok {
		return nil, unmatchedLabel, fmt.Errorf("%w: %s", ErrUnknownEndpoint, req.Path)
	}

	payload, err := c.dispatch(d, req)
	if err != nil && errors.Is(err, ErrHandlerFault) {
		c.server.recordFault(fmt.Errorf("connection %s %s: %w", c.id, d.Path, err))
	}
	return payload, d.Path, err
}

// parse feeds raw to a fresh parser a chunk at a time, stopping early if the
// connection deadline passes, and evaluates the state reached.
func (c *HTTPConnection) parse(raw []byte) (*http1.Request, error) {
	p := http1.NewParser()
	for len(raw) > 0 {
		if time.Now().After(c.deadline) {
			logger.Debug("HTTP connection %s deadline reached while parsing in state %s", c.id, p.State())
			break
		}
		n := min(len(raw), http1.ReadChunkSize)
		if st := p.Feed(raw[:n]); st == http1.StateInvalid {
			break
		}
		raw = raw[n:]
	}

	req, err := p.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return req, nil
}

// dispatch invokes the endpoint synchronously. Handler errors and panics
// become ErrHandlerFault; an empty result becomes ErrEmptyHandlerResult.
func (c *HTTPConnection) dispatch(d endpoint.Descriptor, req *http1.Request) (payload []byte, err error) {
	call := &endpoint.Call{
		Method:  req.Method,
		Version: req.Version,
		Headers: req.Headers,
		Body:    req.Body,
	}
	if d.Meta {
		call.Endpoints = c.server.table.Snapshot()
	}

	ctx, cancel := context.WithDeadline(context.Background(), c.deadline)
	defer cancel()

	c.server.metrics.RecordRequestStart(d.Path)
	defer c.server.metrics.RecordRequestEnd(d.Path)

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("%w: panic: %v", ErrHandlerFault, r)
		}
	}()

	payload, err = d.Invoke(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandlerFault, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyHandlerResult, d.Path)
	}
	return payload, nil
}

// writeResponse sends the response in a single write.
func (c *HTTPConnection) writeResponse(response []byte) error {
	if timeout := c.server.config.WriteTimeout; timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("%w: set write deadline: %w", ErrConnectionFault, err)
		}
	}
	if _, err := c.conn.Write(response); err != nil {
		return fmt.Errorf("%w: write: %w", ErrConnectionFault, err)
	}
	return nil
}
