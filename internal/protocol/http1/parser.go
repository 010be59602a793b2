package http1

import (
	"errors"
	"strings"
)

// ErrMalformed is returned by Finish when the input did not form a request.
var ErrMalformed = errors.New("malformed request")

// State is the position of the parser in the request grammar.
type State int

const (
	StateMethod State = iota
	StatePath
	StateVersion
	StateHeaderName
	StateHeaderValue
	StateBody
	StateInvalid
	StateDone
)

func (s State) String() string {
	switch s {
	case StateMethod:
		return "Method"
	case StatePath:
		return "Path"
	case StateVersion:
		return "Version"
	case StateHeaderName:
		return "HeaderName"
	case StateHeaderValue:
		return "HeaderValue"
	case StateBody:
		return "Body"
	case StateInvalid:
		return "Invalid"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Parser is a byte-at-a-time request state machine.
//
// Input may be fed in arbitrary slices; a CR at the end of one slice pairs
// with an LF at the start of the next. Outside the body a CR that is not
// followed by LF is dropped, and an LF without a preceding CR is an ordinary
// byte. The body is never truncated to Content-Length: it is whatever remains
// of the input when Finish is called.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	state State
	acc   []byte

	// pendingCR is set when the last byte was a CR outside the body.
	pendingCR bool

	// pendingColon is set when the header name accumulator just saw ':'.
	pendingColon bool

	header string
	req    Request
}

func NewParser() *Parser {
	return &Parser{
		req: Request{Headers: make(map[string]string)},
	}
}

// State returns the current state.
func (p *Parser) State() State {
	return p.state
}

// Feed advances the machine over data and returns the resulting state.
// Feeding stops early once the parser becomes Invalid.
func (p *Parser) Feed(data []byte) State {
	for i, b := range data {
		switch p.state {
		case StateBody:
			p.req.Body = append(p.req.Body, data[i:]...)
			return p.state
		case StateInvalid, StateDone:
			return p.state
		}
		p.step(b)
	}
	return p.state
}

// Finish ends the input. A parser in Body moves to Done and the request is
// returned; any other state means the request was malformed.
func (p *Parser) Finish() (*Request, error) {
	switch p.state {
	case StateBody:
		p.state = StateDone
		fallthrough
	case StateDone:
		req := p.req
		return &req, nil
	default:
		p.state = StateInvalid
		return nil, ErrMalformed
	}
}

func (p *Parser) step(b byte) {
	if p.pendingColon && b != ' ' {
		p.pendingColon = false
		p.acc = append(p.acc, ':')
	}

	if p.pendingCR {
		p.pendingCR = false
		if b == '\n' {
			p.endLine()
			return
		}
	}
	if b == '\r' {
		p.pendingCR = true
		return
	}

	switch p.state {
	case StateMethod:
		if b != ' ' {
			p.acc = append(p.acc, b)
			return
		}
		method := strings.ToUpper(string(p.acc))
		if method != MethodGet && method != MethodPost {
			p.state = StateInvalid
			return
		}
		p.req.Method = method
		p.acc = p.acc[:0]
		p.state = StatePath

	case StatePath:
		if b != ' ' {
			p.acc = append(p.acc, b)
			return
		}
		p.req.Path = strings.ToLower(string(p.acc))
		p.acc = p.acc[:0]
		p.state = StateVersion

	case StateHeaderName:
		if p.pendingColon {
			// ": " separates name from value.
			p.pendingColon = false
			p.header = string(p.acc)
			p.req.Headers[p.header] = ""
			p.acc = p.acc[:0]
			p.state = StateHeaderValue
			return
		}
		if b == ':' {
			p.pendingColon = true
			return
		}
		p.acc = append(p.acc, b)

	case StateVersion, StateHeaderValue:
		p.acc = append(p.acc, b)
	}
}

// endLine handles a CR LF pair.
func (p *Parser) endLine() {
	switch p.state {
	case StateMethod, StatePath:
		// Request line ended before method, path and version were all present.
		p.state = StateInvalid

	case StateVersion:
		p.req.Version = strings.ToUpper(string(p.acc))
		p.acc = p.acc[:0]
		p.state = StateHeaderName

	case StateHeaderName:
		if len(p.acc) == 0 {
			p.req.Body = []byte{}
			p.state = StateBody
			return
		}
		// A header line without ": " is kept with an empty value.
		p.req.Headers[string(p.acc)] = ""
		p.acc = p.acc[:0]

	case StateHeaderValue:
		p.req.Headers[p.header] = string(p.acc)
		p.acc = p.acc[:0]
		p.state = StateHeaderName
	}
}
