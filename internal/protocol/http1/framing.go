package http1

import (
	"bytes"
	"strconv"
	"strings"
)

var headerTerminator = []byte("\r\n\r\n")

// ContentLengthComplete reports whether buf holds a whole header block plus
// at least as many body bytes as its Content-Length header declares. Without
// a usable Content-Length the request is complete once the header block ends.
//
// This only decides when to stop reading. The parser still takes every
// buffered byte as body.
func ContentLengthComplete(buf []byte) bool {
	end := bytes.Index(buf, headerTerminator)
	if end < 0 {
		return false
	}
	bodyLen := len(buf) - end - len(headerTerminator)

	lines := bytes.Split(buf[:end], []byte("\r\n"))
	for _, line := range lines[1:] {
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok || !strings.EqualFold(strings.TrimSpace(string(name)), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(value)))
		if err != nil || n < 0 {
			return true
		}
		return bodyLen >= n
	}
	return true
}
