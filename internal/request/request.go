package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Brownie44l1/rangeserve/internal/headers"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrIncompleteHeader = errors.New("incomplete header block")
)

// Request is one decoded request head. Bodies are never read: only GET is
// served and the connection closes after the response.
type Request struct {
	Method  string
	Target  string // request-target exactly as received
	Path    string // origin-form path without query
	Query   string
	Version string
	Headers *headers.Headers
}

// Header returns the value of a request header, or "" when absent.
func (r *Request) Header(name string) string {
	val, _ := r.Headers.Get(name)
	return val
}

// Range returns the raw Range header value. Repeated Range lines are
// joined with commas, which the range evaluator treats as a multi-range.
func (r *Request) Range() (string, bool) {
	values := r.Headers.GetAll("range")
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ","), true
}

func (r *Request) IsGet() bool {
	return r.Method == "GET"
}

// Parse decodes a raw header block (request line, header lines and the
// terminating blank line) as returned by the transport.
func Parse(raw []byte) (*Request, error) {
	req := &Request{Headers: headers.NewHeaders()}
	p := newParser()

	if _, err := p.parse(raw, req); err != nil {
		return nil, err
	}
	if p.state != stateDone {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrIncompleteHeader)
	}
	return req, nil
}

// splitTarget reduces a request-target to its path and query. Absolute-form
// targets (http://host/path) keep only the path.
func splitTarget(target string) (string, string) {
	path := target
	if i := strings.Index(path, "://"); i != -1 {
		rest := path[i+3:]
		if slash := strings.IndexByte(rest, '/'); slash != -1 {
			path = rest[slash:]
		} else {
			path = "/"
		}
	}

	query := ""
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		query = path[idx+1:]
		path = path[:idx]
	}
	if idx := strings.IndexByte(path, '#'); idx != -1 {
		path = path[:idx]
	}
	if path == "" {
		path = "/"
	}
	return path, query
}
