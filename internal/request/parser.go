package request

import (
	"errors"
	"fmt"
)

const (
	maxRequestLineSize = 8192
	maxHeaderLines     = 100
)

var (
	ErrRequestLineTooLarge = errors.New("request line too large")
	ErrTooManyHeaders      = errors.New("too many header lines")
)

// parserState represents the current state of the request parser
type parserState int

const (
	stateRequestLine parserState = iota
	stateHeaders
	stateDone
)

// parser walks a header block: request line first, then header lines until
// the blank line.
type parser struct {
	state parserState
}

func newParser() *parser {
	return &parser{state: stateRequestLine}
}

// parse consumes as much of data as it can and returns the byte count.
func (p *parser) parse(data []byte, req *Request) (int, error) {
	total := 0
	for p.state != stateDone {
		var (
			n   int
			err error
		)
		switch p.state {
		case stateRequestLine:
			n, err = p.parseRequestLine(data[total:], req)
		case stateHeaders:
			n, err = p.parseHeaders(data[total:], req)
		default:
			return total, fmt.Errorf("invalid parser state: %d", p.state)
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			// Need more data
			break
		}
		total += n
	}
	return total, nil
}

func (p *parser) parseRequestLine(data []byte, req *Request) (int, error) {
	line, consumed := nextLine(data)
	if consumed == 0 {
		if len(data) > maxRequestLineSize {
			return 0, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrRequestLineTooLarge)
		}
		return 0, nil
	}
	if len(line) > maxRequestLineSize {
		return 0, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrRequestLineTooLarge)
	}

	method, target, version, err := parseRequestLine(line)
	if err != nil {
		return 0, err
	}

	req.Method = method
	req.Target = target
	req.Version = version
	req.Path, req.Query = splitTarget(target)

	p.state = stateHeaders
	return consumed, nil
}

// parseHeaders parses HTTP headers until empty line
func (p *parser) parseHeaders(data []byte, req *Request) (int, error) {
	consumed, done, err := req.Headers.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	if req.Headers.Count() > maxHeaderLines {
		return 0, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrTooManyHeaders)
	}

	if done {
		p.state = stateDone
	}
	return consumed, nil
}
