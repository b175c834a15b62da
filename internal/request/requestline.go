package request

import (
	"bytes"
	"fmt"
	"strings"
)

var crlf = []byte("\r\n")

// nextLine returns the bytes before the first CRLF and the number of bytes
// consumed including the CRLF. consumed is 0 when no CRLF is present yet.
func nextLine(data []byte) ([]byte, int) {
	idx := bytes.Index(data, crlf)
	if idx == -1 {
		return nil, 0
	}
	return data[:idx], idx + len(crlf)
}

// parseRequestLine parses: METHOD TARGET VERSION
// Tokens are separated by single spaces; anything after the third token is
// ignored.
func parseRequestLine(line []byte) (string, string, string, error) {
	parts := bytes.Split(line, []byte(" "))
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("%w: request line %q has %d tokens", ErrMalformedRequest, line, len(parts))
	}

	method := string(parts[0])
	target := string(parts[1])
	version := string(parts[2])

	if !isToken(method) {
		return "", "", "", fmt.Errorf("%w: invalid method %q", ErrMalformedRequest, method)
	}

	if target == "" {
		return "", "", "", fmt.Errorf("%w: empty request target", ErrMalformedRequest)
	}

	if !strings.HasPrefix(version, "HTTP/") {
		return "", "", "", fmt.Errorf("%w: invalid version %q", ErrMalformedRequest, version)
	}

	return method, target, version, nil
}

// isToken reports whether s is a non-empty run of token characters. Every
// syntactically valid method is accepted here; the server decides which it
// serves.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`()<>@,;:\"/[]?={}`, c) != -1 {
			return false
		}
	}
	return true
}
