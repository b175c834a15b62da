package headers

import (
	"bytes"
	"fmt"
	"strings"
)

// Headers is a case-insensitive header map that remembers the order in
// which names were first added, so serialized output is stable.
type Headers struct {
	headers map[string][]string
	names   map[string]string // lowercase -> name as first written
	order   []string          // lowercase names, insertion order
}

func NewHeaders() *Headers {
	return &Headers{
		headers: make(map[string][]string),
		names:   make(map[string]string),
	}
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	values := h.headers[strings.ToLower(key)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// GetAll returns all values for a header
func (h *Headers) GetAll(key string) []string {
	return h.headers[strings.ToLower(key)]
}

// Count returns the total number of values, which for a parsed block is the
// number of header lines.
func (h *Headers) Count() int {
	n := 0
	for _, values := range h.headers {
		n += len(values)
	}
	return n
}

// Set replaces all values for a header
func (h *Headers) Set(key, value string) {
	lower := h.track(key)
	h.headers[lower] = []string{value}
}

// Add appends a value to a header
func (h *Headers) Add(key, value string) {
	lower := h.track(key)
	h.headers[lower] = append(h.headers[lower], value)
}

// Each calls fn for every name/value pair in insertion order, using the
// name's original spelling.
func (h *Headers) Each(fn func(name, value string)) {
	for _, lower := range h.order {
		for _, value := range h.headers[lower] {
			fn(h.names[lower], value)
		}
	}
}

func (h *Headers) track(key string) string {
	lower := strings.ToLower(key)
	if _, ok := h.names[lower]; !ok {
		h.names[lower] = key
		h.order = append(h.order, lower)
	}
	return lower
}

// Parse parses headers from raw bytes
func (h *Headers) Parse(data []byte) (int, bool, error) {
	read := 0
	done := false

	for {
		idx := bytes.Index(data[read:], []byte("\r\n"))
		if idx == -1 {
			// Need more data
			break
		}

		if idx == 0 {
			// Empty line = end of headers
			done = true
			read += 2
			break
		}

		line := data[read : read+idx]

		if line[0] == ' ' || line[0] == '\t' {
			return read, false, fmt.Errorf("obsolete line folding not supported")
		}

		name, value, err := parseHeader(line)
		if err != nil {
			return read, done, err
		}

		h.Add(name, value)

		read += idx + 2
	}

	return read, done, nil
}

func parseHeader(line []byte) (string, string, error) {
	colonIdx := bytes.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("malformed header: no colon")
	}

	name := line[:colonIdx]
	value := line[colonIdx+1:]

	if len(name) == 0 {
		return "", "", fmt.Errorf("malformed header: empty name")
	}

	if bytes.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("malformed header: whitespace in name")
	}

	for _, b := range name {
		if !isValidHeaderChar(b) {
			return "", "", fmt.Errorf("invalid character in header name: %c", b)
		}
	}

	value = bytes.TrimSpace(value)

	return string(name), string(value), nil
}

func isValidHeaderChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
