// Package byterange evaluates a single-range "Range: bytes=..." header
// against a resource length.
package byterange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const unitPrefix = "bytes="

var (
	// ErrMalformed means the header could not be understood at all. Callers
	// ignore such a header and serve the full resource.
	ErrMalformed = errors.New("malformed range header")
	// ErrUnsatisfiable means the header is well formed but selects no bytes
	// of the resource.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Range is an end-inclusive byte interval. Ranges returned by Evaluate
// always satisfy 0 <= Start <= End < length.
type Range struct {
	Start int64
	End   int64
}

// Len is the number of bytes the range covers.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value for a resource of the
// given total length.
func (r Range) ContentRange(length int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, length)
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// UnsatisfiedContentRange is the Content-Range value sent with a 416.
func UnsatisfiedContentRange(length int64) string {
	return fmt.Sprintf("bytes */%d", length)
}

// Evaluate turns a Range header value into a concrete interval.
//
//	""             -> nil, nil (serve everything)
//	"bytes=A-B"    -> [A, B]
//	"bytes=A-"     -> [A, length-1]
//	"bytes=-N"     -> the last N bytes
//
// Multiple ranges, other units and non-numeric bounds yield ErrMalformed.
func Evaluate(header string, length int64) (*Range, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrUnsatisfiable, length)
	}

	if len(header) < len(unitPrefix) || !strings.EqualFold(header[:len(unitPrefix)], unitPrefix) {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, header)
	}
	set := strings.TrimSpace(header[len(unitPrefix):])
	if strings.Contains(set, ",") {
		return nil, fmt.Errorf("%w: multiple ranges in %q", ErrMalformed, header)
	}

	startStr, endStr, ok := strings.Cut(set, "-")
	if !ok {
		return nil, fmt.Errorf("%w: missing '-' in %q", ErrMalformed, header)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		return suffix(endStr, length, header)
	}

	start, err := parseBound(startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrMalformed, startStr)
	}

	end := length - 1
	if endStr != "" {
		if end, err = parseBound(endStr); err != nil {
			return nil, fmt.Errorf("%w: end %q", ErrMalformed, endStr)
		}
		if start > end {
			return nil, fmt.Errorf("%w: start %d after end %d", ErrUnsatisfiable, start, end)
		}
		if end >= length {
			return nil, fmt.Errorf("%w: end %d beyond length %d", ErrUnsatisfiable, end, length)
		}
	}

	if start >= length {
		return nil, fmt.Errorf("%w: start %d beyond length %d", ErrUnsatisfiable, start, length)
	}

	return &Range{Start: start, End: end}, nil
}

func suffix(nStr string, length int64, header string) (*Range, error) {
	if nStr == "" {
		return nil, fmt.Errorf("%w: empty range in %q", ErrMalformed, header)
	}
	n, err := parseBound(nStr)
	if err != nil {
		return nil, fmt.Errorf("%w: suffix %q", ErrMalformed, nStr)
	}
	if n == 0 || length == 0 {
		return nil, fmt.Errorf("%w: suffix of %d bytes on length %d", ErrUnsatisfiable, n, length)
	}
	if n > length {
		n = length
	}
	return &Range{Start: length - n, End: length - 1}, nil
}

func parseBound(s string) (int64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
