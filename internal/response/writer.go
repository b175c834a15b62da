package response

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Brownie44l1/rangeserve/internal/headers"
)

// writerState tracks what's been written so far
type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Writer writes HTTP responses to an io.Writer, enforcing
// status line -> headers -> body order.
type Writer struct {
	w             io.Writer
	state         writerState
	contentLength int64 // -1 means unknown
	written       int64
}

// NewWriter creates a new response writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:             w,
		state:         stateStart,
		contentLength: -1,
	}
}

// WriteStatusLine writes the HTTP status line
func (w *Writer) WriteStatusLine(code StatusCode) error {
	if w.state != stateStart {
		return fmt.Errorf("status line already written")
	}

	statusLine := fmt.Sprintf("HTTP/1.1 %d %s\r\n", code, StatusText(code))
	if err := w.write([]byte(statusLine)); err != nil {
		return err
	}

	w.state = stateStatusWritten
	return nil
}

// WriteHeaders writes all headers in insertion order followed by the blank
// line.
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("must write status line before headers")
	}

	if cl, ok := h.Get("content-length"); ok {
		if length, err := strconv.ParseInt(cl, 10, 64); err == nil {
			w.contentLength = length
		}
	}

	var err error
	h.Each(func(name, value string) {
		if err != nil {
			return
		}
		err = w.write([]byte(name + ": " + value + "\r\n"))
	})
	if err != nil {
		return err
	}

	if err := w.write([]byte("\r\n")); err != nil {
		return err
	}

	w.state = stateHeadersWritten
	return nil
}

// WriteBody writes the complete response body. The body must match a
// previously written Content-Length.
func (w *Writer) WriteBody(data []byte) error {
	if w.state != stateHeadersWritten {
		return fmt.Errorf("must write headers before body")
	}

	if w.contentLength >= 0 && int64(len(data)) != w.contentLength {
		return fmt.Errorf("body is %d bytes, Content-Length says %d", len(data), w.contentLength)
	}

	if len(data) > 0 {
		if err := w.write(data); err != nil {
			return err
		}
	}

	w.state = stateBodyWritten
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)
	return err
}

// Written is the number of bytes handed to the underlying writer.
func (w *Writer) Written() int64 {
	return w.written
}
