package response

import (
	"fmt"
	"io"
	"mime"
	"path"
	"strconv"

	"github.com/Brownie44l1/rangeserve/internal/byterange"
	"github.com/Brownie44l1/rangeserve/internal/headers"
	"github.com/Brownie44l1/rangeserve/internal/resource"
)

const lastModifiedFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Response is a fully materialized response: serialized once, then the
// connection is closed.
type Response struct {
	StatusCode StatusCode
	Headers    *headers.Headers
	Body       []byte
}

// New returns a response with the given status and body. Content-Length and
// Connection are always set.
func New(code StatusCode, contentType string, body []byte) *Response {
	h := headers.NewHeaders()
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Connection", "close")
	return &Response{StatusCode: code, Headers: h, Body: body}
}

// Error writes a short plain-text body for code.
func Error(code StatusCode, message string) *Response {
	if message == "" {
		message = StatusText(code)
	}
	body := fmt.Sprintf("%d %s\n", code, message)
	return New(code, "text/plain; charset=utf-8", []byte(body))
}

func NotFound() *Response {
	return Error(StatusNotFound, "")
}

// Unsatisfiable is the 416 sent when a Range selects no bytes of a
// resource of the given length.
func Unsatisfiable(length int64) *Response {
	resp := Error(StatusRequestedRangeNotSatisfiable, "")
	resp.Headers.Set("Content-Range", byterange.UnsatisfiedContentRange(length))
	return resp
}

// Build renders the response for a resolved resource. A nil resource yields
// 404, a nil range the full content (200) and a range the inclusive slice
// (206).
func Build(res resource.Resource, rng *byterange.Range) (*Response, error) {
	if res == nil {
		return NotFound(), nil
	}

	size := res.Size()
	code := StatusOK
	var (
		body []byte
		err  error
	)
	if rng == nil {
		body, err = resource.ReadAll(res)
	} else {
		if rng.Start < 0 || rng.Start > rng.End || rng.End >= size {
			return nil, fmt.Errorf("range %s outside resource of %d bytes", rng, size)
		}
		code = StatusPartialContent
		body, err = res.ReadRange(rng.Start, rng.End)
		if err == nil && int64(len(body)) != rng.Len() {
			err = fmt.Errorf("short read: got %d of %d bytes", len(body), rng.Len())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", res.Name(), err)
	}

	resp := New(code, contentType(res.Name()), body)
	resp.Headers.Set("Accept-Ranges", "bytes")
	if rng != nil {
		resp.Headers.Set("Content-Range", rng.ContentRange(size))
	}
	if mod := res.ModTime(); !mod.IsZero() {
		resp.Headers.Set("Last-Modified", mod.UTC().Format(lastModifiedFormat))
	}
	return resp, nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// WriteTo serializes the response through a Writer.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	rw := NewWriter(w)
	if err := rw.WriteStatusLine(r.StatusCode); err != nil {
		return rw.Written(), err
	}
	if err := rw.WriteHeaders(r.Headers); err != nil {
		return rw.Written(), err
	}
	err := rw.WriteBody(r.Body)
	return rw.Written(), err
}
