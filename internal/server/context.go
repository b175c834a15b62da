package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/rangeserve/internal/request"
	"github.com/Brownie44l1/rangeserve/internal/response"
)

var ErrAlreadyReplied = errors.New("response already written")

// Context carries one request through the middleware chain. Request is nil
// when the head could not be read or parsed; ReadErr then says why. Err is
// set by handlers that fail after the request was read.
type Context struct {
	Request    *request.Request
	ReadErr    error
	Err        error
	RemoteAddr net.Addr
	RequestID  string
	Start      time.Time

	ctx      context.Context
	conn     net.Conn
	response *response.Response
	written  int64
	writeErr error
}

func newContext(ctx context.Context, conn net.Conn) *Context {
	return &Context{
		RemoteAddr: conn.RemoteAddr(),
		RequestID:  uuid.NewString(),
		Start:      time.Now(),
		ctx:        ctx,
		conn:       conn,
	}
}

// Ctx is the serve context; it ends when the server is shutting down.
func (c *Context) Ctx() context.Context {
	return c.ctx
}

// Method returns the HTTP method, or "" for an unparsed request.
func (c *Context) Method() string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Method
}

// Path returns the request path, or "" for an unparsed request.
func (c *Context) Path() string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Path
}

// Header gets a request header value
func (c *Context) Header(key string) string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Header(key)
}

// GetClientIP returns the peer IP without the port.
func (c *Context) GetClientIP() string {
	if c.RemoteAddr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(c.RemoteAddr.String())
	if err != nil {
		return c.RemoteAddr.String()
	}
	return host
}

// Reply serializes resp onto the connection. Only the first call writes.
func (c *Context) Reply(resp *response.Response) error {
	if c.response != nil {
		return ErrAlreadyReplied
	}
	c.response = resp
	c.written, c.writeErr = resp.WriteTo(c.conn)
	return c.writeErr
}

// Replied reports whether a response has been written (or attempted).
func (c *Context) Replied() bool {
	return c.response != nil
}

// StatusCode is the status of the written response, 0 before Reply.
func (c *Context) StatusCode() response.StatusCode {
	if c.response == nil {
		return 0
	}
	return c.response.StatusCode
}

// BodyBytes is the length of the response body sent.
func (c *Context) BodyBytes() int64 {
	if c.response == nil {
		return 0
	}
	return int64(len(c.response.Body))
}

// Written is the number of bytes put on the wire, head included.
func (c *Context) Written() int64 {
	return c.written
}

// WriteErr is the error from writing the response, if any.
func (c *Context) WriteErr() error {
	return c.writeErr
}
