package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleGETRequest(t *testing.T) {
	data := "GET /index.html HTTP/1.1\r\nHost: 10.0.0.1\r\n\r\n"
	req, err := Parse([]byte(data))

	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/index.html", req.Path)
	assert.Equal(t, "/index.html", req.Target)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.True(t, req.IsGet())

	assert.Equal(t, "10.0.0.1", req.Header("host"))
	assert.Equal(t, "10.0.0.1", req.Header("HOST"))
	assert.Equal(t, "", req.Header("missing"))
}

func TestRangeHeader(t *testing.T) {
	data := "GET /index.html HTTP/1.1\r\n" +
		"Host: 10.0.0.1\r\n" +
		"range: bytes=100-200\r\n" +
		"\r\n"
	req, err := Parse([]byte(data))
	require.NoError(t, err)

	rng, ok := req.Range()
	assert.True(t, ok)
	assert.Equal(t, "bytes=100-200", rng)

	req, err = Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	_, ok = req.Range()
	assert.False(t, ok)
}

func TestQueryIsSplitFromPath(t *testing.T) {
	req, err := Parse([]byte("GET /dir/index.html?v=2&x=y HTTP/1.1\r\n\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "/dir/index.html", req.Path)
	assert.Equal(t, "v=2&x=y", req.Query)
	assert.Equal(t, "/dir/index.html?v=2&x=y", req.Target)
}

func TestAbsoluteFormTarget(t *testing.T) {
	req, err := Parse([]byte("GET http://10.0.0.1/dir/index.html HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "/dir/index.html", req.Path)

	req, err = Parse([]byte("GET http://10.0.0.1 HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "/", req.Path)
}

func TestMalformedRequestLine(t *testing.T) {
	// Missing HTTP version
	_, err := Parse([]byte("GET /path\r\nHost: example.com\r\n\r\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRequest)

	// Empty request line
	_, err = Parse([]byte("\r\nHost: example.com\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequest)

	// Double space leaves an empty target token
	_, err = Parse([]byte("GET  HTTP/1.1\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequest)

	// Not an HTTP version
	_, err = Parse([]byte("GET / FTP/1.0\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestExtraTokensAreIgnored(t *testing.T) {
	req, err := Parse([]byte("GET / HTTP/1.1 trailing\r\n\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1", req.Version)
}

func TestMissingRequestLine(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRequest)
	assert.ErrorIs(t, err, ErrIncompleteHeader)
}

func TestHeaderBlockWithoutTerminator(t *testing.T) {
	_, err := Parse([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteHeader)
}

func TestMalformedHeaderLine(t *testing.T) {
	_, err := Parse([]byte("GET / HTTP/1.1\r\nNoColonHere\r\n\r\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRequest)
	assert.Contains(t, err.Error(), "no colon")
}

func TestOtherMethodsParse(t *testing.T) {
	methods := []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PURGE"}

	for _, method := range methods {
		req, err := Parse([]byte(method + " / HTTP/1.1\r\nHost: example.com\r\n\r\n"))

		require.NoError(t, err, "Method %s should parse", method)
		assert.Equal(t, method, req.Method)
		assert.Equal(t, method == "GET", req.IsGet())
	}
}

func TestInvalidMethodToken(t *testing.T) {
	_, err := Parse([]byte("G(T / HTTP/1.1\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestTooManyHeaders(t *testing.T) {
	data := "GET / HTTP/1.1\r\n"
	for i := 0; i <= maxHeaderLines; i++ {
		data += "X-H" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + ": v\r\n"
	}
	data += "\r\n"

	_, err := Parse([]byte(data))
	assert.ErrorIs(t, err, ErrTooManyHeaders)
}

func TestTooManyRepeatedHeaders(t *testing.T) {
	data := "GET / HTTP/1.1\r\n" + strings.Repeat("X: a\r\n", 5000) + "\r\n"

	_, err := Parse([]byte(data))
	assert.ErrorIs(t, err, ErrTooManyHeaders)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestRepeatedHeadersWithinLimit(t *testing.T) {
	data := "GET / HTTP/1.1\r\n" + strings.Repeat("X: a\r\n", maxHeaderLines) + "\r\n"

	r, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Len(t, r.Headers.GetAll("x"), maxHeaderLines)
}

func TestRangeJoinsRepeatedHeaders(t *testing.T) {
	data := "GET / HTTP/1.1\r\nRange: bytes=0-1\r\nRange: bytes=5-6\r\n\r\n"
	req, err := Parse([]byte(data))
	require.NoError(t, err)

	rng, ok := req.Range()
	assert.True(t, ok)
	assert.Equal(t, "bytes=0-1,bytes=5-6", rng)

	req, err = Parse([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)
	_, ok = req.Range()
	assert.False(t, ok)
}
