package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	DefaultReadChunk      = 1024
	DefaultMaxHeaderBytes = 1 << 16
)

var (
	ErrIncompleteRequest = errors.New("peer closed before end of request header")
	ErrHeaderTooLarge    = errors.New("request header too large")
)

var headerTerminator = []byte("\r\n\r\n")

// ReceiveUntilClose copies r into sink in chunkSize reads until the peer
// closes. End of stream is the only terminator.
func ReceiveUntilClose(r io.Reader, sink io.Writer, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultReadChunk
	}
	buf := getBuffer(chunkSize)
	defer putBuffer(buf)

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return total, fmt.Errorf("write sink: %w", werr)
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("receive: %w", err)
		}
	}
}

// ReceiveRequest reads until a blank line ends the header block and returns
// everything up to and including it. Bytes past the terminator are dropped;
// GET requests carry no body.
func ReceiveRequest(r io.Reader, maxHeaderBytes int) ([]byte, error) {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}
	chunk := getBuffer(DefaultReadChunk)
	defer putBuffer(chunk)

	var buf []byte
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			// Only the tail can complete a terminator split across reads.
			from := max(0, len(buf)-len(headerTerminator)+1)
			buf = append(buf, chunk[:n]...)
			if idx := bytes.Index(buf[from:], headerTerminator); idx != -1 {
				end := from + idx + len(headerTerminator)
				if end > maxHeaderBytes {
					return nil, ErrHeaderTooLarge
				}
				return buf[:end], nil
			}
			if len(buf) >= maxHeaderBytes {
				return nil, ErrHeaderTooLarge
			}
		}
		if err == io.EOF {
			return nil, fmt.Errorf("%w after %d bytes", ErrIncompleteRequest, len(buf))
		}
		if err != nil {
			return nil, fmt.Errorf("receive request: %w", err)
		}
	}
}
