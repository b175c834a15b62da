package transport

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/logger"
)

const (
	DefaultChunkSize = 100000
	DefaultDelay     = 100 * time.Millisecond
)

// Pacing throttles outbound writes: at most ChunkSize bytes per write and
// Delay between consecutive writes. The peer has no flow control of its own
// in the lab stack this targets.
type Pacing struct {
	ChunkSize int
	Delay     time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{ChunkSize: DefaultChunkSize, Delay: DefaultDelay}
}

// SendPaced writes all of data to w in paced chunks and returns the number
// of bytes written. Progress is logged once per chunk.
func SendPaced(ctx context.Context, w io.Writer, data []byte, p Pacing, log logger.Logger) (int, error) {
	if p.ChunkSize <= 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if log == nil {
		log = logger.NullLogger{}
	}

	total := len(data)
	sent := 0
	for sent < total {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		n := min(p.ChunkSize, total-sent)
		written, err := w.Write(data[sent : sent+n])
		sent += written
		if err != nil {
			return sent, fmt.Errorf("send chunk at %d: %w", sent-written, err)
		}
		if written < n {
			return sent, fmt.Errorf("send chunk at %d: %w", sent-written, io.ErrShortWrite)
		}

		log.Debug("send",
			logger.F("sent", sent),
			logger.F("remain", total-sent),
			logger.F("total", total),
		)

		if sent < total && p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return sent, ctx.Err()
			case <-timer.C:
			}
		}
	}

	log.Info("send complete", logger.F("bytes", sent))
	return sent, nil
}
