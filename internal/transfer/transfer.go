// Package transfer moves one file across a TCP connection: the receiver
// accepts a single peer and writes everything it sends until close, the
// sender streams its input in paced chunks.
package transfer

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/transport"
)

// Config holds the file names and pacing for both ends.
type Config struct {
	Input          string // read by the sender
	Output         string // written by the receiver
	Pacing         transport.Pacing
	ReadChunk      int
	ConnectTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Input:          "client-input.dat",
		Output:         "server-output.dat",
		Pacing:         transport.DefaultPacing(),
		ReadChunk:      transport.DefaultReadChunk,
		ConnectTimeout: 10 * time.Second,
	}
}

// Result describes one finished transfer. Digest is the hex BLAKE2b-256 of
// the bytes moved, so both ends can be compared from their logs.
type Result struct {
	ID       string
	Bytes    int64
	Digest   string
	Duration time.Duration
}

// Throughput in bytes per second.
func (r Result) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Duration.Seconds()
}

// Receiver is a bound endpoint waiting for one sender.
type Receiver struct {
	cfg Config
	ln  *transport.Listener
	log logger.Logger
}

// Listen binds port for a later Accept.
func Listen(ctx context.Context, cfg Config, port int, log logger.Logger) (*Receiver, error) {
	ln, err := transport.Listen(ctx, port)
	if err != nil {
		return nil, err
	}
	return newReceiver(cfg, ln, log), nil
}

func newReceiver(cfg Config, ln *transport.Listener, log logger.Logger) *Receiver {
	if log == nil {
		log = logger.NullLogger{}
	}
	return &Receiver{cfg: cfg, ln: ln, log: log}
}

func (r *Receiver) Port() int {
	return r.ln.Port()
}

func (r *Receiver) Close() error {
	return r.ln.Close()
}

// Accept waits for one sender and writes its stream to cfg.Output until the
// sender closes.
func (r *Receiver) Accept(ctx context.Context) (Result, error) {
	res := Result{ID: uuid.NewString()}
	log := r.log

	conn, addr, err := r.ln.AcceptOne(ctx)
	if err != nil {
		return res, err
	}
	defer conn.Close()
	log.Debug("accept a connection", logger.F("transfer_id", res.ID), logger.F("remote", addr.String()))

	f, err := os.Create(r.cfg.Output)
	if err != nil {
		return res, fmt.Errorf("open output: %w", err)
	}

	start := time.Now()
	h := newDigest()
	res.Bytes, err = transport.ReceiveUntilClose(conn, io.MultiWriter(f, h), r.cfg.ReadChunk)
	res.Duration = time.Since(start)
	res.Digest = hex.EncodeToString(h.Sum(nil))

	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return res, err
	}

	log.Info("peer closed",
		logger.F("transfer_id", res.ID),
		logger.F("bytes", res.Bytes),
		logger.F("elapsed", res.Duration.String()),
		logger.F("digest", res.Digest),
	)
	return res, nil
}

// Receive listens on port, accepts exactly one sender and returns once it
// has closed.
func Receive(ctx context.Context, cfg Config, port int, log logger.Logger) (Result, error) {
	r, err := Listen(ctx, cfg, port, log)
	if err != nil {
		return Result{}, err
	}
	defer r.Close()
	return r.Accept(ctx)
}

// Send connects to host:port, writes cfg.Input in paced chunks and closes.
// An empty input still connects and closes, leaving the receiver with an
// empty output file.
func Send(ctx context.Context, cfg Config, host string, port int, log logger.Logger) (Result, error) {
	if log == nil {
		log = logger.NullLogger{}
	}
	res := Result{ID: uuid.NewString()}

	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return res, fmt.Errorf("open input: %w", err)
	}

	conn, err := transport.Connect(ctx, host, port, cfg.ConnectTimeout)
	if err != nil {
		return res, err
	}
	log.Debug("connect success", logger.F("transfer_id", res.ID), logger.F("remote", conn.RemoteAddr().String()))

	start := time.Now()
	n, err := transport.SendPaced(ctx, conn, data, cfg.Pacing, log)
	res.Bytes = int64(n)
	if cerr := conn.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close connection: %w", cerr)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	res.Digest = Digest(data)

	log.Info("the file has been sent completely",
		logger.F("transfer_id", res.ID),
		logger.F("bytes", res.Bytes),
		logger.F("elapsed", res.Duration.String()),
		logger.F("digest", res.Digest),
	)
	return res, nil
}

func newDigest() hash.Hash {
	// Only fails for oversized keys.
	h, _ := blake2b.New256(nil)
	return h
}

// Digest returns the hex BLAKE2b-256 of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
