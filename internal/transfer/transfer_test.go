package transfer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/transport"
)

func testConfig(t *testing.T, payload []byte) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Input = filepath.Join(dir, "client-input.dat")
	cfg.Output = filepath.Join(dir, "server-output.dat")
	cfg.Pacing = transport.Pacing{ChunkSize: 4096, Delay: time.Millisecond}
	cfg.ConnectTimeout = time.Second
	require.NoError(t, os.WriteFile(cfg.Input, payload, 0o644))
	return cfg
}

func listenLoopback(t *testing.T, cfg Config) *Receiver {
	t.Helper()
	ln, err := transport.ListenAddr(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	r := newReceiver(cfg, ln, logger.NullLogger{})
	t.Cleanup(func() { r.Close() })
	return r
}

func runTransfer(t *testing.T, cfg Config) (Result, Result) {
	t.Helper()
	r := listenLoopback(t, cfg)

	type outcome struct {
		res Result
		err error
	}
	received := make(chan outcome, 1)
	go func() {
		res, err := r.Accept(context.Background())
		received <- outcome{res, err}
	}()

	sent, err := Send(context.Background(), cfg, "127.0.0.1", r.Port(), logger.NullLogger{})
	require.NoError(t, err)

	got := <-received
	require.NoError(t, got.err)
	return sent, got.res
}

func TestTransferRoundTrip(t *testing.T) {
	payload := &bytes.Buffer{}
	require.NoError(t, GeneratePayload(payload, 50000, ""))

	for _, chunk := range []int{1000, 4096, 20024, 100000} {
		cfg := testConfig(t, payload.Bytes())
		cfg.Pacing.ChunkSize = chunk

		sent, received := runTransfer(t, cfg)

		out, err := os.ReadFile(cfg.Output)
		require.NoError(t, err)
		assert.Equal(t, payload.Bytes(), out, "chunk size %d", chunk)
		assert.Equal(t, int64(50000), sent.Bytes)
		assert.Equal(t, int64(50000), received.Bytes)
		assert.Equal(t, sent.Digest, received.Digest)
		assert.Equal(t, Digest(payload.Bytes()), received.Digest)
		assert.NotEqual(t, sent.ID, received.ID)
	}
}

func TestTransferSmallReadChunk(t *testing.T) {
	payload := bytes.Repeat([]byte("xyz"), 1000)
	cfg := testConfig(t, payload)
	cfg.ReadChunk = 7

	_, received := runTransfer(t, cfg)

	out, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
	assert.Equal(t, int64(len(payload)), received.Bytes)
}

func TestSendMissingInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input = filepath.Join(t.TempDir(), "nope.dat")

	_, err := Send(context.Background(), cfg, "127.0.0.1", 1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTransferEmptyFile(t *testing.T) {
	cfg := testConfig(t, []byte{})

	sent, received := runTransfer(t, cfg)

	info, err := os.Stat(cfg.Output)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	assert.Zero(t, sent.Bytes)
	assert.Zero(t, received.Bytes)
	assert.Equal(t, Digest(nil), received.Digest)
	assert.Equal(t, sent.Digest, received.Digest)
}

func TestSendConnectError(t *testing.T) {
	cfg := testConfig(t, []byte("data"))
	ln, err := transport.ListenAddr(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Port()
	require.NoError(t, ln.Close())

	_, err = Send(context.Background(), cfg, "127.0.0.1", port, nil)
	var connErr *transport.ConnectError
	assert.True(t, errors.As(err, &connErr))
}

func TestAcceptCancelled(t *testing.T) {
	cfg := testConfig(t, []byte("data"))
	r := listenLoopback(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := r.Accept(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResultThroughput(t *testing.T) {
	assert.Zero(t, Result{Bytes: 100}.Throughput())
	assert.InDelta(t, 200.0, Result{Bytes: 100, Duration: 500 * time.Millisecond}.Throughput(), 0.001)
}
