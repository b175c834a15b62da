package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// BindError reports a listen failure on addr.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ConnectError reports a failed outbound connection to addr.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Listener owns a bound IPv4 TCP endpoint.
type Listener struct {
	ln *net.TCPListener
}

// Listen binds 0.0.0.0:port with SO_REUSEADDR. Port 0 picks a free port.
func Listen(ctx context.Context, port int) (*Listener, error) {
	return ListenAddr(ctx, net.JoinHostPort("0.0.0.0", strconv.Itoa(port)))
}

// ListenAddr binds an explicit IPv4 host:port, mainly so tests can stay on
// loopback.
func ListenAddr(ctx context.Context, addr string) (*Listener, error) {
	lc := net.ListenConfig{Control: setReuseAddr}
	ln, err := lc.Listen(ctx, "tcp4", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return &Listener{ln: ln.(*net.TCPListener)}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Port is the bound port, useful after listening on port 0.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// AcceptOne blocks until exactly one client connects or ctx ends. The
// caller owns the returned connection.
func (l *Listener) AcceptOne(ctx context.Context) (net.Conn, net.Addr, error) {
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		l.ln.SetDeadline(time.Now())
		close(expired)
	})
	defer func() {
		// stop fails once the callback has started; wait for it to set its
		// deadline before clearing it, or the listener stays expired.
		if !stop() {
			<-expired
			l.ln.SetDeadline(time.Time{})
		}
	}()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("accept: %w", err)
	}
	return conn, conn.RemoteAddr(), nil
}

func (l *Listener) Close() error {
	err := l.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Connect opens an outbound TCP connection. A zero timeout leaves only ctx
// in charge.
func Connect(ctx context.Context, host string, port int, timeout time.Duration) (net.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}
	return conn, nil
}
