package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/request"
	"github.com/Brownie44l1/rangeserve/internal/transport"
)

// serveConn handles the single request on a connection, then closes it.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if s.config.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}

	c := newContext(ctx, conn)
	raw, err := transport.ReceiveRequest(conn, s.config.MaxHeaderBytes)
	if err != nil {
		c.ReadErr = err
	} else if c.Request, err = request.Parse(raw); err != nil {
		c.ReadErr = err
	}
	if c.ReadErr != nil {
		s.Logger.Warn("bad request",
			logger.F("request_id", c.RequestID),
			logger.F("remote", c.GetClientIP()),
			logger.F("error", c.ReadErr),
		)
	}

	if s.config.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}

	s.chain().ServeHTTP(c)

	if err := c.WriteErr(); err != nil {
		s.Logger.Error("write response",
			logger.F("request_id", c.RequestID),
			logger.F("written", c.Written()),
			logger.F("error", err),
		)
	}
}

// isTimeout reports whether err came from an expired deadline.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
