package server

import (
	"runtime/debug"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/accesslog"
	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/response"
)

// LoggingMiddleware logs all requests
func LoggingMiddleware(log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) {
			next.ServeHTTP(ctx)

			if ctx.Err != nil {
				log.Error("request failed",
					logger.F("request_id", ctx.RequestID),
					logger.F("path", ctx.Path()),
					logger.F("error", ctx.Err),
				)
			}
			log.Info("request handled",
				logger.F("method", ctx.Method()),
				logger.F("path", ctx.Path()),
				logger.F("range", ctx.Header("Range")),
				logger.F("status", int(ctx.StatusCode())),
				logger.F("bytes", ctx.BodyBytes()),
				logger.F("duration_ms", time.Since(ctx.Start).Milliseconds()),
				logger.F("request_id", ctx.RequestID),
				logger.F("client_ip", ctx.GetClientIP()),
			)
		})
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered",
						logger.F("error", err),
						logger.F("stack", string(debug.Stack())),
						logger.F("request_id", ctx.RequestID),
						logger.F("path", ctx.Path()),
					)

					// Can't send a status line twice.
					if !ctx.Replied() {
						ctx.Reply(response.Error(response.StatusInternalServerError, ""))
					}
				}
			}()

			next.ServeHTTP(ctx)
		})
	}
}

// MetricsMiddleware records request metrics
func MetricsMiddleware(metrics *Metrics) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) {
			next.ServeHTTP(ctx)

			metrics.RecordRequest(ctx.StatusCode(), ctx.BodyBytes(), time.Since(ctx.Start))
		})
	}
}

// AccessLogMiddleware stores one accesslog entry per answered request.
// Storage failures are logged and never affect the response.
func AccessLogMiddleware(store *accesslog.Store, log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) {
			next.ServeHTTP(ctx)

			entry := accesslog.Entry{
				RequestID:  ctx.RequestID,
				RemoteAddr: ctx.GetClientIP(),
				Method:     ctx.Method(),
				Path:       ctx.Path(),
				Range:      ctx.Header("Range"),
				Status:     int(ctx.StatusCode()),
				Bytes:      ctx.BodyBytes(),
				Duration:   time.Since(ctx.Start),
				ServedAt:   ctx.Start,
			}
			if _, err := store.Record(ctx.Ctx(), entry); err != nil {
				log.Warn("access log", logger.F("request_id", ctx.RequestID), logger.F("error", err))
			}
		})
	}
}
