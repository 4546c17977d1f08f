package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/metrics"
)

// LoggingInterceptor logs one line per RPC and feeds the RPC duration histogram.
// Client-side failures (validation, not found, precondition) log at warn,
// internal ones at error.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			code := "ok"
			level, msg := slog.LevelInfo, "RPC ok"
			attrs := []any{
				"procedure", procedure,
				// RequireAdmin runs later in the chain, so only the header is known here.
				"authed", req.Header().Get("Authorization") != "",
				"duration_ms", elapsed.Milliseconds(),
			}

			if err != nil {
				c := connect.CodeOf(err)
				code = c.String()
				msg = "RPC error"
				level = slog.LevelWarn
				if c == connect.CodeInternal || c == connect.CodeUnknown {
					level = slog.LevelError
				}
				attrs = append(attrs, "code", code, "error", err)
			}

			metrics.RPCDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
			slog.Log(ctx, level, msg, attrs...)
			return resp, err
		}
	}
}
