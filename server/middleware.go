package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AstarNetwork/yoki2-subgraph/metrics"
)

type requestInfoKey struct{}

// requestInfo is filled in by handlers and read back by Logger.
type requestInfo struct {
	operationName string
}

func setOperationName(ctx context.Context, name string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.operationName = name
	}
}

// Logger logs one line per request with its status, latency, client ip,
// method and GraphQL operation name.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			info := &requestInfo{}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				operationName := info.operationName
				if operationName == "" {
					operationName = "query"
				}
				logger.Info("request",
					zap.Int("status", ww.Status()),
					zap.Duration("latencyTime", time.Since(startTime)),
					zap.String("ip", r.RemoteAddr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("operationName", operationName),
					zap.String("requestID", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))
		})
	}
}

// Recovery turns a panic into a 500 and logs the request that caused it, with
// the Authorization header masked. A client that went away is only logged.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					var se *os.SyscallError
					if errors.As(ne.Err, &se) {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				httpRequest, _ := httputil.DumpRequest(r, false)
				headers := strings.Split(string(httpRequest), "\r\n")
				for idx, header := range headers {
					current := strings.Split(header, ":")
					if current[0] == "Authorization" {
						headers[idx] = current[0] + ": *"
					}
				}

				if brokenPipe {
					logger.Warn("connection closed", zap.Any("error", err), zap.String("request", strings.Join(headers, "\r\n")))
					return
				}
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("request", strings.Join(headers, "\r\n")),
					zap.Stack("stack"),
				)
				DefaultErrorHandler(w, &HTTPError{Code: http.StatusInternalServerError, Message: "internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics counts requests by route pattern and status. It must wrap Recovery
// for panics to be counted as 500s.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	})
}
