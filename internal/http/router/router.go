package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"commute-route-service/internal/http/pprofserver"
	"commute-route-service/internal/logx"
)

// ReadyFunc reports whether the process can serve its purpose.
type ReadyFunc func(ctx context.Context) error

// Deps holds what the ops router exposes.
type Deps struct {
	Gatherer prometheus.Gatherer
	Ready    ReadyFunc
	Pprof    pprofserver.Config
	Logger   logx.Logger
}

// New constructs the ops http.Handler: /ping, HEAD /healthcheck, /metrics and /debug/pprof.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Logger != nil {
		r.Use(requestLogger(d.Logger))
	}

	r.Get("/ping", ping)
	r.Method(http.MethodHead, "/healthcheck", healthcheck(d.Ready))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Mount("/debug/pprof", pprofserver.Router(d.Pprof))
	r.NotFound(notFound)

	return r
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}

func healthcheck(ready ReadyFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func requestLogger(logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("ops request",
				logx.String("method", r.Method),
				logx.String("path", r.URL.Path),
				logx.Int("status", ww.Status()),
				logx.Duration("took", time.Since(start)),
				logx.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
