package pprofserver

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Config holds the basic-auth credentials required for non-loopback callers.
// With empty credentials only loopback callers are served.
type Config struct {
	User string
	Pass string
}

// Router returns the /debug/pprof subtree, guarded by Guard.
func Router(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(Guard(cfg))

	r.HandleFunc("/", pprof.Index)
	r.HandleFunc("/cmdline", pprof.Cmdline)
	r.HandleFunc("/profile", pprof.Profile)
	r.HandleFunc("/symbol", pprof.Symbol)
	r.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"heap", "goroutine", "allocs", "block", "mutex", "threadcreate"} {
		r.Handle("/"+name, pprof.Handler(name))
	}
	return r
}

// Guard lets loopback callers through and requires basic auth from everyone else.
func Guard(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}
			u, p, ok := r.BasicAuth()
			if cfg.User == "" || cfg.Pass == "" || !ok || !secureEq(u, cfg.User) || !secureEq(p, cfg.Pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="ops"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secureEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
