// Package api serves one schema document session over HTTP and WebSocket.
//
// The REST endpoints expose the session's graph, DDL text, and the
// edit/apply/cancel cycle; the /ws endpoint puts the session into live
// editing and broadcasts the merged graph after every text change. All
// handlers funnel session access through a single mutex, so pipeline
// invocations stay strictly sequential no matter how many clients are
// connected.
package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/FocuswithJustin/SchemaCanvas/core/session"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
)

var (
	// activeSession is the one document session the server owns.
	activeSession *session.Session

	// sessionMu serializes every session touch across handlers and
	// WebSocket pumps.
	sessionMu sync.Mutex
)

// Start starts the API server with the given configuration, serving the
// supplied session. It blocks until the listener fails.
func Start(cfg Config, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("no session to serve")
	}

	ServerConfig = cfg
	activeSession = sess

	// Initialize WebSocket hub
	GlobalHub = NewHub()
	go GlobalHub.Run()

	mux := setupRoutes()

	logging.ServerStartup("schema_api", "http", cfg.Port,
		"websocket_protocol", "ws",
		"dialect", string(sess.Dialect()))

	// Build middleware chain: security headers closest to the mux, then
	// rate limiting, CORS, and request logging outermost.
	var handler http.Handler = securityHeadersMiddleware(mux)

	if cfg.RateLimitRequests > 0 {
		rateLimitConfig := RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
		}
		if rateLimitConfig.BurstSize == 0 {
			rateLimitConfig.BurstSize = 10
		}
		rateLimiter := NewRateLimiter(rateLimitConfig)
		handler = rateLimiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rateLimitConfig.RequestsPerMinute,
			"burst_size", rateLimitConfig.BurstSize)
	}

	handler = corsMiddleware(corsConfig{AllowedOrigins: cfg.AllowedOrigins}, handler)
	if len(cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*)")
	}

	handler = logging.CombinedMiddleware(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	return http.ListenAndServe(addr, handler)
}

// setupRoutes configures all HTTP routes.
func setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/schema", handleSchema)
	mux.HandleFunc("/ddl", handleDDL)
	mux.HandleFunc("/edit", handleEdit)
	mux.HandleFunc("/apply", handleApply)
	mux.HandleFunc("/cancel", handleCancel)
	mux.HandleFunc("/settings", handleSettings)
	mux.HandleFunc("/export", handleExport)
	mux.HandleFunc("/ws", handleWebSocket)

	return mux
}
