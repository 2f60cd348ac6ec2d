package api

// Config holds server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string // CORS and WebSocket origins (empty = allow all)
	RateLimitRequests int      // Requests per minute (0 = disabled)
	RateLimitBurst    int      // Burst size
}

// ServerConfig is the active server configuration.
var ServerConfig Config
