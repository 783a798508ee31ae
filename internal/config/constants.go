package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Outbound call timeouts
const (
	GenerationTimeout = 90 * time.Second
	TranscriptTimeout = 15 * time.Second
)

// Default rate limiting (requests per minute, by plan)
const (
	FreeRateLimitPerMin = 30
	PaidRateLimitPerMin = 120
)
