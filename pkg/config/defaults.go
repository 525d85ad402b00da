package config

import "time"

// Default configuration values.
const (
	DefaultBackendURL      = "https://reddit-extension-backend-541360204677.us-central1.run.app"
	DefaultBackendTimeout  = 5 * time.Minute
	DefaultMaxResponseSize = "64MB"

	DefaultBiasTopN       = 50
	DefaultFallbackToFull = true

	DefaultTheme  = ThemeLight
	DefaultOutput = "threadlens.html"

	DefaultCacheBackend   = CacheMemory
	DefaultCacheMaxSize   = "128MB"
	DefaultCacheTTL       = time.Hour
	DefaultRedisAddr      = "localhost:6379"
	DefaultCacheKeyPrefix = "threadlens:"

	DefaultServerAddr         = ":8080"
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 10 * time.Minute

	DefaultLogLevel = "info"
)
