package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	// upload pipeline
	WorkerURL        string
	UploadAuthSecret string
	MediaPublicURL   string
	PartSize         int64
	UploadParallel   int
	GatewayTimeout   time.Duration
}

const (
	defaultPartSize       = 100 * 1024 * 1024 // 100 MiB
	defaultUploadParallel = 5
	defaultGatewayTimeout = 5 * time.Minute
)

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),

		WorkerURL:        os.Getenv("WORKER_URL"),
		UploadAuthSecret: os.Getenv("UPLOAD_AUTH_SECRET"),
		MediaPublicURL:   os.Getenv("MEDIA_PUBLIC_URL"),
		PartSize:         envInt64("UPLOAD_PART_SIZE", defaultPartSize),
		UploadParallel:   int(envInt64("UPLOAD_PARALLEL", defaultUploadParallel)),
		GatewayTimeout:   envDuration("UPLOAD_GATEWAY_TIMEOUT", defaultGatewayTimeout),
	}

}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		zap.S().Warnf("invalid %s value %q, using default %v", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		zap.S().Warnf("invalid %s value %q, using default %v", key, v, fallback)
		return fallback
	}
	return d
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
