package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config agrupa todo lo que el servicio lee de env.
// Los secretos (API keys, DSN) nunca se loguean.
type Config struct {
	Port  string
	DBDSN string

	// Identity gateway (opcional): si BaseURL está vacío, modo dev
	// con header X-Debug-User-ID.
	IdentityBaseURL string
	IdentityAPIKey  string

	// Push gateway (opcional): si BaseURL está vacío o DISABLE_PUSH está
	// seteado, no se mandan pushes.
	PushBaseURL  string
	PushAPIKey   string
	PushDisabled bool

	HTTPTimeout time.Duration
}

func FromEnv() Config {
	return Config{
		Port:            getenv("PORT", "8080"),
		DBDSN:           os.Getenv("DB_DSN"),
		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
		PushBaseURL:     os.Getenv("PUSH_BASE_URL"),
		PushAPIKey:      os.Getenv("PUSH_API_KEY"),
		PushDisabled:    getenvBool("DISABLE_PUSH"),
		HTTPTimeout:     getenvDuration("HTTP_TIMEOUT_SECONDS", 5*time.Second),
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
