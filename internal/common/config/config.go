package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	commonerrors "github.com/darsapp/backend/internal/common/errors"
)

// Config is loaded once at process start and passed by reference to every
// component. Nothing reads the environment after startup.
type Config struct {
	HTTPPort    string
	DatabaseURL string

	LogDir   string
	LogLevel string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GenAIAPIKey     string
	GenAIBaseURL    string
	GenAIModel      string
	GenerateTimeout time.Duration

	VerseAPIBaseURL string
	VerseTimeout    time.Duration

	RequestTimeout time.Duration
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}
	if len(jwtSecret) < 32 {
		return Config{}, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(jwtSecret))
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	genAIKey, err := mustEnv("GENAI_API_KEY")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: databaseURL,

		LogDir:   getEnv("LOG_DIR", "logs"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret:       jwtSecret,
		AccessTokenTTL:  time.Duration(getIntEnv("ACCESS_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getIntEnv("REFRESH_TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,

		GenAIAPIKey:     genAIKey,
		GenAIBaseURL:    getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GenAIModel:      getEnv("GENAI_MODEL", "gemini-pro"),
		GenerateTimeout: getDurationEnv("GENERATE_TIMEOUT", 30*time.Second),

		VerseAPIBaseURL: getEnv("VERSE_API_BASE_URL", "http://api.alquran.cloud/v1"),
		VerseTimeout:    getDurationEnv("VERSE_TIMEOUT", 10*time.Second),

		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 5*time.Second),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
