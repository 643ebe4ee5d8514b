package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	AirtableAPIKey string
	AirtableBaseID string
	AirtableAPIURL string

	Port string
	Env  string

	StoreTimeout time.Duration

	SessionBackend string
	SessionTTL     time.Duration
	DBSource       string

	CSRFKey string
}

// Production reports whether cookies should be marked Secure.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads the process environment after merging in the local secrets
// file. Variables already present in the environment are not overridden.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to read %s: %w", envFile, err)
	}

	apiKey := os.Getenv("AIRTABLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("AIRTABLE_API_KEY environment variable is required")
	}

	baseID := os.Getenv("AIRTABLE_BASE_ID")
	if baseID == "" {
		return nil, fmt.Errorf("AIRTABLE_BASE_ID environment variable is required")
	}

	apiURL := os.Getenv("AIRTABLE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.airtable.com"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	storeTimeout, err := durationFromEnv("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := durationFromEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	backend := os.Getenv("SESSION_BACKEND")
	if backend == "" {
		backend = BackendMemory
	}
	if backend != BackendMemory && backend != BackendPostgres {
		return nil, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, backend)
	}

	dbSource := os.Getenv("DB_SOURCE")
	if backend == BackendPostgres && dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required for the postgres session backend")
	}

	csrfKey := os.Getenv("CSRF_KEY")
	if csrfKey != "" && len(csrfKey) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be exactly 32 bytes, got %d", len(csrfKey))
	}

	return &Config{
		AirtableAPIKey: apiKey,
		AirtableBaseID: baseID,
		AirtableAPIURL: apiURL,
		Port:           port,
		Env:            env,
		StoreTimeout:   storeTimeout,
		SessionBackend: backend,
		SessionTTL:     sessionTTL,
		DBSource:       dbSource,
		CSRFKey:        csrfKey,
	}, nil
}

func durationFromEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}
