package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderRules  = "rules"

	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendXLSX     = "xlsx"
)

type Config struct {
	LogLevel string
	LogFile  string

	ClassifierProvider string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string

	RecordStoreBackend string
	AirtableAPIKey     string
	AirtableBaseID     string
	AirtableTableName  string
	AirtableURL        string
	PostgresDSN        string
	XLSXPath           string
	XLSXSheet          string

	GoogleServiceAccountFile string
	GoogleDrivePDFFolderID   string
	GoogleDelegatedUser      string
	BCCEmail                 string

	ArchetypesFile string

	NATSURL     string
	NATSSubject string

	WorkerMetricsPort string

	CallTimeoutSeconds   int
	RecordTimeoutSeconds int
	RetryMaxAttempts     int
	APIRatePerSecond     float64
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),
		LogFile:  mustEnv("LOG_FILE", ""),

		ClassifierProvider: strings.ToLower(mustEnv("CLASSIFIER_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:       mustEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        mustEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      mustEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:       mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:        mustEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		RecordStoreBackend: strings.ToLower(mustEnv("RECORD_STORE_BACKEND", BackendAirtable)),
		AirtableAPIKey:     mustEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:     mustEnv("AIRTABLE_BASE_ID", ""),
		AirtableTableName:  mustEnv("AIRTABLE_TABLE_NAME", "Table 1"),
		AirtableURL:        mustEnv("AIRTABLE_URL", "https://api.airtable.com"),
		PostgresDSN:        mustEnv("POSTGRES_DSN", ""),
		XLSXPath:           mustEnv("XLSX_PATH", ""),
		XLSXSheet:          mustEnv("XLSX_SHEET", "Table 1"),

		GoogleServiceAccountFile: mustEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleDrivePDFFolderID:   mustEnv("GOOGLE_DRIVE_PDF_FOLDER_ID", ""),
		GoogleDelegatedUser:      mustEnv("GOOGLE_DELEGATED_USER", ""),
		BCCEmail:                 mustEnv("BCC_EMAIL", ""),

		ArchetypesFile: mustEnv("ARCHETYPES_FILE", ""),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "archetypes.assigned"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", ""),

		CallTimeoutSeconds:   mustEnvInt("CALL_TIMEOUT_SECONDS", 60),
		RecordTimeoutSeconds: mustEnvInt("RECORD_TIMEOUT_SECONDS", 300),
		RetryMaxAttempts:     mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		APIRatePerSecond:     mustEnvFloat("API_RATE_PER_SECOND", 0),
	}
}

// MissingError lists every required setting that is absent or invalid.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing or invalid configuration: " + strings.Join(e.Keys, ", ")
}

// Validate checks settings required by the selected provider and backend.
func (c Config) Validate() error {
	var keys []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			keys = append(keys, key)
		}
	}

	switch c.ClassifierProvider {
	case ProviderOpenAI:
		require("OPENAI_API_KEY", c.OpenAIAPIKey)
	case ProviderGemini:
		require("GEMINI_API_KEY", c.GeminiAPIKey)
	case ProviderRules:
	default:
		keys = append(keys, fmt.Sprintf("CLASSIFIER_PROVIDER (unknown %q)", c.ClassifierProvider))
	}

	switch c.RecordStoreBackend {
	case BackendAirtable:
		require("AIRTABLE_API_KEY", c.AirtableAPIKey)
		require("AIRTABLE_BASE_ID", c.AirtableBaseID)
		require("AIRTABLE_TABLE_NAME", c.AirtableTableName)
	case BackendPostgres:
		require("POSTGRES_DSN", c.PostgresDSN)
	case BackendXLSX:
		require("XLSX_PATH", c.XLSXPath)
	default:
		keys = append(keys, fmt.Sprintf("RECORD_STORE_BACKEND (unknown %q)", c.RecordStoreBackend))
	}

	require("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)
	require("GOOGLE_DRIVE_PDF_FOLDER_ID", c.GoogleDrivePDFFolderID)

	if len(keys) > 0 {
		return &MissingError{Keys: keys}
	}
	return nil
}

func (c Config) CallTimeout() time.Duration {
	return seconds(c.CallTimeoutSeconds)
}

func (c Config) RecordTimeout() time.Duration {
	return seconds(c.RecordTimeoutSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}
