// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendTables = "tables"
)

// Config is passed explicitly to every constructor that needs settings.
type Config struct {
	Port     string
	LogLevel slog.Level

	StorageBackend    string
	SQLitePath        string
	TableServiceURL   string
	SignalsTable      string
	DocumentsTable    string
	DraftsTable       string
	InvestmentsTable  string
	TaxDocumentsTable string
	TaxInsightsTable  string
	PanelsTable       string

	BlobServiceURL  string
	UploadContainer string
	QueueServiceURL string
	ProcessQueue    string

	CommunicationEndpoint string
	SenderEmail           string
	UserEmail             string

	LLMAPIKey            string
	LLMModel             string
	LLMBaseURL           string
	LLMRequestsPerMinute int
	DefaultTaxYear       string

	InsightsCacheTTL   time.Duration
	MaxUploadSizeBytes int64
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using environment only", "error", err)
	} else {
		slog.Info(".env file loaded")
	}

	cfg := &Config{
		Port:     getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", "8080"),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		SQLitePath:        getEnv("SQLITE_PATH", "./burnrate.db"),
		TableServiceURL:   getEnv("TABLE_SERVICE_URL", ""),
		SignalsTable:      getEnv("SIGNALS_TABLE", "signals"),
		DocumentsTable:    getEnv("DOCUMENTS_TABLE", "documents"),
		DraftsTable:       getEnv("DRAFTS_TABLE", "drafts"),
		InvestmentsTable:  getEnv("INVESTMENTS_TABLE", "investments"),
		TaxDocumentsTable: getEnv("TAX_DOCUMENTS_TABLE", "taxdocuments"),
		TaxInsightsTable:  getEnv("TAX_INSIGHTS_TABLE", "taxinsights"),
		PanelsTable:       getEnv("PANELS_TABLE", "panels"),

		BlobServiceURL:  getEnv("BLOB_SERVICE_URL", ""),
		UploadContainer: getEnv("UPLOAD_CONTAINER", "burnrate-uploads"),
		QueueServiceURL: getEnv("QUEUE_SERVICE_URL", ""),
		ProcessQueue:    getEnv("PROCESS_QUEUE", "process-queue"),

		CommunicationEndpoint: getEnv("COMMUNICATION_SERVICES_ENDPOINT", ""),
		SenderEmail:           getEnv("SENDER_EMAIL", ""),
		UserEmail:             getEnv("USER_EMAIL", ""),

		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMModel:             getEnv("LLM_MODEL", "google/gemini-2.0-flash-001"),
		LLMBaseURL:           getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMRequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 10),
		DefaultTaxYear:       getEnv("DEFAULT_TAX_YEAR", "2024"),

		InsightsCacheTTL:   getEnvAsDuration("INSIGHTS_CACHE_TTL", 5*time.Minute),
		MaxUploadSizeBytes: int64(getEnvAsInt("MAX_UPLOAD_SIZE_BYTES", 10<<20)),
	}

	if cfg.LLMAPIKey == "" {
		slog.Warn("LLM_API_KEY is not set; document extraction will fail")
	}

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"log_level", cfg.LogLevel.String(),
		"storage_backend", cfg.StorageBackend,
		"llm_model", cfg.LLMModel,
	)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid integer in environment, using default", "key", key, "value", valueStr, "default", fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	slog.Warn("invalid duration in environment, using default", "key", key, "value", valueStr, "default", fallback.String())
	return fallback
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
