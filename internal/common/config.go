package common

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Pipeline  PipelineConfig
	OCR       OCRConfig
	Embedding EmbeddingConfig
	Store     StoreConfig
}

// PipelineConfig holds scheduling and processing configuration
type PipelineConfig struct {
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	PageTimeout       time.Duration
	TempDir           string
}

// OCRConfig holds recognition-related configuration
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Languages []string
	DPI       int // rasterization DPI for scanned pages, default 300
	MaxPages  int // 0 = no limit
}

// EmbeddingConfig holds embedding generator configuration
type EmbeddingConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// StoreConfig holds result sink and job status configuration
type StoreConfig struct {
	DatabaseURL string // Postgres DSN; empty disables the persistent sink
	StatusPath  string // sqlite file for the job status table; empty -> in-memory
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is honored when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("Warning: Error loading .env file:", err)
	}
	return &Config{
		Pipeline: PipelineConfig{
			MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 2),
			QueueSize:         getEnvAsInt("JOB_QUEUE_SIZE", 64),
			JobTimeout:        getEnvAsDuration("JOB_TIMEOUT", 10*time.Minute),
			PageTimeout:       getEnvAsDuration("PAGE_TIMEOUT", 0),
			TempDir:           getEnv("PIPELINE_TEMP_DIR", os.TempDir()),
		},
		OCR: OCRConfig{
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Languages: []string{getEnv("OCR_LANG", "eng")},
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Embedding: EmbeddingConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			Timeout: getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			DatabaseURL: getEnv("DB_URL", ""),
			StatusPath:  getEnv("STATUS_DB_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.MaxConcurrentJobs <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_CONCURRENT_JOBS must be positive", ErrInvalidInput)
	}
	if c.Pipeline.QueueSize <= 0 {
		return NewAppError("CONFIG_ERROR", "JOB_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
