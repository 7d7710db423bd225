package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	Tools      ToolsConfig
}

// DatabaseConfig holds the (optional) processing-job audit store configuration.
// The store is disabled when DSN is empty.
type DatabaseConfig struct {
	DSN              string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// ExtractionConfig drives the multi-pass extraction policy. Loaded once at
// startup and treated as an immutable snapshot; a reconfigure rebuilds all
// backends from it rather than mutating live state.
type ExtractionConfig struct {
	// PDFMinDocTextLength is the minimum extracted-text byte length to accept
	// a text-only pass as sufficient.
	PDFMinDocTextLength int

	// PDFMinDocByteSize is the minimum stream bytes consumed before a short
	// text-only result counts as an escalation signal. A short result from a
	// document at or below this size is plausibly just a short document.
	PDFMinDocByteSize int64

	// PDFOCROnlyStrategy: when true the OCR backend discards the raw text
	// layer and extracts purely via OCR; when false it merges OCR output with
	// the text layer, which can duplicate content when both are present.
	PDFOCROnlyStrategy bool

	// UseLegacyOCRParserForSinglePageDocuments enables the alternate
	// single-page OCR path (image conversion + OCR over one rendered page).
	UseLegacyOCRParserForSinglePageDocuments bool

	OCRTimeout               time.Duration
	OCRLanguage              string
	OCRApplyRotation         bool
	OCREnableImageProcessing bool

	// ConversionTimeout bounds the external image-conversion step of the
	// legacy single-page backend.
	ConversionTimeout time.Duration

	// MaxDocBytes bounds in-memory buffering of non-seekable sources.
	MaxDocBytes int64
}

// ToolsConfig names the external binaries the backends shell out to.
type ToolsConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Magick    string
	DPI       int
	MaxPages  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8090"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Extraction: ExtractionConfig{
			PDFMinDocTextLength:                      getEnvAsInt("PDF_MIN_DOC_TEXT_LENGTH", 100),
			PDFMinDocByteSize:                        getEnvAsInt64("PDF_MIN_DOC_BYTE_SIZE", 10000),
			PDFOCROnlyStrategy:                       getEnvAsBool("PDF_OCR_ONLY_STRATEGY", true),
			UseLegacyOCRParserForSinglePageDocuments: getEnvAsBool("PDF_USE_LEGACY_SINGLE_PAGE_OCR", false),
			OCRTimeout:                               getEnvAsDuration("OCR_TIMEOUT", 300*time.Second),
			OCRLanguage:                              getEnv("OCR_LANGUAGE", "eng"),
			OCRApplyRotation:                         getEnvAsBool("OCR_APPLY_ROTATION", false),
			OCREnableImageProcessing:                 getEnvAsBool("OCR_ENABLE_IMAGE_PROCESSING", false),
			ConversionTimeout:                        getEnvAsDuration("CONVERSION_TIMEOUT", 300*time.Second),
			MaxDocBytes:                              getEnvAsInt64("MAX_DOC_BYTES", 256<<20),
		},
		Tools: ToolsConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Magick:    getEnv("MAGICK_BIN", "magick"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extraction.PDFMinDocTextLength < 0 {
		return NewAppError("CONFIG_ERROR", "PDF_MIN_DOC_TEXT_LENGTH must be >= 0", ErrInvalidInput)
	}
	if c.Extraction.PDFMinDocByteSize < 0 {
		return NewAppError("CONFIG_ERROR", "PDF_MIN_DOC_BYTE_SIZE must be >= 0", ErrInvalidInput)
	}
	if c.Extraction.MaxDocBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_DOC_BYTES must be > 0", ErrInvalidInput)
	}
	return nil
}
