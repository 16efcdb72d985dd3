package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"debts/internal/core"
)

type Config struct {
	// Participants
	Roster string

	// Ledger storage
	LedgerBackend string
	LedgerMirrors []string
	LedgerCSVPath string
	SQLiteDBPath  string
	LedgerStrict  bool

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Replication worker
	WorkerTarget string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Logging
	LogLevel  string
	LogFormat string
}

// ValidBackends lists the accepted values of LEDGER_BACKEND and LEDGER_MIRRORS.
var ValidBackends = []string{"csv", "sqlite", "sheets", "memory"}

func Load() *Config {
	return &Config{
		Roster: getEnv("ROSTER", "A,M,S"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "csv"),
		LedgerMirrors: getEnvList("LEDGER_MIRRORS"),
		LedgerCSVPath: getEnv("LEDGER_CSV_PATH", filepath.Join(".", "CSVs", "debt_data.csv")),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/debts.db"),
		LedgerStrict:  getEnvBool("LEDGER_STRICT", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "debts"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_updates"),

		WorkerTarget: getEnv("WORKER_TARGET_BACKEND", "sheets"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Debts"),

		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// ParsedRoster builds the roster from the ROSTER setting.
func (c *Config) ParsedRoster() (core.Roster, error) {
	return core.ParseRoster(c.Roster)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if _, err := c.ParsedRoster(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid roster '%s': %v", c.Roster, err))
	}

	if !isValidBackend(c.LedgerBackend) {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, ValidBackends))
	}
	seen := map[string]bool{c.LedgerBackend: true}
	for _, m := range c.LedgerMirrors {
		switch {
		case !isValidBackend(m):
			errors = append(errors, fmt.Sprintf("invalid ledger mirror '%s': must be one of %v", m, ValidBackends))
		case seen[m]:
			errors = append(errors, fmt.Sprintf("ledger mirror '%s' duplicates another backend", m))
		}
		seen[m] = true
	}

	if seen["csv"] && c.LedgerCSVPath == "" {
		errors = append(errors, "CSV ledger path cannot be empty when using csv backend")
	}
	if seen["sqlite"] && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if seen["sheets"] {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings the replication worker needs on top of
// Validate: a broker to consume from and a target backend to write to.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required by the replication worker")
	}
	switch {
	case !isValidBackend(c.WorkerTarget):
		errors = append(errors, fmt.Sprintf("invalid worker target '%s': must be one of %v", c.WorkerTarget, ValidBackends))
	case c.WorkerTarget == "csv" && c.LedgerCSVPath == "":
		errors = append(errors, "CSV ledger path cannot be empty when the worker targets csv")
	case c.WorkerTarget == "sqlite" && c.SQLiteDBPath == "":
		errors = append(errors, "SQLite database path cannot be empty when the worker targets sqlite")
	case c.WorkerTarget == "sheets" && c.GoogleSpreadsheetID == "":
		errors = append(errors, "Google Spreadsheet ID is required when the worker targets sheets")
	}

	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func isValidBackend(b string) bool {
	for _, v := range ValidBackends {
		if b == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
