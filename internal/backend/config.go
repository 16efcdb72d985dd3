package backend

import (
	"fmt"

	"debts/internal/config"
	"debts/internal/core"
)

// BackendType represents the type of ledger backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for store creation
type Config struct {
	Type    BackendType
	Mirrors []BackendType
	Roster  core.Roster
	Strict  bool

	CSVPath      string
	SQLiteDBPath string

	// Google Sheets; credentials still come from the environment
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	roster, err := appConfig.ParsedRoster()
	if err != nil {
		return Config{}, fmt.Errorf("roster: %w", err)
	}

	cfg := Config{
		Type:                BackendType(appConfig.LedgerBackend),
		Roster:              roster,
		Strict:              appConfig.LedgerStrict,
		CSVPath:             appConfig.LedgerCSVPath,
		SQLiteDBPath:        appConfig.SQLiteDBPath,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,
		AMQPURL:             appConfig.AMQPURL,
		AMQPExchange:        appConfig.AMQPExchange,
		AMQPQueue:           appConfig.AMQPQueue,
	}
	for _, m := range appConfig.LedgerMirrors {
		cfg.Mirrors = append(cfg.Mirrors, BackendType(m))
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Roster.Members()) < 2 {
		return fmt.Errorf("roster is required")
	}
	for _, t := range append([]BackendType{c.Type}, c.Mirrors...) {
		if err := c.validateType(t); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) validateType(t BackendType) error {
	if !t.IsValid() {
		return fmt.Errorf("invalid backend type: %s", t)
	}

	switch t {
	case CSVBackend:
		if c.CSVPath == "" {
			return fmt.Errorf("CSV path is required for csv backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
		// nothing to configure
	}

	return nil
}
