package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

// Storage backends accepted by STORE_BACKEND.
const (
	BackendXLSX   = "xlsx"
	BackendSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Sheets  SheetsConfig
	Auth    AuthConfig
	Backup  BackupConfig
	MongoDB MongoDBConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects where the stock table lives.
type StoreConfig struct {
	Backend  string
	DataFile string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
}

// AuthConfig holds the static credential table.
type AuthConfig struct {
	Users []models.Credential
}

// BackupConfig holds scheduler-related settings. An empty Dir disables backups.
type BackupConfig struct {
	Dir          string
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for the audit archive. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// defaultUsers is used when AUTH_USERS is not set.
var defaultUsers = []models.Credential{
	{Username: "user001", Password: "pass001", UserCode: "48273"},
	{Username: "user002", Password: "pass002", UserCode: "15947"},
	{Username: "user003", Password: "pass003", UserCode: "69351"},
	{Username: "user004", Password: "pass004", UserCode: "20486"},
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	users, err := ParseUsers(os.Getenv("AUTH_USERS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendXLSX)),
			DataFile: getenvWithDefault("DATA_FILE", "data/data.xlsx"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			SheetName:       getenvWithDefault("GOOGLE_SHEET_NAME", "Sheet1"),
		},
		Auth: AuthConfig{
			Users: users,
		},
		Backup: BackupConfig{
			Dir:          os.Getenv("BACKUP_DIR"),
			CronSchedule: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stocks"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendXLSX:
		if c.Store.DataFile == "" {
			return errors.New("DATA_FILE must be provided")
		}
	case BackendSheets:
		switch {
		case c.Sheets.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		case c.Sheets.SpreadsheetID == "":
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	if len(c.Auth.Users) == 0 {
		c.Auth.Users = append([]models.Credential(nil), defaultUsers...)
	}

	if c.Backup.Dir != "" {
		if c.Backup.CronSchedule == "" {
			return errors.New("BACKUP_CRON_SCHEDULE must be provided")
		}
		if c.Backup.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

// ParseUsers reads a comma separated list of username:password:code entries.
func ParseUsers(raw string) ([]models.Credential, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var users []models.Credential
	seen := make(map[string]bool)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("AUTH_USERS entry %q must look like username:password:code", entry)
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("AUTH_USERS lists %q twice", parts[0])
		}
		seen[parts[0]] = true
		users = append(users, models.Credential{Username: parts[0], Password: parts[1], UserCode: parts[2]})
	}
	return users, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
