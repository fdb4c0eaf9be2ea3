package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath     string `envconfig:"DB_PATH" default:"app.db"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"5555"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Legt Beispieldaten an, solange die Tabellen leer sind.
	SeedDemoData bool `envconfig:"SEED_DEMO_DATA" default:"false"`

	// Backup nach S3 (nur cmd/backup)
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3Region       string `envconfig:"S3_REGION"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
	BackupBucket   string `envconfig:"BACKUP_S3_BUCKET"`
	BackupPrefix   string `envconfig:"BACKUP_PREFIX" default:"backups/"`
	KeepBackups    int    `envconfig:"KEEP_BACKUPS" default:"4"`
	BackupSchedule string `envconfig:"BACKUP_SCHEDULE"`
}

// DSN gibt den Data Source Name für den konfigurierten Treiber zurück.
// Für SQLite werden Fremdschlüssel immer eingeschaltet.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
	sep := "?"
	if strings.Contains(c.DBPath, "?") {
		sep = "&"
	}
	return c.DBPath + sep + "_foreign_keys=on"
}

// Validate prüft die Datenbank-Einstellungen.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for driver %q", c.DBDriver)
		}
	case DriverPostgres:
		var missing []string
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing settings for postgres: %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// ValidateBackup prüft zusätzlich die S3-Einstellungen des Backup-Jobs.
func (c *Config) ValidateBackup() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var missing []string
	for key, val := range map[string]string{
		"S3_ENDPOINT":      c.S3Endpoint,
		"S3_REGION":        c.S3Region,
		"S3_ACCESS_KEY":    c.S3AccessKey,
		"S3_SECRET_KEY":    c.S3SecretKey,
		"BACKUP_S3_BUCKET": c.BackupBucket,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing backup settings: %s", strings.Join(missing, ", "))
	}
	if c.KeepBackups < 1 {
		return fmt.Errorf("KEEP_BACKUPS must be at least 1, got %d", c.KeepBackups)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
