// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig locates the target databases the engine mutates.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`           // mysql (default), sqlite3 or duckdb
	DSN             string `yaml:"dsn"`              // MySQL base DSN
	DataDir         string `yaml:"data_dir"`         // directory of <name>.sqlite / <name>.duckdb files
	DefaultDatabase string `yaml:"default_database"` // used when a request names no database
}

// BackupConfig selects where table definition backups go.
type BackupConfig struct {
	Backend       string        `yaml:"backend"` // local (default), s3, gcs, azure
	Dir           string        `yaml:"dir"`     // local root (default "backups")
	Bucket        string        `yaml:"bucket"`  // bucket or container name
	Prefix        string        `yaml:"prefix"`
	Compress      bool          `yaml:"compress"`
	Retention     time.Duration `yaml:"retention"`      // local pruning age; 0 disables pruning
	PruneSchedule string        `yaml:"prune_schedule"` // cron spec (default "@daily")

	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3KeyID     string `yaml:"s3_key_id"`
	S3Secret    string `yaml:"-"`
	S3PathStyle bool   `yaml:"s3_path_style"`

	GCSKeyFile            string `yaml:"gcs_key_file"`
	AzureConnectionString string `yaml:"-"`
}

// AuthConfig holds bearer-token authentication settings. With neither a
// secret nor an issuer configured, requests run as the anonymous principal.
type AuthConfig struct {
	JWTSecret string `yaml:"-"`          // HS256 shared secret
	IssuerURL string `yaml:"issuer_url"` // OIDC issuer
	Audience  string `yaml:"audience"`   // required audience (OIDC client ID)
}

// Enabled reports whether any authentication method is configured.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || a.IssuerURL != ""
}

// Config holds the configuration of the HTTP API server.
type Config struct {
	Database   DatabaseConfig `yaml:"database"`
	MetaDBPath string         `yaml:"meta_db_path"` // SQLite metastore (operation audit log)
	ListenAddr string         `yaml:"listen_addr"`  // default ":8080"

	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`

	LogLevel  string `yaml:"log_level"`   // debug, info, warn, error (default "info")
	LogFormat string `yaml:"log_format"`  // text (default) or json
	LogSeqURL string `yaml:"log_seq_url"` // optional Seq ingestion URL
	Env       string `yaml:"env"`         // "development" (default) or "production"

	// RedactStoreErrors hides driver error text from API responses.
	RedactStoreErrors bool `yaml:"redact_store_errors"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Auth   AuthConfig   `yaml:"auth"`
	Backup BackupConfig `yaml:"backup"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv builds the configuration. When FLEXIDB_CONFIG names a YAML
// file it is read first; environment variables then override its values.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("FLEXIDB_CONFIG"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Database.DataDir, "DB_DATA_DIR")
	setString(&cfg.Database.DefaultDatabase, "DB_DEFAULT_DATABASE")
	setString(&cfg.MetaDBPath, "META_DB_PATH")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.TLSCertFile, "TLS_CERT_FILE")
	setString(&cfg.TLSKeyFile, "TLS_KEY_FILE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogSeqURL, "LOG_SEQ_URL")
	setString(&cfg.Env, "ENV")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.IssuerURL, "AUTH_ISSUER_URL")
	setString(&cfg.Auth.Audience, "AUTH_AUDIENCE")
	setString(&cfg.Backup.Backend, "BACKUP_BACKEND")
	setString(&cfg.Backup.Dir, "BACKUP_DIR")
	setString(&cfg.Backup.Bucket, "BACKUP_BUCKET")
	setString(&cfg.Backup.Prefix, "BACKUP_PREFIX")
	setString(&cfg.Backup.PruneSchedule, "BACKUP_PRUNE_SCHEDULE")
	setString(&cfg.Backup.S3Region, "S3_REGION")
	setString(&cfg.Backup.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.Backup.S3KeyID, "S3_KEY_ID")
	setString(&cfg.Backup.S3Secret, "S3_SECRET")
	setString(&cfg.Backup.GCSKeyFile, "GCS_KEY_FILE")
	setString(&cfg.Backup.AzureConnectionString, "AZURE_STORAGE_CONNECTION_STRING")
	cfg.Backup.Compress = parseBoolEnvDefault("BACKUP_COMPRESS", cfg.Backup.Compress)
	cfg.Backup.S3PathStyle = parseBoolEnvDefault("S3_PATH_STYLE", cfg.Backup.S3PathStyle)

	if v := os.Getenv("BACKUP_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BACKUP_RETENTION %q: %w", v, err)
		}
		cfg.Backup.Retention = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.RateLimitBurst = burst
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = compactNonEmpty(strings.Split(v, ","))
	}
	cfg.RedactStoreErrors = parseBoolEnvDefault("REDACT_STORE_ERRORS", cfg.RedactStoreErrors || cfg.IsProduction())

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) error {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	switch cfg.Database.Driver {
	case "mysql":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required when DB_DRIVER=mysql")
		}
	case "sqlite3", "duckdb":
		if cfg.Database.DataDir == "" {
			cfg.Database.DataDir = "data"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: must be mysql, sqlite3 or duckdb", cfg.Database.Driver)
	}

	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "flexidb_meta.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return fmt.Errorf("both TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Backup.Backend == "" {
		cfg.Backup.Backend = "local"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "backups"
	}
	if cfg.Backup.PruneSchedule == "" {
		cfg.Backup.PruneSchedule = "@daily"
	}
	if cfg.Auth.IssuerURL != "" && cfg.Auth.Audience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}
	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "authentication is disabled: set JWT_SECRET or AUTH_ISSUER_URL")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if !cfg.Auth.Enabled() {
			return fmt.Errorf("authentication must be configured in production (set JWT_SECRET or AUTH_ISSUER_URL)")
		}
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	default:
		return defaultVal
	}
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes one pair of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
