// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Template store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Verify   VerifyConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Store    StoreConfig
	Mail     MailConfig
	Sources  SourcesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// VerifyConfig holds verification run settings.
type VerifyConfig struct {
	// MaxFileSize is the maximum size of each uploaded file in bytes (default: 20MB)
	MaxFileSize int64 `env:"VERIFY_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel verifications (default: 4)
	MaxConcurrent int `env:"VERIFY_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a verification slot (default: 30s)
	MaxWaitTime time.Duration `env:"VERIFY_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of a single verification (default: 2m)
	Timeout time.Duration `env:"VERIFY_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// VerifyLimit is requests per minute for verification endpoints (default: 10)
	VerifyLimit int `env:"RATE_LIMIT_VERIFY" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// StoreConfig selects where email templates are kept.
type StoreConfig struct {
	// Backend is one of memory, sqlite, postgres (default: memory)
	Backend string `env:"TEMPLATE_STORE" default:"memory"`

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string `env:"TEMPLATE_SQLITE_PATH" default:"rostercheck.db"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// MailConfig holds settings for the compose links on the report.
type MailConfig struct {
	// WrongCourseSubject is the subject for students registered in the wrong course
	WrongCourseSubject string `env:"MAIL_WRONG_COURSE_SUBJECT" default:"履修登録の確認のお願い"`

	// NoCourseSubject is the subject for students with no registration
	NoCourseSubject string `env:"MAIL_NO_COURSE_SUBJECT" default:"履修登録のお願い"`
}

// SourcesConfig names the columns and labels read from the three input files.
type SourcesConfig struct {
	RegistrationStudentID string `env:"REGISTRATION_STUDENT_ID_COLUMN" default:"学籍番号"`
	RegistrationCourseID  string `env:"REGISTRATION_COURSE_ID_COLUMN" default:"科目番号"`
	RegistrationDeletion  string `env:"REGISTRATION_DELETION_COLUMN" default:"論理削除"`
	DeletedMarker         string `env:"REGISTRATION_DELETED_MARKER" default:"○"`

	StudentID            string `env:"STUDENT_ID_COLUMN" default:"学籍番号"`
	StudentName          string `env:"STUDENT_NAME_COLUMN" default:"学生氏名"`
	StudentSchoolEmail   string `env:"STUDENT_SCHOOL_EMAIL_COLUMN" default:"Ｅ－ＭＡＩＬ＿大学"`
	StudentPersonalEmail string `env:"STUDENT_PERSONAL_EMAIL_COLUMN" default:"Ｅ－ＭＡＩＬ"`

	CourseIDLabel        string `env:"COURSE_ID_LABEL" default:"科目番号："`
	CourseNameLabel      string `env:"COURSE_NAME_LABEL" default:"科目名："`
	CourseStudentIDLabel string `env:"COURSE_STUDENT_ID_LABEL" default:"学籍番号"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
