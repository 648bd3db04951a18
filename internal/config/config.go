package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel slog.Level

	// Where records are read from
	DataSource string
	MediaRoot  string
	CSV        CSVPaths
	S3         S3
	Tables     Tables

	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	DBConnLifetime time.Duration

	PageSize                  int
	RateLimitPerMinute        int
	SummaryRateLimitPerMinute int
	RequestTimeout            time.Duration
	CORSOrigins               []string
}

// CSVPaths holds the locator of each CSV file. Relative locators resolve
// against MediaRoot; s3://bucket/key locators are read from S3.
type CSVPaths struct {
	Legislators string
	Bills       string
	Votes       string
	VoteResults string
}

// S3 configures the S3 opener. Bucket empty disables it.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Tables holds the Postgres table names
type Tables struct {
	Legislators string
	Bills       string
	Votes       string
	VoteResults string
}

// Load reads configuration from environment variables.
// Returns an error if a value is invalid or a required variable is missing.
func Load() (*Config, error) {
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	source := strings.ToLower(getEnv("DATA_SOURCE", SourceCSV))
	if source != SourceCSV && source != SourcePostgres {
		return nil, fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceCSV, SourcePostgres, source)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if source == SourcePostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=%s", SourcePostgres)
	}

	pageSize := getInt("PAGE_SIZE", 15)
	if pageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", pageSize)
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: level,

		DataSource: source,
		MediaRoot:  getEnv("MEDIA_ROOT", "media"),
		CSV: CSVPaths{
			Legislators: getEnv("LEGISLATORS_CSV", "legislators.csv"),
			Bills:       getEnv("BILLS_CSV", "bills.csv"),
			Votes:       getEnv("VOTES_CSV", "votes.csv"),
			VoteResults: getEnv("VOTE_RESULTS_CSV", "vote_results.csv"),
		},
		S3: S3{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			PathStyle: getBool("S3_PATH_STYLE", false),
		},
		Tables: Tables{
			Legislators: getEnv("LEGISLATORS_TABLE", "legislators"),
			Bills:       getEnv("BILLS_TABLE", "bills"),
			Votes:       getEnv("VOTES_TABLE", "votes"),
			VoteResults: getEnv("VOTE_RESULTS_TABLE", "vote_results"),
		},

		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 2)),
		DBConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),

		PageSize:                  pageSize,
		RateLimitPerMinute:        getInt("RATE_LIMIT_PER_MINUTE", 100),
		SummaryRateLimitPerMinute: getInt("SUMMARY_RATE_LIMIT_PER_MINUTE", 30),
		RequestTimeout:            getDuration("REQUEST_TIMEOUT", 30*time.Second),
		CORSOrigins:               getList("CORS_ORIGINS"),
	}, nil
}

// IsDevelopment reports whether ENV is development
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NewLogger builds the process logger: text in development, JSON otherwise
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
