package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
)

var (
	ErrMissingFrappeURL         = errors.New("FRAPPE_BASE_URL is required")
	ErrMissingFrappeCredentials = errors.New("FRAPPE_API_KEY and FRAPPE_API_SECRET are required")
	ErrMissingJWTSecret         = errors.New("JWT_SECRET_KEY is required")
	ErrMissingDBPassword        = errors.New("DB_PASSWORD is required")
	ErrInvalidStoreDriver       = errors.New("STORE_DRIVER must be postgres or sqlite")
	ErrInvalidEmployeeSource    = errors.New("EMPLOYEE_SOURCE must be store or frappe")
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	EmployeesFromStore  = "store"
	EmployeesFromFrappe = "frappe"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Database DatabaseConfig
	Frappe   FrappeConfig
	Policy   PolicyConfig
	JWT      JWTConfig
	Job      JobConfig

	// BranchPatterns overrides the built-in terminal patterns when set,
	// e.g. "Villas=villas|vlla;Nave=nave".
	BranchPatterns string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name               string
	Env                string
	Version            string
	Port               int
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
}

type StoreConfig struct {
	Driver     string
	SQLitePath string
	// EmployeeSource picks the employee directory: the local store or the ERP.
	EmployeeSource string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type FrappeConfig struct {
	BaseURL        string
	APIKey         string
	APISecret      string
	PageSize       int
	Timeout        time.Duration
	ServerTimezone string
}

type PolicyConfig struct {
	TardyToleranceMinutes          int
	UnexcusedThresholdMinutes      int
	EarlyDepartureToleranceMinutes int
	OvernightGraceMinutes          int
	ForgiveUnexcusedLateness       bool
	BreakMode                      string
	FixedBreakMinutes              int
	LeaveNoAdjustTypes             []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Skew   time.Duration
}

type JobConfig struct {
	Enabled      bool
	Interval     time.Duration
	LookbackDays int
	ExportDir    string
	Branch       string
}

// Load reads the process environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// LoadCLI is Load for the command-line runner, which needs no API
// credentials when it reads check-ins from a spreadsheet.
func LoadCLI() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	config, err := parse()
	if err != nil {
		return nil, err
	}
	if err := config.validateEngine(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	config, err := parse()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func parse() (*Config, error) {
	var err error
	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Name:               getEnv("APP_NAME", "attendance-recon"),
		Env:                getEnv("APP_ENV", "development"),
		Version:            getEnv("APP_VERSION", "dev"),
		Port:               appPort,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", "America/Mexico_City"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Store configuration
	config.Store = StoreConfig{
		Driver:         strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "attendance.db"),
		EmployeeSource: strings.ToLower(getEnv("EMPLOYEE_SOURCE", EmployeesFromFrappe)),
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Upstream configuration
	pageSize, err := getEnvInt("FRAPPE_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("FRAPPE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	config.Frappe = FrappeConfig{
		BaseURL:        getEnv("FRAPPE_BASE_URL", ""),
		APIKey:         getEnv("FRAPPE_API_KEY", ""),
		APISecret:      getEnv("FRAPPE_API_SECRET", ""),
		PageSize:       pageSize,
		Timeout:        timeout,
		ServerTimezone: getEnv("FRAPPE_SERVER_TIMEZONE", ""),
	}

	// Reconciliation policy
	p := PolicyConfig{
		BreakMode:          getEnv("BREAK_MODE", string(reconcile.BreakComputed)),
		LeaveNoAdjustTypes: getEnvSlice("LEAVE_NO_ADJUST_TYPES"),
	}
	if p.TardyToleranceMinutes, err = getEnvInt("TARDY_TOLERANCE_MINUTES", 15); err != nil {
		return nil, err
	}
	if p.UnexcusedThresholdMinutes, err = getEnvInt("UNEXCUSED_THRESHOLD_MINUTES", 60); err != nil {
		return nil, err
	}
	if p.EarlyDepartureToleranceMinutes, err = getEnvInt("EARLY_DEPARTURE_TOLERANCE_MINUTES", 15); err != nil {
		return nil, err
	}
	if p.OvernightGraceMinutes, err = getEnvInt("OVERNIGHT_GRACE_MINUTES", 59); err != nil {
		return nil, err
	}
	if p.FixedBreakMinutes, err = getEnvInt("FIXED_BREAK_MINUTES", 60); err != nil {
		return nil, err
	}
	if p.ForgiveUnexcusedLateness, err = getEnvBool("FORGIVE_UNEXCUSED_LATENESS", false); err != nil {
		return nil, err
	}
	config.Policy = p

	config.BranchPatterns = getEnv("BRANCH_TERMINAL_PATTERNS", "")

	// JWT configuration
	skew, err := getEnvDuration("JWT_ACCEPTABLE_SKEW", 30*time.Second)
	if err != nil {
		return nil, err
	}
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
		Skew:   skew,
	}

	// Scheduled reconciliation
	job := JobConfig{
		ExportDir: getEnv("EXPORT_DIR", "exports"),
		Branch:    getEnv("RECONCILE_JOB_BRANCH", checkin.AllBranches),
	}
	if job.Enabled, err = getEnvBool("RECONCILE_JOB_ENABLED", false); err != nil {
		return nil, err
	}
	if job.Interval, err = getEnvDuration("RECONCILE_JOB_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if job.LookbackDays, err = getEnvInt("RECONCILE_JOB_LOOKBACK_DAYS", 1); err != nil {
		return nil, err
	}
	config.Job = job

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Frappe.BaseURL == "" {
		return ErrMissingFrappeURL
	}
	if c.Frappe.APIKey == "" || c.Frappe.APISecret == "" {
		return ErrMissingFrappeCredentials
	}
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}

	switch c.Store.Driver {
	case StorePostgres:
		if c.Database.Password == "" {
			return ErrMissingDBPassword
		}
	case StoreSQLite:
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidStoreDriver, c.Store.Driver)
	}

	switch c.Store.EmployeeSource {
	case EmployeesFromStore, EmployeesFromFrappe:
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidEmployeeSource, c.Store.EmployeeSource)
	}

	if c.Job.Enabled && c.Job.Interval <= 0 {
		return fmt.Errorf("RECONCILE_JOB_INTERVAL must be positive")
	}
	return c.validateEngine()
}

func (c *Config) validateEngine() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ReconcilePolicy(); err != nil {
		return err
	}
	if _, err := c.Branches(); err != nil {
		return err
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location is the business timezone every date and mark is evaluated in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// ServerLocation is the zone the ERP writes naive timestamps in. It falls
// back to the business timezone.
func (c *Config) ServerLocation() (*time.Location, error) {
	if c.Frappe.ServerTimezone == "" {
		return c.Location()
	}
	loc, err := time.LoadLocation(c.Frappe.ServerTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FRAPPE_SERVER_TIMEZONE %q: %w", c.Frappe.ServerTimezone, err)
	}
	return loc, nil
}

func (c *Config) ReconcilePolicy() (reconcile.Policy, error) {
	mode, err := reconcile.ParseBreakMode(strings.ToLower(c.Policy.BreakMode))
	if err != nil {
		return reconcile.Policy{}, err
	}
	p := reconcile.Policy{
		TardyTolerance:           minutes(c.Policy.TardyToleranceMinutes),
		UnexcusedThreshold:       minutes(c.Policy.UnexcusedThresholdMinutes),
		EarlyDepartureTolerance:  minutes(c.Policy.EarlyDepartureToleranceMinutes),
		OvernightGrace:           minutes(c.Policy.OvernightGraceMinutes),
		ForgiveUnexcusedLateness: c.Policy.ForgiveUnexcusedLateness,
		BreakMode:                mode,
		FixedBreak:               minutes(c.Policy.FixedBreakMinutes),
		Leave:                    leave.NewPolicy(c.Policy.LeaveNoAdjustTypes),
	}
	if err := p.Validate(); err != nil {
		return reconcile.Policy{}, fmt.Errorf("invalid reconciliation policy: %w", err)
	}
	return p, nil
}

// Branches builds the terminal-pattern mapper, honouring BRANCH_TERMINAL_PATTERNS.
func (c *Config) Branches() (*checkin.BranchMapper, error) {
	if strings.TrimSpace(c.BranchPatterns) == "" {
		return checkin.NewBranchMapper(nil), nil
	}
	patterns, err := checkin.ParseBranchPatterns(c.BranchPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid BRANCH_TERMINAL_PATTERNS: %w", err)
	}
	return checkin.NewBranchMapper(patterns), nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
