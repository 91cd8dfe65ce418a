package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fieldreport/internal/attachment"
	"fieldreport/internal/domain"
	"fieldreport/internal/report"
)

// SMTPConfig holds outgoing mail settings. Empty User or Password means mail
// is not configured and deliveries are skipped.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// Config represents application configuration loaded from environment variables.
// It is built once at start and passed down; nothing reads the environment later.
type Config struct {
	AppEnv             string
	Port               string
	LogLevel           string
	OutputDir          string
	SMTP               SMTPConfig
	DefaultOfficeEmail string
	AllowedOrigins     []string
	AttachPhotos       attachment.Mode
	ReportLocale       string
	ReportTimezone     *time.Location
	CompanyProfilePath string
	Company            domain.Company
	DatabaseURL        string
	GeoIPDBPath        string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	MaxBodyBytes       int64
}

// DatabaseEnabled reports whether submissions are recorded in PostgreSQL.
func (c *Config) DatabaseEnabled() bool {
	return c != nil && c.DatabaseURL != ""
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
		OutputDir: getEnv("OUTPUT_DIR", "./outputs"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     strings.TrimSpace(os.Getenv("SMTP_USER")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     strings.TrimSpace(os.Getenv("SMTP_FROM")),
			Timeout:  time.Second * time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 30)),
		},
		DefaultOfficeEmail: strings.TrimSpace(os.Getenv("DEFAULT_OFFICE_EMAIL")),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		ReportLocale:       report.NegotiateLocale(os.Getenv("REPORT_LOCALE"), report.DefaultLocale),
		CompanyProfilePath: os.Getenv("COMPANY_PROFILE_PATH"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_MB", 25)) << 20,
	}

	mode, err := attachment.ParseMode(os.Getenv("ATTACH_PHOTOS"))
	if err != nil {
		return nil, fmt.Errorf("ATTACH_PHOTOS: %w", err)
	}
	cfg.AttachPhotos = mode

	if tz := strings.TrimSpace(os.Getenv("REPORT_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("REPORT_TIMEZONE: %w", err)
		}
		cfg.ReportTimezone = loc
	}

	if cfg.CompanyProfilePath != "" {
		company, err := LoadCompanyProfile(cfg.CompanyProfilePath)
		if err != nil {
			return nil, err
		}
		cfg.Company = company
	}
	if cfg.DefaultOfficeEmail == "" {
		cfg.DefaultOfficeEmail = cfg.Company.OfficeEmail
	}

	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return nil, fmt.Errorf("SMTP_PORT out of range: %d", cfg.SMTP.Port)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, errors.New("MAX_BODY_MB must be positive")
	}

	return cfg, nil
}

type companyProfile struct {
	Company domain.Company `yaml:"company"`
}

// LoadCompanyProfile reads the default company identity from a YAML file of
// the form:
//
//	company:
//	  name: VVS Eksempel AS
//	  org_nr: 987 654 321
//	  phone: +47 22 33 44 55
//	  office_email: kontor@example.no
func LoadCompanyProfile(path string) (domain.Company, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Company{}, fmt.Errorf("company profile: %w", err)
	}
	var profile companyProfile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return domain.Company{}, fmt.Errorf("company profile %s: %w", path, err)
	}
	return profile.Company, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
