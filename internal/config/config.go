package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// InsecureUnsubscribeSecret is the signing key used by default when
// QW_ENV=development. It is rejected in any other environment.
const InsecureUnsubscribeSecret = "quantumwork-dev-secret"

type Config struct {
	Addr              string        `yaml:"addr"`
	APITimeout        time.Duration `yaml:"timeout"`
	DatabasePath      string        `yaml:"database_path"`
	MigrateOnStart    bool          `yaml:"migrate_on_start"`
	// PublicURL is the externally reachable base of this API. Newsletters carry
	// unsubscribe links only when both it and UnsubscribeSecret are set.
	PublicURL         string        `yaml:"public_url"`
	UnsubscribeSecret string        `yaml:"unsubscribe_secret"`
	UnsubscribeTTL    time.Duration `yaml:"unsubscribe_ttl"`
	Mail              MailConfig    `yaml:"mail"`
	Scraper           ScraperConfig `yaml:"scraper"`
	Tasks             TasksConfig   `yaml:"tasks"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	SiteURL  string `yaml:"site_url"`
}

type ScraperConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	// Schedule is a cron spec for the in-process update run. Empty disables it.
	Schedule string `yaml:"schedule"`
	// Notify controls whether scheduled runs e-mail candidates about new matches.
	Notify bool `yaml:"notify"`
}

type TasksConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// LoadConfig builds the configuration from QW_* environment variables (a
// .env file in the working directory is loaded first) and then overlays the
// YAML file at path, if given.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	mailHost := "smtp.ethereal.email"
	if IsProduction() {
		mailHost = "smtp.gmail.com"
	}
	// without a secret, unsubscribe links are disabled
	unsubSecret := ""
	if IsDevelopment() {
		unsubSecret = InsecureUnsubscribeSecret
	}

	cfg := &Config{
		Addr:              getEnv("QW_ADDR", ":3000"),
		APITimeout:        getEnvDuration("QW_TIMEOUT", 30*time.Second),
		DatabasePath:      getEnv("QW_DATABASE_PATH", "quantumwork.db"),
		MigrateOnStart:    getEnvBool("QW_MIGRATE_ON_START", true),
		PublicURL:         getEnv("QW_PUBLIC_URL", ""),
		UnsubscribeSecret: getEnv("QW_UNSUBSCRIBE_SECRET", unsubSecret),
		UnsubscribeTTL:    getEnvDuration("QW_UNSUBSCRIBE_TTL", 30*24*time.Hour),
		Mail: MailConfig{
			Host:     getEnv("QW_SMTP_HOST", mailHost),
			Port:     getEnvInt("QW_SMTP_PORT", 587),
			Username: getEnv("QW_SMTP_USER", ""),
			Password: getEnv("QW_SMTP_PASS", ""),
			From:     getEnv("QW_MAIL_FROM", "noreply@quantumwork.co"),
			FromName: getEnv("QW_MAIL_FROM_NAME", "Quantum Work"),
			SiteURL:  getEnv("QW_SITE_URL", "https://quantumwork.co"),
		},
		Scraper: ScraperConfig{
			Timeout:   getEnvDuration("QW_SCRAPER_TIMEOUT", 15*time.Second),
			UserAgent: getEnv("QW_SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			Schedule:  getEnv("QW_SCRAPER_SCHEDULE", ""),
			Notify:    getEnvBool("QW_SCRAPER_NOTIFY", true),
		},
		Tasks: TasksConfig{
			Workers:   getEnvInt("QW_TASK_WORKERS", 2),
			QueueSize: getEnvInt("QW_TASK_QUEUE_SIZE", 100),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.UnsubscribeSecret == InsecureUnsubscribeSecret && !IsDevelopment() {
		errs = append(errs, errors.New("unsubscribe_secret uses the insecure default; set QW_UNSUBSCRIBE_SECRET or QW_ENV=development"))
	}
	if c.UnsubscribeTTL <= 0 {
		errs = append(errs, errors.New("unsubscribe_ttl must be positive"))
	}
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		errs = append(errs, fmt.Errorf("mail.port %d out of range", c.Mail.Port))
	}
	if c.Mail.From == "" {
		errs = append(errs, errors.New("mail.from is required"))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, errors.New("scraper.timeout must be positive"))
	}
	if c.Scraper.Schedule != "" {
		if _, err := cron.ParseStandard(c.Scraper.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("scraper.schedule: %w", err))
		}
	}
	if c.Tasks.Workers <= 0 {
		errs = append(errs, errors.New("tasks.workers must be positive"))
	}
	if c.Tasks.QueueSize <= 0 {
		errs = append(errs, errors.New("tasks.queue_size must be positive"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether QW_ENV is set to development.
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv("QW_ENV"), "development")
}

// IsProduction reports whether QW_ENV is set to production.
func IsProduction() bool {
	return strings.EqualFold(os.Getenv("QW_ENV"), "production")
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return def
}
