// Package config loads sysreport settings from defaults, a YAML file, .env, the environment and flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SMTP security modes
const (
	SecurityStartTLS = "starttls"
	SecuritySSL      = "ssl"
	SecurityNone     = "none"
)

const envPrefix = "SYSREPORT_"

// Config holds the configuration for a run
type Config struct {
	OutputDir       string `yaml:"output_dir"`
	KeepReport      bool   `yaml:"keep_report"`
	KeepUndelivered bool   `yaml:"keep_undelivered"`

	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port"`
	SMTPUsername string        `yaml:"smtp_username"`
	SMTPPassword string        `yaml:"smtp_password"`
	SMTPSecurity string        `yaml:"smtp_security"`
	SMTPTimeout  time.Duration `yaml:"smtp_timeout"`
	MailFrom     string        `yaml:"mail_from"`
	MailTo       []string      `yaml:"mail_to"`

	IPEchoURL     string        `yaml:"ip_echo_url"`
	GeoURL        string        `yaml:"geo_url"`
	IPEchoTimeout time.Duration `yaml:"ip_echo_timeout"`
	GeoTimeout    time.Duration `yaml:"geo_timeout"`
	GeoIPDir      string        `yaml:"geoip_dir"`

	RegistryHive string `yaml:"registry_hive"`
	NotifyURL    string `yaml:"notify_url"`
	LogLevel     string `yaml:"log_level"`

	ShowVersion bool `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		OutputDir:     ".",
		SMTPPort:      587,
		SMTPSecurity:  SecurityStartTLS,
		SMTPTimeout:   30 * time.Second,
		IPEchoURL:     "https://api.ipify.org",
		GeoURL:        "http://ip-api.com/json/",
		IPEchoTimeout: 5 * time.Second,
		GeoTimeout:    10 * time.Second,
		LogLevel:      "info",
	}
}

// Load layers SYSREPORT_* environment variables over base. A nil base
// starts from Default.
func Load(base *Config) *Config {
	cfg := base
	if cfg == nil {
		cfg = Default()
	}
	applyEnv(cfg)
	return cfg
}

// LoadFromFlags builds the configuration from args. Values are layered as
// defaults, -config YAML file, .env file, environment, then explicit flags.
func LoadFromFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("sysreport", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to a YAML configuration file")
	envFile := fs.String("env-file", ".env", "Path to a .env file with secrets (ignored when missing)")
	outputDir := fs.String("output-dir", "", "Directory for the JSON report")
	keepReport := fs.Bool("keep-report", false, "Keep the JSON report after the run")
	smtpHost := fs.String("smtp-host", "", "SMTP submission host")
	smtpPort := fs.Int("smtp-port", 0, "SMTP submission port")
	smtpUser := fs.String("smtp-username", "", "SMTP username")
	smtpSecurity := fs.String("smtp-security", "", "SMTP security: starttls, ssl or none")
	smtpTimeout := fs.Duration("smtp-timeout", 0, "Upper bound for the whole SMTP session")
	ipEchoURL := fs.String("ip-echo-url", "", "Plain-text public IP echo service")
	ipEchoTimeout := fs.Duration("ip-echo-timeout", 0, "Timeout for the public IP lookup")
	geoURL := fs.String("geo-url", "", "JSON geolocation service, queried as URL+IP")
	geoTimeout := fs.Duration("geo-timeout", 0, "Timeout for the geolocation lookup")
	mailFrom := fs.String("mail-from", "", "Sender address")
	mailTo := fs.String("mail-to", "", "Comma-separated recipient addresses")
	geoIPDir := fs.String("geoip-dir", "", "Directory holding GeoLite2-City.mmdb for offline geolocation")
	registryHive := fs.String("registry-hive", "", "Offline Windows SOFTWARE hive used for browser detection")
	notifyURL := fs.String("notify-url", "", "Shoutrrr URL that receives a short run summary")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error")
	showVersion := fs.Bool("version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *showVersion {
		cfg := Default()
		cfg.ShowVersion = true
		return cfg, nil
	}

	cfg := Default()
	if *configPath != "" {
		if err := loadYAML(*configPath, cfg); err != nil {
			return nil, err
		}
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	cfg = Load(cfg)

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["output-dir"] {
		cfg.OutputDir = *outputDir
	}
	if set["keep-report"] {
		cfg.KeepReport = *keepReport
	}
	if set["smtp-host"] {
		cfg.SMTPHost = *smtpHost
	}
	if set["smtp-port"] {
		cfg.SMTPPort = *smtpPort
	}
	if set["smtp-username"] {
		cfg.SMTPUsername = *smtpUser
	}
	if set["smtp-security"] {
		cfg.SMTPSecurity = *smtpSecurity
	}
	if set["smtp-timeout"] {
		cfg.SMTPTimeout = *smtpTimeout
	}
	if set["ip-echo-url"] {
		cfg.IPEchoURL = *ipEchoURL
	}
	if set["ip-echo-timeout"] {
		cfg.IPEchoTimeout = *ipEchoTimeout
	}
	if set["geo-url"] {
		cfg.GeoURL = *geoURL
	}
	if set["geo-timeout"] {
		cfg.GeoTimeout = *geoTimeout
	}
	if set["mail-from"] {
		cfg.MailFrom = *mailFrom
	}
	if set["mail-to"] {
		cfg.MailTo = splitList(*mailTo)
	}
	if set["geoip-dir"] {
		cfg.GeoIPDir = *geoIPDir
	}
	if set["registry-hive"] {
		cfg.RegistryHive = *registryHive
	}
	if set["notify-url"] {
		cfg.NotifyURL = *notifyURL
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late in the run
func (c *Config) Validate() error {
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid smtp port %d", c.SMTPPort)
	}
	switch c.SMTPSecurity {
	case SecurityStartTLS, SecuritySSL, SecurityNone:
	default:
		return fmt.Errorf("invalid smtp security %q", c.SMTPSecurity)
	}
	if c.SMTPTimeout <= 0 {
		return fmt.Errorf("smtp timeout must be positive")
	}
	if c.IPEchoTimeout <= 0 || c.GeoTimeout <= 0 {
		return fmt.Errorf("lookup timeouts must be positive")
	}
	return nil
}

// MailConfigured reports whether enough SMTP settings exist to attempt delivery
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && len(c.MailTo) > 0
}

// Sender returns the From address, falling back to the SMTP username
func (c *Config) Sender() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return c.SMTPUsername
}

func loadYAML(path string, cfg *Config) error {
	//nolint:gosec // G304: path comes from the operator's -config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.KeepReport = getEnvBool("KEEP_REPORT", cfg.KeepReport)
	cfg.KeepUndelivered = getEnvBool("KEEP_UNDELIVERED", cfg.KeepUndelivered)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPSecurity = getEnv("SMTP_SECURITY", cfg.SMTPSecurity)
	cfg.SMTPTimeout = getEnvDuration("SMTP_TIMEOUT", cfg.SMTPTimeout)
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.MailFrom)
	if to := getEnv("MAIL_TO", ""); to != "" {
		cfg.MailTo = splitList(to)
	}
	cfg.IPEchoURL = getEnv("IP_ECHO_URL", cfg.IPEchoURL)
	cfg.IPEchoTimeout = getEnvDuration("IP_ECHO_TIMEOUT", cfg.IPEchoTimeout)
	cfg.GeoURL = getEnv("GEO_URL", cfg.GeoURL)
	cfg.GeoTimeout = getEnvDuration("GEO_TIMEOUT", cfg.GeoTimeout)
	cfg.GeoIPDir = getEnv("GEOIP_DIR", cfg.GeoIPDir)
	cfg.RegistryHive = getEnv("REGISTRY_HIVE", cfg.RegistryHive)
	cfg.NotifyURL = getEnv("NOTIFY_URL", cfg.NotifyURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
