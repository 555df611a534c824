package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ClientConfig struct {
	BaseURL         string `yaml:"base_url"`
	CredentialsPath string `yaml:"credentials_path"`
	// When set, session credentials are kept in Redis instead of a local
	// file. Used by headless agents that share a session across hosts.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
	Timeout       string `yaml:"timeout"`
}

type StubConfig struct {
	Port            int    `yaml:"port"`
	GinMode         string `yaml:"gin_mode"`
	DSN             string `yaml:"dsn"`
	SQLitePath      string `yaml:"sqlite_path"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	JWTSecret       string `yaml:"jwt_secret"`
	JWTIssuer       string `yaml:"jwt_issuer"`
	AccessTTL       string `yaml:"access_ttl"`
	RefreshTTL      string `yaml:"refresh_ttl"`
	OTPTTL          string `yaml:"otp_ttl"`
	OTPLength       int    `yaml:"otp_length"`
	OTPMaxAttempts  int    `yaml:"otp_max_attempts"`
	OTPResendLimit  int    `yaml:"otp_resend_limit"`
	OTPResendWindow string `yaml:"otp_resend_window"`
	TwilioSID       string `yaml:"twilio_sid"`
	TwilioToken     string `yaml:"twilio_token"`
	TwilioFrom      string `yaml:"twilio_from"`
	CasbinModelPath string `yaml:"casbin_model_path"`
	AdminEmail      string `yaml:"admin_email"`
	AdminPassword   string `yaml:"admin_password"`
}

type ConfigFile struct {
	Client ClientConfig `yaml:"client"`
	Stub   StubConfig   `yaml:"stub"`
}

// Config is the fully parsed configuration shared by the CLI and the stub.
type Config struct {
	// Client side
	BaseURL         string
	CredentialsPath string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKey        string
	Timeout         time.Duration

	// Stub side
	StubPort          string
	GinMode           string
	DSN               string
	SQLitePath        string
	StubRedisAddr     string
	StubRedisPassword string
	StubRedisDB       int
	JWTSecret         string
	JWTIssuer         string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	OTPTTL            time.Duration
	OTPLength         int
	OTPMaxAttempts    int
	OTPResendLimit    int
	OTPResendWindow   time.Duration
	TwilioSID         string
	TwilioToken       string
	TwilioFrom        string
	CasbinModelPath   string
	AdminEmail        string
	AdminPassword     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// Load reads the YAML config file at path, falling back to defaults and
// environment overrides for values the file omits. A missing file is not an
// error; everything has a workable default for local development.
func Load(path string) (*Config, error) {
	var file ConfigFile
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("could not parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	timeout, err := duration(file.Client.Timeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid client timeout: %w", err)
	}
	accTTL, err := duration(file.Stub.AccessTTL, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid access TTL: %w", err)
	}
	refTTL, err := duration(file.Stub.RefreshTTL, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh TTL: %w", err)
	}
	otpTTL, err := duration(file.Stub.OTPTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}
	resWnd, err := duration(file.Stub.OTPResendWindow, 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}

	credPath := file.Client.CredentialsPath
	if credPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		credPath = filepath.Join(home, ".danaam", "credentials.json")
	}

	cfg := &Config{
		BaseURL:         env("DANAAM_BASE_URL", withDefault(file.Client.BaseURL, "https://api.danaam.sa/api")),
		CredentialsPath: env("DANAAM_CREDENTIALS", credPath),
		RedisAddr:       env("DANAAM_REDIS_ADDR", file.Client.RedisAddr),
		RedisPassword:   file.Client.RedisPassword,
		RedisDB:         file.Client.RedisDB,
		RedisKey:        withDefault(file.Client.RedisKey, "danaam:session"),
		Timeout:         timeout,

		StubPort:          env("STUB_PORT", withDefault(itoa(file.Stub.Port), "8089")),
		GinMode:           withDefault(file.Stub.GinMode, "release"),
		DSN:               env("STUB_DSN", file.Stub.DSN),
		SQLitePath:        withDefault(file.Stub.SQLitePath, "danaam-stub.db"),
		StubRedisAddr:     env("STUB_REDIS_ADDR", withDefault(file.Stub.RedisAddr, "localhost:6379")),
		StubRedisPassword: file.Stub.RedisPassword,
		StubRedisDB:       file.Stub.RedisDB,
		JWTSecret:         env("STUB_JWT_SECRET", withDefault(file.Stub.JWTSecret, "dev-only-secret")),
		JWTIssuer:         withDefault(file.Stub.JWTIssuer, "danaam-stub"),
		AccessTTL:         accTTL,
		RefreshTTL:        refTTL,
		OTPTTL:            otpTTL,
		OTPLength:         withDefaultInt(file.Stub.OTPLength, 6),
		OTPMaxAttempts:    withDefaultInt(file.Stub.OTPMaxAttempts, 5),
		OTPResendLimit:    withDefaultInt(file.Stub.OTPResendLimit, 3),
		OTPResendWindow:   resWnd,
		TwilioSID:         env("TWILIO_ACCOUNT_SID", file.Stub.TwilioSID),
		TwilioToken:       env("TWILIO_AUTH_TOKEN", file.Stub.TwilioToken),
		TwilioFrom:        env("TWILIO_FROM_NUMBER", file.Stub.TwilioFrom),
		CasbinModelPath:   withDefault(file.Stub.CasbinModelPath, "config/casbin_model.conf"),
		AdminEmail:        env("STUB_ADMIN_EMAIL", withDefault(file.Stub.AdminEmail, "admin@danaam.sa")),
		AdminPassword:     env("STUB_ADMIN_PASSWORD", withDefault(file.Stub.AdminPassword, "admin12345")),
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func withDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func itoa(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}
