package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTSecret         string
	Issuer            string
	Audience          string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration

	PasswordPepper string

	UserCacheTTL    time.Duration
	CacheDefaultTTL time.Duration

	HTTPAddress   string
	GRPCAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string

	AllowedOrigins   []string
	TrustedProxies   []string
	AllowCredentials bool
	CookieDomain     string
	CookieSecure     bool

	RateLimitRPS   int
	RateLimitBurst int

	EmailMaxAttempts int
	EmailBackoff     time.Duration

	SeedOnStart bool
	LogLevel    string
}

var required = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"JWT_ISSUER",
	"JWT_AUDIENCE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ACCESS_TOKEN_TTL", "900s")
	v.SetDefault("REFRESH_TOKEN_TTL", "604800s")
	v.SetDefault("USER_CACHE_TTL", "5m")
	v.SetDefault("CACHE_DEFAULT_TTL", "5m")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ALLOW_CREDENTIALS", true)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("EMAIL_MAX_ATTEMPTS", 3)
	v.SetDefault("EMAIL_BACKOFF", "5s")
	v.SetDefault("SEED_ON_START", true)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment, optionally overlaid on ./config.json.
// A ./.env file, when present, fills in variables the environment does not set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("DATABASE_URL"),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		UserCacheTTL:      v.GetDuration("USER_CACHE_TTL"),
		CacheDefaultTTL:   v.GetDuration("CACHE_DEFAULT_TTL"),
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		GRPCAddress:       v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:     v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      v.GetString("HTTPS_KEY_FILE"),
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		CookieDomain:      v.GetString("COOKIE_DOMAIN"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		RateLimitRPS:      v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:    v.GetInt("RATE_LIMIT_BURST"),
		EmailMaxAttempts:  v.GetInt("EMAIL_MAX_ATTEMPTS"),
		EmailBackoff:      v.GetDuration("EMAIL_BACKOFF"),
		SeedOnStart:       v.GetBool("SEED_ON_START"),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}

	origins, err := parseList(v.GetString("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}
	cfg.AllowedOrigins = origins

	proxies, err := parseList(v.GetString("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	rsa := c.JWTPrivateKeyPath != "" && c.JWTPublicKeyPath != ""
	if !rsa && c.JWTSecret == "" {
		return fmt.Errorf("either JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH or JWT_SECRET must be set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == "") {
		return fmt.Errorf("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}
	return nil
}

// parseList accepts a JSON array or a comma separated string.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
