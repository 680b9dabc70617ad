package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. It is loaded once at
// startup and passed into the components that need it.
type Config struct {
	Debug bool `yaml:"debug"`

	Server struct {
		Port         string   `yaml:"port"`
		AllowedHosts []string `yaml:"allowed_hosts"`
		CORSOrigins  []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		SecretKey          string `yaml:"secret_key"`
		AccessTokenMinutes int    `yaml:"access_token_minutes"`
		RefreshTokenDays   int    `yaml:"refresh_token_days"`
		RotateRefresh      bool   `yaml:"rotate_refresh"`
		TOTPIssuer         string `yaml:"totp_issuer"`
	} `yaml:"auth"`

	Reset struct {
		URLBase           string `yaml:"url_base"`
		TokenTTLHours     int    `yaml:"token_ttl_hours"`
		ExposeResetTokens bool   `yaml:"expose_reset_tokens"`
	} `yaml:"reset"`

	Throttle struct {
		LoginPerMinute int `yaml:"login_per_minute"`
		ResetPerMinute int `yaml:"reset_per_minute"`
	} `yaml:"throttle"`

	Email struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"email"`
}

// LoadConfig reads configuration from the specified YAML file and then
// applies environment-variable overrides, so deployments can configure the
// service without shipping a file. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	file, err := os.Open(configPath)
	if err == nil {
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	applyEnvOverrides(config)

	if config.Auth.SecretKey == "" {
		return nil, fmt.Errorf("secret key is not configured (set SECRET_KEY)")
	}

	return config, nil
}

func setDefaults(c *Config) {
	c.Server.Port = ":8080"
	c.Server.AllowedHosts = []string{"localhost", "127.0.0.1"}
	c.Server.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	c.Redis.Addr = "localhost:6379"
	c.Auth.AccessTokenMinutes = 60
	c.Auth.RefreshTokenDays = 1
	c.Auth.TOTPIssuer = "Pretium Investment"
	c.Reset.TokenTTLHours = 72
	c.Throttle.LoginPerMinute = 10
	c.Throttle.ResetPerMinute = 5
	c.Email.Port = 587
}

func applyEnvOverrides(c *Config) {
	if v, ok := os.LookupEnv("DEBUG"); ok {
		c.Debug = envBool(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_HOSTS"); v != "" {
		c.Server.AllowedHosts = splitList(v)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.Auth.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Auth.AccessTokenMinutes = n
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Auth.RefreshTokenDays = n
		}
	}
	if v, ok := os.LookupEnv("ROTATE_REFRESH_TOKENS"); ok {
		c.Auth.RotateRefresh = envBool(v)
	}
	if v := os.Getenv("FRONTEND_RESET_URL_BASE"); v != "" {
		c.Reset.URLBase = v
	}
	if v := os.Getenv("RESET_TOKEN_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Reset.TokenTTLHours = n
		}
	}
	if v, ok := os.LookupEnv("EXPOSE_RESET_TOKENS"); ok {
		c.Reset.ExposeResetTokens = envBool(v)
	}
	if v := os.Getenv("LOGIN_THROTTLE_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Throttle.LoginPerMinute = n
		}
	}
	if v := os.Getenv("RESET_THROTTLE_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Throttle.ResetPerMinute = n
		}
	}
	if v := os.Getenv("EMAIL_HOST"); v != "" {
		c.Email.Host = v
	}
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Email.Port = n
		}
	}
	if v := os.Getenv("EMAIL_HOST_USER"); v != "" {
		c.Email.Username = v
	}
	if v := os.Getenv("EMAIL_HOST_PASSWORD"); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv("DEFAULT_FROM_EMAIL"); v != "" {
		c.Email.From = v
	}
}

// AccessTokenLifetime returns the configured access-token lifetime.
func (c *Config) AccessTokenLifetime() time.Duration {
	return time.Duration(c.Auth.AccessTokenMinutes) * time.Minute
}

// RefreshTokenLifetime returns the configured refresh-token lifetime.
func (c *Config) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.Auth.RefreshTokenDays) * 24 * time.Hour
}

// ResetTokenLifetime returns the validity window of password-reset tokens.
func (c *Config) ResetTokenLifetime() time.Duration {
	return time.Duration(c.Reset.TokenTTLHours) * time.Hour
}

// ResetURLBase returns the frontend URL reset links point at.
func (c *Config) ResetURLBase() string {
	if c.Reset.URLBase != "" {
		return c.Reset.URLBase
	}
	if c.Debug {
		return "http://localhost:3000/reset-password"
	}
	return "https://pretiuminvestment.com/reset-password"
}

func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
