package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	SessionTTLHours int      `mapstructure:"SESSION_TTL_HOURS"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	PHIKey          string   `mapstructure:"PHI_ENCRYPTION_KEY"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	PinataAPIKey    string   `mapstructure:"PINATA_API_KEY"`
	PinataSecretKey string   `mapstructure:"PINATA_SECRET_KEY"`
	PinataBaseURL   string   `mapstructure:"PINATA_BASE_URL"`
	IPFSGatewayURL  string   `mapstructure:"IPFS_GATEWAY_URL"`
	TriageRefFile   string   `mapstructure:"TRIAGE_REFERENCE_FILE"`
	MaxUploadMB     int64    `mapstructure:"MAX_UPLOAD_MB"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SESSION_TTL_HOURS", 168)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("PINATA_BASE_URL", "https://api.pinata.cloud")
	v.SetDefault("IPFS_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs")
	v.SetDefault("MAX_UPLOAD_MB", 50)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("PHI_ENCRYPTION_KEY")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("PINATA_API_KEY")
	v.BindEnv("PINATA_SECRET_KEY")
	v.BindEnv("PINATA_BASE_URL")
	v.BindEnv("IPFS_GATEWAY_URL")
	v.BindEnv("TRIAGE_REFERENCE_FILE")
	v.BindEnv("MAX_UPLOAD_MB")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production a JWT
// secret and a PHI encryption key are required; the key must be a valid
// 64-character hex string (32 bytes when decoded).
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.IsProduction() && c.PHIKey == "" {
		return fmt.Errorf("PHI_ENCRYPTION_KEY is required in production")
	}
	if c.PHIKey != "" {
		keyBytes, err := hex.DecodeString(c.PHIKey)
		if err != nil {
			return fmt.Errorf("PHI_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("PHI_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
		}
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}
