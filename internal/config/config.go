package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	Environment     string
	LogLevel        string

	// External auth: tokens are validated against the provider's JWKS when
	// AuthJWKSURL is set, otherwise against the shared HMAC secret.
	AuthJWKSURL string
	JWTSecret   string

	// Payment gateway credentials. When GatewayDemoMode is true the server
	// runs against the offline demo gateway and no credentials are needed.
	GatewayBaseURL   string
	GatewayKeyID     string
	GatewayKeySecret string
	GatewayDemoMode  bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "8080"),
		MongoDBURI:       os.Getenv("MONGODB_URI"),
		MongoDBPassword:  os.Getenv("MONGODB_PASSWORD"),
		Environment:      getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		AuthJWKSURL:      os.Getenv("AUTH_JWKS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		GatewayBaseURL:   getEnvWithDefault("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:     os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("GATEWAY_KEY_SECRET"),
		GatewayDemoMode:  os.Getenv("GATEWAY_DEMO_MODE") == "true",
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.AuthJWKSURL == "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("either AUTH_JWKS_URL or JWT_SECRET is required")
	}
	if !cfg.GatewayDemoMode {
		if cfg.GatewayKeyID == "" {
			return nil, fmt.Errorf("GATEWAY_KEY_ID is required unless GATEWAY_DEMO_MODE=true")
		}
		if cfg.GatewayKeySecret == "" {
			return nil, fmt.Errorf("GATEWAY_KEY_SECRET is required unless GATEWAY_DEMO_MODE=true")
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
