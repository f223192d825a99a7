package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names understood by parseEnv.
const (
	EnvHTTPAddr      = "BLOG_HTTP_ADDR"
	EnvDatabaseDSN   = "BLOG_DATABASE_DSN"
	EnvSecretKey     = "BLOG_SECRET_KEY"
	EnvSessionTTL    = "BLOG_SESSION_TTL"
	EnvAdminUsername = "BLOG_ADMIN_USERNAME"
	EnvAdminEmail    = "BLOG_ADMIN_EMAIL"
	EnvAdminPassword = "BLOG_ADMIN_PASSWORD"
	EnvCORSOrigins   = "BLOG_CORS_ORIGINS"
	EnvLogLevel      = "BLOG_LOG_LEVEL"
	EnvSecureCookie  = "BLOG_SECURE_COOKIE"
)

// loadDotEnv is a seam for tests; a missing .env file is not an error.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays values from the process environment. godotenv never
// overrides variables that are already set, so real env beats .env.
func parseEnv(config *Config) {
	loadDotEnv()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(EnvHTTPAddr, &config.HTTPAddr)
	setString(EnvDatabaseDSN, &config.DatabaseDSN)
	setString(EnvSecretKey, &config.SecretKey)
	setString(EnvAdminUsername, &config.AdminUsername)
	setString(EnvAdminEmail, &config.AdminEmail)
	setString(EnvAdminPassword, &config.AdminPassword)
	setString(EnvLogLevel, &config.LogLevel)

	if v, ok := os.LookupEnv(EnvSessionTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SessionTTL = d
	}

	if v, ok := os.LookupEnv(EnvSecureCookie); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SecureCookie = b
	}

	if v, ok := os.LookupEnv(EnvCORSOrigins); ok && v != "" {
		config.CORSOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
