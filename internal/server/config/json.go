package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/blogportal/internal/flagx"
	"github.com/dmitrijs2005/blogportal/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr      string         `json:"http_addr"`
	DatabaseDSN   string         `json:"database_dsn"`
	SecretKey     string         `json:"secret_key"`
	SessionTTL    timex.Duration `json:"session_ttl"`
	AdminUsername string         `json:"admin_username"`
	AdminEmail    string         `json:"admin_email"`
	AdminPassword string         `json:"admin_password"`
	CORSOrigins   []string       `json:"cors_origins"`
	LogLevel      string         `json:"log_level"`
	SecureCookie  *bool          `json:"secure_cookie"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// every non-empty value into config. An unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFilePath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AdminUsername, c.AdminUsername)
	overlay(&config.AdminEmail, c.AdminEmail)
	overlay(&config.AdminPassword, c.AdminPassword)
	overlay(&config.LogLevel, c.LogLevel)

	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.SecureCookie != nil {
		config.SecureCookie = *c.SecureCookie
	}
}
