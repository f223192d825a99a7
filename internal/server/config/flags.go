package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/blogportal/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                HTTP bind address (e.g., ":8080")
//	-d string                PostgreSQL DSN
//	-s string                session token HMAC secret
//	-t int                   session lifetime, minutes
//	-l string                log level
//	-o string                comma-separated CORS origins
//	-admin-user string       bootstrap admin username
//	-admin-email string      bootstrap admin email
//	-admin-password string   bootstrap admin password
//	-secure-cookie           mark the session cookie Secure (HTTPS only)
//
// -t only overrides the lifetime when given, so a sub-minute value from the
// environment or the JSON file survives.
// Only these flags are considered; -c/-config belongs to parseJson.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-l", "-o", "-admin-user", "-admin-email", "-admin-password", "-secure-cookie"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session secret key")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	origins := fs.String("o", "", "allowed CORS origins, comma separated")
	fs.StringVar(&config.AdminUsername, "admin-user", config.AdminUsername, "bootstrap admin username")
	fs.StringVar(&config.AdminEmail, "admin-email", config.AdminEmail, "bootstrap admin email")
	fs.StringVar(&config.AdminPassword, "admin-password", config.AdminPassword, "bootstrap admin password")
	fs.BoolVar(&config.SecureCookie, "secure-cookie", config.SecureCookie, "send the session cookie over HTTPS only")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
	if *origins != "" {
		config.CORSOrigins = splitList(*origins)
	}
}
