package config // package config loads application configuration from environment variables

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
	"time"     // time parses duration values
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Access and refresh tokens
// are signed with separate secrets so a leaked access secret cannot
// mint refresh tokens.
type Config struct {
	Env                string        // application environment (e.g. "dev", "prod")
	Port               string        // HTTP port to listen on
	AppName            string        // issuer shown in TOTP provisioning URIs
	DBUser             string        // database username
	DBPass             string        // database password (optional)
	DBHost             string        // database host address
	DBPort             string        // database port number
	DBName             string        // database name
	AccessTokenSecret  string        // secret used to sign access tokens
	RefreshTokenSecret string        // secret used to sign refresh tokens
	AccessTTLMin       int           // access token time-to-live in minutes
	RefreshTTLDays     int           // refresh token time-to-live in days
	OTPTTL             time.Duration // verification code time-to-live
	BcryptCost         int           // bcrypt cost for password hashing
	MigrationsDir      string        // directory of SQL migrations (empty skips migration)
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		AppName:            envStr("APP_NAME", "marketcore"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		AccessTokenSecret:  must("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		OTPTTL:             envDur("OTP_TTL", 5*time.Minute),
		BcryptCost:         mustInt("BCRYPT_COST"),
		MigrationsDir:      os.Getenv("MIGRATIONS_DIR"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
