package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/salesoffice/internal/logger"
)

const (
	defaultListenAddr           = "localhost:8000"
	defaultLoggingLevel         = logger.LevelInfo
	defaultEnvironment          = logger.EnvProd
	defaultAccessTokenTTL       = time.Hour
	defaultRefreshTokenTTL      = 7 * 24 * time.Hour
	defaultBcryptCost           = bcrypt.DefaultCost
	defaultLoginRatePerMinute   = 10
	defaultHousekeepingInterval = time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Environment: dev or prod
	Environment string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret to sign access tokens
	SecretKey string

	// Secret to fingerprint refresh tokens before storing them
	RefreshSecretKey string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// bcrypt work factor for new password hashes
	BcryptCost int

	// Login attempts per minute from one IP. Zero disables limiting
	LoginRatePerMinute int

	// How often expired refresh tokens are deleted
	HousekeepingInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:             defaultLoggingLevel,
		Environment:          defaultEnvironment,
		ListenAddr:           defaultListenAddr,
		AccessTokenTTL:       defaultAccessTokenTTL,
		RefreshTokenTTL:      defaultRefreshTokenTTL,
		BcryptCost:           defaultBcryptCost,
		LoginRatePerMinute:   defaultLoginRatePerMinute,
		HousekeepingInterval: defaultHousekeepingInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":           setString(&c.ListenAddr),
		"DATABASE_URI":          setString(&c.DatabaseDSN),
		"SECRET_KEY":            setString(&c.SecretKey),
		"REFRESH_SECRET_KEY":    setString(&c.RefreshSecretKey),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"ENVIRONMENT":           setString(&c.Environment),
		"ACCESS_TOKEN_TTL":      setDuration(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL":     setDuration(&c.RefreshTokenTTL),
		"HOUSEKEEPING_INTERVAL": setDuration(&c.HousekeepingInterval),
		"BCRYPT_COST":           setInt(&c.BcryptCost),
		"LOGIN_RATE_PER_MINUTE": setInt(&c.LoginRatePerMinute),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("salesoffice", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign access tokens")
	fs.StringVarP(&c.RefreshSecretKey, "refresh-secret-key", "f", c.RefreshSecretKey, "Secret key to fingerprint refresh tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "bcrypt cost for new password hashes")
	fs.IntVar(&c.LoginRatePerMinute, "login-rate", c.LoginRatePerMinute, "Login attempts per minute from one IP, 0 disables limit")
	fs.DurationVar(&c.HousekeepingInterval, "housekeeping-interval", c.HousekeepingInterval, "How often expired refresh tokens are deleted")

	return fs.Parse(args)
}

// Check that service can start with the config
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.RefreshSecretKey == "" {
		errs = append(errs, errors.New("refresh secret key is required"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("login rate must not be negative"))
	}

	return errors.Join(errs...)
}
