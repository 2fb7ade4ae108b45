package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	SharedDatabaseURL string
	AdminKeySalt      string
	SyncInterval      time.Duration
	FetchTimeout      time.Duration
	DeviceLabel       string
}

// Defaults
const (
	DefaultPort         = 3318
	DefaultDatabaseURL  = "file:ticketgate.db"
	DefaultSyncInterval = 5 * time.Second
	DefaultFetchTimeout = 30 * time.Second
	DefaultDeviceLabel  = "Scanner"
)

// LoadEnvFile loads KEY=value pairs from path into the environment.
// Variables already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var syncInterval, fetchTimeout string

	fs := flag.NewFlagSet("ticketgate", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Local database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.SharedDatabaseURL, "shared-db", "", "Shared ledger database URL (default: local database)")

	// Sync and import
	fs.StringVar(&syncInterval, "sync-interval", "", "Ledger polling interval, e.g. 5s")
	fs.StringVar(&fetchTimeout, "fetch-timeout", "", "Spreadsheet download timeout, e.g. 30s")
	fs.StringVar(&cfg.DeviceLabel, "label", "", "Default validator label for scans")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.SharedDatabaseURL == "" {
		cfg.SharedDatabaseURL = os.Getenv("SHARED_DATABASE_URL")
	}

	var err error
	if cfg.SyncInterval, err = durationSetting(syncInterval, "SYNC_INTERVAL", DefaultSyncInterval); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = durationSetting(fetchTimeout, "FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return Config{}, err
	}

	if cfg.DeviceLabel == "" {
		cfg.DeviceLabel = os.Getenv("DEVICE_LABEL")
	}
	if cfg.DeviceLabel == "" {
		cfg.DeviceLabel = DefaultDeviceLabel
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}

// durationSetting reads a flag value, then env, then def.
func durationSetting(flagValue, envKey string, def time.Duration) (time.Duration, error) {
	v := flagValue
	if v == "" {
		v = os.Getenv(envKey)
	}
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", envKey, v)
	}
	return d, nil
}
