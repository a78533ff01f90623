package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the ledger, e.g. LEDGER_FILE.
const EnvPrefix = "LEDGER"

// Config represents the ledger configuration
type Config struct {
	File     string `mapstructure:"file"`      // path of the persisted ledger document
	Currency string `mapstructure:"currency"`  // ISO code used to display amounts
	LogLevel string `mapstructure:"log_level"` // zerolog level name
}

// Options says where Load looks besides the environment.
type Options struct {
	ConfigFile string         // explicit config file; empty searches ./ledger.{json,yaml,toml}
	EnvFile    string         // dotenv file; empty means ".env", a missing file is ignored
	Flags      *pflag.FlagSet // flags named file, currency and log-level override everything else
}

// Load resolves the configuration from defaults, config file, .env file,
// LEDGER_* environment variables and flags, in increasing precedence.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaultConfig(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("ledger")
	}
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist, unless it was asked for explicitly
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, flag := range map[string]string{"file": "file", "currency": "currency", "log_level": "log-level"} {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.Currency = strings.ToUpper(strings.TrimSpace(config.Currency))
	if config.File == "" {
		return nil, errors.New("ledger file path must not be empty")
	}
	return &config, nil
}

// setDefaultConfig sets default configuration values
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("file", "ledger.json")
	v.SetDefault("currency", "USD")
	v.SetDefault("log_level", "warn")
}
