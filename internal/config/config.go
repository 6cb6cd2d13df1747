// Package config loads settings from defaults, an optional file, a .env
// file and OFICINA_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix prefixes every environment override, e.g. OFICINA_HTTP_ADDR.
const EnvPrefix = "OFICINA"

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	DB struct {
		Path string
	} `mapstructure:"db"`

	Log struct {
		Path string
	} `mapstructure:"log"`

	// Collaborator selects the stock item backend of the web console. An
	// empty URL uses the local database.
	Collaborator struct {
		URL     string
		Token   string
		Timeout time.Duration
	} `mapstructure:"collaborator"`

	Inventory struct {
		LowStockThreshold int64         `mapstructure:"low_stock_threshold"`
		FeedbackDelay     time.Duration `mapstructure:"feedback_delay"`
	} `mapstructure:"inventory"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

// Dev reports whether the app runs in development mode.
func (c Config) Dev() bool {
	return c.App.Env == "dev"
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", "oficina.sqlite3")
	v.SetDefault("log.path", "")
	v.SetDefault("collaborator.url", "")
	v.SetDefault("collaborator.token", "")
	v.SetDefault("collaborator.timeout", 15*time.Second)
	v.SetDefault("inventory.low_stock_threshold", 5)
	v.SetDefault("inventory.feedback_delay", 3*time.Second)
	v.SetDefault("metrics.enabled", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v and decodes the
// result. Variables from a .env file in the working directory are loaded
// first; real environment variables win over them.
func Load(v *viper.Viper, path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Inventory.LowStockThreshold < 0 {
		return Config{}, fmt.Errorf("inventory.low_stock_threshold must not be negative")
	}
	return c, nil
}
