package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ListenAddr  string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`

	// Aggregation sizes
	TopChannels   int `mapstructure:"top_channels" yaml:"top_channels"`
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	SampleRows    int `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Chart output
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// Decorative animation asset
	LottieURL  string `mapstructure:"lottie_url" yaml:"lottie_url"`
	AssetCache string `mapstructure:"asset_cache" yaml:"asset_cache"`
	RedisAddr  string `mapstructure:"redis_addr" yaml:"redis_addr"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// DefaultLottieURL is the animation shown in the dashboard header.
const DefaultLottieURL = "https://assets2.lottiefiles.com/packages/lf20_j1adxtyb.json"

// Keys lists every settable key, in file order.
var Keys = []string{
	"listen_addr", "cors_origins", "log_level",
	"top_channels", "histogram_bins", "sample_rows",
	"chart_width", "chart_height",
	"lottie_url", "asset_cache", "redis_addr",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
}

// Dir returns ~/.trendboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".trendboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.trendboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("top_channels", 10)
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 450)
	v.SetDefault("lottie_url", DefaultLottieURL)
	v.SetDefault("asset_cache", "memory")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 10)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
// A .env file in the working directory is loaded into the environment
// first; variables already set win.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TRENDBOARD")
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file is fine, a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the dashboard cannot run with.
func (c *Global) Validate() error {
	switch c.AssetCache {
	case "memory", "redis":
	default:
		return fmt.Errorf("asset_cache must be memory or redis, got %q", c.AssetCache)
	}
	if c.TopChannels <= 0 || c.HistogramBins <= 0 {
		return fmt.Errorf("top_channels and histogram_bins must be positive")
	}
	if c.ChartWidth < 100 || c.ChartHeight < 100 {
		return fmt.Errorf("chart size must be at least 100x100, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	return nil
}

// Set assigns one key from its string form, using viper's type coercion.
func (c *Global) Set(key, value string) error {
	v := viper.New()
	setDefaults(v)
	cur := map[string]any{}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := yaml.Unmarshal(b, &cur); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := v.MergeConfigMap(cur); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	known := false
	for _, k := range Keys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}
	if key == "cors_origins" {
		v.Set(key, splitList(value))
	} else {
		v.Set(key, value)
	}
	var next Global
	if err := v.Unmarshal(&next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
