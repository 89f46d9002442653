// Package config loads the settings shared by the formlayout binaries.
//
// Values come from an optional YAML, JSON or TOML file and from environment
// variables prefixed with FORMLAYOUT_, e.g. FORMLAYOUT_RENDER_THEME=styled.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/asset"
	"github.com/lvillar/formlayout/internal/logging"
	"github.com/lvillar/formlayout/pdfwriter"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FORMLAYOUT"

// Config holds all settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Render RenderConfig `mapstructure:"render"`
	Assets AssetsConfig `mapstructure:"assets"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RenderConfig configures form rendering.
type RenderConfig struct {
	Template  string `mapstructure:"template"`   // builtin name or description path
	Theme     string `mapstructure:"theme"`      // overrides the description's theme when set
	OutputDir string `mapstructure:"output_dir"` // where the CLI writes PDFs
	FixedTime string `mapstructure:"fixed_time"` // RFC 3339; empty uses the current time
	Compress  bool   `mapstructure:"compress"`
	Creator   string `mapstructure:"creator"`
}

// AssetsConfig configures logo resolution.
type AssetsConfig struct {
	Dir     string        `mapstructure:"dir"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load reads the file at path, if any, and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("render.template", "bewirtung")
	v.SetDefault("render.theme", "")
	v.SetDefault("render.output_dir", ".")
	v.SetDefault("render.fixed_time", "")
	v.SetDefault("render.compress", true)
	v.SetDefault("render.creator", "formlayout")

	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.base_url", "")
	v.SetDefault("assets.timeout", asset.DefaultTimeout)
	v.SetDefault("assets.retries", asset.DefaultAttempts)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
}

// Validate checks values that the libraries would otherwise reject late.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Render.Template == "" {
		return fmt.Errorf("render.template is required")
	}
	if _, err := fl.ParseFidelity(c.Render.Theme); err != nil {
		return fmt.Errorf("render.theme: %w", err)
	}
	if _, err := c.FixedTime(); err != nil {
		return err
	}
	if c.Assets.Timeout <= 0 {
		return fmt.Errorf("assets.timeout must be positive")
	}
	if c.Assets.Retries < 1 {
		return fmt.Errorf("assets.retries must be at least 1")
	}
	if c.Assets.BaseURL != "" {
		if _, err := asset.NewHTTP(c.Assets.BaseURL); err != nil {
			return fmt.Errorf("assets.base_url: %w", err)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// FixedTime parses render.fixed_time. The zero time means "now".
func (c *Config) FixedTime() (time.Time, error) {
	if c.Render.FixedTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Render.FixedTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("render.fixed_time: %w", err)
	}
	return t, nil
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	return logging.New(logging.Config{Level: c.Log.Level, Format: c.Log.Format, Output: c.Log.Output})
}

// AssetSource builds the logo source: the asset directory, then the remote
// base URL, then the built-in assets. Hits are cached for the process.
func (c *Config) AssetSource(logger *zap.Logger) (asset.Source, error) {
	var chain asset.Chain
	if c.Assets.Dir != "" {
		chain = append(chain, asset.Dir(c.Assets.Dir))
	}
	if c.Assets.BaseURL != "" {
		h, err := asset.NewHTTP(c.Assets.BaseURL,
			asset.WithClient(&http.Client{Timeout: c.Assets.Timeout}),
			asset.WithRetry(c.Assets.Retries, asset.DefaultDelay),
			asset.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		chain = append(chain, h)
	}
	chain = append(chain, asset.Builtin())
	return asset.NewCache(chain), nil
}

// WriterOptions returns the PDF writer options for the render section.
func (c *Config) WriterOptions(logger *zap.Logger) []pdfwriter.Option {
	opts := []pdfwriter.Option{
		pdfwriter.WithCompression(c.Render.Compress),
		pdfwriter.WithLogger(logger),
	}
	if t, err := c.FixedTime(); err == nil && !t.IsZero() {
		opts = append(opts, pdfwriter.WithFixedTime(t))
	}
	return opts
}
