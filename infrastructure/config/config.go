// Package config loads run settings from an optional .env file, the
// env-URL JSON file and UIAUTO_ prefixed environment variables.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"ui_automation/infrastructure/browser"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is the class of configuration errors
var Error = errs.Class("config")

const (
	// DefaultURLsFile may be absent; defaults apply then
	DefaultURLsFile = "testdata/env_urls.json"
	EnvPrefix       = "UIAUTO"
)

type Config struct {
	TestEnv    string        `mapstructure:"testEnv"`
	APIBaseURL string        `mapstructure:"apiBaseURL"`
	Browser    BrowserConfig `mapstructure:"browser"`
	Report     ReportConfig  `mapstructure:"report"`
	Log        LogConfig     `mapstructure:"log"`
	Random     RandomConfig  `mapstructure:"random"`
}

type BrowserConfig struct {
	Engine       string `mapstructure:"engine"`
	Headless     bool   `mapstructure:"headless"`
	SlowMoMs     int    `mapstructure:"slowMoMs"`
	DriverPath   string `mapstructure:"driverPath"`
	ChromeBinary string `mapstructure:"chromeBinary"`
	Port         int    `mapstructure:"port"`
}

type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RandomConfig seeds the data generator. Zero means unseeded.
type RandomConfig struct {
	Seed uint64 `mapstructure:"seed"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("testEnv", "https://www.saucedemo.com/")
	v.SetDefault("apiBaseURL", "https://httpbin.org")

	v.SetDefault("browser.engine", browser.EnginePlaywright)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slowMoMs", 0)
	v.SetDefault("browser.driverPath", "")
	v.SetDefault("browser.chromeBinary", "")
	v.SetDefault("browser.port", 0)

	v.SetDefault("report.dir", ".ui_automation")
	v.SetDefault("log.level", "info")
	v.SetDefault("random.seed", 0)
}

// New returns a viper instance with defaults and environment overrides bound
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are only logged.
func LoadDotEnv(logger *logrus.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debugf("No .env file loaded, using environment variables: %v", err)
	}
}

// Load reads path (JSON) into a fresh viper instance and decodes it
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadFile merges the JSON file at path into v. The default file may be missing.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == DefaultURLsFile {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Error.New("reading %s: %w", path, err)
	}
	return nil
}

// Decode unmarshals v into a validated Config
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Error.New("decoding configuration: %w", err)
	}
	cfg.Browser.Engine = strings.ToLower(strings.TrimSpace(cfg.Browser.Engine))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TestEnv) == "" {
		return Error.New("testEnv is required")
	}
	if err := checkURL("testEnv", c.TestEnv); err != nil {
		return err
	}
	if err := checkURL("apiBaseURL", c.APIBaseURL); err != nil {
		return err
	}
	if !slices.Contains(browser.Engines, c.Browser.Engine) {
		return Error.New("browser.engine %q is not one of %s", c.Browser.Engine, strings.Join(browser.Engines, ", "))
	}
	if c.Browser.SlowMoMs < 0 {
		return Error.New("browser.slowMoMs must not be negative")
	}
	if c.Report.Dir == "" {
		return Error.New("report.dir is required")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return Error.New("log.level: %w", err)
	}
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return Error.New("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Error.New("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// BrowserOptions converts the browser section into engine options
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Engine:       c.Browser.Engine,
		Headless:     c.Browser.Headless,
		SlowMo:       time.Duration(c.Browser.SlowMoMs) * time.Millisecond,
		DriverPath:   c.Browser.DriverPath,
		ChromeBinary: c.Browser.ChromeBinary,
		Port:         c.Browser.Port,
	}
}
