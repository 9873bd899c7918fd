package config

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config represents the thumbnailer configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" toml:"log"`
	Scratch ScratchConfig `yaml:"scratch" toml:"scratch"`
	Preview PreviewConfig `yaml:"preview" toml:"preview"`
	Limits  LimitsConfig  `yaml:"limits" toml:"limits"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Scratch.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	return c.Limits.Validate()
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Format == "" {
		c.Format = LogFormatConsole
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("", "debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In(LogFormatConsole, LogFormatJSON)),
	)
}

// ScratchConfig controls where extraction directories are created.
// An empty Root means the system temp directory.
type ScratchConfig struct {
	Root   string `yaml:"root" toml:"root"`
	Prefix string `yaml:"prefix" toml:"prefix"`
}

// Validate validates the scratch configuration.
func (c *ScratchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Prefix, validation.Required, validation.Match(regexp.MustCompile(`^[A-Za-z0-9_.-]+$`))),
	)
}

// PreviewConfig holds the preview synthesis settings.
type PreviewConfig struct {
	BackgroundTop    string `yaml:"background_top" toml:"background_top"`
	BackgroundBottom string `yaml:"background_bottom" toml:"background_bottom"`
	// BrandMark is an optional image drawn in place of the procedural play button.
	BrandMark      string `yaml:"brand_mark" toml:"brand_mark"`
	SmallThreshold int    `yaml:"small_threshold" toml:"small_threshold"`
	SmallScale     int    `yaml:"small_scale" toml:"small_scale"`
	DefaultSize    int    `yaml:"default_size" toml:"default_size"`
	MaxPixels      int    `yaml:"max_pixels" toml:"max_pixels"`
	Caption        bool   `yaml:"caption" toml:"caption"`
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BackgroundTop, validation.Required, validation.Match(hexColor)),
		validation.Field(&c.BackgroundBottom, validation.Required, validation.Match(hexColor)),
		validation.Field(&c.SmallThreshold, validation.Min(0)),
		validation.Field(&c.SmallScale, validation.Required, validation.Min(1), validation.Max(8)),
		validation.Field(&c.DefaultSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxPixels, validation.Required, validation.Min(1)),
	)
}

// LimitsConfig bounds what the extractor is willing to read.
type LimitsConfig struct {
	MaxEntryBytes int64 `yaml:"max_entry_bytes" toml:"max_entry_bytes"`
	MaxEntries    int   `yaml:"max_entries" toml:"max_entries"`
}

// Validate validates the limits configuration.
func (c *LimitsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxEntryBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxEntries, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a Config with the stock thumbnail look and limits.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
		Scratch: ScratchConfig{
			Prefix: "lottiethumb_",
		},
		Preview: PreviewConfig{
			BackgroundTop:    "#1D003D",
			BackgroundBottom: "#000000",
			SmallThreshold:   250,
			SmallScale:       2,
			DefaultSize:      512,
			MaxPixels:        4096 * 4096,
			Caption:          true,
		},
		Limits: LimitsConfig{
			MaxEntryBytes: 64 << 20,
			MaxEntries:    4096,
		},
	}
}
