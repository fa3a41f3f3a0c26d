package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zatchheems/yactatt/display"
	"github.com/zatchheems/yactatt/transit"
)

const (
	CONFILE     = "config.yml"
	API_KEY_ENV = "CTA_API_KEY"
)

type Config struct {
	RealHW     bool   `yaml:"-"`
	Headless   bool   `yaml:"-"`
	Configfile string `yaml:"-"`

	Tracker TrackerConfig `yaml:"Tracker"`
	Display DisplayConfig `yaml:"Display"`
	Layout  LayoutConfig  `yaml:"Layout"`
	Night   NightConfig   `yaml:"Night"`
	Logging LoggingConfig `yaml:"Logging"`
	Web     WebConfig     `yaml:"Web"`
}

type TrackerConfig struct {
	Feed           string        `yaml:"Feed" json:"-" validate:"oneof=bus train"`
	BaseURL        string        `yaml:"BaseURL,omitempty" json:"-"`
	Route          string        `yaml:"Route" json:"Route"`
	Stop           string        `yaml:"Stop" json:"Stop" validate:"required"`
	APIKey         string        `yaml:"APIKey,omitempty" json:"-"`
	PollInterval   time.Duration `yaml:"PollInterval" json:"PollInterval" validate:"min=1s"`
	RequestTimeout time.Duration `yaml:"RequestTimeout" json:"RequestTimeout" validate:"min=0"`
	Gzip           bool          `yaml:"Gzip" json:"Gzip"`
}

type DisplayConfig struct {
	Rows              int           `yaml:"Rows" validate:"min=8,max=64"`
	Cols              int           `yaml:"Cols" validate:"min=8,max=256"`
	RefreshRate       int           `yaml:"RefreshRate" validate:"min=1,max=1000"`
	Brightness        int           `yaml:"Brightness" validate:"min=1,max=100"`
	HardwareMapping   string        `yaml:"HardwareMapping" validate:"oneof=regular adafruit-hat adafruit-hat-pwm"`
	PWMBits           int           `yaml:"PWMBits" validate:"min=1,max=8"`
	PWMLSBNanoseconds int           `yaml:"PWMLSBNanoseconds" validate:"min=50,max=3000"`
	Splash            time.Duration `yaml:"Splash" validate:"min=0"`
}

type LayoutConfig struct {
	TopMargin int    `yaml:"TopMargin" json:"TopMargin" validate:"min=0"`
	RowPitch  int    `yaml:"RowPitch" json:"RowPitch" validate:"min=6"`
	RouteX    int    `yaml:"RouteX" json:"RouteX" validate:"min=0"`
	EtaX      int    `yaml:"EtaX" json:"EtaX" validate:"min=0"`
	DestX     int    `yaml:"DestX" json:"DestX" validate:"min=0"`
	RouteRGB  string `yaml:"RouteRGB" json:"RouteRGB"`
	EtaRGB    string `yaml:"EtaRGB" json:"EtaRGB"`
	DestRGB   string `yaml:"DestRGB" json:"DestRGB"`
	DelayRGB  string `yaml:"DelayRGB" json:"DelayRGB"`
	BlinkDue  bool   `yaml:"BlinkDue" json:"BlinkDue"`
}

type NightConfig struct {
	Enabled    bool    `yaml:"Enabled" json:"Enabled"`
	Latitude   float64 `yaml:"Latitude" json:"Latitude" validate:"min=-90,max=90"`
	Longitude  float64 `yaml:"Longitude" json:"Longitude" validate:"min=-180,max=180"`
	Brightness int     `yaml:"Brightness" json:"Brightness" validate:"min=1,max=100"`
}

type LoggingConfig struct {
	Level      string `yaml:"Level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format     string `yaml:"Format" validate:"oneof=text json"`
	File       string `yaml:"File,omitempty"`
	MaxSizeMB  int    `yaml:"MaxSizeMB" validate:"min=0"`
	MaxBackups int    `yaml:"MaxBackups" validate:"min=0"`
	MaxAgeDays int    `yaml:"MaxAgeDays" validate:"min=0"`
	Compress   bool   `yaml:"Compress"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"Enabled"`
	Listen    string `yaml:"Listen"`
	RateLimit int    `yaml:"RateLimit" validate:"min=0"`
}

// ConfigurationError is fatal: the process cannot start with this config.
type ConfigurationError struct {
	File string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.File == "" {
		return "configuration error: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration error in %s: %s", e.File, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Default returns the configuration used for every key the file omits.
func Default() Config {
	return Config{
		Tracker: TrackerConfig{
			Feed:           string(transit.BusFeed),
			PollInterval:   60 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Display: DisplayConfig{
			Rows:              16,
			Cols:              64,
			RefreshRate:       120,
			Brightness:        7,
			HardwareMapping:   "adafruit-hat-pwm",
			PWMBits:           4,
			PWMLSBNanoseconds: 130,
			Splash:            5 * time.Second,
		},
		Layout: LayoutConfig{
			TopMargin: 6,
			RowPitch:  6,
			RouteX:    1,
			EtaX:      11,
			DestX:     21,
			RouteRGB:  "#ffa600",
			EtaRGB:    "#ffffff",
			DestRGB:   "#565a5c",
			DelayRGB:  "#c60c30",
			BlinkDue:  true,
		},
		Night: NightConfig{
			Latitude:   41.8781,
			Longitude:  -87.6298,
			Brightness: 2,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Web: WebConfig{
			Listen:    "127.0.0.1:8080",
			RateLimit: 30,
		},
	}
}

// ReadConfig reads and validates the YAML file at cfile on top of Default().
func ReadConfig(cfile string) (Config, error) {
	conf := Default()

	f, err := os.Open(cfile)
	if err != nil {
		return conf, &ConfigurationError{File: cfile, Err: fmt.Errorf("can't open config file: %w", err)}
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		return conf, &ConfigurationError{File: cfile, Err: fmt.Errorf("can't decode config file: %w", err)}
	}
	conf.Configfile = cfile

	if err := conf.Validate(); err != nil {
		return conf, &ConfigurationError{File: cfile, Err: err}
	}
	return conf, nil
}

// ApplyEnv loads a .env file from the working directory, if there is one,
// and lets CTA_API_KEY override the key from the config file.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if key := strings.TrimSpace(os.Getenv(API_KEY_ENV)); key != "" {
		c.Tracker.APIKey = key
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Display.Rows%2 != 0 {
		return fmt.Errorf("Display.Rows must be even, got %d", c.Display.Rows)
	}
	if _, err := c.Tracker.Endpoint().URL(); err != nil {
		return fmt.Errorf("Tracker.BaseURL: %w", err)
	}
	if err := c.Layout.validate(); err != nil {
		return err
	}
	if c.Web.Enabled && strings.TrimSpace(c.Web.Listen) == "" {
		return errors.New("Web.Listen must be set when Web.Enabled is true")
	}
	return nil
}

func (l LayoutConfig) validate() error {
	if !(l.RouteX < l.EtaX && l.EtaX < l.DestX) {
		return fmt.Errorf("Layout columns must be ordered RouteX < EtaX < DestX, got %d, %d, %d", l.RouteX, l.EtaX, l.DestX)
	}
	for name, hex := range map[string]string{
		"RouteRGB": l.RouteRGB,
		"EtaRGB":   l.EtaRGB,
		"DestRGB":  l.DestRGB,
		"DelayRGB": l.DelayRGB,
	} {
		if _, err := display.ParseHex(hex); err != nil {
			return fmt.Errorf("Layout.%s: %w", name, err)
		}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}

// Endpoint describes the upstream request this tracker config selects.
func (t TrackerConfig) Endpoint() transit.Endpoint {
	return transit.Endpoint{
		Feed:    transit.Feed(t.Feed),
		BaseURL: t.BaseURL,
		APIKey:  t.APIKey,
		Route:   t.Route,
		Stop:    t.Stop,
	}
}

// Local Variables:
// compile-command: "cd .. && go build"
// End:
