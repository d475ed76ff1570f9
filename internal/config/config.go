// Package config loads the tiled TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Validation errors. Load wraps them with the offending tile.
var (
	ErrNoTiles       = errors.New("no tiles configured")
	ErrDuplicateTile = errors.New("duplicate tile name")
	ErrUnknownKind   = errors.New("unknown tile kind")
	ErrInvalidTile   = errors.New("invalid tile")
)

// Environment overrides applied after decoding.
const (
	EnvBroker   = "TILED_BROKER"
	EnvHTTPAddr = "TILED_HTTP_ADDR"
)

// Config is the top-level configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	HTTP    HTTPConfig    `toml:"http"`
	Tiles   []TileConfig  `toml:"tile"`
}

type GeneralConfig struct {
	FrameInterval Duration `toml:"frame_interval"`
}

type MQTTConfig struct {
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	TopicPrefix string `toml:"topic_prefix"`

	// PublishValueEvents also publishes VALUE events, one per animation
	// frame while a tile animates.
	PublishValueEvents bool `toml:"publish_value_events"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// TileConfig describes one tile. Unset optional fields keep the kind's
// presets.
type TileConfig struct {
	Name        string `toml:"name"`
	Kind        string `toml:"kind"`
	Title       string `toml:"title"`
	Text        string `toml:"text"`
	Description string `toml:"description"`
	Unit        string `toml:"unit"`
	Decimals    *int   `toml:"decimals"`

	Min            *float64 `toml:"min"`
	Max            *float64 `toml:"max"`
	Value          *float64 `toml:"value"`
	Threshold      *float64 `toml:"threshold"`
	LowerThreshold *float64 `toml:"lower_threshold"`
	Reference      *float64 `toml:"reference"`

	CheckThreshold      *bool `toml:"check_threshold"`
	CheckLowerThreshold *bool `toml:"check_lower_threshold"`
	CheckSections       *bool `toml:"check_sections"`
	SectionsVisible     *bool `toml:"sections_visible"`

	Animated          *bool    `toml:"animated"`
	AnimationDuration Duration `toml:"animation_duration"`
	ReturnToZero      bool     `toml:"return_to_zero"`
	StartFromZero     bool     `toml:"start_from_zero"`

	Averaging       *bool `toml:"averaging"`
	AveragingPeriod *int  `toml:"averaging_period"`

	MaxChartPoints *int `toml:"max_chart_points"`

	Running         *bool `toml:"running"`
	DiscreteSeconds *bool `toml:"discrete_seconds"`
	DiscreteMinutes *bool `toml:"discrete_minutes"`
	AlarmsEnabled   bool  `toml:"alarms_enabled"`

	Sections []SectionConfig `toml:"section"`
	Alarms   []AlarmConfig   `toml:"alarm"`
	GPIO     *GPIOConfig     `toml:"gpio"`
}

type SectionConfig struct {
	Start float64 `toml:"start"`
	Stop  float64 `toml:"stop"`
	Text  string  `toml:"text"`
	Color string  `toml:"color"`
}

// AlarmConfig's Time is RFC 3339 or a time of day ("07:30:00"), the latter
// resolved against the day the tile is built.
type AlarmConfig struct {
	Time       string `toml:"time"`
	Repetition string `toml:"repetition"`
	Text       string `toml:"text"`
	Armed      *bool  `toml:"armed"`
}

// GPIOConfig binds a tile's value to a digital input line.
type GPIOConfig struct {
	Chip      string   `toml:"chip"`
	Line      int      `toml:"line"`
	Poll      Duration `toml:"poll"`
	ActiveLow bool     `toml:"active_low"`

	// Debounce is how long a new line state must hold before the tile
	// sees it. Unset uses DefaultGPIODebounce; negative disables it.
	Debounce Duration `toml:"debounce"`
}

// DefaultConfig returns the configuration used for anything a file leaves
// unset.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			FrameInterval: Duration{16 * time.Millisecond},
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "tiled",
			TopicPrefix: "tiled",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes, applies env overrides, then validates.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode config: unknown key %q", undecoded[0].String())
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBroker); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
}

// Validate checks tile names, kinds, repetitions and GPIO bindings.
func (c *Config) Validate() error {
	if len(c.Tiles) == 0 {
		return ErrNoTiles
	}
	seen := make(map[string]bool, len(c.Tiles))
	for i, tc := range c.Tiles {
		if tc.Name == "" {
			return fmt.Errorf("tile %d: missing name: %w", i, ErrInvalidTile)
		}
		if strings.ContainsAny(tc.Name, "/+#") {
			return fmt.Errorf("tile %q: name must not contain MQTT topic characters: %w", tc.Name, ErrInvalidTile)
		}
		if seen[tc.Name] {
			return fmt.Errorf("tile %q: %w", tc.Name, ErrDuplicateTile)
		}
		seen[tc.Name] = true
		if _, err := tc.kind(); err != nil {
			return fmt.Errorf("tile %q: %w", tc.Name, err)
		}
		for _, ac := range tc.Alarms {
			if _, err := ac.resolve(time.Now()); err != nil {
				return fmt.Errorf("tile %q: %w", tc.Name, err)
			}
		}
		if tc.GPIO != nil && tc.GPIO.Line < 0 {
			return fmt.Errorf("tile %q: gpio line %d: %w", tc.Name, tc.GPIO.Line, ErrInvalidTile)
		}
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
