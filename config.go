package waya

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Layout holds the editor-space geometry used for hit testing. The host draws
// with the same numbers so that what it shows is what FindPortAt resolves.
type Layout struct {
	NodeWidth     float64 `yaml:"node_width" validate:"gt=0"`
	HeaderHeight  float64 `yaml:"header_height" validate:"gte=0"`
	PortSpacing   float64 `yaml:"port_spacing" validate:"gt=0"`
	PortHitRadius float64 `yaml:"port_hit_radius" validate:"gt=0"`
}

// CameraConfig holds the defaults applied to every new Camera.
type CameraConfig struct {
	Position    [3]float64 `yaml:"position"`
	FOV         float64    `yaml:"fov" validate:"gt=0,lt=180"`
	Near        float64    `yaml:"near" validate:"gt=0"`
	Far         float64    `yaml:"far" validate:"gtfield=Near"`
	MinDistance float64    `yaml:"min_distance" validate:"gt=0"`
	PanSpeed    float64    `yaml:"pan_speed" validate:"gt=0"`
}

// TimelineConfig holds playback defaults for new timelines.
type TimelineConfig struct {
	Speed     float64 `yaml:"speed" validate:"gt=0"`
	StopAtEnd bool    `yaml:"stop_at_end"`
}

// Config is passed explicitly to every constructor. Nothing in the package
// reads the environment on its own; see ApplyEnv.
type Config struct {
	Debug    bool           `yaml:"debug"`
	FPS      int            `yaml:"fps" validate:"gte=1,lte=1000"`
	Layout   Layout         `yaml:"layout"`
	Camera   CameraConfig   `yaml:"camera"`
	Timeline TimelineConfig `yaml:"timeline"`

	// Logger receives structured logs. Nil means no logging.
	Logger *zap.Logger `yaml:"-" validate:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		FPS: 60,
		Layout: Layout{
			NodeWidth:     140,
			HeaderHeight:  24,
			PortSpacing:   20,
			PortHitRadius: 6,
		},
		Camera: CameraConfig{
			Position:    [3]float64{0, 0, 5},
			FOV:         70,
			Near:        0.05,
			Far:         1000,
			MinDistance: 0.1,
			PanSpeed:    0.01,
		},
		Timeline: TimelineConfig{
			Speed: 1,
		},
	}
}

var validate = validator.New()

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("waya: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig. Keys absent
// from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("waya: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("waya: parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides Debug and FPS from WAYA_DEBUG and WAYA_FPS using the
// given lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("WAYA_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("waya: WAYA_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v, ok := lookup("WAYA_FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("waya: WAYA_FPS: %w", err)
		}
		c.FPS = n
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
