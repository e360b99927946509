package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/platform"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = "rotator.yaml"

// Trigger selects when the ENTER_GAME command is sent.
type Trigger string

const (
	TriggerRotation  Trigger = "rotation"  // on every rotation visit
	TriggerDetection Trigger = "detection" // when the detector sees the Enter status
	TriggerBoth      Trigger = "both"
	TriggerNone      Trigger = "none"
)

// OnRotation reports whether a rotation visit should send ENTER_GAME.
func (t Trigger) OnRotation() bool { return t == TriggerRotation || t == TriggerBoth }

// OnDetection reports whether a detected Enter status should send ENTER_GAME.
func (t Trigger) OnDetection() bool { return t == TriggerDetection || t == TriggerBoth }

// Status describes one detectable on-screen state.
type Status struct {
	Name      string  `yaml:"name"`
	File      string  `yaml:"file"`
	Region    [4]int  `yaml:"region,flow"` // x, y, w, h
	Threshold float64 `yaml:"threshold,omitempty"`
	Message   string  `yaml:"message,omitempty"`
}

// Bounds returns the capture region as platform bounds.
func (s Status) Bounds() platform.Bounds {
	return platform.Bounds{X: s.Region[0], Y: s.Region[1], Width: s.Region[2], Height: s.Region[3]}
}

// Focus is the geometry a rotated-in window is moved to.
type Focus struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Bounds returns the focus geometry as platform bounds.
func (f Focus) Bounds() platform.Bounds {
	return platform.Bounds{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// Serial configures the command link port.
type Serial struct {
	Port        string        `yaml:"port,omitempty"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Poll configures the background detector worker.
type Poll struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Log configures structured logging.
type Log struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Session string `yaml:"session,omitempty"` // file the session log is flushed to on stop
}

// Config holds application configuration.
type Config struct {
	// Slots is the fixed number of managed window slots.
	Slots int `yaml:"slots"`

	// WindowFilter is the case-insensitive substring used to discover game windows.
	WindowFilter string `yaml:"window_filter"`

	// SlotFile is the persisted slot assignment document.
	SlotFile string `yaml:"slot_file"`

	// TemplatesDir is the base directory for relative status template files.
	TemplatesDir string `yaml:"templates_dir"`

	// Statuses are classified in this order; the first match wins.
	Statuses []Status `yaml:"statuses"`

	Focus Focus `yaml:"focus"`

	// Tiles overrides the repositioning layout. Slot i uses Tiles[i-1].
	Tiles []platform.Bounds `yaml:"tiles,omitempty"`

	ShortInterval time.Duration `yaml:"short_interval"`
	LongInterval  time.Duration `yaml:"long_interval"`

	EnterGameTrigger Trigger `yaml:"enter_game_trigger"`

	// Actions maps a detected status name to a command token sent by the poller.
	Actions map[string]string `yaml:"actions,omitempty"`

	Serial Serial `yaml:"serial"`
	Poll   Poll   `yaml:"poll"`

	// MetricsAddr enables the Prometheus endpoint when non-empty (e.g. ":9102").
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	Log Log `yaml:"log"`
}

// DefaultStatuses returns the built-in status table in priority order.
func DefaultStatuses() []Status {
	return []Status{
		{Name: "Enter", File: "enter.png", Region: [4]int{545, 310, 350, 269}, Threshold: 0.1, Message: "Enter Game"},
		{Name: "Killed", File: "killed.png", Region: [4]int{583, 582, 272, 41}, Threshold: 0.1, Message: "Killed"},
		{Name: "Start", File: "start.png", Region: [4]int{1059, 744, 350, 67}, Threshold: 0.1, Message: "Schedule Start"},
		{Name: "Pause", File: "pause.png", Region: [4]int{1059, 744, 350, 67}, Threshold: 0.1, Message: "Schedule Pause"},
		{Name: "Powersave", File: "powersave.png", Region: [4]int{545, 310, 350, 269}, Threshold: 0.1, Message: "Powersave"},
		{Name: "Penalty", File: "penalty.png", Region: [4]int{562, 676, 316, 68}, Threshold: 0.1, Message: "Penalty"},
	}
}

// DefaultTiles returns the 18-tile repositioning layout: two 3x3 grids of
// 384x200 tiles, the right grid starting at x=1152.
func DefaultTiles() []platform.Bounds {
	var tiles []platform.Bounds
	for _, originX := range []int{0, 1152} {
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				tiles = append(tiles, platform.Bounds{X: originX + col*384, Y: 100 + row*250, Width: 384, Height: 200})
			}
		}
	}
	return tiles
}

// DefaultActions returns the built-in status → token table.
func DefaultActions() map[string]string {
	return map[string]string{"Penalty": "click_penalty"}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Slots:            18,
		WindowFilter:     "2m",
		SlotFile:         filepath.Join("save_data", "combobox_data.json"),
		TemplatesDir:     filepath.Join("assets", "template"),
		Statuses:         DefaultStatuses(),
		Focus:            Focus{X: 0, Y: 0, Width: 1440, Height: 810},
		ShortInterval:    120 * time.Second,
		LongInterval:     6 * time.Hour,
		EnterGameTrigger: TriggerRotation,
		Actions:          DefaultActions(),
		Serial:           Serial{Baud: 9600, ReadTimeout: time.Second},
		Poll:             Poll{Enabled: false},
		Log:              Log{Level: "info", Format: "text"},
	}
}

// Load loads configuration from path on top of the defaults.
// Returns default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, rerrors.NewConfig(fmt.Sprintf("read %s", path), err)
	}
	// Maps merge on decode, so actions start empty and the defaults are
	// applied only when the document has no actions key.
	cfg.Actions = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rerrors.NewConfig(fmt.Sprintf("parse %s", path), err)
	}
	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, rerrors.NewConfig(fmt.Sprintf("parse %s", path), err)
	}
	if _, ok := keys["actions"]; !ok {
		cfg.Actions = cfg.defaultActionsForStatuses()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// defaultActionsForStatuses keeps the default actions whose status is configured.
func (c *Config) defaultActionsForStatuses() map[string]string {
	out := make(map[string]string)
	for status, tok := range DefaultActions() {
		for _, s := range c.Statuses {
			if s.Name == status {
				out[status] = tok
				break
			}
		}
	}
	return out
}

// TileFor returns the repositioning tile for a 1-based slot id.
func (c *Config) TileFor(slotID int) (platform.Bounds, bool) {
	tiles := c.Tiles
	if len(tiles) == 0 {
		tiles = DefaultTiles()
	}
	if slotID < 1 || slotID > len(tiles) {
		return platform.Bounds{}, false
	}
	return tiles[slotID-1], true
}

// TemplatePath resolves a status template file against TemplatesDir.
func (c *Config) TemplatePath(s Status) string {
	if filepath.IsAbs(s.File) {
		return s.File
	}
	return filepath.Join(c.TemplatesDir, s.File)
}

// Validate checks the configuration for values the rotator cannot run with.
func (c *Config) Validate() error {
	if c.Slots <= 0 {
		return rerrors.NewConfig(fmt.Sprintf("slots must be positive, got %d", c.Slots), nil)
	}
	if c.Focus.Width <= 0 || c.Focus.Height <= 0 {
		return rerrors.NewConfig(fmt.Sprintf("focus size must be positive, got %dx%d", c.Focus.Width, c.Focus.Height), nil)
	}
	if c.ShortInterval <= 0 || c.LongInterval <= 0 {
		return rerrors.NewConfig("short_interval and long_interval must be positive", nil)
	}
	switch c.EnterGameTrigger {
	case TriggerRotation, TriggerDetection, TriggerBoth, TriggerNone:
	default:
		return rerrors.NewConfig(fmt.Sprintf("unknown enter_game_trigger %q (expected rotation, detection, both, or none)", c.EnterGameTrigger), nil)
	}
	seen := make(map[string]bool, len(c.Statuses))
	for _, s := range c.Statuses {
		if s.Name == "" || s.File == "" {
			return rerrors.NewConfig("every status needs a name and a file", nil)
		}
		if seen[s.Name] {
			return rerrors.NewConfig(fmt.Sprintf("duplicate status %q", s.Name), nil)
		}
		seen[s.Name] = true
		if s.Region[2] <= 0 || s.Region[3] <= 0 {
			return rerrors.NewConfig(fmt.Sprintf("status %q has an empty region", s.Name), nil)
		}
		if s.Threshold < 0 || s.Threshold > 1 {
			return rerrors.NewConfig(fmt.Sprintf("status %q threshold %v outside [0,1]", s.Name, s.Threshold), nil)
		}
	}
	for status := range c.Actions {
		if !seen[status] {
			return rerrors.NewConfig(fmt.Sprintf("action for unknown status %q", status), nil)
		}
	}
	if c.Serial.Baud <= 0 {
		return rerrors.NewConfig(fmt.Sprintf("serial baud must be positive, got %d", c.Serial.Baud), nil)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return rerrors.NewConfig(fmt.Sprintf("unknown log format %q (expected text or json)", c.Log.Format), nil)
	}
	return nil
}
