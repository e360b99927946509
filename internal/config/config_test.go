package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"gopkg.in/yaml.v3"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Slots != 18 {
		t.Errorf("Slots = %d, want 18", cfg.Slots)
	}
	if cfg.ShortInterval != 120*time.Second {
		t.Errorf("ShortInterval = %v, want 2m", cfg.ShortInterval)
	}
	if cfg.LongInterval != 6*time.Hour {
		t.Errorf("LongInterval = %v, want 6h", cfg.LongInterval)
	}
	if cfg.Focus.Width != 1440 || cfg.Focus.Height != 810 {
		t.Errorf("Focus = %+v, want 1440x810", cfg.Focus)
	}
	if cfg.EnterGameTrigger != TriggerRotation {
		t.Errorf("EnterGameTrigger = %q, want rotation", cfg.EnterGameTrigger)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	doc := `
slots: 3
short_interval: 5s
enter_game_trigger: both
focus: {x: 10, y: 20, width: 800, height: 600}
serial:
  port: COM7
  baud: 115200
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Slots != 3 {
		t.Errorf("Slots = %d, want 3", cfg.Slots)
	}
	if cfg.ShortInterval != 5*time.Second {
		t.Errorf("ShortInterval = %v, want 5s", cfg.ShortInterval)
	}
	if cfg.LongInterval != 6*time.Hour {
		t.Errorf("LongInterval should keep its default, got %v", cfg.LongInterval)
	}
	if cfg.EnterGameTrigger != TriggerBoth {
		t.Errorf("EnterGameTrigger = %q, want both", cfg.EnterGameTrigger)
	}
	if cfg.Serial.Port != "COM7" || cfg.Serial.Baud != 115200 {
		t.Errorf("Serial = %+v", cfg.Serial)
	}
	if cfg.Focus.Bounds().X != 10 || cfg.Focus.Bounds().Height != 600 {
		t.Errorf("Focus = %+v", cfg.Focus)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("slots: [not, a, number"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !rerrors.Is(err, rerrors.ErrConfig) {
		t.Errorf("expected CONFIG error, got %v", err)
	}
}

func TestLoad_StatusRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	doc := `
statuses:
  - name: Enter
    file: enter.png
    region: [1, 2, 3, 4]
    threshold: 0.2
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Statuses) != 1 {
		t.Fatalf("Statuses = %d, want 1", len(cfg.Statuses))
	}
	b := cfg.Statuses[0].Bounds()
	if b.X != 1 || b.Y != 2 || b.Width != 3 || b.Height != 4 {
		t.Errorf("Bounds() = %+v", b)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero slots", func(c *Config) { c.Slots = 0 }},
		{"bad trigger", func(c *Config) { c.EnterGameTrigger = "always" }},
		{"zero focus", func(c *Config) { c.Focus.Width = 0 }},
		{"zero interval", func(c *Config) { c.ShortInterval = 0 }},
		{"duplicate status", func(c *Config) { c.Statuses = append(c.Statuses, c.Statuses[0]) }},
		{"empty region", func(c *Config) { c.Statuses[0].Region = [4]int{1, 1, 0, 0} }},
		{"threshold too high", func(c *Config) { c.Statuses[0].Threshold = 2 }},
		{"action for unknown status", func(c *Config) { c.Actions = map[string]string{"Nope": "enter_game"} }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultTiles(t *testing.T) {
	tiles := DefaultTiles()
	if len(tiles) != 18 {
		t.Fatalf("len = %d, want 18", len(tiles))
	}
	first, last := tiles[0], tiles[17]
	if first.X != 0 || first.Y != 100 || first.Width != 384 || first.Height != 200 {
		t.Errorf("first tile = %+v", first)
	}
	if last.X != 1152+2*384 || last.Y != 100+2*250 {
		t.Errorf("last tile = %+v", last)
	}
}

func TestTileFor(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.TileFor(0); ok {
		t.Error("slot 0 should have no tile")
	}
	if _, ok := cfg.TileFor(19); ok {
		t.Error("slot 19 should have no tile with the default layout")
	}
	b, ok := cfg.TileFor(10)
	if !ok || b.X != 1152 {
		t.Errorf("TileFor(10) = %+v, %v", b, ok)
	}
}

func TestTemplatePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplatesDir = "tpl"
	if got := cfg.TemplatePath(Status{File: "enter.png"}); got != filepath.Join("tpl", "enter.png") {
		t.Errorf("TemplatePath = %q", got)
	}
}

func TestSave_WritesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	cfg := DefaultConfig()
	cfg.Slots = 4
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if m["slots"] != 4 {
		t.Errorf("slots = %v, want 4", m["slots"])
	}
	if _, ok := m["statuses"]; !ok {
		t.Error("statuses should be written")
	}
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		trigger   Trigger
		rotation  bool
		detection bool
	}{
		{TriggerRotation, true, false},
		{TriggerDetection, false, true},
		{TriggerBoth, true, true},
		{TriggerNone, false, false},
	}
	for _, tt := range tests {
		if tt.trigger.OnRotation() != tt.rotation || tt.trigger.OnDetection() != tt.detection {
			t.Errorf("%s: OnRotation=%v OnDetection=%v", tt.trigger, tt.trigger.OnRotation(), tt.trigger.OnDetection())
		}
	}
}

func TestLoad_Actions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want map[string]string
	}{
		{
			name: "empty actions replace the defaults",
			doc:  "statuses:\n  - {name: Enter, file: enter.png, region: [1, 2, 3, 4]}\nactions: {}\n",
			want: map[string]string{},
		},
		{
			name: "defaults dropped for statuses not configured",
			doc:  "statuses:\n  - {name: Enter, file: enter.png, region: [1, 2, 3, 4]}\n",
			want: map[string]string{},
		},
		{
			name: "explicit actions are not merged with defaults",
			doc:  "actions:\n  Killed: enter_game\n",
			want: map[string]string{"Killed": "enter_game"},
		},
		{
			name: "defaults kept when the key is absent",
			doc:  "slots: 4\n",
			want: map[string]string{"Penalty": "click_penalty"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			if err := os.WriteFile(path, []byte(tt.doc), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(cfg.Actions) != len(tt.want) {
				t.Fatalf("Actions = %v, want %v", cfg.Actions, tt.want)
			}
			for k, v := range tt.want {
				if cfg.Actions[k] != v {
					t.Errorf("Actions[%s] = %q, want %q", k, cfg.Actions[k], v)
				}
			}
		})
	}
}
