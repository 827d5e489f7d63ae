package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string

	Port        int           `toml:"server.port" env:"PORT"`
	DeviceMatch string        `toml:"camera.match" env:"DEVICE_MATCH"`
	Metrics     bool          `toml:"metrics.enabled" env:"METRICS"`
	Origins     []string      `toml:"server.origins" env:"ORIGINS"`
	Timeout     time.Duration `toml:"camera.timeout" env:"TIMEOUT"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camctl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleTOML = `
[server]
port = 9000
origins = ["http://a", "http://b"]

[camera]
match = "Facecam"
timeout = "3s"

[metrics]
enabled = true
`

func TestLoadConfigFromTOML(t *testing.T) {
	opts := &testOptions{Config: writeFile(t, sampleTOML), Port: 5000}

	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != 9000 {
		t.Errorf("Port = %d, want 9000", opts.Port)
	}
	if opts.DeviceMatch != "Facecam" {
		t.Errorf("DeviceMatch = %q", opts.DeviceMatch)
	}
	if !opts.Metrics {
		t.Error("Metrics should be true")
	}
	if !reflect.DeepEqual(opts.Origins, []string{"http://a", "http://b"}) {
		t.Errorf("Origins = %v", opts.Origins)
	}
	if opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", opts.Timeout)
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	t.Setenv("CAMCTL_PORT", "7000")
	t.Setenv("CAMCTL_ORIGINS", "x, y")

	opts := &testOptions{Config: writeFile(t, sampleTOML)}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.Port != 7000 {
		t.Errorf("Port = %d, want env value 7000", opts.Port)
	}
	if !reflect.DeepEqual(opts.Origins, []string{"x", "y"}) {
		t.Errorf("Origins = %v, want [x y]", opts.Origins)
	}
	if opts.DeviceMatch != "Facecam" {
		t.Errorf("DeviceMatch = %q, want TOML value", opts.DeviceMatch)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	t.Setenv("CAMCTL_PORT", "7000")

	opts := &testOptions{Config: writeFile(t, sampleTOML)}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&opts.Port, "port", 5000, "")
	if err := cmd.Flags().Set("port", "8123"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Port != 8123 {
		t.Errorf("Port = %d, want CLI value 8123", opts.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "nope.toml"), Port: 5000}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if opts.Port != 5000 {
		t.Errorf("Port = %d, default should be kept", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	opts := &testOptions{Config: writeFile(t, "port = [")}
	if err := LoadConfig(opts, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	if err := LoadConfig(testOptions{}, nil); err == nil {
		t.Fatal("expected error for non-pointer")
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeFile(t, `
[logging]
level = "debug"
format = "json"
api = "warn"

[logging.modules]
stream = "error"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Modules["api"] != "warn" || cfg.Modules["stream"] != "error" {
		t.Errorf("Modules = %v", cfg.Modules)
	}

	def := LoadLoggingConfig("")
	if def.Level != "info" || def.Format != "text" {
		t.Errorf("defaults = %+v", def)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":        "port",
		"PresetsFile": "presets-file",
		"LogLevel":    "log-level",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"a":    map[string]any{"b": map[string]any{"c": 1}},
		"root": "r",
	}

	tests := []struct {
		path string
		want any
	}{
		{"root", "r"},
		{"a.b.c", 1},
		{"a.x.c", nil},
		{"root.x", nil},
	}
	for _, tt := range tests {
		if got := getNestedValue(data, tt.path); got != tt.want {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFlagName_NameTag(t *testing.T) {
	type opts struct {
		CORSOrigin string `name:"cors-origin"`
		ListenAddr string
	}
	typ := reflect.TypeOf(opts{})
	if got := flagName(typ.Field(0)); got != "cors-origin" {
		t.Errorf("flagName = %q", got)
	}
	if got := flagName(typ.Field(1)); got != "listen-addr" {
		t.Errorf("flagName = %q", got)
	}
}
