package emu

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), cfgFilename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[system]
boot_rom = "/roms/gba_bios.bin"

[emulation]
frames = 120

[video]
screenshot = "out.png"
scale = 3

[log]
modules = ["cpu", "ppu"]
`)

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		System:    SystemConfig{BootROM: "/roms/gba_bios.bin"},
		Emulation: EmulationConfig{Frames: 120},
		Video:     VideoConfig{Screenshot: "out.png", Scale: 3},
		Log:       LogConfig{Modules: []string{"cpu", "ppu"}},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Config{}, "TraceOut")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Missing keys keep default values, invalid ones are fixed.
	path := writeConfig(t, `
[emulation]
frames = 10

[video]
scale = 100
`)
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Video.Scale != 1 {
		t.Errorf("scale = %d, want 1", got.Video.Scale)
	}
	if got.Emulation.Frames != 10 || got.System.BootROM != "" {
		t.Errorf("got %+v", got)
	}
}

func TestLoadConfigOrDefault(t *testing.T) {
	got, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), got, cmpopts.IgnoreFields(Config{}, "TraceOut")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadConfigOrDefault(writeConfig(t, "[video\n")); err == nil {
		t.Error("LoadConfigOrDefault accepted a malformed file")
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.BootROM = "bios.bin"
	cfg.Log.Modules = []string{"irq"}

	path := filepath.Join(t.TempDir(), cfgFilename)
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.IgnoreFields(Config{}, "TraceOut")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckScale(t *testing.T) {
	for scale := 1; scale <= MaxScale; scale++ {
		if err := CheckScale(scale); err != nil {
			t.Errorf("CheckScale(%d) = %v", scale, err)
		}
	}
	for _, scale := range []int{0, -2, MaxScale + 1, 1 << 20} {
		if err := CheckScale(scale); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("CheckScale(%d) = %v, want %v", scale, err, ErrInvalidScale)
		}
	}
}
