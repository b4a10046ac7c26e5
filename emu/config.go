package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"gbadv/emu/log"
)

type Config struct {
	System    SystemConfig    `toml:"system"`
	Emulation EmulationConfig `toml:"emulation"`
	Video     VideoConfig     `toml:"video"`
	Log       LogConfig       `toml:"log"`

	TraceOut io.WriteCloser `toml:"-"`
}

type SystemConfig struct {
	// BootROM is the path of an optional boot ROM image.
	BootROM string `toml:"boot_rom"`
}

type EmulationConfig struct {
	// Frames is the number of frames to run, 0 means until stopped.
	Frames int `toml:"frames"`
}

type VideoConfig struct {
	// Screenshot is the path of the PNG written when emulation stops.
	Screenshot string `toml:"screenshot"`
	Scale      int    `toml:"scale"`
}

// MaxScale is the largest screenshot scale factor.
const MaxScale = 8

var ErrInvalidScale = errors.New("invalid scale factor")

// CheckScale returns ErrInvalidScale if scale is outside [1, MaxScale].
func CheckScale(scale int) error {
	if scale < 1 || scale > MaxScale {
		return fmt.Errorf("%w %d (1 to %d)", ErrInvalidScale, scale, MaxScale)
	}
	return nil
}

// Check fixes invalid values.
func (vcfg *VideoConfig) Check() {
	if err := CheckScale(vcfg.Scale); err != nil {
		log.ModEmu.Warnf("%v, fallback to 1", err)
		vcfg.Scale = 1
	}
}

type LogConfig struct {
	// Modules lists the modules with debug logs enabled.
	Modules []string `toml:"modules"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{Scale: 1},
	}
}

// ConfigDir returns the gbadv config directory, creating it if needed.
var ConfigDir = sync.OnceValue(func() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to locate user config directory: %v", err)
	}
	dir = filepath.Join(dir, "gbadv")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the config file in ConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration at path. Missing keys keep their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").
			String("path", path).
			String("key", key.String()).
			End()
	}
	cfg.Video.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration at path, or provides a default
// one if the file does not exist.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return DefaultConfig(), nil
	}
	return cfg, err
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
