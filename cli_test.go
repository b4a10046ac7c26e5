package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gbadv/emu"
	"gbadv/emu/log"
)

func TestParseLogModules(t *testing.T) {
	tests := []struct {
		names   []string
		want    log.ModuleMask
		nolog   bool
		wantErr bool
	}{
		{names: []string{"cpu"}, want: log.ModCPU.Mask()},
		{names: []string{"cpu", "ppu", "irq"}, want: log.ModCPU.Mask() | log.ModPPU.Mask() | log.ModIRQ.Mask()},
		{names: []string{"all"}, want: log.ModuleMaskAll},
		{names: []string{"all", "cpu"}, want: log.ModuleMaskAll},
		{names: []string{"no"}, nolog: true},
		{names: []string{"no", "all"}, wantErr: true},
		{names: []string{"no", "cpu"}, wantErr: true},
		{names: []string{"gpu"}, wantErr: true},
		{names: []string{""}, wantErr: true},
	}
	for _, tt := range tests {
		mask, nolog, err := parseLogModules(tt.names)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLogModules(%q) error = %v, wantErr %t", tt.names, err, tt.wantErr)
			continue
		}
		if mask != tt.want || nolog != tt.nolog {
			t.Errorf("parseLogModules(%q) = %x, %t, want %x, %t", tt.names, mask, nolog, tt.want, tt.nolog)
		}
	}
}

func parse(t *testing.T, args ...string) (CLI, error) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		t.Fatal(err)
	}
	_, err = parser.Parse(args)
	return cli, err
}

func TestLogFlag(t *testing.T) {
	t.Cleanup(func() { log.DisableDebugModules(log.ModuleMaskAll) })

	rom := filepath.Join(t.TempDir(), "game.gba")
	if err := os.WriteFile(rom, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "run", rom, "--log", "cpu,hwio")
	if err != nil {
		t.Fatal(err)
	}
	if want := logModMask(log.ModCPU.Mask() | log.ModHwIo.Mask()); cli.Log != want {
		t.Errorf("log mask = %x, want %x", cli.Log, want)
	}
	if !log.ModCPU.Enabled(log.DebugLevel) || log.ModPPU.Enabled(log.DebugLevel) {
		t.Error("debug logs not enabled for the requested modules only")
	}

	if _, err := parse(t, "run", rom, "--log", "cpu,nope"); err == nil {
		t.Error("unknown log module accepted")
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	rom := filepath.Join(t.TempDir(), "game.gba")
	if err := os.WriteFile(rom, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "run", rom, "--frames", "30", "--screenshot", "shot.png", "--scale", "2")
	if err != nil {
		t.Fatal(err)
	}

	cfg := emu.DefaultConfig()
	cfg.System.BootROM = "bios.bin"
	cfg.Emulation.Frames = 5
	cli.Run.overrideConfig(&cfg)

	want := emu.DefaultConfig()
	want.System.BootROM = "bios.bin"
	want.Emulation.Frames = 30
	want.Video.Screenshot = cli.Run.Screenshot
	want.Video.Scale = 2
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreFields(emu.Config{}, "TraceOut")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if filepath.Base(cfg.Video.Screenshot) != "shot.png" {
		t.Errorf("screenshot = %q", cfg.Video.Screenshot)
	}
}

func TestScreenshotFlags(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "game.gba")
	if err := os.WriteFile(rom, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "screenshot", rom, rom, "--outdir", dir, "-j", "2")
	if err != nil {
		t.Fatal(err)
	}
	want := Screenshot{RomPaths: []string{rom, rom}, OutDir: dir, Frames: 60, Scale: 1, Jobs: 2}
	if diff := cmp.Diff(want, cli.Screenshot); diff != "" {
		t.Errorf("screenshot args mismatch (-want +got):\n%s", diff)
	}

	if _, err := parse(t, "screenshot", rom); err == nil {
		t.Error("missing --outdir accepted")
	}
}

func TestOutfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	rom := filepath.Join(t.TempDir(), "game.gba")
	if err := os.WriteFile(rom, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "run", rom, "--trace", path)
	if err != nil {
		t.Fatal(err)
	}
	if cli.Run.Trace == nil || cli.Run.Trace.String() != path {
		t.Fatalf("trace = %v, want %s", cli.Run.Trace, path)
	}
	if _, err := cli.Run.Trace.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	if err := cli.Run.Trace.Close(); err != nil {
		t.Fatal(err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello\n" {
		t.Errorf("trace file = %q, want %q", buf, "hello\n")
	}
}
