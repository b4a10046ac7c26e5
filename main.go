package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"gbadv/cart"
	"gbadv/emu"
	"gbadv/emu/log"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
		return
	case romInfosMode:
		rom, err := cart.Open(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)
		return
	}

	cfg, err := emu.LoadConfigOrDefault(cli.configPath())
	checkf(err, "failed to load configuration")
	enableLogModules(cfg.Log.Modules)

	switch cli.mode {
	case runMode:
		os.Exit(runMain(cli.Run, cfg))
	case screenshotMode:
		checkf(screenshotMain(cli.Screenshot, cfg, os.Stdout), "screenshot failed")
	}
}

// enableLogModules enables the debug logs of the modules listed in the
// configuration file, in addition to those given with --log.
func enableLogModules(names []string) {
	if len(names) == 0 {
		return
	}
	mask, nolog, err := parseLogModules(names)
	if err != nil {
		log.ModEmu.WarnZ("invalid log modules in config").Error("err", err).End()
		return
	}
	if nolog {
		log.Disable()
		return
	}
	log.EnableDebugModules(mask)
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("gbadv", version)
}
