package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"golang.org/x/sync/errgroup"

	"gbadv/cart"
	"gbadv/emu"
	"gbadv/emu/rpc"
)

// runMain runs the emulator with the given rom, until the configured number
// of frames or an interrupt signal. It returns the process exit code.
func runMain(args Run, cfg emu.Config) int {
	rom, err := cart.Open(args.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM: %s\n", err)
		return 1
	}

	args.overrideConfig(&cfg)

	emulator, err := emu.Launch(rom, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	if args.Port != 0 {
		server, err := rpc.NewServer(args.Port, emulator)
		if err != nil {
			fmt.Fprintf(os.Stderr, "RPC error: %v\n", err)
			return 1
		}
		defer server.Close()
		fmt.Println("remote control listening on", server.Addr())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			emulator.Stop()
		}
	}()

	if err := emulator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "emulation error: %v\n", err)
		return 1
	}
	fmt.Printf("%d frames, frame hash %016x\n", emulator.Frames(), emulator.FrameHash())
	return 0
}

// screenshotMain runs each ROM for the requested number of frames and saves
// a screenshot of the last one in the output directory. ROMs are run
// concurrently, each on its own machine.
func screenshotMain(args Screenshot, cfg emu.Config, w io.Writer) error {
	if err := emu.CheckScale(args.Scale); err != nil {
		return err
	}

	jobs := args.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Only the boot ROM setting is shared by all machines.
	cfg.TraceOut = nil
	cfg.Video.Screenshot = ""

	hashes := make([]uint64, len(args.RomPaths))
	outs := make([]string, len(args.RomPaths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range args.RomPaths {
		g.Go(func() error {
			rom, err := cart.Open(path)
			if err != nil {
				return err
			}
			e, err := emu.Launch(rom, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			e.GBA.Start()
			for range args.Frames {
				e.RunOneFrame()
			}

			outs[i] = filepath.Join(args.OutDir, screenshotName(path))
			frame := e.GBA.PPU.Frame()
			hashes[i] = emu.FrameHash(frame)
			return emu.SaveAsPNG(emu.ScaleFrame(frame, args.Scale), outs[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range args.RomPaths {
		fmt.Fprintf(w, "%016x  %s\n", hashes[i], outs[i])
	}
	return nil
}

// screenshotName returns the screenshot file name for the ROM at path.
func screenshotName(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		switch strings.ToLower(ext) {
		case ".gba", ".agb", ".bin", ".mb", ".zip", ".gz", ".7z":
			base = strings.TrimSuffix(base, ext)
			continue
		}
		return base + ".png"
	}
}
