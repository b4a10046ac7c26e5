package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"gbadv/emu"
	"gbadv/emu/log"
)

type mode byte

const (
	runMode        mode = iota // Run a ROM
	romInfosMode               // Show ROM infos
	screenshotMode             // Capture screenshots of several ROMs
	versionMode                // Show gbadv version
)

type (
	CLI struct {
		Run        Run        `cmd:"" help:"Run ROM in emulator."`
		RomInfos   RomInfos   `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Screenshot Screenshot `cmd:"" help:"${screenshot_help}"`
		Version    Version    `cmd:"" help:"Show gbadv version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"ROM file, raw or in a .zip, .gz or .7z archive." type:"existingfile"`

		Frames     int      `name:"frames" help:"Number of frames to run, then exit. (default: until interrupted)"`
		Bios       string   `name:"bios" help:"Boot ROM image mapped at address 0." type:"existingfile"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log (JSON lines)." placeholder:"FILE|stdout|stderr"`
		Screenshot string   `name:"screenshot" help:"Save a PNG screenshot when emulation stops." type:"path"`
		Scale      int      `name:"scale" help:"Screenshot scale factor."`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Port       int      `name:"port" help:"Serve remote control requests on localhost:PORT."`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Screenshot struct {
		RomPaths []string `arg:"" name:"/path/to/rom" type:"existingfile"`

		OutDir string `name:"outdir" help:"Directory where screenshots are written." type:"existingdir" required:""`
		Frames int    `name:"frames" help:"Number of frames to run before the capture." default:"60"`
		Scale  int    `name:"scale" help:"Screenshot scale factor." default:"1"`
		Jobs   int    `name:"jobs" short:"j" help:"Number of ROMs run concurrently. (default: number of CPUs)"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"screenshot_help": "Run each ROM for some frames and save a screenshot of the last one.",
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable debug logging for specified modules.",
	"config_help":     "Configuration file. (default: config.toml in the user config directory)",
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("gbadv"),
		kong.Description("Handheld console emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
}

func parseArgs(args []string) CLI {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "rom-infos":
		cli.mode = romInfosMode
	case "screenshot":
		cli.mode = screenshotMode
	case "version":
		cli.mode = versionMode
	default:
		cli.mode = runMode
	}
	return cli
}

// configPath returns the path of the configuration file to load.
func (cli *CLI) configPath() string {
	if cli.Config != "" {
		return cli.Config
	}
	return emu.DefaultConfigPath()
}

// overrideConfig applies the run flags on top of the loaded configuration.
func (args *Run) overrideConfig(cfg *emu.Config) {
	if args.Frames > 0 {
		cfg.Emulation.Frames = args.Frames
	}
	if args.Bios != "" {
		cfg.System.BootROM = args.Bios
	}
	if args.Screenshot != "" {
		cfg.Video.Screenshot = args.Screenshot
	}
	if args.Scale > 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.Trace != nil {
		cfg.TraceOut = args.Trace
	}
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	mask, nolog, err := parseLogModules(strings.Split(tok.Value.(string), ","))
	if err != nil {
		return err
	}
	if nolog {
		log.Disable()
		return nil
	}

	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

// parseLogModules converts module names into a module mask. nolog reports
// whether "no" has been given, alone.
func parseLogModules(names []string) (mask log.ModuleMask, nolog bool, err error) {
	allLogs := false

	for _, v := range names {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, false, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, false, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, true, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, false, nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
