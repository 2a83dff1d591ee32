// Command foamdict inspects, checks and edits OpenFOAM case dictionaries.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foamcase/foamdict"
)

func main() {
	if err := newApp(os.Stdout, nil).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "foamdict:", err)
		code := 1
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			code = exit.ExitCode()
		}
		os.Exit(code)
	}
}

// app carries what the commands share. A nil logger is built from the
// global flags before any command runs.
type app struct {
	out    io.Writer
	logger *zap.Logger
}

func newApp(out io.Writer, logger *zap.Logger) *cli.App {
	a := &app{out: out, logger: logger}
	return &cli.App{
		Name:     "foamdict",
		Usage:    "inspect, check and edit OpenFOAM case dictionaries",
		Writer:   out,
		Flags:    globalFlags(),
		Before:   a.setup,
		After:    a.teardown,
		Commands: a.commands(),
		// exit codes are applied in main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML settings file"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
		&cli.BoolFlag{Name: "macros", Usage: "expand #include, #inputMode and $name"},
		&cli.BoolFlag{Name: "no-comments", Usage: "drop comments"},
		&cli.IntFlag{Name: "raw-threshold", Usage: "keep declared-length lists with at least `N` elements unparsed"},
		&cli.BoolFlag{Name: "no-vector", Usage: "keep 3, 6 and 9 number lists as plain lists"},
		&cli.BoolFlag{Name: "no-condense", Usage: "keep redundant list length prefixes"},
		&cli.StringFlag{Name: "duplicates", Usage: "duplicate key handling: off, warn or fail"},
		&cli.BoolFlag{Name: "no-header", Usage: "the file has no FoamFile header"},
		&cli.BoolFlag{Name: "list", Usage: "the body is a single list without header"},
		&cli.BoolFlag{Name: "list-with-header", Usage: "the body is a single list after the header"},
		&cli.BoolFlag{Name: "boundary", Usage: "the file is a polyMesh boundary file"},
	}
}

func (a *app) setup(c *cli.Context) error {
	if a.logger != nil {
		return nil
	}
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if c.Bool("verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) teardown(*cli.Context) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// settings loads the config file and applies the command line flags on
// top of it.
func (a *app) settings(c *cli.Context) (*foamdict.Config, foamdict.Options, error) {
	cfg := foamdict.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := foamdict.LoadConfig(path)
		if err != nil {
			return nil, foamdict.Options{}, err
		}
		cfg = loaded
	}

	if c.IsSet("macros") {
		cfg.MacroExpansion = c.Bool("macros")
	}
	if c.IsSet("no-comments") {
		cfg.PreserveComments = !c.Bool("no-comments")
	}
	if c.IsSet("raw-threshold") {
		cfg.ListLengthUnparsed = c.Int("raw-threshold")
	}
	if c.IsSet("no-vector") {
		cfg.NoVectorOrTensor = c.Bool("no-vector")
	}
	if c.IsSet("no-condense") {
		cfg.NoCondense = c.Bool("no-condense")
	}
	switch c.String("duplicates") {
	case "":
	case "off":
		cfg.DuplicateCheck, cfg.DuplicateFail = false, false
	case "warn":
		cfg.DuplicateCheck, cfg.DuplicateFail = true, false
	case "fail":
		cfg.DuplicateCheck, cfg.DuplicateFail = true, true
	default:
		return nil, foamdict.Options{}, fmt.Errorf("--duplicates must be off, warn or fail, not %q", c.String("duplicates"))
	}
	if c.IsSet("no-header") {
		cfg.NoHeader = c.Bool("no-header")
	}
	if c.IsSet("list") {
		cfg.ListDict = c.Bool("list")
	}
	if c.IsSet("list-with-header") {
		cfg.ListDictWithHeader = c.Bool("list-with-header")
	}
	if c.IsSet("boundary") {
		cfg.BoundaryDict = c.Bool("boundary")
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, foamdict.Options{}, err
	}
	return cfg, opts, nil
}

func (a *app) load(path string, opts foamdict.Options) (*foamdict.Document, error) {
	doc, err := foamdict.NewParserWithOptions(opts).WithLogger(a.logger).ParseFile(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded dictionary",
		zap.String("path", path),
		zap.Stringer("shape", doc.Shape),
		zap.Int("entries", doc.Len()))
	return doc, nil
}
