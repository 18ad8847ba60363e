// Command printparts writes the parametric printable parts as OpenSCAD, STL
// or PNG files and can serve them over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"

	"github.com/maruel/subcommands"
	"github.com/soypat/solid/parts"
	"github.com/soypat/solid/render"
)

func newApplication() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "printparts",
		Title: "Parametric 3D printable parts generator.",
		Commands: []*subcommands.Command{
			cmdSCAD,
			cmdSTL,
			cmdPreview,
			cmdDims,
			cmdParams,
			cmdServe,
			subcommands.CmdHelp,
		},
	}
}

func main() {
	log.SetFlags(0)
	os.Exit(subcommands.Run(newApplication(), nil))
}

// commonFlags are the flags shared by all commands reading a configuration.
type commonFlags struct {
	config  string
	verbose bool
}

func (f *commonFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "YAML configuration file read over the default parameters")
	fs.BoolVar(&f.verbose, "v", false, "log renderer debug output")
}

// load returns the validated configuration and enables debug logging if requested.
func (f *commonFlags) load() (parts.Config, error) {
	if f.verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	return parts.LoadConfig(f.config)
}

// partNames returns the parts named in args, or all parts if args is empty.
func partNames(args []string) ([]string, error) {
	if len(args) == 0 {
		return parts.Names(), nil
	}
	for _, arg := range args {
		if !slices.Contains(parts.Names(), arg) {
			return nil, fmt.Errorf("%q: %w (available: %v)", arg, parts.ErrUnknownPart, parts.Names())
		}
	}
	return args, nil
}

func printErr(a subcommands.Application, err error) int {
	fmt.Fprintf(a.GetErr(), "%s: %s\n", a.GetName(), err)
	return 1
}
