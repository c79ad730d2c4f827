// Command wormscript checks worm control programs and plays them in a small
// arena.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/wormscript/arena"
	"github.com/sergev/wormscript/internal/log"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlWarn),
	}
	logFormatFlag = cli.StringFlag{
		Name:  "logformat",
		Usage: "Log format (term|logfmt)",
		Value: "term",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "wormscript"
	app.Usage = "check and run worm control programs"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{configFileFlag, verbosityFlag, logFormatFlag}
	app.Commands = []cli.Command{
		checkCommand,
		tokensCommand,
		astCommand,
		runCommand,
		replCommand,
		dumpConfigCommand,
	}
	app.Before = setupLogging
	app.Action = replAction
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wormscript: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	h, err := log.StderrHandler(ctx.GlobalString(logFormatFlag.Name), log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
	if err != nil {
		return err
	}
	log.Root().SetHandler(h)
	return nil
}

// loadConfig returns the default arena rules overlaid with the --config file.
func loadConfig(ctx *cli.Context) (*arena.Config, error) {
	cfg := arena.NewConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := arena.LoadConfig(file, cfg); err != nil {
			return nil, err
		}
		log.Debug("Loaded configuration", "file", file)
	}
	return cfg, nil
}
