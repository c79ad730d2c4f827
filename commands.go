package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/wormscript/arena"
	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/internal/log"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/program"
	"github.com/sergev/wormscript/sexpr"
)

var (
	checkCommand = cli.Command{
		Action:    checkFiles,
		Name:      "check",
		Usage:     "Parse and type check programs",
		ArgsUsage: "FILE...",
		Description: `The check command reports every lexical, syntax and type error of the
given programs, followed by their warnings. It exits with status 1 when
any program is invalid.`,
	}
	tokensCommand = cli.Command{
		Action:    dumpTokens,
		Name:      "tokens",
		Usage:     "Print the tokens of a program",
		ArgsUsage: "FILE",
	}
	astCommand = cli.Command{
		Action:    dumpAST,
		Name:      "ast",
		Usage:     "Print the syntax tree of a program",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{sexprFlag},
	}
	runCommand = cli.Command{
		Action:    runScenario,
		Name:      "run",
		Usage:     "Play a scenario until one team is left",
		ArgsUsage: "SCENARIO",
		Flags:     []cli.Flag{roundsFlag, turnsFlag},
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[FILE]",
		Description: `The dumpconfig command shows the arena rules in effect.`,
	}

	roundsFlag = cli.IntFlag{
		Name:  "rounds",
		Usage: "Override the maximum number of rounds",
	}
	sexprFlag = cli.BoolFlag{
		Name:  "sexpr",
		Usage: "Print the tree as s-expressions instead of a full dump",
	}
	turnsFlag = cli.BoolFlag{
		Name:  "turns",
		Usage: "Print a line for every played turn",
	}

	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
)

func fileArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one file argument", ctx.Command.Name)
	}
	return ctx.Args().First(), nil
}

// printDiagnostics writes diags as file:line:col messages.
func printDiagnostics(w io.Writer, file string, diags diag.List) {
	for _, d := range diags {
		c := errorColor
		if d.Severity == diag.SeverityWarning {
			c = warningColor
		}
		fmt.Fprintf(w, "%s:%d:%d: ", file, d.Line, d.Column)
		c.Fprintf(w, "%s", d.Severity)
		fmt.Fprintf(w, ": %s\n", d.Message)
	}
}

func checkFiles(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("check: no files given")
	}
	w := ctx.App.Writer
	failed := 0
	for _, file := range ctx.Args() {
		script, diags, err := program.CompileFile(file)
		if err != nil {
			return err
		}
		diags.Sort()
		printDiagnostics(w, file, diags)
		if script == nil {
			failed++
		}
	}
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d programs invalid", failed, ctx.NArg()), 1)
	}
	return nil
}

func dumpTokens(ctx *cli.Context) error {
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}
	src, err := program.ReadSource(file)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	tokens, err := parser.Tokens(src)
	for _, tok := range tokens {
		fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Text())
	}
	return err
}

func dumpAST(ctx *cli.Context) error {
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}
	src, err := program.ReadSource(file)
	if err != nil {
		return err
	}
	prog, err := parser.Parse(src)
	if err != nil {
		return err
	}
	if ctx.Bool(sexprFlag.Name) {
		return sexpr.Fprint(ctx.App.Writer, prog)
	}
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(ctx.App.Writer, prog)
	return nil
}

func runScenario(ctx *cli.Context) error {
	file, err := fileArg(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet(roundsFlag.Name) {
		cfg.Game.MaxRounds = ctx.Int(roundsFlag.Name)
	}
	scenario, err := arena.LoadScenario(file)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	game, err := scenario.NewGame(cfg, arena.WithGameLogger(log.Root()), arena.WithGameOutput(w))
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	reports, err := game.Run(sigctx)
	if ctx.Bool(turnsFlag.Name) {
		printTurns(w, reports)
	}
	printWorms(w, game.World())
	rounds := 0
	if len(reports) > 0 {
		rounds = reports[len(reports)-1].Round
	}
	if team, ok := game.Winner(); ok {
		fmt.Fprintf(w, "Winner: %s in round %d\n", team, rounds)
	} else {
		fmt.Fprintf(w, "No winner after %d rounds\n", rounds)
	}
	return err
}

func printTurns(w io.Writer, reports []arena.TurnReport) {
	for _, r := range reports {
		status := r.State.String()
		if r.Err != nil {
			status = r.Err.Error()
		} else if r.Truncated {
			status = "truncated"
		}
		fmt.Fprintf(w, "round %d: %s performed %d actions (%s)\n", r.Round, r.Worm, r.Actions, status)
	}
}

func printWorms(w io.Writer, world *arena.World) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Worm", "Team", "X", "Y", "Direction", "AP", "HP"})
	table.SetAutoFormatHeaders(false)
	for _, worm := range world.Worms() {
		hp := formatFloat(worm.HitPoints)
		if !worm.Alive() {
			hp = "dead"
		}
		table.Append([]string{
			worm.Name,
			worm.Team,
			formatFloat(worm.X),
			formatFloat(worm.Y),
			formatFloat(worm.Direction),
			formatFloat(worm.ActionPoints),
			hp,
		})
	}
	table.Render()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out, err := arena.MarshalConfig(cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
