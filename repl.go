package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/wormscript/arena"
	"github.com/sergev/wormscript/internal/log"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/program"
)

var replCommand = cli.Command{
	Action: replAction,
	Name:   "repl",
	Usage:  "Enter programs and step them in a one-worm sandbox",
	Description: `Program lines are collected until a blank line or a command, then
checked as one program and bound to a sandbox worm. Commands:
  :step     perform the next action
  :run      run until the program ends or the worm runs out of actions
  :worm     show the sandbox worm
  :reset    put a fresh worm in the sandbox
  :quit     leave`,
}

// session is the state of one REPL: the sandbox and the bound program.
type session struct {
	cfg     *arena.Config
	out     io.Writer
	world   *arena.World
	worm    *arena.Worm
	handler *arena.Handler
	prog    *program.Program
	buffer  strings.Builder
}

func newSession(cfg *arena.Config, out io.Writer) (*session, error) {
	s := &session{cfg: cfg, out: out}
	return s, s.reset()
}

func (s *session) reset() error {
	s.world = arena.NewWorld(s.cfg)
	worm, err := s.world.AddWorm("sandbox", "", s.cfg.World.Width/2, s.cfg.Worm.Radius, 0)
	if err != nil {
		return err
	}
	s.worm = worm
	s.handler = arena.NewHandler(s.world, worm, log.Root())
	s.prog = nil
	return nil
}

func (s *session) prompt() string {
	if s.buffer.Len() > 0 {
		return ".... "
	}
	return "worm> "
}

// feed handles one input line. It returns true when the user asked to quit.
// A blank line loads the collected program unless a block is still open.
func (s *session) feed(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		if trimmed == ":quit" || trimmed == ":q" {
			return true
		}
		s.flush()
		return s.command(trimmed)
	}
	if trimmed == "" {
		src := s.buffer.String()
		if _, err := parser.Parse(src); err != nil && parser.IsIncomplete(err) {
			return false
		}
		s.flush()
		return false
	}
	s.buffer.WriteString(line)
	s.buffer.WriteString("\n")
	return false
}

// flush compiles whatever is buffered.
func (s *session) flush() {
	src := s.buffer.String()
	s.buffer.Reset()
	if strings.TrimSpace(src) != "" {
		s.load(src)
	}
}

func (s *session) load(src string) {
	outcome := program.ParseProgram(src, s.handler,
		program.WithOutput(s.out),
		program.WithStepLimit(s.cfg.Game.StepLimit),
		program.WithLogger(log.Root()),
	)
	printDiagnostics(s.out, "input", outcome.Diagnostics())
	if !outcome.IsSuccess() {
		return
	}
	s.prog = outcome.Program()
	fmt.Fprintln(s.out, "program loaded, use :step or :run")
}

func (s *session) command(cmd string) bool {
	switch cmd {
	case ":step":
		s.step()
	case ":run":
		for i := 0; i < s.cfg.Game.MaxActionsPerTurn && s.prog != nil && !s.prog.Done(); i++ {
			s.step()
		}
	case ":worm":
		printWorms(s.out, s.world)
	case ":reset":
		if err := s.reset(); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", cmd)
	}
	return false
}

func (s *session) step() {
	if s.prog == nil {
		fmt.Fprintln(s.out, "no program loaded")
		return
	}
	if s.prog.Done() {
		fmt.Fprintf(s.out, "program %s\n", s.prog.State())
		return
	}
	if err := s.prog.NextExec(); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "step %d: %s at (%.2f, %.2f) facing %.2f, %v AP\n",
		s.prog.Steps(), s.prog.State(), s.worm.X, s.worm.Y, s.worm.Direction, s.worm.ActionPoints)
}

func replAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, ctx.App.Writer)
	if err != nil {
		return err
	}
	if !isInteractive() {
		return runBufferedREPL(s, bufio.NewReader(os.Stdin))
	}
	return runInteractiveREPL(s)
}

func runBufferedREPL(s *session, reader *bufio.Reader) error {
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line != "" && s.feed(strings.TrimSuffix(line, "\n")) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			s.flush()
			return nil
		}
	}
}

func runInteractiveREPL(s *session) error {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		input, err := state.Prompt(s.prompt())
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				s.buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return nil
			default:
				return err
			}
		}
		if trimmed := strings.TrimSpace(input); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		if s.feed(input) {
			return nil
		}
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".wormscript_history")
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
