package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/urfave/cli.v1"

	"github.com/sergev/wormscript/arena"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	exiter, errWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(int) {}
	cli.ErrWriter = io.Discard
	defer func() {
		cli.OsExiter, cli.ErrWriter = exiter, errWriter
	}()

	err := app.Run(append([]string{"wormscript", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestCheckValidProgram(t *testing.T) {
	out, err := runApp(t, "check", "testdata/hunter.worm", "testdata/walker.worm")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if out != "" {
		t.Fatalf("expected no diagnostics, got %q", out)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	out, err := runApp(t, "check", "testdata/broken.worm")
	exit, ok := err.(cli.ExitCoder)
	if !ok || exit.ExitCode() != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	for _, want := range []string{
		"testdata/broken.worm:2:",
		"cannot initialize bool variable ok with double value",
		"testdata/broken.worm:3:6: ",
		"undeclared variable heading",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckMissingFile(t *testing.T) {
	if _, err := runApp(t, "check", "testdata/nonexistent.worm"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestTokens(t *testing.T) {
	out, err := runApp(t, "tokens", "testdata/walker.worm")
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if got, want := lines[0], "1:1\tidentifier\tmove"; got != want {
		t.Fatalf("first token line = %q, want %q", got, want)
	}
	if _, err := runApp(t, "tokens"); err == nil {
		t.Fatalf("expected an error without a file argument")
	}
}

func TestAST(t *testing.T) {
	out, err := runApp(t, "ast", "testdata/walker.worm")
	if err != nil {
		t.Fatalf("ast failed: %v", err)
	}
	for _, want := range []string{"ActionStmt", `"move"`, `"skip"`} {
		if !strings.Contains(out, want) {
			t.Errorf("ast output missing %s:\n%s", want, out)
		}
	}
}

func TestASTSexpr(t *testing.T) {
	out, err := runApp(t, "ast", "--sexpr", "testdata/walker.worm")
	if err != nil {
		t.Fatalf("ast failed: %v", err)
	}
	if want := "(do move)\n(do skip)\n"; out != want {
		t.Fatalf("ast --sexpr => %q, want %q", out, want)
	}
}

func TestRunScenario(t *testing.T) {
	out, err := runApp(t, "run", "--turns", "testdata/duel.yaml")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	for _, want := range []string{"round 1: hunter performed", "hunter", "dead", "Winner: red in round 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRoundLimit(t *testing.T) {
	dir := t.TempDir()
	scenario := filepath.Join(dir, "idle.yaml")
	src := "worms:\n  - name: a\n    x: 2\n    y: 0.5\n  - name: b\n    x: 8\n    y: 0.5\n"
	if err := os.WriteFile(scenario, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runApp(t, "--config", "testdata/config.toml", "run", "--rounds", "3", scenario)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "No winner after 3 rounds") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestDumpConfig(t *testing.T) {
	out, err := runApp(t, "--config", "testdata/config.toml", "dumpconfig")
	if err != nil {
		t.Fatalf("dumpconfig failed: %v", err)
	}
	if !strings.Contains(out, "MaxRounds = 7") {
		t.Fatalf("config file not applied:\n%s", out)
	}

	file := filepath.Join(t.TempDir(), "dump.toml")
	if _, err := runApp(t, "dumpconfig", file); err != nil {
		t.Fatalf("dumpconfig to file failed: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "MaxRounds = 20") {
		t.Fatalf("dumped defaults missing MaxRounds:\n%s", data)
	}
}

func TestBadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(file, []byte("[Arena]\nSize = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "--config", file, "dumpconfig"); err == nil {
		t.Fatalf("expected an error for an unknown config section")
	}
}

func TestBadLogFormat(t *testing.T) {
	if _, err := runApp(t, "--logformat", "xml", "dumpconfig"); err == nil {
		t.Fatalf("expected an error for an unknown log format")
	}
}

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := newSession(arena.NewConfig(), &out)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return s, &out
}

func TestSessionMultiLineProgram(t *testing.T) {
	s, out := newTestSession(t)
	for _, line := range []string{"double limit := 30", "while (canmove() && getx(self) < limit) {", "", "  move; skip;", "}"} {
		if s.feed(line) {
			t.Fatalf("feed(%q) quit", line)
		}
		if s.prompt() != ".... " {
			t.Fatalf("expected continuation prompt after %q", line)
		}
		if s.prog != nil {
			t.Fatalf("program loaded early after %q", line)
		}
	}
	s.feed("")
	if s.prog == nil {
		t.Fatalf("program not loaded:\n%s", out)
	}
	if s.prompt() != "worm> " {
		t.Fatalf("expected a fresh prompt after loading")
	}

	out.Reset()
	s.feed(":step")
	s.feed(":step")
	want := "step 1: running at (20.50, 0.50) facing 0.00, 99 AP\n" +
		"step 2: running at (20.50, 0.50) facing 0.00, 99 AP\n"
	if got := out.String(); got != want {
		t.Fatalf("steps:\n%s\nwant:\n%s", got, want)
	}

	out.Reset()
	s.feed(":worm")
	if !strings.Contains(out.String(), "sandbox") {
		t.Fatalf("worm table missing sandbox worm:\n%s", out)
	}
	if !s.feed(":quit") {
		t.Fatalf(":quit did not quit")
	}
}

func TestSessionReportsErrors(t *testing.T) {
	s, out := newTestSession(t)
	s.feed("turn(true);")
	s.feed("")
	if s.prog != nil {
		t.Fatalf("ill-typed program was loaded")
	}
	if !strings.Contains(out.String(), "input:1:") {
		t.Fatalf("missing diagnostic:\n%s", out)
	}

	out.Reset()
	s.feed(":step")
	s.feed(":fly")
	if got, want := out.String(), "no program loaded\nunknown command :fly\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSessionRunAndReset(t *testing.T) {
	s, out := newTestSession(t)
	s.feed("while (true) { turn(1); }")
	out.Reset()
	s.feed(":run")
	if !strings.Contains(out.String(), "not enough action points") {
		t.Fatalf("expected the program to run out of points:\n%s", out)
	}
	if s.worm.ActionPoints != 0 {
		t.Fatalf("ActionPoints = %v, want 0", s.worm.ActionPoints)
	}
	s.feed(":reset")
	if s.prog != nil || s.worm.ActionPoints != 100 {
		t.Fatalf("reset did not restore the sandbox")
	}
}

func TestSessionCommandLoadsPendingProgram(t *testing.T) {
	s, out := newTestSession(t)
	s.feed("double x := 1")
	s.feed("turn x")
	s.feed(":step")
	if !strings.Contains(out.String(), "step 1: completed") {
		t.Fatalf("expected the two lines to run as one program:\n%s", out)
	}
	if strings.Contains(out.String(), "undeclared") {
		t.Fatalf("lines were loaded separately:\n%s", out)
	}
}

func TestBufferedREPL(t *testing.T) {
	s, out := newTestSession(t)
	input := "turn(1)\n:step\n:step\nwhile (true) {\n"
	if err := runBufferedREPL(s, bufio.NewReader(strings.NewReader(input))); err != nil {
		t.Fatalf("runBufferedREPL: %v", err)
	}
	for _, want := range []string{
		"program loaded",
		"step 1: completed",
		"program completed",
		"expected } to close block, found EOF",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
