package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Handler defines where and how log records are written.
type Handler interface {
	Log(r *Record) error
}

type funcHandler func(r *Record) error

func (h funcHandler) Log(r *Record) error {
	return h(r)
}

// FuncHandler returns a Handler that logs records with the given function.
func FuncHandler(fn func(r *Record) error) Handler {
	return funcHandler(fn)
}

// StreamHandler writes log records to an io.Writer with the given format.
// Writes are serialized so the handler is safe for concurrent use.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler passes only records at or above maxLvl severity.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl <= maxLvl {
			return h.Log(r)
		}
		return nil
	})
}

// CallerFileHandler adds the calling file and line to the record context
// under the key "caller".
func CallerFileHandler(h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		r.Ctx = append(r.Ctx, "caller", fmt.Sprint(r.Call))
		return h.Log(r)
	})
}

// DiscardHandler drops every record.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error {
		return nil
	})
}

// StderrHandler builds the handler used by command line tools: records at
// or above verbosity, written to stderr in the named format ("term" or
// "logfmt"). The terminal format is colored when stderr is a terminal.
func StderrHandler(format string, verbosity Lvl) (Handler, error) {
	var h Handler
	switch format {
	case "", "term":
		usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		output := io.Writer(os.Stderr)
		if usecolor {
			output = colorable.NewColorableStderr()
		}
		h = StreamHandler(output, TerminalFormat(usecolor))
	case "logfmt":
		h = CallerFileHandler(StreamHandler(os.Stderr, LogfmtFormat()))
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return LvlFilterHandler(verbosity, h), nil
}
