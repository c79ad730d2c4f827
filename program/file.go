package program

import (
	"bytes"
	"os"

	"github.com/sergev/wormscript/diag"
)

// ReadSource loads a script file. A leading #! line is blanked so that
// reported line numbers still match the file.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return string(data[idx:]), nil
		}
		return "", nil
	}
	return string(data), nil
}

// CompileFile reads and compiles the script at path. A non-nil error
// reports a file that could not be read.
func CompileFile(path string) (*Script, diag.List, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, nil, err
	}
	script, diags := Compile(src)
	return script, diags, nil
}
