package solver

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

//go:embed functions.txt
var builtinFunctions []byte

// BuiltinFunctions returns the embedded list of internal function names.
func BuiltinFunctions() []string {
	names, _ := LoadFunctions(bytes.NewReader(builtinFunctions))
	return names
}

// LoadFunctions reads one name per line. Blank lines and lines starting
// with '#' are skipped.
func LoadFunctions(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("solver: read function list: %w", err)
	}
	return names, nil
}

const listFunctionsScript = `echo implode("\n", get_defined_functions()["internal"]), "\n";`

// PHPFunctions asks the php binary for its internal function names.
func PHPFunctions(ctx context.Context, php string) ([]string, error) {
	if php == "" {
		php = "php"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, php, "-r", listFunctionsScript)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("solver: %s: %w: %s", php, err, strings.TrimSpace(stderr.String()))
	}
	return LoadFunctions(bytes.NewReader(out))
}
