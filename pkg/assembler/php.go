package assembler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// RunPHP executes program, an expression produced by Obfuscate, with the php
// binary. FFI is enabled on the command line; the script is fed on stdin.
func RunPHP(ctx context.Context, php, program string, stdout, stderr io.Writer) error {
	if php == "" {
		php = "php"
	}
	var script bytes.Buffer
	script.WriteString("<?php\n")
	script.WriteString(program)
	script.WriteString(";\n")

	cmd := exec.CommandContext(ctx, php, "-d", "ffi.enable=1", "-d", "display_errors=stderr")
	cmd.Stdin = &script
	cmd.Stdout = stdout
	var errBuf bytes.Buffer
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, &errBuf)
	} else {
		cmd.Stderr = &errBuf
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("assembler: %s: %w: %s", php, err, strings.TrimSpace(errBuf.String()))
	}
	return nil
}

// PHPHasFFI reports whether php can load the FFI extension.
func PHPHasFFI(ctx context.Context, php string) bool {
	if php == "" {
		php = "php"
	}
	cmd := exec.CommandContext(ctx, php, "-d", "ffi.enable=1", "-r", `exit(extension_loaded("ffi") ? 0 : 1);`)
	return cmd.Run() == nil
}
