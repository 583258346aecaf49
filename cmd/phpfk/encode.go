package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// encodedExt is appended to the base name of each input written to -o.
const encodedExt = ".fk"

var (
	encodeOutDir string
	encodeJobs   int
	stringFile   string
)

var encodeCmd = &cobra.Command{
	Use:   "encode [files...]",
	Short: "Encode PHP programs",
	Long: `Encodes each program into a self-executing expression.

With no file, the program is read from stdin and written to stdout. Several
files require -o; each result is written to <dir>/<name>` + encodedExt + `.`,
	RunE: runEncode,
}

var intCmd = &cobra.Command{
	Use:   "int <n>",
	Short: "Encode a non-negative integer",
	Args:  cobra.ExactArgs(1),
	RunE:  runInt,
}

var stringCmd = &cobra.Command{
	Use:   "string [text]",
	Short: "Encode a byte string",
	Long:  "Encodes text, or the contents of --file, into an expression evaluating to the same bytes.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runString,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutDir, "out", "o", "", "output directory")
	encodeCmd.Flags().IntVarP(&encodeJobs, "jobs", "j", runtime.GOMAXPROCS(0), "files encoded concurrently")
	stringCmd.Flags().StringVarP(&stringFile, "file", "f", "", "read the string from a file")
}

func runEncode(cmd *cobra.Command, args []string) error {
	asm, err := newAssembler()
	if err != nil {
		return err
	}
	if len(args) <= 1 && encodeOutDir == "" {
		source, err := readSource(cmd, optionalArg(args))
		if err != nil {
			return err
		}
		out, err := asm.Obfuscate(source)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	if encodeOutDir == "" {
		return fmt.Errorf("encoding %d files requires -o", len(args))
	}
	if len(args) == 0 {
		return fmt.Errorf("no input files")
	}
	if err := os.MkdirAll(encodeOutDir, 0o755); err != nil {
		return err
	}

	var g errgroup.Group
	if encodeJobs > 0 {
		g.SetLimit(encodeJobs)
	}
	for _, path := range args {
		path := path
		g.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			out, err := asm.Obfuscate(string(source))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			dst := filepath.Join(encodeOutDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+encodedExt)
			if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
				return err
			}
			currentLogger().Info("encoded",
				zap.String("input", path),
				zap.String("output", dst),
				zap.Int("bytes", len(out)))
			return nil
		})
	}
	return g.Wait()
}

func runInt(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", args[0])
	}
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	out, err := enc.Int(n)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runString(cmd *cobra.Command, args []string) error {
	var text string
	switch {
	case stringFile != "" && len(args) > 0:
		return fmt.Errorf("pass either text or --file, not both")
	case stringFile != "":
		source, err := readSource(cmd, stringFile)
		if err != nil {
			return err
		}
		text = source
	case len(args) > 0:
		text = args[0]
	}
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	out, err := enc.String(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
