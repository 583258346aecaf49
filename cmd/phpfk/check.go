package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/assembler"
	"phpfk/encoder-go/pkg/interpreter"
	"phpfk/encoder-go/pkg/parser"
)

var phpBinary string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Encode a program and verify it with the built-in interpreter",
	Long: `Encodes the program, evaluates the result with the built-in interpreter and
confirms that the eval entry point receives the original source unchanged.
No PHP installation is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Encode a program and execute it with PHP",
	Long:  "Encodes the program and runs the result with php -d ffi.enable=1.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&phpBinary, "php", env.Str("PHPFK_PHP", "php"), "php binary")
}

type recordingEvaluator struct {
	code []string
}

func (r *recordingEvaluator) EvalString(code string) error {
	r.code = append(r.code, code)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, optionalArg(args))
	if err != nil {
		return err
	}
	asm, err := newAssembler()
	if err != nil {
		return err
	}
	out, err := asm.Obfuscate(source)
	if err != nil {
		return err
	}
	node, err := parser.Parse(out)
	if err != nil {
		return fmt.Errorf("encoded program does not parse: %w", err)
	}
	rec := &recordingEvaluator{}
	interp := interpreter.New(interpreter.Options{Evaluator: rec})
	if _, err := interp.Eval(node); err != nil {
		return fmt.Errorf("encoded program failed: %w", err)
	}
	switch {
	case len(rec.code) != 1:
		return fmt.Errorf("%s called %d times, want 1", assembler.EvalEntryPoint, len(rec.code))
	case rec.code[0] != source:
		return fmt.Errorf("%s received different source (%d bytes, want %d)", assembler.EvalEntryPoint, len(rec.code[0]), len(source))
	}
	currentLogger().Debug("check passed", zap.Int("source_bytes", len(source)), zap.Int("output_bytes", len(out)))
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d bytes encoded as %d bytes over %q\n",
		len(source), len(out), asm.Encoder().Profile().Alphabet)
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, optionalArg(args))
	if err != nil {
		return err
	}
	asm, err := newAssembler()
	if err != nil {
		return err
	}
	out, err := asm.Obfuscate(source)
	if err != nil {
		return err
	}
	return assembler.RunPHP(cmd.Context(), phpBinary, out, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
