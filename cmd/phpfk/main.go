package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phpfk/encoder-go/pkg/assembler"
	"phpfk/encoder-go/pkg/encoder"
	"phpfk/encoder-go/pkg/profile"
)

var (
	// Global flags
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "phpfk",
	Short: "Encode PHP programs using only the characters 9 ( ) . ^",
	Long: `phpfk rewrites a PHP program into a single expression built from a tiny
alphabet. Evaluating the expression runs the original program.

The alphabet is fixed when the binary is built; "phpfk profiles" shows it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", env.Bool("PHPFK_VERBOSE"), "enable debug logging")

	rootCmd.AddCommand(encodeCmd, intCmd, stringCmd, checkCmd, runCmd, basisCmd, profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func currentLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func newEncoder() (*encoder.Encoder, error) {
	p, err := profile.Default()
	if err != nil {
		return nil, err
	}
	return encoder.New(p, encoder.Options{Logger: currentLogger()})
}

func newAssembler() (*assembler.Assembler, error) {
	enc, err := newEncoder()
	if err != nil {
		return nil, err
	}
	return assembler.New(enc, assembler.Options{Logger: currentLogger()})
}
