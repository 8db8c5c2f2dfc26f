// Package cli implements the kanjinote command line.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/japaniel/kanjinote/pkg/config"
	"github.com/japaniel/kanjinote/pkg/session"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "kanjinote",
		Short:         "Explain kanji through their phonetic components",
		Long:          "kanjinote explains why a kanji is read the way it is, ranks look-alike kanji and scans text for the kanji it contains.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $KANJINOTE_CONFIG or ./kanjinote.yaml)")

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewSimilarCommand(opts))
	cmd.AddCommand(NewMarkCommand(opts))
	cmd.AddCommand(NewPromoteCommand(opts))
	cmd.AddCommand(NewSuppressCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// openSession loads config and opens a session. Logs go to errOut.
func openSession(opts *RootOptions, errOut io.Writer) (*session.Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	logger := config.NewLogger(cfg.Log, errOut)
	s, err := session.Open(cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open session", err)
	}
	return s, nil
}
