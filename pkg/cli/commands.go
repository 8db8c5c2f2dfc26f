package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/japaniel/kanjinote/pkg/present"
	"github.com/japaniel/kanjinote/pkg/session"
	"github.com/spf13/cobra"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	var radical bool
	cmd := &cobra.Command{
		Use:   "explain <kanji>",
		Short: "Explain the phonetic component of a kanji",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			page := s.Explain(args[0], radical)
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(page, func(w io.Writer) error { return present.WriteText(w, page) })
		},
	}
	cmd.Flags().BoolVarP(&radical, "radical", "r", false, "treat the argument as a radical name")
	return cmd
}

// NewSimilarCommand creates the similar command.
func NewSimilarCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <kanji>",
		Short: "List kanji that look like the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := s.Similar(args[0])
			if err != nil {
				return err
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(rows, func(w io.Writer) error { return present.WriteRows(w, rows) })
		},
	}
}

// NewMarkCommand creates the mark command.
func NewMarkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <kanji>",
		Short: "Toggle the marked badge of a compound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			marked, err := s.ToggleMark(args[0])
			if err != nil {
				return err
			}
			result := struct {
				Kanji  string `json:"kanji"`
				Marked bool   `json:"marked"`
			}{args[0], marked}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s marked: %t\n", result.Kanji, result.Marked)
				return err
			})
		},
	}
}

type overrideFunc func(s *session.Session, kanji, candidate string) error

func newOverrideCommand(rootOpts *RootOptions, use, short, verb string, apply overrideFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <kanji> <candidate>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := apply(s, args[0], args[1]); err != nil {
				return err
			}
			result := struct {
				Kanji     string `json:"kanji"`
				Candidate string `json:"candidate"`
				Action    string `json:"action"`
			}{args[0], args[1], verb}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s %s for %s\n", result.Candidate, verb, result.Kanji)
				return err
			})
		},
	}
}

// NewPromoteCommand creates the promote command.
func NewPromoteCommand(rootOpts *RootOptions) *cobra.Command {
	return newOverrideCommand(rootOpts, "promote", "Add a similar kanji", "promoted", (*session.Session).Promote)
}

// NewSuppressCommand creates the suppress command.
func NewSuppressCommand(rootOpts *RootOptions) *cobra.Command {
	return newOverrideCommand(rootOpts, "suppress", "Hide a similar kanji", "suppressed", (*session.Session).Suppress)
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return newOverrideCommand(rootOpts, "reset", "Forget a promote or suppress decision", "reset", (*session.Session).Reset)
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		html    bool
		pageURL string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "List the kanji of a text file, an HTML page or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "stdin"
			var content []byte
			var err error
			if len(args) == 1 {
				name = args[0]
				content, err = os.ReadFile(args[0])
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "read input", err)
			}

			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			var entries []session.ScanEntry
			if html {
				entries, err = s.ScanHTML(content, pageURL)
			} else {
				if title == "" {
					title = name
				}
				entries, err = s.Scan(string(content), session.Source{Type: "text", Title: title, URL: pageURL})
			}
			if err != nil {
				return err
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Emit(entries, func(w io.Writer) error { return writeScan(w, entries) })
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "extract the article of an HTML page first")
	cmd.Flags().StringVar(&pageURL, "url", "", "original URL of the page, recorded with the scan")
	cmd.Flags().StringVar(&title, "title", "", "title recorded with the scan (default file name)")
	return cmd
}

func writeScan(w io.Writer, entries []session.ScanEntry) error {
	for _, e := range entries {
		lock := ""
		if e.Locked {
			lock = " locked"
		}
		phon := ""
		if e.Phonetic != "" && e.Phonetic != e.Kanji {
			phon = " " + e.Phonetic
		}
		if _, err := fmt.Fprintf(w, "%s x%d (seen %d) %s%s%s\n", e.Kanji, e.Count, e.Seen, e.Bucket, phon, lock); err != nil {
			return err
		}
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the tables for dangling references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			errs := s.Validate()
			messages := make([]string, len(errs))
			for i, e := range errs {
				messages[i] = e.Error()
			}
			result := struct {
				Valid    bool     `json:"valid"`
				Warnings []string `json:"warnings,omitempty"`
			}{len(errs) == 0, messages}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := f.Emit(result, func(w io.Writer) error {
				if result.Valid {
					_, err := fmt.Fprintln(w, "tables are consistent")
					return err
				}
				for _, m := range messages {
					if _, err := fmt.Fprintln(w, m); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
			if !result.Valid {
				return NewExitError(ExitFailure, fmt.Sprintf("%d integrity warning(s)", len(errs)))
			}
			return nil
		},
	}
}
