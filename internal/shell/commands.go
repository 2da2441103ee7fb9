package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"proto-matcher/internal/render"
	"proto-matcher/internal/workspace"
)

// ErrNotLoaded is returned by commands that need schemas before Load succeeded.
var ErrNotLoaded = errors.New("schemas are not loaded, fix the config and reload")

func (s *Shell) requireWorkspace(*cobra.Command, []string) error {
	if s.ws == nil {
		return ErrNotLoaded
	}

	return nil
}

// Commands returns the command tree. Each call builds fresh commands, so flag
// values never leak from one REPL line to the next.
func (s *Shell) Commands() []*cobra.Command {
	return []*cobra.Command{
		s.searchCommand(),
		s.uniquesCommand(),
		s.exactMatchesCommand(),
		s.perfectMappablesCommand(),
		s.sequentialMatchCommand(),
		s.reloadCommand(),
		s.quitCommand(),
	}
}

func (s *Shell) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "search <name>",
		Aliases: []string{"s"},
		Short:   "Search matches for a known type",
		Long: `Print the signature of a reference or obfuscated type and rank the types
of the other side against it. Only matches scoring at least THRESHOLD are shown.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: s.requireWorkspace,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.search(cmd.OutOrStdout(), args[0])
		},
	}
}

func (s *Shell) search(w io.Writer, name string) error {
	res, err := s.ws.Search(name)

	var nf *workspace.NotFoundError
	if errors.As(err, &nf) {
		fmt.Fprintf(w, "No such type as %s\n", nf.Name)

		if len(nf.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(nf.Suggestions, ", "))
		}

		return nil
	}

	if err != nil {
		return err
	}

	cfg := s.ws.Config()
	render.Signature(w, res.Signature, cfg.MaxSigDepth)

	if res.Exact != nil {
		other := res.Exact.Obfuscated
		if res.Side == workspace.SideObfuscated {
			other = res.Exact.Reference
		}

		fmt.Fprintf(w, "%s has a unique exact match with %s\n", res.Name, other)

		if res.Exact.Perfect {
			fmt.Fprintln(w, "This type is also perfectly re-mappable!")
		}

		return nil
	}

	fmt.Fprintf(w, "Scoring Threshold: %s\n", render.Percent(cfg.Threshold))
	render.Candidates(w, res.Name, res.Candidates, res.Total)

	return nil
}

func (s *Shell) uniquesCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "uniques [ref|obs]",
		Aliases:   []string{"u"},
		Short:     "List types with unique signatures",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"ref", "obs"},
		PreRunE:   s.requireWorkspace,
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := workspace.ParseSide(strings.Join(args, ""))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			uniques := s.ws.Uniques(side)
			for _, u := range uniques {
				fmt.Fprintf(w, "(%s) %s\n", u.Signature.ShortHash(), u.Name)
			}

			fmt.Fprintf(w, "Total %s signatures: %d\n", side, len(uniques))

			return nil
		},
	}
}

func (s *Shell) exactMatchesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "exact_matches",
		Aliases: []string{"em"},
		Short:   "Print and save the exact signature matches",
		Args:    cobra.NoArgs,
		PreRunE: s.requireWorkspace,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := s.ws.WriteExactMatches()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			cross := s.ws.CrossMatches()
			ref := s.ws.Schema(workspace.SideReference)

			if err := render.PairTable(w, cross.Exact); err != nil {
				return err
			}

			fmt.Fprintf(w, "Found %d unique exact matches from %d unique reference types (%d total)\n",
				len(cross.Exact), ref.Uniques.Len(), ref.Uniques.Total())
			fmt.Fprintf(w, "Saved to %s\n", path)

			return nil
		},
	}
}

func (s *Shell) perfectMappablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "perfect_mappables",
		Aliases: []string{"pm"},
		Short:   "Print and save the exact matches that are perfectly re-mappable",
		Args:    cobra.NoArgs,
		PreRunE: s.requireWorkspace,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := s.ws.WritePerfectMappables()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			cross := s.ws.CrossMatches()

			if err := render.PairTable(w, cross.Perfect); err != nil {
				return err
			}

			fmt.Fprintf(w, "Found %d perfectly re-mappable types from %d unique exact matches.\n",
				len(cross.Perfect), len(cross.Exact))
			fmt.Fprintf(w, "Saved to %s\n", path)

			return nil
		},
	}
}

func (s *Shell) sequentialMatchCommand() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:     "sequential_match",
		Aliases: []string{"sm"},
		Short:   "Walk both declaration lists and confirm matches one by one",
		Args:    cobra.NoArgs,
		PreRunE: s.requireWorkspace,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			result, path, err := s.ws.SequentialMatch(cmd.Context(), s.decider(w), resume)
			if path != "" {
				fmt.Fprintf(w, "Saved %d matches to %s\n", result.Len(), path)
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(w, "Finished sequential matching.")

			return nil
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Keep the matches of the previous run")

	return cmd
}

func (s *Shell) reloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reload",
		Aliases: []string{"r"},
		Short:   "Reload the config from file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.Load(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Config reloaded.")

			return nil
		},
	}
}

func (s *Shell) quitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"q", "exit"},
		Short:   "Leave the shell",
		Args:    cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			s.quit = true
		},
	}
}
