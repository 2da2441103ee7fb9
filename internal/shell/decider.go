package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"proto-matcher/internal/render"
	"proto-matcher/internal/session"
)

// ambiguityMargin is the structural score gap under which the top two candidates count as tied.
const ambiguityMargin = 0.05

// decider asks the operator about each uncertain pairing.
func (s *Shell) decider(w io.Writer) session.Decider {
	return session.DeciderFunc(func(ctx context.Context, p session.Prompt) (session.Decision, error) {
		maxDepth := s.ws.Config().MaxSigDepth

		fmt.Fprintf(w, "%s [%d]:\n", p.Reference, p.ReferenceIndex)
		render.Signature(w, p.ReferenceSignature, maxDepth)
		fmt.Fprintf(w, "%s [%d]:\n", p.Obfuscated, p.ObfuscatedIndex)
		render.Signature(w, p.ObfuscatedSignature, maxDepth)
		render.Candidates(w, p.Reference, p.Alternatives, len(p.Alternatives))

		if best := p.Alternatives.Best(); best != nil && best.Name != p.Obfuscated {
			fmt.Fprintf(w, "Best ranked candidate is %s\n", best.Name)
		}

		if p.Alternatives.IsAmbiguous(ambiguityMargin) {
			fmt.Fprintln(w, "Top candidates are nearly tied.")
		}

		if p.Comparison.Reason != "" {
			fmt.Fprintf(w, "%s [%d] against %s [%d] cannot be scored: %s\n",
				p.Reference, p.ReferenceIndex, p.Obfuscated, p.ObfuscatedIndex, p.Comparison.Reason)
		} else {
			fmt.Fprintf(w, "%s [%d] against %s [%d] only scored %s\n",
				p.Reference, p.ReferenceIndex, p.Obfuscated, p.ObfuscatedIndex, render.Percent(p.Comparison.Score))
		}

		for {
			if err := ctx.Err(); err != nil {
				return 0, err
			}

			answer, err := s.ask("Keep this as match? (empty to keep, 1 to skip current reference, 2 to skip current obfuscated, q to stop): ")
			if errors.Is(err, io.EOF) {
				return 0, session.ErrAborted
			}

			if err != nil {
				return 0, err
			}

			switch answer {
			case "":
				return session.DecisionAccept, nil
			case "1":
				return session.DecisionSkipReference, nil
			case "2":
				return session.DecisionSkipObfuscated, nil
			case "q":
				return 0, session.ErrAborted
			default:
				fmt.Fprintf(w, "Unknown answer %q\n", answer)
			}
		}
	})
}
