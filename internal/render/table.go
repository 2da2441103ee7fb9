package render

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"proto-matcher/internal/match"
	"proto-matcher/internal/signature"
)

// Percent formats a score in [0, 1] with five significant characters, e.g. "66.66%".
func Percent(score float64) string {
	s := strconv.FormatFloat(score*100, 'f', 3, 64)
	if len(s) > 5 {
		s = s[:5]
	}

	return s + "%"
}

// PairTable writes cross-set pairs as a table of short hash, obfuscated and reference names.
func PairTable(w io.Writer, pairs []match.Pair) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SIGN HASH\tOBFUSCATED\tREFERENCE")

	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Signature.ShortHash(), p.Obfuscated, p.Reference)
	}

	return tw.Flush()
}

// Candidates writes a ranked candidate list with each candidate's position in its declaration order.
func Candidates(w io.Writer, name string, shown match.CandidateList, total int) {
	if total == 0 {
		fmt.Fprintln(w, "No matches found.")
		return
	}

	fmt.Fprintf(w, "Matches for %s (showing %d/%d):\n", name, len(shown), total)

	for _, c := range shown {
		position := "unlisted"
		if c.Position >= 0 {
			position = strconv.Itoa(c.Position)
		}

		fmt.Fprintf(w, "   (%s) %s [%s]\n", Percent(c.Score), c.Name, position)
	}
}

// Signature writes the tree of sig followed by its depth and element counts.
func Signature(w io.Writer, sig *signature.Signature, maxDepth int) {
	text, depth := Tree(sig, maxDepth)

	fmt.Fprint(w, text)
	fmt.Fprintf(w, "Signature Tree Depth: %d\n", depth)
	fmt.Fprintf(w, "Field Count: %d shallow, %d total\n", sig.Len(), sig.TotalLen())
}
