package session

// Source tells how a match entered the result.
type Source string

const (
	SourceExact     Source = "exact_unique" // cross-set exact-unique match
	SourceIdentical Source = "identical"    // identical signatures at both cursors
	SourceAccepted  Source = "accepted"     // accepted by the decider
	SourceResumed   Source = "resumed"      // carried over from a previous run
)

// Match is one reference to obfuscated pairing.
type Match struct {
	Reference  string
	Obfuscated string
	Source     Source
}

// Result is what a run produced, in acceptance order.
type Result struct {
	RunID   string
	Matches []Match
	// SkippedReferences lists reference names given up on, in order.
	SkippedReferences []string
}

// Len returns the number of matches.
func (r Result) Len() int {
	return len(r.Matches)
}

// Map returns reference name -> obfuscated name.
func (r Result) Map() map[string]string {
	out := make(map[string]string, len(r.Matches))
	for _, m := range r.Matches {
		out[m.Reference] = m.Obfuscated
	}

	return out
}

// CountBySource returns how many matches came from each source.
func (r Result) CountBySource() map[Source]int {
	out := make(map[Source]int)
	for _, m := range r.Matches {
		out[m.Source]++
	}

	return out
}

func (r Result) clone() Result {
	out := Result{RunID: r.RunID}
	out.Matches = append(out.Matches, r.Matches...)
	out.SkippedReferences = append(out.SkippedReferences, r.SkippedReferences...)

	return out
}
