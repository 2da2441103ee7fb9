package match

import (
	"proto-matcher/internal/common"
	"proto-matcher/internal/signature"
)

// Verdict classifies the outcome of comparing two signatures.
type Verdict int

const (
	// VerdictUnscoreable means the pair has no defined score.
	VerdictUnscoreable Verdict = iota
	// VerdictPartial means the score is below 1.
	VerdictPartial
	// VerdictIdentical means the signatures are structurally equal.
	VerdictIdentical
)

// String returns a human-readable name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictUnscoreable:
		return "unscoreable"
	case VerdictPartial:
		return "partial"
	case VerdictIdentical:
		return "identical"
	default:
		return common.UnknownStr
	}
}

// Comparison contains detailed information about a signature comparison.
type Comparison struct {
	Verdict Verdict
	Score   float64
	Reason  string // Set when the pair is unscoreable
}

// Score computes (|A∩B| / |A|) * (min(|A|,|B|) / max(|A|,|B|)) over the shallow
// elements of two field sets or two enum value sets. The first factor depends
// on a alone, so the score is not symmetric in general.
//
// ok is false when a is empty, when either side is not a container, or when
// the kinds differ; such pairs must be left out of any ranking.
func Score(a, b *signature.Signature) (score float64, ok bool) {
	if a == nil || b == nil || !a.Kind().IsContainer() || a.Kind() != b.Kind() {
		return 0, false
	}

	lenA, lenB := a.Len(), b.Len()
	if lenA == 0 {
		return 0, false
	}

	shared := intersection(a, b)
	ratio := float64(min(lenA, lenB)) / float64(max(lenA, lenB))

	return float64(shared) / float64(lenA) * ratio, true
}

// Compare scores a against b and classifies the result. Structurally equal
// signatures are identical even when they have no scoreable elements.
func Compare(a, b *signature.Signature) Comparison {
	if a.Equal(b) {
		return Comparison{Verdict: VerdictIdentical, Score: 1}
	}

	score, ok := Score(a, b)
	switch {
	case !ok:
		return Comparison{Verdict: VerdictUnscoreable, Reason: unscoreableReason(a, b)}
	case score == 1:
		return Comparison{Verdict: VerdictIdentical, Score: 1}
	default:
		return Comparison{Verdict: VerdictPartial, Score: score}
	}
}

func unscoreableReason(a, b *signature.Signature) string {
	switch {
	case a == nil || b == nil:
		return "missing signature"
	case !a.Kind().IsContainer():
		return "reference signature is " + a.Kind().String()
	case a.Kind() != b.Kind():
		return "cannot compare " + a.Kind().String() + " with " + b.Kind().String()
	default:
		return "reference signature is empty"
	}
}

// intersection counts shared elements, each up to its lower multiplicity.
func intersection(a, b *signature.Signature) int {
	if a.Kind() == signature.KindEnumValues {
		present := make(map[int32]struct{}, b.Len())
		for _, v := range b.Values() {
			present[v] = struct{}{}
		}

		shared := 0
		for _, v := range a.Values() {
			if _, ok := present[v]; ok {
				shared++
			}
		}

		return shared
	}

	remaining := make(map[string]int, b.Len())
	for _, f := range b.Fields() {
		remaining[f.Key()]++
	}

	shared := 0
	for _, f := range a.Fields() {
		if remaining[f.Key()] > 0 {
			remaining[f.Key()]--
			shared++
		}
	}

	return shared
}
