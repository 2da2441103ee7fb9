package match

import (
	"math"
	"sort"

	"proto-matcher/internal/common"
	"proto-matcher/internal/signature"
)

// PositionWeight scales the declaration-order bonus added to a structural score.
const PositionWeight = 0.5

// Candidate represents a potential correspondence for a target signature.
type Candidate struct {
	Name      string
	Signature *signature.Signature

	// Scoring components
	Score         float64 // Structural score (0-1)
	Position      int     // Index in the candidate declaration order, -1 if unlisted
	PositionBonus float64 // PositionWeight * (1 - (Position+1)/len(order))

	// Combined score for ranking (higher is better)
	CombinedScore float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores target against every top-level signature of reg and
// returns those scoring at least threshold, best first. Earlier declared
// candidates get a bonus: similar types tend to keep their relative place in
// the declaration order across schema revisions.
func RankCandidates(
	target *signature.Signature,
	reg *signature.Registry,
	order []string,
	threshold float64,
) CandidateList {
	var candidates CandidateList

	index := common.IndexOf(order)

	for _, name := range reg.TopLevelNames() {
		sig, _ := reg.Lookup(name)

		score, ok := Score(target, sig)
		if !ok || score < threshold {
			continue
		}

		position, bonus := -1, 0.0
		if idx, listed := index[name]; listed {
			position = idx
			bonus = PositionWeight * (1 - float64(idx+1)/float64(len(order)))
		}

		candidates = append(candidates, Candidate{
			Name:          name,
			Signature:     sig,
			Score:         score,
			Position:      position,
			PositionBonus: bonus,
			CombinedScore: score + bonus,
		})
	}

	sort.Stable(candidates)

	return candidates
}

// SelectMatches returns at most limit ranked candidates. A limit of zero or less means no limit.
func SelectMatches(
	target *signature.Signature,
	reg *signature.Registry,
	order []string,
	threshold float64,
	limit int,
) CandidateList {
	candidates := RankCandidates(target, reg, order, threshold)
	if limit <= 0 {
		return candidates
	}

	return candidates.Top(limit)
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by declaration position.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return sortPosition(c[i].Position) < sortPosition(c[j].Position)
}

// sortPosition places unlisted candidates after listed ones.
func sortPosition(p int) int {
	if p < 0 {
		return math.MaxInt
	}

	return p
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if common.IsEmpty(c) {
		return nil
	}

	return &c[0]
}

// Names returns candidate names in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Name
	}

	return names
}

// IsAmbiguous returns true if the top two candidates have structural scores within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}
