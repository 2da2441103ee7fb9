// Package match scores structural signatures against each other and proposes
// correspondences between a reference and an obfuscated schema.
//
// Key functions:
//   - Score: directional multiset similarity of two signatures
//   - AnalyzeUniques: signatures owned by exactly one top-level type of a set
//   - CrossMatch: exact and perfectly mappable pairs across two sets
//   - RankCandidates: ranks candidate types by score plus declaration-order bias
//   - SuggestNames: closest known names for a mistyped query
package match
