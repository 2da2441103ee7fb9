package match

import (
	"sort"

	"proto-matcher/internal/signature"
)

// Uniques holds the top-level types of one registry whose signature no other
// top-level type of the same registry shares.
type Uniques struct {
	byKey   map[string]string // signature key -> owning name
	byName  map[string]*signature.Signature
	perfect map[string]bool // by key
	names   []string        // registry order
	total   int             // top-level names analyzed
}

// AnalyzeUniques groups the top-level names of reg by signature. Absent
// signatures take part like any other: a single alias enum on each side pairs up.
//
// A unique field set is also perfectly mappable when no two of its entries are
// identical, so every field can be paired by shape alone. Unique enums are
// always perfectly mappable.
func AnalyzeUniques(reg *signature.Registry) *Uniques {
	groups := make(map[string][]string)
	sigs := make(map[string]*signature.Signature)

	var keys []string

	top := reg.TopLevelNames()
	for _, name := range top {
		sig, _ := reg.Lookup(name)

		if _, seen := groups[sig.Key()]; !seen {
			keys = append(keys, sig.Key())
			sigs[sig.Key()] = sig
		}

		groups[sig.Key()] = append(groups[sig.Key()], name)
	}

	u := &Uniques{
		byKey:   make(map[string]string),
		byName:  make(map[string]*signature.Signature),
		perfect: make(map[string]bool),
		total:   len(top),
	}

	for _, key := range keys {
		owners := groups[key]
		if len(owners) != 1 {
			continue
		}

		sig := sigs[key]
		u.byKey[key] = owners[0]
		u.byName[owners[0]] = sig
		u.perfect[key] = !sig.HasDuplicates()
	}

	for _, name := range top {
		if _, ok := u.byName[name]; ok {
			u.names = append(u.names, name)
		}
	}

	return u
}

// Len returns the number of exact-unique signatures.
func (u *Uniques) Len() int {
	return len(u.byKey)
}

// Total returns the number of top-level names that were analyzed.
func (u *Uniques) Total() int {
	return u.total
}

// Names returns the exact-unique names in registry order.
func (u *Uniques) Names() []string {
	out := make([]string, len(u.names))
	copy(out, u.names)

	return out
}

// Owner returns the only name holding the signature with the given key.
func (u *Uniques) Owner(key string) (string, bool) {
	name, ok := u.byKey[key]
	return name, ok
}

// Signature returns the signature of an exact-unique name.
func (u *Uniques) Signature(name string) (*signature.Signature, bool) {
	sig, ok := u.byName[name]
	return sig, ok
}

// IsPerfect returns true if the exact-unique signature with the given key is perfectly mappable.
func (u *Uniques) IsPerfect(key string) bool {
	return u.perfect[key]
}

// Exact returns signature key -> name for every exact-unique signature.
func (u *Uniques) Exact() map[string]string {
	out := make(map[string]string, len(u.byKey))
	for k, v := range u.byKey {
		out[k] = v
	}

	return out
}

// Perfect returns signature key -> name for the perfectly mappable subset.
func (u *Uniques) Perfect() map[string]string {
	out := make(map[string]string)
	for k, v := range u.byKey {
		if u.perfect[k] {
			out[k] = v
		}
	}

	return out
}

// Pair is a reference type matched to an obfuscated type.
type Pair struct {
	Reference  string
	Obfuscated string
	Signature  *signature.Signature
	Perfect    bool
}

// CrossMatches holds the pairs whose signature is exact-unique on both sides.
type CrossMatches struct {
	// Exact pairs, sorted by reference name.
	Exact []Pair
	// Perfect is the subset of Exact that is perfectly mappable.
	Perfect []Pair

	byReference map[string]int
}

// CrossMatch pairs every exact-unique reference signature with the obfuscated
// type owning the same signature, when that one is exact-unique too.
func CrossMatch(ref, obs *Uniques) CrossMatches {
	names := ref.Names()
	sort.Strings(names)

	result := CrossMatches{byReference: make(map[string]int)}

	for _, name := range names {
		sig := ref.byName[name]

		other, ok := obs.Owner(sig.Key())
		if !ok {
			continue
		}

		pair := Pair{
			Reference:  name,
			Obfuscated: other,
			Signature:  sig,
			Perfect:    ref.IsPerfect(sig.Key()),
		}

		result.byReference[name] = len(result.Exact)
		result.Exact = append(result.Exact, pair)

		if pair.Perfect {
			result.Perfect = append(result.Perfect, pair)
		}
	}

	return result
}

// Lookup returns the exact pair for a reference name.
func (c CrossMatches) Lookup(reference string) (Pair, bool) {
	idx, ok := c.byReference[reference]
	if !ok {
		return Pair{}, false
	}

	return c.Exact[idx], true
}

// ExactMap returns reference name -> obfuscated name for every exact pair.
func (c CrossMatches) ExactMap() map[string]string {
	return pairsToMap(c.Exact)
}

// PerfectMap returns reference name -> obfuscated name for the perfectly mappable pairs.
func (c CrossMatches) PerfectMap() map[string]string {
	return pairsToMap(c.Perfect)
}

func pairsToMap(pairs []Pair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Reference] = p.Obfuscated
	}

	return out
}
