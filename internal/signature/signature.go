package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Base labels produced outside of wire types.
const (
	LabelOneof = "oneof"
	LabelMap   = "map"
	LabelBytes = "bytes"
)

// FieldEntry is one element of a field set: a scalar label, or a label with a nested signature.
type FieldEntry struct {
	// Label is the optional cardinality prefix plus the base type, e.g. "repeated int32".
	Label string
	// Nested is the signature of the referenced type, nil for scalar fields.
	Nested *Signature

	key string
}

// Scalar creates a FieldEntry without a nested signature.
func Scalar(label string) FieldEntry {
	return FieldEntry{Label: label, key: entryKey(label, nil)}
}

// Composite creates a FieldEntry holding a nested signature.
func Composite(label string, nested *Signature) FieldEntry {
	return FieldEntry{Label: label, Nested: nested, key: entryKey(label, nested)}
}

// IsComposite returns true if the entry carries a nested signature.
func (e FieldEntry) IsComposite() bool {
	return e.Nested != nil
}

// Key returns the canonical identity of the entry.
func (e FieldEntry) Key() string {
	if e.key != "" {
		return e.key
	}

	return entryKey(e.Label, e.Nested)
}

// TotalLen counts the entry itself plus everything below it.
func (e FieldEntry) TotalLen() int {
	if e.Nested == nil {
		return 1
	}

	return 1 + e.Nested.TotalLen()
}

// String returns a compact representation of the entry.
func (e FieldEntry) String() string {
	if e.Nested == nil {
		return e.Label
	}

	return e.Label + " " + e.Nested.String()
}

func entryKey(label string, nested *Signature) string {
	if nested == nil {
		return "s:" + label
	}

	return "c:" + label + ":" + nested.Key()
}

// EntryCount is a distinct field entry with its multiplicity.
type EntryCount struct {
	Entry FieldEntry
	Count int
}

// Signature is the canonical structural value of a type. It is immutable once created.
type Signature struct {
	kind   Kind
	fields []FieldEntry // field set: sorted by key; map entry: key then value
	values []int32      // enum values: sorted, distinct
	key    string
}

var (
	absentSignature    = seal(&Signature{kind: KindAbsent})
	recursiveSignature = seal(&Signature{kind: KindRecursive})
)

// NewFieldSet creates a field set signature. Entry order is irrelevant, multiplicity is kept.
func NewFieldSet(entries ...FieldEntry) *Signature {
	fields := make([]FieldEntry, len(entries))
	for i, e := range entries {
		fields[i] = FieldEntry{Label: e.Label, Nested: e.Nested, key: e.Key()}
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].key < fields[j].key
	})

	return seal(&Signature{kind: KindFieldSet, fields: fields})
}

// NewEnumValues creates an enum signature. Duplicate values collapse.
func NewEnumValues(values ...int32) *Signature {
	seen := make(map[int32]struct{}, len(values))
	distinct := make([]int32, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	return seal(&Signature{kind: KindEnumValues, values: distinct})
}

// NewMapEntry creates the signature of a map helper message.
func NewMapEntry(key, value FieldEntry) *Signature {
	return seal(&Signature{
		kind: KindMapEntry,
		fields: []FieldEntry{
			{Label: key.Label, Nested: key.Nested, key: key.Key()},
			{Label: value.Label, Nested: value.Nested, key: value.Key()},
		},
	})
}

// Absent returns the sentinel for enums excluded from signing.
func Absent() *Signature {
	return absentSignature
}

// Recursive returns the placeholder for a reference back into a type still being signed.
func Recursive() *Signature {
	return recursiveSignature
}

// seal computes the canonical key. Nested signatures contribute their own keys,
// so the digest of a deep type costs no more than its shallow encoding.
func seal(s *Signature) *Signature {
	var b strings.Builder

	switch s.kind {
	case KindFieldSet:
		b.WriteString("F[")
		for i, f := range s.fields {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(f.key)
		}
		b.WriteByte(']')
	case KindEnumValues:
		b.WriteString("E[")
		for i, v := range s.values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatInt(int64(v), 10))
		}
		b.WriteByte(']')
	case KindMapEntry:
		b.WriteString("P[")
		b.WriteString(s.fields[0].key)
		b.WriteByte(';')
		b.WriteString(s.fields[1].key)
		b.WriteByte(']')
	case KindAbsent:
		b.WriteString("A")
	case KindRecursive:
		b.WriteString("R")
	}

	sum := sha256.Sum256([]byte(b.String()))
	s.key = hex.EncodeToString(sum[:])

	return s
}

// Kind returns the signature variant.
func (s *Signature) Kind() Kind {
	return s.kind
}

// Key returns the canonical digest. Equal keys mean structurally identical types.
func (s *Signature) Key() string {
	return s.key
}

// ShortHash returns a 9 digit hexadecimal fingerprint for display.
func (s *Signature) ShortHash() string {
	h := fmt.Sprintf("%X", xxhash.Sum64String(s.key))
	if len(h) > 9 {
		h = h[:9]
	}

	return h
}

// Equal reports structural equality.
func (s *Signature) Equal(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.key == other.key
}

// IsAbsent returns true for the absent sentinel.
func (s *Signature) IsAbsent() bool {
	return s.kind == KindAbsent
}

// IsEmpty returns true for field sets and enum value sets with no elements.
func (s *Signature) IsEmpty() bool {
	return s.kind.IsContainer() && s.Len() == 0
}

// Len returns the shallow cardinality: field entries, enum values, or 2 for map entries.
func (s *Signature) Len() int {
	switch s.kind {
	case KindFieldSet, KindMapEntry:
		return len(s.fields)
	case KindEnumValues:
		return len(s.values)
	default:
		return 0
	}
}

// TotalLen returns the recursive element count.
func (s *Signature) TotalLen() int {
	switch s.kind {
	case KindFieldSet, KindMapEntry:
		total := 0
		for _, f := range s.fields {
			total += f.TotalLen()
		}

		return total
	case KindEnumValues:
		return len(s.values)
	default:
		return 1
	}
}

// Fields returns the entries of a field set or map entry.
func (s *Signature) Fields() []FieldEntry {
	out := make([]FieldEntry, len(s.fields))
	copy(out, s.fields)

	return out
}

// Values returns the sorted enum values.
func (s *Signature) Values() []int32 {
	out := make([]int32, len(s.values))
	copy(out, s.values)

	return out
}

// MapKey returns the key entry of a map entry signature.
func (s *Signature) MapKey() (FieldEntry, bool) {
	if s.kind != KindMapEntry {
		return FieldEntry{}, false
	}

	return s.fields[0], true
}

// MapValue returns the value entry of a map entry signature.
func (s *Signature) MapValue() (FieldEntry, bool) {
	if s.kind != KindMapEntry {
		return FieldEntry{}, false
	}

	return s.fields[1], true
}

// Counts returns the distinct entries of a field set with their multiplicity, in canonical order.
func (s *Signature) Counts() []EntryCount {
	if s.kind != KindFieldSet {
		return nil
	}

	var counts []EntryCount
	for _, f := range s.fields {
		if n := len(counts); n > 0 && counts[n-1].Entry.key == f.key {
			counts[n-1].Count++
			continue
		}

		counts = append(counts, EntryCount{Entry: f, Count: 1})
	}

	return counts
}

// HasDuplicates returns true if a field set holds two structurally identical entries.
func (s *Signature) HasDuplicates() bool {
	return s.kind == KindFieldSet && len(s.Counts()) != len(s.fields)
}

// String returns a compact, deterministic representation.
func (s *Signature) String() string {
	if s == nil {
		return "<nil>"
	}

	switch s.kind {
	case KindFieldSet:
		parts := make([]string, len(s.fields))
		for i, f := range s.fields {
			parts[i] = f.String()
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case KindEnumValues:
		parts := make([]string, len(s.values))
		for i, v := range s.values {
			parts[i] = strconv.FormatInt(int64(v), 10)
		}

		return "<" + strings.Join(parts, ",") + ">"
	case KindMapEntry:
		return "(" + s.fields[0].String() + " => " + s.fields[1].String() + ")"
	case KindAbsent:
		return "<absent>"
	case KindRecursive:
		return "<recursive>"
	default:
		return "<invalid>"
	}
}
