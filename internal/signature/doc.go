// Package signature canonicalizes protobuf types into name-independent structural signatures.
//
// A message becomes the multiset of its field entries, an enum the set of its
// numeric values, a map entry the (key, value) pair of its two fields. Names
// never take part, so two types with the same shape get equal signatures no
// matter how they were renamed or how their fields were reordered.
//
// Key types:
//   - Signature: immutable tagged union (field set, enum values, map entry, absent)
//   - FieldEntry: a scalar label such as "repeated int32", or a label plus nested signature
//   - Generator: memoized, cycle-checked signing over a descriptor graph
//   - Registry: qualified type name to signature for one descriptor set
package signature
