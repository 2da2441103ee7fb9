package signature

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the variant of a Signature.
type Kind int

const (
	_ Kind = iota // zero value is an invalid Kind

	KindFieldSet   // multiset of field entries (messages and oneof unions)
	KindEnumValues // set of enum numbers
	KindMapEntry   // (key, value) pair of a map helper message
	KindAbsent     // enum excluded from signing
	KindRecursive  // back-reference into a type still being signed
)

// IsContainer returns true for kinds that can be scored element by element.
func (k Kind) IsContainer() bool {
	return k == KindFieldSet || k == KindEnumValues
}
