package common

import "strings"

// NestedSeparator joins a parent type name and a nested type name.
const NestedSeparator = "."

// UnknownStr is the String form of out-of-range enum values.
const UnknownStr = "unknown"

// IsNested returns true if name addresses a type declared inside another type.
func IsNested(name string) bool {
	return strings.Contains(name, NestedSeparator)
}

// NestedName returns the qualified name of child declared inside parent.
func NestedName(parent, child string) string {
	if parent == "" {
		return child
	}

	return parent + NestedSeparator + child
}

// TrimProtoSuffix removes a trailing ".proto" some type lists carry.
func TrimProtoSuffix(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".proto")
}
