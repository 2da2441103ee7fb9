package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"proto-matcher/internal/common"
)

// Diagnostic codes emitted while building signature registries.
const (
	CodeAliasEnum       = "alias_enum"
	CodeCollapsedBytes  = "collapsed_to_bytes"
	CodeRecursiveRef    = "recursive_reference"
	CodeEmptyOneof      = "empty_oneof"
	CodeUnlistedType    = "unlisted_type"
	CodeMissingListType = "missing_list_type"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return common.UnknownStr
	}
}

// Diagnostic is one observation about a type or one of its fields.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	TypeName string
	// FieldPath is the field or oneof name, empty when the whole type is concerned.
	FieldPath string
}

// String formats the diagnostic as "[Type] field: [code] message".
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.TypeName != "" {
		fmt.Fprintf(&b, "[%s]", d.TypeName)
		if d.FieldPath != "" {
			b.WriteString(" " + d.FieldPath)
		}
		b.WriteString(": ")
	}

	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}

	b.WriteString(d.Message)

	return b.String()
}

// Diagnostics keeps observations in the order they were made.
// The zero value is ready to use.
type Diagnostics struct {
	items []Diagnostic
}

// AddWarning records something the user likely wants to fix.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldPath string) {
	d.add(SeverityWarning, code, message, typeName, fieldPath)
}

// AddInfo records an expected simplification.
func (d *Diagnostics) AddInfo(code, message, typeName, fieldPath string) {
	d.add(SeverityInfo, code, message, typeName, fieldPath)
}

func (d *Diagnostics) add(severity Severity, code, message, typeName, fieldPath string) {
	d.items = append(d.items, Diagnostic{
		Severity:  severity,
		Code:      code,
		Message:   message,
		TypeName:  typeName,
		FieldPath: fieldPath,
	})
}

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// All returns every diagnostic in recording order.
func (d *Diagnostics) All() []Diagnostic {
	return append([]Diagnostic(nil), d.items...)
}

// BySeverity returns the diagnostics of one severity in recording order.
func (d *Diagnostics) BySeverity(severity Severity) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Severity == severity {
			out = append(out, item)
		}
	}

	return out
}

// CodeCount pairs a diagnostic code with its number of occurrences.
type CodeCount struct {
	Code  string
	Count int
}

// CountByCode returns how many diagnostics carry each code, sorted by code.
func (d *Diagnostics) CountByCode() []CodeCount {
	counts := make(map[string]int)
	for _, item := range d.items {
		counts[item.Code]++
	}

	result := make([]CodeCount, 0, len(counts))
	for code, n := range counts {
		result = append(result, CodeCount{Code: code, Count: n})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })

	return result
}
