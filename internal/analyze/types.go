package analyze

import (
	"sort"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"proto-matcher/internal/common"
)

// TypeKind represents the kind of a declared type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindMessage          // message, including synthesized map entries
	TypeKindEnum             // enum
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindMessage:
		return "message"
	case TypeKindEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// TypeDescriptor describes one declared message or enum.
type TypeDescriptor struct {
	Name    string   // Package-relative qualified name, e.g. "Player.Item"
	Package string   // Declaring package, may be empty
	Kind    TypeKind // Message or enum
	Parent  string   // Qualified name of the enclosing message, empty for top-level types

	Message *descriptorpb.DescriptorProto     // Set when Kind is TypeKindMessage
	Enum    *descriptorpb.EnumDescriptorProto // Set when Kind is TypeKindEnum
}

// IsMapEntry returns true for the synthetic message protoc generates for a map field.
func (t *TypeDescriptor) IsMapEntry() bool {
	return t.Message != nil && t.Message.GetOptions().GetMapEntry()
}

// IsAliasEnum returns true for enums declared with allow_alias.
func (t *TypeDescriptor) IsAliasEnum() bool {
	return t.Enum != nil && t.Enum.GetOptions().GetAllowAlias()
}

// DescriptorGraph holds every declared type of one descriptor set.
type DescriptorGraph struct {
	// Types maps qualified names to their descriptors.
	Types map[string]*TypeDescriptor
	// Order lists qualified names in declaration order, parents before their nested types.
	Order []string
	// Packages lists the declaring packages, longest first, for reference resolution.
	Packages []string
}

// NewDescriptorGraph creates a new empty DescriptorGraph.
func NewDescriptorGraph() *DescriptorGraph {
	return &DescriptorGraph{
		Types: make(map[string]*TypeDescriptor),
	}
}

// GetType returns the descriptor for a qualified name, or nil if not found.
func (g *DescriptorGraph) GetType(name string) *TypeDescriptor {
	return g.Types[name]
}

// TopLevel returns the names of types not nested in another type, in declaration order.
func (g *DescriptorGraph) TopLevel() []string {
	var names []string
	for _, name := range g.Order {
		if !common.IsNested(name) {
			names = append(names, name)
		}
	}

	return names
}

// Resolve maps a field type reference (".pkg.Outer.Inner") to a qualified name in the graph.
func (g *DescriptorGraph) Resolve(typeName string) (string, bool) {
	name := strings.TrimPrefix(typeName, ".")
	if _, ok := g.Types[name]; ok {
		return name, true
	}

	for _, pkg := range g.Packages {
		if pkg == "" || !strings.HasPrefix(name, pkg+".") {
			continue
		}

		relative := name[len(pkg)+1:]
		if _, ok := g.Types[relative]; ok {
			return relative, true
		}
	}

	return "", false
}

// AddPackage registers an extra package prefix used by Resolve.
func (g *DescriptorGraph) AddPackage(pkg string) {
	pkg = strings.Trim(pkg, ".")
	if pkg == "" {
		return
	}

	for _, known := range g.Packages {
		if known == pkg {
			return
		}
	}

	g.Packages = append(g.Packages, pkg)
	sort.SliceStable(g.Packages, func(i, j int) bool {
		return len(g.Packages[i]) > len(g.Packages[j])
	})
}
