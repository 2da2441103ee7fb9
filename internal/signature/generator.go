package signature

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"proto-matcher/internal/analyze"
	"proto-matcher/internal/diagnostic"
)

var (
	// ErrCyclicType is returned when a type reaches itself through field references.
	ErrCyclicType = errors.New("cyclic type")
	// ErrUnresolvedType is returned when a field references a type missing from the set.
	ErrUnresolvedType = errors.New("unresolved type reference")
	// ErrUnknownType is returned when signing a name the descriptor graph does not declare.
	ErrUnknownType = errors.New("unknown type")
	// ErrMalformedMapEntry is returned for a map entry message without exactly two fields.
	ErrMalformedMapEntry = errors.New("malformed map entry")
)

// Options tunes signature generation.
type Options struct {
	// AbsentToBytes turns fields referencing an absent (alias) enum into plain bytes.
	AbsentToBytes bool
	// EmptyToBytes also turns fields referencing an empty message or enum into plain bytes.
	EmptyToBytes bool
	// AllowCycles replaces references back into a type being signed with a placeholder
	// instead of failing with ErrCyclicType.
	AllowCycles bool
}

// Generator signs the types of one descriptor graph into a registry.
type Generator struct {
	graph    *analyze.DescriptorGraph
	registry *Registry
	opts     Options

	inProgress map[string]int // name -> position in stack
	stack      []string
	diags      diagnostic.Diagnostics
}

// NewGenerator creates a Generator that memoizes into registry.
func NewGenerator(graph *analyze.DescriptorGraph, registry *Registry, opts Options) *Generator {
	return &Generator{
		graph:      graph,
		registry:   registry,
		opts:       opts,
		inProgress: make(map[string]int),
	}
}

// Build signs every type declared in graph.
func Build(graph *analyze.DescriptorGraph, opts Options) (*Registry, diagnostic.Diagnostics, error) {
	g := NewGenerator(graph, NewRegistry(), opts)

	for _, name := range graph.Order {
		if _, err := g.Signature(name); err != nil {
			return nil, g.diags, fmt.Errorf("failed to sign %s: %w", name, err)
		}
	}

	g.registry.reorder(graph.Order)

	return g.registry, g.diags, nil
}

// Signature returns the signature of the named type, computing and memoizing it on first use.
func (g *Generator) Signature(name string) (*Signature, error) {
	if sig, ok := g.registry.Lookup(name); ok {
		return sig, nil
	}

	desc := g.graph.GetType(name)
	if desc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	if pos, busy := g.inProgress[name]; busy {
		cycle := strings.Join(append(append([]string{}, g.stack[pos:]...), name), " -> ")
		if !g.opts.AllowCycles {
			return nil, fmt.Errorf("%w: %s", ErrCyclicType, cycle)
		}

		g.diags.AddInfo(diagnostic.CodeRecursiveRef, "recursive reference: "+cycle, name, "")

		return Recursive(), nil
	}

	if desc.Kind == analyze.TypeKindMessage {
		// Nested types are registered before their parent is marked in progress:
		// nesting alone is not a structural dependency.
		if err := g.signNested(desc); err != nil {
			return nil, err
		}

		if sig, ok := g.registry.Lookup(name); ok {
			return sig, nil
		}
	}

	g.enter(name)
	defer g.leave(name)

	var (
		sig *Signature
		err error
	)

	switch desc.Kind {
	case analyze.TypeKindEnum:
		sig = g.enumSignature(desc)
	case analyze.TypeKindMessage:
		sig, err = g.messageSignature(desc)
	default:
		err = fmt.Errorf("%w: %s has kind %s", ErrUnknownType, name, desc.Kind)
	}

	if err != nil {
		return nil, err
	}

	g.registry.Add(name, sig)

	return sig, nil
}

func (g *Generator) enter(name string) {
	g.inProgress[name] = len(g.stack)
	g.stack = append(g.stack, name)
}

func (g *Generator) leave(name string) {
	delete(g.inProgress, name)
	g.stack = g.stack[:len(g.stack)-1]
}

// signNested signs the nested messages and enums of desc. Names already in
// progress are skipped; their own frame registers them.
func (g *Generator) signNested(desc *analyze.TypeDescriptor) error {
	msg := desc.Message

	nested := make([]string, 0, len(msg.GetNestedType())+len(msg.GetEnumType()))
	for _, m := range msg.GetNestedType() {
		nested = append(nested, desc.Name+"."+m.GetName())
	}

	for _, e := range msg.GetEnumType() {
		nested = append(nested, desc.Name+"."+e.GetName())
	}

	for _, name := range nested {
		if _, busy := g.inProgress[name]; busy {
			continue
		}

		if _, err := g.Signature(name); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) enumSignature(desc *analyze.TypeDescriptor) *Signature {
	if desc.IsAliasEnum() {
		g.diags.AddInfo(diagnostic.CodeAliasEnum, "alias enum excluded from signing", desc.Name, "")
		return Absent()
	}

	values := make([]int32, 0, len(desc.Enum.GetValue()))
	for _, v := range desc.Enum.GetValue() {
		values = append(values, v.GetNumber())
	}

	return NewEnumValues(values...)
}

func (g *Generator) messageSignature(desc *analyze.TypeDescriptor) (*Signature, error) {
	msg := desc.Message

	entries := make([]FieldEntry, 0, len(msg.GetField())+len(msg.GetOneofDecl()))
	oneofs := make([][]FieldEntry, len(msg.GetOneofDecl()))

	for _, field := range msg.GetField() {
		entry, err := g.fieldEntry(desc, field)
		if err != nil {
			return nil, err
		}

		if field.OneofIndex == nil {
			entries = append(entries, entry)
			continue
		}

		idx := int(field.GetOneofIndex())
		if idx < 0 || idx >= len(oneofs) {
			return nil, fmt.Errorf("field %s.%s: oneof index %d out of range", desc.Name, field.GetName(), idx)
		}

		oneofs[idx] = append(oneofs[idx], entry)
	}

	for i, bucket := range oneofs {
		if len(bucket) == 0 {
			g.diags.AddInfo(diagnostic.CodeEmptyOneof, "oneof declares no fields", desc.Name, msg.GetOneofDecl()[i].GetName())
		}

		entries = append(entries, Composite(LabelOneof, NewFieldSet(bucket...)))
	}

	if desc.IsMapEntry() {
		if len(entries) != 2 {
			return nil, fmt.Errorf("%w: %s has %d fields", ErrMalformedMapEntry, desc.Name, len(entries))
		}

		return NewMapEntry(entries[0], entries[1]), nil
	}

	return NewFieldSet(entries...), nil
}

func (g *Generator) fieldEntry(desc *analyze.TypeDescriptor, field *descriptorpb.FieldDescriptorProto) (FieldEntry, error) {
	prefix := labelPrefix(field.GetLabel())

	if field.TypeName == nil {
		return Scalar(prefix + typeToken(field.GetType())), nil
	}

	ref, ok := g.graph.Resolve(field.GetTypeName())
	if !ok {
		return FieldEntry{}, fmt.Errorf("%w: field %s.%s references %s (build descriptor sets with --include_imports)",
			ErrUnresolvedType, desc.Name, field.GetName(), field.GetTypeName())
	}

	nested, err := g.Signature(ref)
	if err != nil {
		return FieldEntry{}, err
	}

	if g.collapses(nested) {
		g.diags.AddInfo(diagnostic.CodeCollapsedBytes, "field of type "+ref+" collapsed to bytes", desc.Name, field.GetName())
		return Scalar(prefix + LabelBytes), nil
	}

	token := typeToken(field.GetType())
	if field.Type == nil {
		token = g.graph.GetType(ref).Kind.String()
	}

	if nested.Kind() == KindMapEntry {
		token = LabelMap
	}

	return Composite(prefix+token, nested), nil
}

func (g *Generator) collapses(nested *Signature) bool {
	if nested.IsAbsent() {
		return g.opts.AbsentToBytes
	}

	return g.opts.EmptyToBytes && nested.IsEmpty()
}

// labelPrefix is empty for the default optional label, otherwise the lowercase label and a space.
func labelPrefix(label descriptorpb.FieldDescriptorProto_Label) string {
	if label == descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL {
		return ""
	}

	return strings.ToLower(strings.TrimPrefix(label.String(), "LABEL_")) + " "
}

// typeToken is the lowercase wire type name, e.g. "int32" or "message".
func typeToken(typ descriptorpb.FieldDescriptorProto_Type) string {
	return strings.ToLower(strings.TrimPrefix(typ.String(), "TYPE_"))
}
