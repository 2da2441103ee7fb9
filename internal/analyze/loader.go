package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"proto-matcher/internal/common"
)

// ErrDuplicateType is returned when two files declare the same package-relative name.
var ErrDuplicateType = errors.New("duplicate type")

// Analyzer loads descriptor sets and builds a descriptor graph.
type Analyzer struct {
	graph *DescriptorGraph
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewDescriptorGraph(),
	}
}

// LoadGraph is a shorthand for loading a single descriptor set file into a new graph.
// packageName, when set, is registered as an extra prefix for reference resolution.
func LoadGraph(path, packageName string) (*DescriptorGraph, error) {
	a := NewAnalyzer()
	a.graph.AddPackage(packageName)

	if err := a.LoadFile(path); err != nil {
		return nil, err
	}

	return a.Graph(), nil
}

// LoadDescriptorSet reads a binary FileDescriptorSet.
func LoadDescriptorSet(path string) (*descriptorpb.FileDescriptorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor set %s: %w", path, err)
	}

	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor set %s: %w", path, err)
	}

	return &set, nil
}

// LoadFile loads a descriptor set file into the graph.
func (a *Analyzer) LoadFile(path string) error {
	set, err := LoadDescriptorSet(path)
	if err != nil {
		return err
	}

	return a.AddSet(set)
}

// AddSet indexes every file of a descriptor set.
func (a *Analyzer) AddSet(set *descriptorpb.FileDescriptorSet) error {
	for _, file := range set.GetFile() {
		if err := a.processFile(file); err != nil {
			return fmt.Errorf("failed to process file %s: %w", file.GetName(), err)
		}
	}

	return nil
}

// Graph returns the current descriptor graph.
func (a *Analyzer) Graph() *DescriptorGraph {
	return a.graph
}

// processFile extracts the top-level types of one file and their nested types.
func (a *Analyzer) processFile(file *descriptorpb.FileDescriptorProto) error {
	pkg := file.GetPackage()
	a.graph.AddPackage(pkg)

	for _, message := range file.GetMessageType() {
		if err := a.processMessage(pkg, "", message); err != nil {
			return err
		}
	}

	for _, enum := range file.GetEnumType() {
		if err := a.processEnum(pkg, "", enum); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) processMessage(pkg, parent string, message *descriptorpb.DescriptorProto) error {
	name := common.NestedName(parent, message.GetName())
	err := a.add(&TypeDescriptor{
		Name:    name,
		Package: pkg,
		Kind:    TypeKindMessage,
		Parent:  parent,
		Message: message,
	})
	if err != nil {
		return err
	}

	for _, nested := range message.GetNestedType() {
		if err := a.processMessage(pkg, name, nested); err != nil {
			return err
		}
	}

	for _, enum := range message.GetEnumType() {
		if err := a.processEnum(pkg, name, enum); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) processEnum(pkg, parent string, enum *descriptorpb.EnumDescriptorProto) error {
	return a.add(&TypeDescriptor{
		Name:    common.NestedName(parent, enum.GetName()),
		Package: pkg,
		Kind:    TypeKindEnum,
		Parent:  parent,
		Enum:    enum,
	})
}

func (a *Analyzer) add(desc *TypeDescriptor) error {
	if existing, ok := a.graph.Types[desc.Name]; ok {
		return fmt.Errorf("%w: %s declared in packages %q and %q",
			ErrDuplicateType, desc.Name, existing.Package, desc.Package)
	}

	a.graph.Types[desc.Name] = desc
	a.graph.Order = append(a.graph.Order, desc.Name)

	return nil
}

// LoadTypeList reads a JSON array of top-level type names in declaration order.
func LoadTypeList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type list %s: %w", path, err)
	}

	return ParseTypeList(data)
}

// ParseTypeList parses a JSON array of type names, trimming ".proto" suffixes and blanks.
func ParseTypeList(data []byte) ([]string, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse type list: %w", err)
	}

	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = common.TrimProtoSuffix(name); name != "" {
			names = append(names, name)
		}
	}

	return names, nil
}
