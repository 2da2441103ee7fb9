// Package descriptortest builds small descriptor sets for tests.
package descriptortest

import (
	"fmt"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"proto-matcher/internal/analyze"
)

// Field type shorthands.
const (
	Int32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	Int64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	Uint32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
	Bool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	String  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	Bytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	Float   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	Double  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	TypeMsg = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	TypeEnm = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

// File creates a file in pkg holding the given messages and enums.
func File(pkg string, types ...proto.Message) *descriptorpb.FileDescriptorProto {
	file := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(fmt.Sprintf("%s_%d.proto", pkg, len(types))),
		Syntax: proto.String("proto3"),
	}
	if pkg != "" {
		file.Package = proto.String(pkg)
	}

	for _, t := range types {
		switch tt := t.(type) {
		case *descriptorpb.DescriptorProto:
			file.MessageType = append(file.MessageType, tt)
		case *descriptorpb.EnumDescriptorProto:
			file.EnumType = append(file.EnumType, tt)
		default:
			panic(fmt.Sprintf("descriptortest: unsupported type %T", t))
		}
	}

	return file
}

// Set wraps files into a FileDescriptorSet.
func Set(files ...*descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{File: files}
}

// Graph indexes files into a DescriptorGraph, failing the test on error.
func Graph(t testing.TB, files ...*descriptorpb.FileDescriptorProto) *analyze.DescriptorGraph {
	t.Helper()

	a := analyze.NewAnalyzer()
	if err := a.AddSet(Set(files...)); err != nil {
		t.Fatalf("descriptortest: %v", err)
	}

	return a.Graph()
}

// Message creates a message with the given fields.
func Message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// Nest adds nested messages and enums to m.
func Nest(m *descriptorpb.DescriptorProto, types ...proto.Message) *descriptorpb.DescriptorProto {
	for _, t := range types {
		switch tt := t.(type) {
		case *descriptorpb.DescriptorProto:
			m.NestedType = append(m.NestedType, tt)
		case *descriptorpb.EnumDescriptorProto:
			m.EnumType = append(m.EnumType, tt)
		default:
			panic(fmt.Sprintf("descriptortest: unsupported nested type %T", t))
		}
	}

	return m
}

// Oneofs declares oneof unions on m, in order.
func Oneofs(m *descriptorpb.DescriptorProto, names ...string) *descriptorpb.DescriptorProto {
	for _, name := range names {
		m.OneofDecl = append(m.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(name)})
	}

	return m
}

// MapEntry creates the synthetic entry message protoc generates for a map field.
func MapEntry(name string, key, value *descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	key.Name, key.Number = proto.String("key"), proto.Int32(1)
	value.Name, value.Number = proto.String("value"), proto.Int32(2)

	m := Message(name, key, value)
	m.Options = &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)}

	return m
}

// Enum creates an enum with values named after their numbers.
func Enum(name string, values ...int32) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(fmt.Sprintf("%s_V%d", name, i)),
			Number: proto.Int32(v),
		})
	}

	return e
}

// AliasEnum creates an enum declared with allow_alias.
func AliasEnum(name string, values ...int32) *descriptorpb.EnumDescriptorProto {
	e := Enum(name, values...)
	e.Options = &descriptorpb.EnumOptions{AllowAlias: proto.Bool(true)}

	return e
}

// Scalar creates an optional scalar field.
func Scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// Ref creates an optional field referencing a named message or enum.
func Ref(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := Scalar(name, number, typ)
	f.TypeName = proto.String(typeName)

	return f
}

// Map creates the repeated field that backs a map, referencing entry.
func Map(name string, number int32, entry string) *descriptorpb.FieldDescriptorProto {
	return Repeated(Ref(name, number, TypeMsg, entry))
}

// Repeated marks f as repeated.
func Repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

// Required marks f as required.
func Required(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()
	return f
}

// InOneof places f in the oneof declared at index.
func InOneof(f *descriptorpb.FieldDescriptorProto, index int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(index)
	return f
}
