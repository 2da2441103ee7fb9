package signature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dt "proto-matcher/internal/analyze/descriptortest"
	"proto-matcher/internal/diagnostic"
	"proto-matcher/internal/signature"
)

var defaultOptions = signature.Options{AbsentToBytes: true}

func TestBuild_RenamedAndReorderedFieldsMatch(t *testing.T) {
	graph := dt.Graph(t, dt.File("",
		dt.Message("PlayerLoginReq",
			dt.Scalar("uid", 1, dt.Int32),
			dt.Scalar("token", 2, dt.String),
		),
		dt.Message("ABCDEFGHIJK",
			dt.Scalar("KLMNOPQ", 7, dt.String),
			dt.Scalar("RSTUVWX", 3, dt.Int32),
		),
	))

	reg, _, err := signature.Build(graph, defaultOptions)
	require.NoError(t, err)

	ref, ok := reg.Lookup("PlayerLoginReq")
	require.True(t, ok)
	obs, ok := reg.Lookup("ABCDEFGHIJK")
	require.True(t, ok)

	assert.True(t, ref.Equal(obs))
	assert.Equal(t, signature.NewFieldSet(signature.Scalar("int32"), signature.Scalar("string")).Key(), ref.Key())
}

func TestBuild_AliasEnum(t *testing.T) {
	files := dt.File("game",
		dt.AliasEnum("CmdId", 101, 101, 102),
		dt.Message("Req",
			dt.Ref("cmd", 1, dt.TypeEnm, ".game.CmdId"),
			dt.Scalar("seq", 2, dt.Uint32),
		),
	)

	t.Run("collapsed to bytes", func(t *testing.T) {
		reg, diags, err := signature.Build(dt.Graph(t, files), defaultOptions)
		require.NoError(t, err)

		cmd, _ := reg.Lookup("CmdId")
		assert.True(t, cmd.IsAbsent())

		req, _ := reg.Lookup("Req")
		want := signature.NewFieldSet(signature.Scalar("bytes"), signature.Scalar("uint32"))
		assert.True(t, req.Equal(want), "got %s", req)

		codes := diags.CountByCode()
		assert.Contains(t, codes, diagnostic.CodeCount{Code: diagnostic.CodeAliasEnum, Count: 1})
		assert.Contains(t, codes, diagnostic.CodeCount{Code: diagnostic.CodeCollapsedBytes, Count: 1})
	})

	t.Run("kept as nested absent", func(t *testing.T) {
		reg, _, err := signature.Build(dt.Graph(t, files), signature.Options{})
		require.NoError(t, err)

		req, _ := reg.Lookup("Req")
		want := signature.NewFieldSet(
			signature.Composite("enum", signature.Absent()),
			signature.Scalar("uint32"),
		)
		assert.True(t, req.Equal(want), "got %s", req)
	})
}

func TestBuild_EmptyToBytes(t *testing.T) {
	graph := dt.Graph(t, dt.File("",
		dt.Message("Empty"),
		dt.Message("Holder", dt.Ref("e", 1, dt.TypeMsg, ".Empty")),
	))

	reg, _, err := signature.Build(graph, defaultOptions)
	require.NoError(t, err)
	holder, _ := reg.Lookup("Holder")
	assert.True(t, holder.Equal(signature.NewFieldSet(signature.Composite("message", signature.NewFieldSet()))))

	reg, _, err = signature.Build(graph, signature.Options{AbsentToBytes: true, EmptyToBytes: true})
	require.NoError(t, err)
	holder, _ = reg.Lookup("Holder")
	assert.True(t, holder.Equal(signature.NewFieldSet(signature.Scalar("bytes"))))
}

func TestBuild_MapEntry(t *testing.T) {
	holder := dt.Nest(
		dt.Message("Inventory", dt.Map("items", 1, ".Inventory.ItemsEntry")),
		dt.MapEntry("ItemsEntry", dt.Scalar("", 0, dt.Uint32), dt.Scalar("", 0, dt.Int32)),
	)
	// same two fields, but not flagged as a map entry
	lookalike := dt.Message("Pair", dt.Scalar("k", 1, dt.Uint32), dt.Scalar("v", 2, dt.Int32))

	reg, _, err := signature.Build(dt.Graph(t, dt.File("", holder, lookalike)), defaultOptions)
	require.NoError(t, err)

	entry, ok := reg.Lookup("Inventory.ItemsEntry")
	require.True(t, ok)
	assert.Equal(t, signature.KindMapEntry, entry.Kind())
	assert.True(t, entry.Equal(signature.NewMapEntry(signature.Scalar("uint32"), signature.Scalar("int32"))))

	pair, _ := reg.Lookup("Pair")
	assert.Equal(t, signature.KindFieldSet, pair.Kind())
	assert.False(t, pair.Equal(entry))

	inventory, _ := reg.Lookup("Inventory")
	fields := inventory.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "repeated map", fields[0].Label)
	assert.Same(t, entry, fields[0].Nested)
}

func TestBuild_MalformedMapEntry(t *testing.T) {
	entry := dt.MapEntry("BadEntry", dt.Scalar("", 0, dt.String), dt.Scalar("", 0, dt.String))
	entry.Field = entry.Field[:1]

	_, _, err := signature.Build(dt.Graph(t, dt.File("", dt.Nest(dt.Message("Holder"), entry))), defaultOptions)
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrMalformedMapEntry)
}

func TestBuild_Oneof(t *testing.T) {
	msg := dt.Oneofs(dt.Message("Notify",
		dt.Scalar("uid", 1, dt.Uint32),
		dt.InOneof(dt.Scalar("text", 2, dt.String), 0),
		dt.InOneof(dt.Scalar("code", 3, dt.Int64), 0),
		dt.InOneof(dt.Scalar("flag", 4, dt.Bool), 1),
	), "payload", "extra")

	reg, _, err := signature.Build(dt.Graph(t, dt.File("", msg)), defaultOptions)
	require.NoError(t, err)

	want := signature.NewFieldSet(
		signature.Scalar("uint32"),
		signature.Composite("oneof", signature.NewFieldSet(signature.Scalar("string"), signature.Scalar("int64"))),
		signature.Composite("oneof", signature.NewFieldSet(signature.Scalar("bool"))),
	)

	got, _ := reg.Lookup("Notify")
	assert.True(t, got.Equal(want), "got %s", got)
	assert.Equal(t, 3, got.Len())
}

func TestBuild_Labels(t *testing.T) {
	msg := dt.Message("Labels",
		dt.Repeated(dt.Scalar("a", 1, dt.Int32)),
		dt.Required(dt.Scalar("b", 2, dt.String)),
		dt.Scalar("c", 3, dt.Double),
	)

	reg, _, err := signature.Build(dt.Graph(t, dt.File("", msg)), defaultOptions)
	require.NoError(t, err)

	got, _ := reg.Lookup("Labels")
	var labels []string
	for _, f := range got.Fields() {
		labels = append(labels, f.Label)
	}

	assert.ElementsMatch(t, []string{"repeated int32", "required string", "double"}, labels)
}

func TestBuild_NestedTypes(t *testing.T) {
	outer := dt.Nest(
		dt.Message("Outer",
			dt.Scalar("id", 1, dt.Int32),
			dt.Repeated(dt.Ref("state", 2, dt.TypeEnm, ".pkg.Outer.State")),
		),
		// Inner refers back to its parent; nesting alone is not a cycle.
		dt.Message("Inner", dt.Ref("parent", 1, dt.TypeMsg, ".pkg.Outer")),
		dt.Enum("State", 0, 1, 2),
	)

	reg, _, err := signature.Build(dt.Graph(t, dt.File("pkg", outer)), defaultOptions)
	require.NoError(t, err)

	assert.Equal(t, []string{"Outer", "Outer.Inner", "Outer.State"}, reg.Names())
	assert.Equal(t, []string{"Outer"}, reg.TopLevelNames())

	state, _ := reg.Lookup("Outer.State")
	outerSig, _ := reg.Lookup("Outer")
	inner, _ := reg.Lookup("Outer.Inner")

	assert.True(t, outerSig.Equal(signature.NewFieldSet(
		signature.Scalar("int32"),
		signature.Composite("repeated enum", state),
	)))
	assert.True(t, inner.Equal(signature.NewFieldSet(signature.Composite("message", outerSig))))
}

func TestBuild_CyclicType(t *testing.T) {
	node := dt.Message("Node",
		dt.Scalar("value", 1, dt.Int32),
		dt.Repeated(dt.Ref("children", 2, dt.TypeMsg, ".Node")),
	)

	t.Run("fails by default", func(t *testing.T) {
		_, _, err := signature.Build(dt.Graph(t, dt.File("", node)), defaultOptions)
		require.Error(t, err)
		assert.ErrorIs(t, err, signature.ErrCyclicType)
		assert.Contains(t, err.Error(), "Node -> Node")
	})

	t.Run("mutual recursion", func(t *testing.T) {
		a := dt.Message("A", dt.Ref("b", 1, dt.TypeMsg, ".B"))
		b := dt.Message("B", dt.Ref("a", 1, dt.TypeMsg, ".A"))

		_, _, err := signature.Build(dt.Graph(t, dt.File("", a, b)), defaultOptions)
		require.Error(t, err)
		assert.ErrorIs(t, err, signature.ErrCyclicType)
		assert.Contains(t, err.Error(), "A -> B -> A")
	})

	t.Run("placeholder when allowed", func(t *testing.T) {
		reg, diags, err := signature.Build(dt.Graph(t, dt.File("", node)), signature.Options{AllowCycles: true})
		require.NoError(t, err)

		got, _ := reg.Lookup("Node")
		want := signature.NewFieldSet(
			signature.Scalar("int32"),
			signature.Composite("repeated message", signature.Recursive()),
		)
		assert.True(t, got.Equal(want), "got %s", got)
		assert.Len(t, diags.BySeverity(diagnostic.SeverityInfo), 1)
		assert.Equal(t, diagnostic.CodeRecursiveRef, diags.All()[0].Code)
	})
}

func TestBuild_UnresolvedType(t *testing.T) {
	msg := dt.Message("UsesAny", dt.Ref("payload", 1, dt.TypeMsg, ".google.protobuf.Any"))

	_, _, err := signature.Build(dt.Graph(t, dt.File("", msg)), defaultOptions)
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrUnresolvedType)
	assert.Contains(t, err.Error(), "UsesAny.payload")
}

func TestGenerator_Memoizes(t *testing.T) {
	shared := dt.Message("Shared", dt.Scalar("x", 1, dt.Int32))
	a := dt.Message("A", dt.Ref("s", 1, dt.TypeMsg, ".Shared"))
	b := dt.Message("B", dt.Repeated(dt.Ref("s", 1, dt.TypeMsg, ".Shared")))

	graph := dt.Graph(t, dt.File("", a, b, shared))
	reg := signature.NewRegistry()
	g := signature.NewGenerator(graph, reg, defaultOptions)

	first, err := g.Signature("Shared")
	require.NoError(t, err)
	second, err := g.Signature("Shared")
	require.NoError(t, err)
	assert.Same(t, first, second)

	aSig, err := g.Signature("A")
	require.NoError(t, err)
	bSig, err := g.Signature("B")
	require.NoError(t, err)
	assert.Same(t, aSig.Fields()[0].Nested, bSig.Fields()[0].Nested)
	assert.Equal(t, 3, reg.Len())

	_, err = g.Signature("Missing")
	assert.ErrorIs(t, err, signature.ErrUnknownType)
}

func TestRegistry(t *testing.T) {
	reg := signature.NewRegistry()
	first := signature.NewEnumValues(1)

	reg.Add("A", first)
	reg.Add("A.B", signature.NewEnumValues(2))
	reg.Add("A", signature.NewEnumValues(3))

	got, ok := reg.Lookup("A")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.True(t, reg.Has("A.B"))
	assert.False(t, reg.Has("C"))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"A", "A.B"}, reg.Names())
	assert.Equal(t, []string{"A"}, reg.TopLevelNames())
}
