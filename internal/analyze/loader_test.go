package analyze_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"proto-matcher/internal/analyze"
	dt "proto-matcher/internal/analyze/descriptortest"
)

func TestAnalyzer_AddSet(t *testing.T) {
	player := dt.Nest(
		dt.Message("Player",
			dt.Scalar("uid", 1, dt.Uint32),
			dt.Repeated(dt.Ref("items", 2, dt.TypeMsg, ".game.Player.Item")),
		),
		dt.Message("Item", dt.Scalar("id", 1, dt.Uint32)),
		dt.Enum("State", 0, 1),
	)

	graph := dt.Graph(t,
		dt.File("game", player, dt.Enum("Retcode", 0, 1, 2)),
		dt.File("game.extra", dt.Message("Extra")),
	)

	assert.Equal(t, []string{"Player", "Player.Item", "Player.State", "Retcode", "Extra"}, graph.Order)
	assert.Equal(t, []string{"Player", "Retcode", "Extra"}, graph.TopLevel())
	assert.Equal(t, []string{"game.extra", "game"}, graph.Packages)

	item := graph.GetType("Player.Item")
	require.NotNil(t, item)
	assert.Equal(t, analyze.TypeKindMessage, item.Kind)
	assert.Equal(t, "Player", item.Parent)
	assert.Equal(t, "game", item.Package)

	state := graph.GetType("Player.State")
	require.NotNil(t, state)
	assert.Equal(t, analyze.TypeKindEnum, state.Kind)
	assert.Equal(t, "enum", state.Kind.String())
}

func TestAnalyzer_DuplicateType(t *testing.T) {
	a := analyze.NewAnalyzer()
	err := a.AddSet(dt.Set(
		dt.File("a", dt.Message("Dup")),
		dt.File("b", dt.Message("Dup")),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, analyze.ErrDuplicateType)
}

func TestDescriptorGraph_Resolve(t *testing.T) {
	graph := dt.Graph(t,
		dt.File("game.proto", dt.Nest(dt.Message("Outer"), dt.Message("Inner"))),
		dt.File("", dt.Message("Loose")),
	)

	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{".game.proto.Outer", "Outer", true},
		{".game.proto.Outer.Inner", "Outer.Inner", true},
		{".Loose", "Loose", true},
		{"Outer", "Outer", true},
		{".game.proto.Missing", "", false},
		{".other.Outer.Nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := graph.Resolve(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptorGraph_AddPackage(t *testing.T) {
	graph := analyze.NewDescriptorGraph()
	graph.AddPackage(".proto.")
	graph.AddPackage("proto")
	graph.AddPackage("")

	assert.Equal(t, []string{"proto"}, graph.Packages)
}

func TestTypeDescriptor_Flags(t *testing.T) {
	graph := dt.Graph(t, dt.File("",
		dt.Nest(dt.Message("Holder"), dt.MapEntry("ValuesEntry", dt.Scalar("", 0, dt.String), dt.Scalar("", 0, dt.Int32))),
		dt.AliasEnum("CmdId", 1, 1, 2),
	))

	assert.True(t, graph.GetType("Holder.ValuesEntry").IsMapEntry())
	assert.False(t, graph.GetType("Holder").IsMapEntry())
	assert.True(t, graph.GetType("CmdId").IsAliasEnum())
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desc.pb")

	data, err := proto.Marshal(dt.Set(dt.File("pkg", dt.Message("A"), dt.Enum("B", 1))))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	graph, err := analyze.LoadGraph(path, "extra.pkg")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, graph.Order)
	assert.Contains(t, graph.Packages, "extra.pkg")

	_, err = analyze.LoadGraph(filepath.Join(dir, "missing.pb"), "")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not a descriptor set \xff\xff"), 0o644))
	_, err = analyze.LoadGraph(path, "")
	assert.Error(t, err)
}

func TestParseTypeList(t *testing.T) {
	names, err := analyze.ParseTypeList([]byte(`["A.proto", "B", "", " C "]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names)

	_, err = analyze.ParseTypeList([]byte(`{"A": 1}`))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`["X","Y"]`), 0o644))
	names, err = analyze.LoadTypeList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, names)
}
