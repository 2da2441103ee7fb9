package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proto-matcher/internal/signature"
)

func TestAnalyzeUniques(t *testing.T) {
	sigs := map[string]*signature.Signature{
		"Login":        fieldSet("int32", "string"),
		"Logout":       fieldSet("int32", "string"),
		"Position":     fieldSet("float", "float", "float"),
		"Status":       signature.NewEnumValues(0, 1),
		"CmdId":        signature.Absent(),
		"OtherCmd":     signature.Absent(),
		"Item":         fieldSet("uint32", "bool"),
		"Item.Detail":  fieldSet("bytes"),
		"Login.Header": fieldSet("int64"),
	}
	reg := registry(sigs, "Login", "Logout", "Position", "Status", "CmdId", "OtherCmd", "Item", "Item.Detail", "Login.Header")

	u := AnalyzeUniques(reg)

	assert.Equal(t, []string{"Position", "Status", "Item"}, u.Names())
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, 7, u.Total())

	owner, ok := u.Owner(sigs["Item"].Key())
	require.True(t, ok)
	assert.Equal(t, "Item", owner)

	_, ok = u.Owner(sigs["Login"].Key())
	assert.False(t, ok, "shared signatures are not unique")

	_, ok = u.Owner(sigs["Item.Detail"].Key())
	assert.False(t, ok, "nested types are not analyzed")

	_, ok = u.Owner(signature.Absent().Key())
	assert.False(t, ok, "two alias enums share the absent signature")

	assert.False(t, u.IsPerfect(sigs["Position"].Key()), "duplicate entries")
	assert.True(t, u.IsPerfect(sigs["Item"].Key()))
	assert.True(t, u.IsPerfect(sigs["Status"].Key()))

	sig, ok := u.Signature("Status")
	require.True(t, ok)
	assert.Same(t, sigs["Status"], sig)
}

func TestAnalyzeUniques_PerfectIsSubsetOfExact(t *testing.T) {
	sigs := map[string]*signature.Signature{
		"A": fieldSet("int32", "int32"),
		"B": fieldSet("int32"),
		"C": fieldSet("int32", "string", "string"),
		"D": signature.NewEnumValues(4),
		"E": fieldSet("int32"),
		"F": fieldSet(),
	}
	u := AnalyzeUniques(registry(sigs, "A", "B", "C", "D", "E", "F"))

	exact := u.Exact()
	for key, name := range u.Perfect() {
		assert.Equal(t, name, exact[key])
	}

	assert.Len(t, exact, 4)
	assert.ElementsMatch(t, []string{"D", "F"}, valuesOf(u.Perfect()))
}

func TestCrossMatch(t *testing.T) {
	refSigs := map[string]*signature.Signature{
		"Login":    fieldSet("int32", "string"),
		"Move":     fieldSet("float", "float"),
		"Chat":     fieldSet("string", "bytes"),
		"Shared":   fieldSet("bool"),
		"SharedTo": fieldSet("bool"),
		"Alone":    fieldSet("double"),
	}
	obsSigs := map[string]*signature.Signature{
		"XQZ": fieldSet("string", "int32"),
		"PLM": fieldSet("float", "float"),
		"RTY": fieldSet("bytes", "string"),
		"RTZ": fieldSet("bytes", "string"),
		"BOO": fieldSet("bool"),
	}

	ref := AnalyzeUniques(registry(refSigs, "Move", "Login", "Chat", "Shared", "SharedTo", "Alone"))
	obs := AnalyzeUniques(registry(obsSigs, "XQZ", "PLM", "RTY", "RTZ", "BOO"))

	matches := CrossMatch(ref, obs)

	require.Len(t, matches.Exact, 2)
	assert.Equal(t, "Login", matches.Exact[0].Reference)
	assert.Equal(t, "XQZ", matches.Exact[0].Obfuscated)
	assert.Equal(t, "Move", matches.Exact[1].Reference)
	assert.Equal(t, "PLM", matches.Exact[1].Obfuscated)

	assert.Equal(t, map[string]string{"Login": "XQZ", "Move": "PLM"}, matches.ExactMap())
	assert.Equal(t, map[string]string{"Login": "XQZ"}, matches.PerfectMap())

	pair, ok := matches.Lookup("Move")
	require.True(t, ok)
	assert.False(t, pair.Perfect)
	assert.True(t, pair.Signature.Equal(obsSigs["PLM"]))

	_, ok = matches.Lookup("Chat")
	assert.False(t, ok, "obfuscated side is ambiguous")
}

func TestCrossMatch_AliasEnums(t *testing.T) {
	refSigs := map[string]*signature.Signature{
		"Login": fieldSet("int32", "string"),
		"CmdId": signature.Absent(),
	}
	obsSigs := map[string]*signature.Signature{
		"AAA": fieldSet("string", "int32"),
		"QQQ": signature.Absent(),
	}

	ref := AnalyzeUniques(registry(refSigs, "Login", "CmdId"))
	obs := AnalyzeUniques(registry(obsSigs, "AAA", "QQQ"))

	assert.Equal(t, []string{"Login", "CmdId"}, ref.Names())
	assert.True(t, ref.IsPerfect(signature.Absent().Key()))

	matches := CrossMatch(ref, obs)
	assert.Equal(t, map[string]string{"CmdId": "QQQ", "Login": "AAA"}, matches.ExactMap())
	assert.Equal(t, map[string]string{"CmdId": "QQQ", "Login": "AAA"}, matches.PerfectMap())
}

func valuesOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}

	return out
}
