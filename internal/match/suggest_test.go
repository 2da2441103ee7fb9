package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"PlayerLoginReq", "PlayerLoginRsp", 2},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("LoginReq", "loginreq"))
	assert.InDelta(t, 0.5, Similarity("abcd", "abzz"), 1e-9)
}

func TestSuggestNames(t *testing.T) {
	names := []string{"PlayerLoginReq", "PlayerLoginRsp", "PlayerLogoutReq", "ChatMsg", "Position"}

	got := SuggestNames("playerloginreq", names, 3)
	assert.Equal(t, []string{"PlayerLoginReq", "PlayerLoginRsp", "PlayerLogoutReq"}, got)

	assert.Equal(t, []string{"PlayerLoginReq"}, SuggestNames("PlayerLoginReq", names, 1))
	assert.Empty(t, SuggestNames("zzzzzzzz", names, 3))
	assert.Len(t, SuggestNames("PlayerLogin", names, 0), 3)
}
