package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/value"
)

func TestEqualCrossesIntAndComplex(t *testing.T) {
	eq, err := value.Equal(value.Int(3), value.Complex{Re: 3, Im: 0})
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = value.Equal(value.Int(3), value.Complex{Re: 3, Im: 1})
	require.NoError(t, err)
	require.False(t, eq)
}

func TestEqualListsAreStructural(t *testing.T) {
	a := value.NewList([]value.Value{value.Int(1), value.Str("x")})
	b := value.NewList([]value.Value{value.Int(1), value.Str("x")})
	eq, err := value.Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)
	require.False(t, a == b)
}

func TestNewSetDedupesByEquality(t *testing.T) {
	s, err := value.NewSet([]value.Value{value.Int(1), value.Int(1), value.Int(2)})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
}

func TestNewDictLaterDuplicateKeyWins(t *testing.T) {
	d, err := value.NewDict([][2]value.Value{
		{value.Str("k"), value.Int(1)},
		{value.Str("k"), value.Int(2)},
	})
	require.NoError(t, err)
	v, ok, err := d.Get(value.Str("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value.Int(2), v)
}

func TestHashOfEqualValuesMatches(t *testing.T) {
	h1, err := value.Hash(value.Str("abc"))
	require.NoError(t, err)
	h2, err := value.Hash(value.Str("abc"))
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestHashDetectsSelfReferentialList(t *testing.T) {
	l := value.NewList(nil)
	l.PushBack(l)
	_, err := value.Hash(l)
	require.Error(t, err)
}

func TestStrReprEscapesQuotesAndBackslashes(t *testing.T) {
	require.Equal(t, `'it\'s \\ here'`, value.Str(`it's \ here`).Repr())
}

func TestTruth(t *testing.T) {
	require.False(t, value.Truth(value.Nil))
	require.False(t, value.Truth(value.Int(0)))
	require.True(t, value.Truth(value.Int(1)))
	require.False(t, value.Truth(value.Str("")))
	require.True(t, value.Truth(value.Str("x")))
}
