package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/token"
)

func TestStringCoversEveryToken(t *testing.T) {
	for tok := token.ILLEGAL; tok < 120; tok++ {
		s := tok.String()
		require.NotEmpty(t, s)
		if tok > token.EXIT {
			require.Equal(t, "unknown token", s)
		} else {
			require.NotEqual(t, "unknown token", s)
		}
	}
}

func TestKeywordsRoundTripThroughString(t *testing.T) {
	for spelling, tok := range token.Keywords {
		require.Equal(t, spelling, tok.String())
	}
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "3:7", token.Position{Line: 3, Col: 7}.String())
	require.Equal(t, "0:0", token.Position{}.String())
}
