package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/scanner"
	"github.com/cordy-lang/cordy/lang/token"
)

func kinds(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := scanner.ScanAll(src)
	require.NoError(t, err)
	out := make([]token.Token, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanAllAppendsTrailingEOF(t *testing.T) {
	toks, err := scanner.ScanAll("1")
	require.NoError(t, err)
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestScanNumbers(t *testing.T) {
	toks, err := scanner.ScanAll("0x1F 0b101 42 3i")
	require.NoError(t, err)
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, "0x1F", toks[0].Text)
	require.Equal(t, token.INT, toks[1].Kind)
	require.Equal(t, token.INT, toks[2].Kind)
	require.Equal(t, token.COMPLEX, toks[3].Kind)
	require.Equal(t, "3", toks[3].Text)
}

func TestScanInvalidHexPrefixIsError(t *testing.T) {
	_, err := scanner.ScanAll("0x")
	require.Error(t, err)
	var scanErr *scanner.ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, "InvalidNumericPrefix", scanErr.Kind)
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	require.Equal(t, []token.Token{token.IDENT, token.LET, token.IDENT, token.EOF}, kinds(t, "foo let bar"))
}

func TestScanStringEscapes(t *testing.T) {
	toks, err := scanner.ScanAll(`'a\nb\\c'`)
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "a\nb\\c", toks[0].Text)
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	_, err := scanner.ScanAll(`'abc`)
	require.Error(t, err)
	var scanErr *scanner.ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, "UnterminatedStringLiteral", scanErr.Kind)
}

func TestScanPunctuationPrefersLongestMatch(t *testing.T) {
	require.Equal(t, []token.Token{token.ARROW, token.EOF}, kinds(t, "->"))
	require.Equal(t, []token.Token{token.LTLT_EQ, token.EOF}, kinds(t, "<<="))
	require.Equal(t, []token.Token{token.ELLIPSIS, token.EOF}, kinds(t, "..."))
	require.Equal(t, []token.Token{token.DOTDOT, token.EOF}, kinds(t, ".."))
	require.Equal(t, []token.Token{token.DOT_EQ, token.EOF}, kinds(t, ".="))
}

func TestScanSkipsLineAndBlockComments(t *testing.T) {
	require.Equal(t, []token.Token{token.INT, token.EOF}, kinds(t, "1 // trailing comment\n"))
	require.Equal(t, []token.Token{token.INT, token.INT, token.EOF}, kinds(t, "1 /* skipped */ 2"))
}

func TestScanUnknownCharacterIsError(t *testing.T) {
	_, err := scanner.ScanAll("@")
	require.Error(t, err)
	var scanErr *scanner.ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, "InvalidCharacter", scanErr.Kind)
}

func TestPositionsAdvanceAcrossLines(t *testing.T) {
	toks, err := scanner.ScanAll("1\n  2")
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Pos.Line)
	require.Equal(t, 2, toks[1].Pos.Line)
	require.Equal(t, 3, toks[1].Pos.Col)
}
