package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/token"
)

func scan(t *testing.T, src string) ([]token.Token, *source.Cache) {
	t.Helper()
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", src)
	require.NoError(t, err)
	toks, bag := New(cache, h, nil).Scan()
	require.False(t, bag.HasErrors(), "unexpected lex errors: %+v", bag.Items())
	return toks, cache
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, _ := scan(t, "def let mut foo")
	require.Equal(t, []token.Kind{token.KwDef, token.KwLet, token.KwMut, token.Identifier, token.EOF}, kinds(toks))
	require.Equal(t, "foo", toks[3].Lexeme)
}

func TestScanIntLiteralDefaultsToI32Base10(t *testing.T) {
	toks, _ := scan(t, "42")
	require.Equal(t, token.IntLiteral, toks[0].Kind)
	require.Equal(t, "42", toks[0].Lexeme)
	require.Equal(t, token.Width32, toks[0].Modifiers.Int.Width)
	require.Equal(t, token.Base10, toks[0].Modifiers.Int.Base)
}

func TestScanIntLiteralHexWithWidthSuffix(t *testing.T) {
	toks, _ := scan(t, "0xFFi64")
	require.Equal(t, token.IntLiteral, toks[0].Kind)
	require.Equal(t, "FF", toks[0].Lexeme)
	require.Equal(t, token.Base16, toks[0].Modifiers.Int.Base)
	require.Equal(t, token.Width64, toks[0].Modifiers.Int.Width)
}

func TestScanByteIntLiteralSuffix(t *testing.T) {
	toks, _ := scan(t, "7o")
	require.Equal(t, token.IntLiteral, toks[0].Kind)
	require.True(t, toks[0].Modifiers.Int.IsByte)
	require.Equal(t, token.Width8, toks[0].Modifiers.Int.Width)
}

func TestScanFloatLiteralWithSuffix(t *testing.T) {
	toks, _ := scan(t, "3.14f32")
	require.Equal(t, token.FloatLiteral, toks[0].Kind)
	require.Equal(t, "3.14", toks[0].Lexeme)
	require.Equal(t, token.FWidth32, toks[0].Modifiers.Float)
}

func TestScanStringLiteralWithEscapes(t *testing.T) {
	toks, _ := scan(t, `"a\nb\x41"`)
	require.Equal(t, token.StringLiteral, toks[0].Kind)
	require.Equal(t, "a\nbA", toks[0].Lexeme)
	require.Equal(t, token.ManagedString, toks[0].Modifiers.String)
}

func TestScanCStringLiteral(t *testing.T) {
	toks, _ := scan(t, `c"hi"`)
	require.Equal(t, token.StringLiteral, toks[0].Kind)
	require.Equal(t, token.CString, toks[0].Modifiers.String)
}

func TestScanUnicodeAndByteCharLiterals(t *testing.T) {
	toks, _ := scan(t, `'x' b'y'`)
	require.Equal(t, token.CharLiteral, toks[0].Kind)
	require.Equal(t, token.UnicodeChar, toks[0].Modifiers.Char)
	require.Equal(t, token.CharLiteral, toks[1].Kind)
	require.Equal(t, token.ByteChar, toks[1].Modifiers.Char)
}

func TestScanLongestMatchOperators(t *testing.T) {
	toks, _ := scan(t, "+= <= -> && == !=")
	require.Equal(t, []token.Kind{
		token.OpPlusEq, token.OpLe, token.Arrow, token.OpAndAnd, token.OpEq, token.OpNe, token.EOF,
	}, kinds(toks))
}

func TestScanLineCommentsAndBlockComments(t *testing.T) {
	toks, _ := scan(t, "foo // trailing comment\n/* block\nnested /* inner */ comment */ bar")
	require.Equal(t, []token.Kind{token.Identifier, token.Identifier, token.EOF}, kinds(toks))
	require.Equal(t, "foo", toks[0].Lexeme)
	require.Equal(t, "bar", toks[1].Lexeme)
}

func TestScanUnterminatedBlockCommentWarns(t *testing.T) {
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", "/* never closes")
	require.NoError(t, err)
	_, bag := New(cache, h, nil).Scan()
	require.False(t, bag.HasErrors())
	found := false
	for _, d := range bag.Items() {
		if d.Message == "unterminated block comment" {
			found = true
		}
	}
	require.True(t, found)
}

func TestConditionalCompilationSkipsInactiveBranch(t *testing.T) {
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", "#if FEATURE\nlet a = 1\n#else\nlet b = 2\n#endif")
	require.NoError(t, err)
	toks, bag := New(cache, h, map[string]bool{}).Scan()
	require.False(t, bag.HasErrors())
	// FEATURE is not defined, so only the #else branch's tokens survive.
	require.Equal(t, []token.Kind{
		token.KwLet, token.Identifier, token.OpAssign, token.IntLiteral, token.EOF,
	}, kinds(toks))
	require.Equal(t, "b", toks[1].Lexeme)
}

func TestConditionalCompilationTakesActiveBranch(t *testing.T) {
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", "#if FEATURE\nlet a = 1\n#else\nlet b = 2\n#endif")
	require.NoError(t, err)
	toks, bag := New(cache, h, map[string]bool{"FEATURE": true}).Scan()
	require.False(t, bag.HasErrors())
	require.Equal(t, []token.Kind{
		token.KwLet, token.Identifier, token.OpAssign, token.IntLiteral, token.EOF,
	}, kinds(toks))
	require.Equal(t, "a", toks[1].Lexeme)
}

func TestEmptyTranslationUnitWarns(t *testing.T) {
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", "")
	require.NoError(t, err)
	toks, bag := New(cache, h, nil).Scan()
	require.Len(t, toks, 1)
	require.Equal(t, token.EOF, toks[0].Kind)
	found := false
	for _, d := range bag.Items() {
		if d.Message == "empty translation unit" {
			found = true
		}
	}
	require.True(t, found)
}
