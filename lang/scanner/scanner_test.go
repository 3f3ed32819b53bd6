package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanAll_Arithmetic(t *testing.T) {
	toks, errs := ScanAll("t.snow", []byte("declare x:int = 2+3*4"))
	require.Empty(t, errs)
	require.Equal(t, []token.Kind{
		token.DECLARE, token.IDENT, token.COLON, token.TYPE_INT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.STAR, token.NUMBER, token.EOF,
	}, kinds(toks))
}

func TestScanAll_StringEscapes(t *testing.T) {
	toks, errs := ScanAll("t.snow", []byte(`"a\nb\tc\"d"`))
	require.Empty(t, errs)
	require.Equal(t, "a\nb\tc\"d", toks[0].Str)
}

func TestScanAll_NumberSuffix(t *testing.T) {
	toks, errs := ScanAll("t.snow", []byte("42b 42s 42l 42f 42 4_2 0xFF"))
	require.Empty(t, errs)
	require.Equal(t, byte('b'), toks[0].Suffix)
	require.Equal(t, byte('s'), toks[1].Suffix)
	require.Equal(t, byte('l'), toks[2].Suffix)
	require.Equal(t, byte('f'), toks[3].Suffix)
	require.Equal(t, byte(0), toks[4].Suffix)
	require.Equal(t, "4_2", toks[5].Lexeme)
	require.Equal(t, "0xFF", toks[6].Lexeme)
}

func TestScanAll_DeclareRedundantIdent(t *testing.T) {
	_, errs := ScanAll("t.snow", []byte("declare x y"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Msg, "redundant identifier")
}

func TestScanAll_UnknownCharacterRecovers(t *testing.T) {
	toks, errs := ScanAll("t.snow", []byte("declare x:int = 1 $$$ declare y:int = 2"))
	require.NotEmpty(t, errs)
	// scanning continues past the bad lexeme and reaches EOF
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestScanAll_CommentsAndNewlines(t *testing.T) {
	src := "declare x:int = 1 // comment\ndeclare y:int = 2"
	toks, errs := ScanAll("t.snow", []byte(src))
	require.Empty(t, errs)
	var sawComment, sawNewline bool
	for _, tk := range toks {
		if tk.Kind == token.COMMENT {
			sawComment = true
		}
		if tk.Kind == token.NEWLINE {
			sawNewline = true
		}
	}
	require.True(t, sawComment)
	require.True(t, sawNewline)
}
