package token

// Token is an immutable lexical token: a classified lexeme with its
// source position and, for literals, a decoded value payload. A Token's
// lifetime spans lexer to parser only; nothing downstream mutates one.
type Token struct {
	Kind Kind
	// Lexeme is the token's source text (e.g. "==", "declare", "4_2").
	Lexeme string
	// Raw is the untouched source text the token was scanned from. The
	// scanner sets it to the same text as Lexeme; digit separators and
	// escape spellings are kept in both.
	Raw string
	Pos Pos

	// Literal payload. The scanner sets Str for STRING, Bool for BOOL and
	// Suffix for NUMBER; it never sets Int or Float, since numeric values
	// are parsed later by lang/ir.
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Suffix byte // 'b','s','l','f' or 0, for NUMBER tokens
}

func (t Token) Line() int   { l, _ := t.Pos.LineCol(); return l }
func (t Token) Column() int { _, c := t.Pos.LineCol(); return c }
