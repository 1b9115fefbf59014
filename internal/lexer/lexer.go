// Package lexer implements the UTF-8-aware scanner of spec.md §4.1,
// grounded on gmofishsauce/wut4/lang/ylex's byte-at-a-time Lexer (peek/
// peekN/advance, nested block comments, string/char escape scanning) but
// generalized to the classified token.Kind model and the full literal-
// modifier set spec.md requires instead of ylex's flat KEY/ID/PUNCT/LIT
// text protocol.
package lexer

import (
	"strings"

	"github.com/vrn-lang/varunac/internal/diag"
	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/token"
)

// Lexer scans one source file into a token stream. A Lexer is not
// reused across files.
type Lexer struct {
	cache *source.Cache
	file  source.Handle
	src   string
	bag   *diag.Bag

	pos    int
	line   int
	column int

	ifStack  []bool
	skipping bool
	defines  map[string]bool
}

// New creates a Lexer over the file already registered in cache under h.
// defines is the set of conditional-compilation symbols considered true
// for `#if name` (SPEC_FULL.md §4, the -D-populated symbol table).
func New(cache *source.Cache, h source.Handle, defines map[string]bool) *Lexer {
	if defines == nil {
		defines = map[string]bool{}
	}
	return &Lexer{
		cache:   cache,
		file:    h,
		src:     cache.File(h).Content,
		bag:     diag.NewBag(),
		line:    1,
		column:  1,
		defines: defines,
	}
}

// Scan runs the lexer to completion and returns every token including a
// trailing EOF, plus the diagnostics collected along the way. A lexer run
// never aborts early: it keeps scanning so callers see every diagnostic
// from one run (spec.md §4.1's failure semantics).
func (l *Lexer) Scan() ([]token.Token, *diag.Bag) {
	var toks []token.Token
	for {
		tok, ok := l.next()
		if ok {
			toks = append(toks, tok)
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(toks) == 1 {
		l.bag.Warnf(toks[0].Loc, "empty translation unit")
	}
	return toks, l.bag
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) locFrom(startPos, startLine, startCol int) source.Loc {
	return source.Loc{
		File:   l.file,
		Line:   startLine,
		Column: startCol,
		Offset: startPos,
		Length: l.pos - startPos,
	}
}

// skipTrivia consumes whitespace and comments, honoring nested block
// comments and active #if/#else/#endif skipping.
func (l *Lexer) skipTrivia() {
	for {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		case ch == '/' && l.peekN(1) == '*':
			l.scanBlockComment()
		case ch == '#':
			if !l.handleDirective() {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanBlockComment() {
	startLine, startCol := l.line, l.column
	depth := 0
	l.advance() // /
	l.advance() // *
	depth++
	for depth > 0 {
		if l.peek() == 0 {
			l.bag.Warnf(source.Loc{File: l.file, Line: startLine, Column: startCol}, "unterminated block comment")
			return
		}
		if l.peek() == '/' && l.peekN(1) == '*' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advance()
			l.advance()
			depth--
			continue
		}
		l.advance()
	}
}

// handleDirective handles #if/#else/#endif conditional compilation
// (SPEC_FULL.md §4). Returns false if `#` did not start a known
// directive, so the caller can fall back to lexing `#` as an ordinary
// (unrecognized) character.
func (l *Lexer) handleDirective() bool {
	save := l.pos
	saveLine, saveCol := l.line, l.column
	l.advance() // #
	name := l.scanIdentRaw()
	switch name {
	case "if":
		l.skipSpaces()
		cond := l.scanIdentRaw()
		active := l.defines[cond]
		parentSkip := l.skipping
		l.ifStack = append(l.ifStack, l.skipping)
		l.skipping = parentSkip || !active
		return true
	case "else":
		if len(l.ifStack) == 0 {
			l.bag.Errorf(source.Loc{File: l.file, Line: saveLine, Column: saveCol}, "#else without matching #if")
			return true
		}
		parentSkip := l.ifStack[len(l.ifStack)-1]
		l.skipping = !parentSkip && !l.skipping
		return true
	case "endif":
		if len(l.ifStack) == 0 {
			l.bag.Errorf(source.Loc{File: l.file, Line: saveLine, Column: saveCol}, "#endif without matching #if")
			return true
		}
		l.skipping = l.ifStack[len(l.ifStack)-1]
		l.ifStack = l.ifStack[:len(l.ifStack)-1]
		return true
	default:
		l.pos, l.line, l.column = save, saveLine, saveCol
		return false
	}
}

func (l *Lexer) skipSpaces() {
	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}
}

func (l *Lexer) scanIdentRaw() string {
	var b strings.Builder
	for isLetter(l.peek()) || isDigit(l.peek()) {
		b.WriteByte(l.advance())
	}
	return b.String()
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
func isDigit(ch byte) bool   { return ch >= '0' && ch <= '9' }
func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isOctalDigit(ch byte) bool { return ch >= '0' && ch <= '7' }
func isBinDigit(ch byte) bool   { return ch == '0' || ch == '1' }
func isAlnum(ch byte) bool      { return isLetter(ch) || isDigit(ch) }

// next scans and returns the next significant token. ok is false only for
// tokens suppressed by #if skipping.
func (l *Lexer) next() (token.Token, bool) {
	l.skipTrivia()

	startPos, startLine, startCol := l.pos, l.line, l.column

	if l.peek() == 0 {
		return token.Token{Kind: token.EOF, Loc: l.locFrom(startPos, startLine, startCol)}, true
	}

	ch := l.peek()

	var tok token.Token
	switch {
	case ch == 'c' && l.peekN(1) == '"':
		tok = l.scanString(startPos, startLine, startCol, token.CString)
	case ch == 'b' && l.peekN(1) == '\'':
		tok = l.scanChar(startPos, startLine, startCol, token.ByteChar)
	case isLetter(ch):
		tok = l.scanIdentifierOrKeyword(startPos, startLine, startCol)
	case isDigit(ch):
		tok = l.scanNumber(startPos, startLine, startCol)
	case ch == '.' && isDigit(l.peekN(1)):
		tok = l.scanNumber(startPos, startLine, startCol)
	case ch == '"':
		tok = l.scanString(startPos, startLine, startCol, token.ManagedString)
	case ch == '\'':
		tok = l.scanChar(startPos, startLine, startCol, token.UnicodeChar)
	default:
		tok = l.scanOperator(startPos, startLine, startCol)
	}
	// A token scanned inside an inactive #if/#else branch is discarded
	// here rather than in skipTrivia, since #if controls whole tokens, not
	// just whitespace (SPEC_FULL.md §4).
	return tok, !l.skipping
}

func (l *Lexer) scanIdentifierOrKeyword(startPos, startLine, startCol int) token.Token {
	var b strings.Builder
	for isAlnum(l.peek()) {
		b.WriteByte(l.advance())
	}
	lex := b.String()
	loc := l.locFrom(startPos, startLine, startCol)
	if lex == "true" || lex == "false" {
		return token.Token{Kind: token.BoolLiteral, Lexeme: lex, Loc: loc}
	}
	if kw, ok := token.Keywords[lex]; ok {
		return token.Token{Kind: kw, Lexeme: lex, Loc: loc}
	}
	return token.Token{Kind: token.Identifier, Lexeme: lex, Loc: loc}
}

var intSuffixes = map[string]token.IntModifiers{
	"i8":  {Width: token.Width8},
	"i16": {Width: token.Width16},
	"i32": {Width: token.Width32},
	"i64": {Width: token.Width64},
	"o":   {Width: token.Width8, IsByte: true},
}

var floatSuffixes = map[string]token.FloatWidth{
	"f32": token.FWidth32,
	"f64": token.FWidth64,
}

func (l *Lexer) scanNumber(startPos, startLine, startCol int) token.Token {
	base := token.Base10
	var digits strings.Builder

	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		base = token.Base16
		l.advance()
		l.advance()
		for isHexDigit(l.peek()) {
			digits.WriteByte(l.advance())
		}
	} else if l.peek() == '0' && (l.peekN(1) == 'o' || l.peekN(1) == 'O') {
		base = token.Base8
		l.advance()
		l.advance()
		for isOctalDigit(l.peek()) {
			digits.WriteByte(l.advance())
		}
	} else if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		base = token.Base2
		l.advance()
		l.advance()
		for isBinDigit(l.peek()) {
			digits.WriteByte(l.advance())
		}
	} else {
		for isDigit(l.peek()) {
			digits.WriteByte(l.advance())
		}
	}

	isFloat := false
	if base == token.Base10 && l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		digits.WriteByte(l.advance()) // .
		for isDigit(l.peek()) {
			digits.WriteByte(l.advance())
		}
	}

	suffixStart := l.pos
	for isAlnum(l.peek()) {
		l.advance()
	}
	suffix := l.src[suffixStart:l.pos]

	loc := l.locFrom(startPos, startLine, startCol)

	if isFloat || suffix == "f32" || suffix == "f64" {
		if base != token.Base10 {
			l.bag.Errorf(loc, "non-decimal float literal is not allowed")
		}
		width := token.FWidth64
		if suffix != "" {
			w, ok := floatSuffixes[suffix]
			if !ok {
				l.bag.Errorf(loc, "unknown float literal suffix %q", suffix)
			} else {
				width = w
			}
		}
		return token.Token{
			Kind:   token.FloatLiteral,
			Lexeme: digits.String(),
			Loc:    loc,
			Modifiers: token.Modifiers{Float: width},
		}
	}

	mod := token.IntModifiers{Width: token.Width32, Base: base}
	if suffix != "" {
		m, ok := intSuffixes[suffix]
		if !ok {
			l.bag.Errorf(loc, "unknown integer literal suffix %q", suffix)
		} else {
			mod = token.IntModifiers{Width: m.Width, IsByte: m.IsByte, Base: base}
		}
	}
	return token.Token{
		Kind:      token.IntLiteral,
		Lexeme:    digits.String(),
		Loc:       loc,
		Modifiers: token.Modifiers{Int: mod},
	}
}

// scanEscape consumes a backslash escape and appends its decoded bytes to
// b. Unknown escapes warn and are dropped, per spec.md §4.1.
func (l *Lexer) scanEscape(b *strings.Builder, loc source.Loc) {
	l.advance() // backslash
	ch := l.advance()
	switch ch {
	case '\\':
		b.WriteByte('\\')
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'b':
		b.WriteByte('\b')
	case 'a':
		b.WriteByte('\a')
	case '"':
		b.WriteByte('"')
	case '\'':
		b.WriteByte('\'')
	case 'x':
		n := 0
		var v byte
		for n < 2 && isHexDigit(l.peek()) {
			v = v*16 + hexVal(l.advance())
			n++
		}
		if n == 0 {
			l.bag.Errorf(loc, "invalid \\x escape: no hex digits")
		}
		b.WriteByte(v)
	case 'o':
		n := 0
		var v int
		for n < 3 && isOctalDigit(l.peek()) {
			v = v*8 + int(l.advance()-'0')
			n++
		}
		if n == 0 {
			l.bag.Errorf(loc, "invalid \\o escape: no octal digits")
		}
		b.WriteByte(byte(v))
	default:
		l.bag.Warnf(loc, "unknown escape sequence \\%c", ch)
	}
}

func hexVal(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}

func (l *Lexer) scanString(startPos, startLine, startCol int, kind token.StringKind) token.Token {
	if kind == token.CString {
		l.advance() // c
	}
	l.advance() // opening "
	var b strings.Builder
	for l.peek() != '"' && l.peek() != 0 && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.scanEscape(&b, l.locFrom(startPos, startLine, startCol))
		} else {
			b.WriteByte(l.advance())
		}
	}
	loc := l.locFrom(startPos, startLine, startCol)
	if l.peek() != '"' {
		l.bag.Errorf(loc, "unterminated string literal")
	} else {
		l.advance()
	}
	return token.Token{
		Kind:      token.StringLiteral,
		Lexeme:    b.String(),
		Loc:       l.locFrom(startPos, startLine, startCol),
		Modifiers: token.Modifiers{String: kind},
	}
}

func (l *Lexer) scanChar(startPos, startLine, startCol int, kind token.CharKind) token.Token {
	if kind == token.ByteChar {
		l.advance() // b
	}
	l.advance() // opening '
	var b strings.Builder
	for l.peek() != '\'' && l.peek() != 0 && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.scanEscape(&b, l.locFrom(startPos, startLine, startCol))
		} else {
			b.WriteByte(l.advance())
		}
	}
	loc := l.locFrom(startPos, startLine, startCol)
	if l.peek() != '\'' {
		l.bag.Errorf(loc, "unterminated character literal")
	} else {
		l.advance()
	}
	content := b.String()
	if kind == token.ByteChar {
		if len(content) != 1 {
			l.bag.Errorf(loc, "byte character literal must be exactly one byte")
		}
	} else {
		n := 0
		for range content {
			n++
		}
		if n != 1 {
			l.bag.Errorf(loc, "character literal must be exactly one code point")
		}
	}
	return token.Token{
		Kind:      token.CharLiteral,
		Lexeme:    content,
		Loc:       l.locFrom(startPos, startLine, startCol),
		Modifiers: token.Modifiers{Char: kind},
	}
}

// multiCharOps is checked longest-first, per spec.md §4.1's
// longest-match rule.
var multiCharOps = []struct {
	lexeme string
	kind   token.Kind
}{
	{"+=", token.OpPlusEq}, {"-=", token.OpMinusEq}, {"*=", token.OpStarEq},
	{"/=", token.OpSlashEq}, {"%=", token.OpPercentEq},
	{"&&", token.OpAndAnd}, {"||", token.OpOrOr},
	{"==", token.OpEq}, {"!=", token.OpNe}, {"<=", token.OpLe}, {">=", token.OpGe},
	{"->", token.Arrow},
}

var singleCharOps = map[byte]token.Kind{
	'=': token.OpAssign, '+': token.OpPlus, '-': token.OpMinus, '*': token.OpStar,
	'/': token.OpSlash, '%': token.OpPercent, '<': token.OpLt, '>': token.OpGt,
	'.': token.OpDot, '!': token.OpBang, '^': token.OpCaret,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket, ':': token.Colon, ';': token.Semicolon,
	',': token.Comma,
}

func (l *Lexer) scanOperator(startPos, startLine, startCol int) token.Token {
	for _, op := range multiCharOps {
		if strings.HasPrefix(l.src[l.pos:], op.lexeme) {
			for range op.lexeme {
				l.advance()
			}
			return token.Token{Kind: op.kind, Lexeme: op.lexeme, Loc: l.locFrom(startPos, startLine, startCol)}
		}
	}
	ch := l.advance()
	if kind, ok := singleCharOps[ch]; ok {
		return token.Token{Kind: kind, Lexeme: string(ch), Loc: l.locFrom(startPos, startLine, startCol)}
	}
	loc := l.locFrom(startPos, startLine, startCol)
	l.bag.Warnf(loc, "unrecognized character %q", ch)
	// Resume scanning past the skipped byte so the caller's token stream
	// never contains an Invalid token (spec.md §4.1 failure semantics).
	tok, _ := l.next()
	return tok
}
