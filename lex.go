package calc

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Token is a lexical unit of an expression.
type Token struct {
	// Text is the token's source text.
	Text string
	// Kind is the token's type.
	Kind Kind
	// Pos is the 1-based rune column of the token in the expression. The
	// brackets that Tokenize wraps around the expression are at 0 and one
	// past the last rune.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// Kind is the type of a Token.
type Kind int8

const (
	KindNone Kind = iota
	// KindNum is a run of decimal digits.
	KindNum
	// KindOp is any single rune that is not a digit, bracket, or space. The
	// evaluator decides whether it is an operator it knows.
	KindOp
	// KindOpen is an open bracket, (.
	KindOpen
	// KindClose is a close bracket, ).
	KindClose
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind

// isDigit reports whether r is part of a number token.
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isSpace reports whether r separates tokens without being one.
func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

type lexer struct {
	src string
	// off is the byte offset of the next rune in src.
	off int
	// rune is the column of the next rune.
	rune int
}

func lex(src string) *lexer {
	return &lexer{src: src}
}

// next scans the next token. The second result is false once the input is
// exhausted.
func (l *lexer) next() (Token, bool) {
	for l.off < len(l.src) {
		r, sz := utf8.DecodeRuneInString(l.src[l.off:])
		start, pos := l.off, l.rune
		l.off += sz
		l.rune++
		switch {
		case isSpace(r):
			continue
		case isDigit(r):
			for l.off < len(l.src) && isDigit(rune(l.src[l.off])) {
				l.off++
				l.rune++
			}
			return Token{Text: l.src[start:l.off], Kind: KindNum, Pos: pos}, true
		case r == '(':
			return Token{Text: "(", Kind: KindOpen, Pos: pos}, true
		case r == ')':
			return Token{Text: ")", Kind: KindClose, Pos: pos}, true
		default:
			return Token{Text: l.src[start:l.off], Kind: KindOp, Pos: pos}, true
		}
	}
	return Token{}, false
}

// Tokenize splits an expression into tokens. The expression is wrapped in
// brackets first, so the result always begins with an open bracket and ends
// with a close bracket. Whitespace separates tokens and is otherwise ignored.
func Tokenize(src string) []Token {
	l := lex("(" + src + ")")
	toks := make([]Token, 0, len(src)/2+2)
	for {
		tok, ok := l.next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}
