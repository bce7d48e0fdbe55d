package conf

import (
	"strings"
	"unicode/utf8"
)

// tokenKind identifies the syntactic class of a token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokSep
	tokComma
	tokNewline
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
)

// token is one lexical unit of the configuration DSL. Quoted strings carry
// their unquoted, unescaped text; the quoted flag records that quotes were
// present so the parser never reinterprets them as numbers or booleans.
type token struct {
	kind   tokenKind
	text   string
	quoted bool
	line   int
}

// lexer streams the DSL into tokens. It never fails: any byte it does not
// recognize becomes part of a bare token, and an unterminated quote runs to
// end of input.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

// lexAll tokenizes the whole input. The trailing token is always tokEOF.
func lexAll(src string) []token {
	lx := newLexer(src)
	var toks []token
	for {
		tok := lx.next()
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks
		}
	}
}

func (lx *lexer) next() token {
	lx.skipSpaceAndComments()

	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}
	}

	c := lx.src[lx.pos]
	switch c {
	case '\n':
		lx.pos++
		tok := token{kind: tokNewline, line: lx.line}
		lx.line++
		return tok
	case '{':
		lx.pos++
		return token{kind: tokLBrace, text: "{", line: lx.line}
	case '}':
		lx.pos++
		return token{kind: tokRBrace, text: "}", line: lx.line}
	case '[':
		lx.pos++
		return token{kind: tokLBracket, text: "[", line: lx.line}
	case ']':
		lx.pos++
		return token{kind: tokRBracket, text: "]", line: lx.line}
	case ':', '=':
		lx.pos++
		return token{kind: tokSep, text: string(c), line: lx.line}
	case ',':
		lx.pos++
		return token{kind: tokComma, text: ",", line: lx.line}
	case '\'', '"':
		return lx.lexQuoted(c)
	default:
		return lx.lexBare()
	}
}

// skipSpaceAndComments consumes horizontal whitespace and "#" comments.
// Newlines are significant and left for next to emit.
func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

// lexQuoted consumes a single- or double-quoted string, processing escapes.
// A missing closing quote extends the string to end of input.
func (lx *lexer) lexQuoted(quote byte) token {
	line := lx.line
	lx.pos++ // opening quote

	var sb strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == quote {
			lx.pos++
			return token{kind: tokString, text: sb.String(), quoted: true, line: line}
		}
		if c == '\\' && lx.pos+1 < len(lx.src) {
			lx.pos++
			esc := lx.src[lx.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				// Quotes, backslashes, and anything unrecognized pass
				// through verbatim.
				sb.WriteByte(esc)
			}
			lx.pos++
			continue
		}
		if c == '\n' {
			lx.line++
		}
		sb.WriteByte(c)
		lx.pos++
	}

	return token{kind: tokString, text: sb.String(), quoted: true, line: line}
}

// lexBare consumes an unquoted token up to whitespace, a structural
// character, or a comment. Path separators survive verbatim.
func (lx *lexer) lexBare() token {
	line := lx.line
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if isStructural(r) || r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '#' {
			break
		}
		lx.pos += size
	}
	return token{kind: tokIdent, text: lx.src[start:lx.pos], line: line}
}

func isStructural(r rune) bool {
	switch r {
	case '{', '}', '[', ']', ':', '=', ',', '\'', '"':
		return true
	}
	return false
}
