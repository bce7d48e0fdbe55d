package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.kind
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	toks := lexAll("port: 4222\n")

	require.Len(t, toks, 5)
	assert.Equal(t,
		[]tokenKind{tokIdent, tokSep, tokIdent, tokNewline, tokEOF},
		kinds(toks))
	assert.Equal(t, "port", toks[0].text)
	assert.Equal(t, "4222", toks[2].text)
}

func TestLexerStructuralCharacters(t *testing.T) {
	toks := lexAll("{ } [ ] , =")

	assert.Equal(t,
		[]tokenKind{tokLBrace, tokRBrace, tokLBracket, tokRBracket, tokComma, tokSep, tokEOF},
		kinds(toks))
}

func TestLexerComments(t *testing.T) {
	toks := lexAll("host: a # trailing comment\n# full line\nport: 1")

	var idents []string
	for _, tok := range toks {
		if tok.kind == tokIdent {
			idents = append(idents, tok.text)
		}
	}
	assert.Equal(t, []string{"host", "a", "port", "1"}, idents)
}

func TestLexerQuotedStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"double quoted", `"hello world"`, "hello world"},
		{"single quoted", `'hello world'`, "hello world"},
		{"escaped newline", `"a\nb"`, "a\nb"},
		{"escaped tab", `"a\tb"`, "a\tb"},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"unrecognized escape passes through", `"a\zb"`, "azb"},
		{"colon inside quotes", `"nats://host:4222"`, "nats://host:4222"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(tt.input)
			require.GreaterOrEqual(t, len(toks), 2)
			assert.Equal(t, tokString, toks[0].kind)
			assert.True(t, toks[0].quoted)
			assert.Equal(t, tt.want, toks[0].text)
		})
	}
}

func TestLexerUnterminatedQuoteRunsToEOF(t *testing.T) {
	toks := lexAll(`name: "never closed`)

	require.Len(t, toks, 4)
	assert.Equal(t, tokString, toks[2].kind)
	assert.Equal(t, "never closed", toks[2].text)
	assert.Equal(t, tokEOF, toks[3].kind)
}

func TestLexerLineTracking(t *testing.T) {
	toks := lexAll("a: 1\nb: 2\n")

	assert.Equal(t, 1, toks[0].line)
	assert.Equal(t, 2, toks[4].line)
}

func TestLexerBarePathsSurvive(t *testing.T) {
	toks := lexAll("logfile /var/log/broker.log\n")

	assert.Equal(t, "logfile", toks[0].text)
	assert.Equal(t, "/var/log/broker.log", toks[1].text)
}

func TestLexerEmptyInput(t *testing.T) {
	toks := lexAll("")

	require.Len(t, toks, 1)
	assert.Equal(t, tokEOF, toks[0].kind)
}
