package token

import (
	"strconv"
	"strings"
)

// MaxSnippetLength bounds the amount of source text quoted inside a
// [LexerFatalError] for an unrecognized lead byte.
const MaxSnippetLength = 64

// Tokenizer is a position-tracking lexer over an immutable source string.
// The zero value is not usable; construct one with [New].
type Tokenizer struct {
	source string
	file   string

	pos    int
	line   int
	column int
	index  int
}

// New creates a Tokenizer over source. file is an optional name used only
// for error locations (pass "" if none is available).
func New(source, file string) *Tokenizer {
	return &Tokenizer{source: source, file: file, pos: 0, line: 1, column: 0, index: 0}
}

// Pos returns the current byte offset into the source. Callers that hand a
// sub-slice of their original buffer to a fresh Tokenizer (as pkg/httpmsg
// does for the header block) use this to compute how much of their own
// buffer the sub-parse consumed.
func (t *Tokenizer) Pos() int {
	return t.pos
}

func (t *Tokenizer) location() Location {
	return Location{Line: t.line, Column: t.column, Position: t.pos, File: t.file}
}

// cursor is the mutable scan state threaded through lexOne. Tokenizer.pos/
// line/column are only ever updated by committing a cursor back onto them.
type cursor struct {
	pos    int
	line   int
	column int
}

func (t *Tokenizer) cursor() cursor {
	return cursor{pos: t.pos, line: t.line, column: t.column}
}

// Peek returns the next token's Kind/payload without advancing the
// tokenizer. It returns an EOF token once the source is exhausted.
func (t *Tokenizer) Peek() Token {
	tok, _, err := lexOne(t.source, t.cursor(), t.file)
	if err != nil {
		// Peek never surfaces errors; a malformed lead byte peeks as the
		// zero Token, whose Kind is EOF. The error resurfaces on the
		// subsequent Next.
		return Token{}
	}
	return tok
}

// Next consumes and returns the next token, along with the pre-increment
// token index. ok is false only when the tokenizer was already positioned
// at end-of-source before this call (in which case an EOF token is
// returned and nothing advances).
func (t *Tokenizer) Next() (SourceToken, int, bool, error) {
	if t.pos >= len(t.source) {
		return SourceToken{Token: Token{Kind: EOF}, Location: t.location()}, t.index, false, nil
	}

	start := t.location()
	tok, next, err := lexOne(t.source, t.cursor(), t.file)
	idx := t.index
	t.pos, t.line, t.column = next.pos, next.line, next.column
	t.index++
	if err != nil {
		return SourceToken{Token: tok, Location: start}, idx, true, err
	}
	return SourceToken{Token: tok, Location: start}, idx, true, nil
}

// Expect consumes one token and succeeds iff its Kind matches expected's
// Kind (the carried payload, if any, is ignored). On mismatch it still
// leaves the tokenizer positioned past the consumed token.
func (t *Tokenizer) Expect(expected Token) (SourceToken, error) {
	st, _, _, err := t.Next()
	if err != nil {
		return st, err
	}
	if !st.Token.SameVariant(expected) {
		return st, &ExpectedTokenError{Expected: expected, Actual: st.Token, Location: st.Location}
	}
	return st, nil
}

// ExpectExact is like Expect but also compares the carried payload.
func (t *Tokenizer) ExpectExact(expected Token) (SourceToken, error) {
	st, _, _, err := t.Next()
	if err != nil {
		return st, err
	}
	if st.Token != expected {
		return st, &ExpectedTokenError{Expected: expected, Actual: st.Token, Location: st.Location}
	}
	return st, nil
}

// SkipAnyOf repeatedly peeks and consumes tokens whose Kind matches any of
// kinds, stopping at the first token whose Kind doesn't match.
func (t *Tokenizer) SkipAnyOf(kinds ...Kind) {
	for {
		peeked := t.Peek()
		matched := false
		for _, k := range kinds {
			if peeked.Kind == k {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
		_, _, _, _ = t.Next()
	}
}

// ReadStringUntil scans forward from the current position for the first
// occurrence of any marker in endMarkers and returns the prefix (excluding
// the marker), leaving the tokenizer positioned just before the marker.
func (t *Tokenizer) ReadStringUntil(endMarkers []string) (string, error) {
	rest := t.source[t.pos:]

	bestIdx := -1
	for _, m := range endMarkers {
		if m == "" {
			continue
		}
		if idx := strings.Index(rest, m); idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
			bestIdx = idx
		}
	}

	if bestIdx == -1 {
		return "", &ExpectedEndMarkerError{Markers: endMarkers, Location: t.location()}
	}

	prefix := rest[:bestIdx]
	t.advance(prefix)
	return prefix, nil
}

// SkipString advances past expected if the source at the current position
// starts with it exactly, otherwise it returns an error without advancing.
func (t *Tokenizer) SkipString(expected string) error {
	rest := t.source[t.pos:]
	if strings.HasPrefix(rest, expected) {
		t.advance(expected)
		return nil
	}

	n := len(expected)
	if n > len(rest) {
		n = len(rest)
	}
	return &ExpectedStringError{Expected: expected, Actual: rest[:n], Location: t.location()}
}

// advance moves the tokenizer past consumed, updating line/column: a run
// containing newlines bumps the line count and resets the column to 1; a
// run with no newline just advances the column by its length.
func (t *Tokenizer) advance(consumed string) {
	if n := strings.Count(consumed, "\n"); n > 0 {
		t.line += n
		t.column = 1
	} else {
		t.column += len(consumed)
	}
	t.pos += len(consumed)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSymbolTerminator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '{', '}', '<', '>', ',', '.', ':', '\'', '"':
		return true
	default:
		return false
	}
}

// lexOne scans exactly one token starting at c, returning the token and the
// cursor positioned just past it. It never mutates a Tokenizer directly so
// that Peek can discard its result cheaply.
func lexOne(source string, c cursor, file string) (Token, cursor, error) {
	if c.pos >= len(source) {
		return Token{Kind: EOF}, c, nil
	}

	loc := func() Location { return Location{Line: c.line, Column: c.column, Position: c.pos, File: file} }
	b := source[c.pos]

	switch {
	case b == '#':
		end := strings.IndexByte(source[c.pos:], '\n')
		var text string
		if end < 0 {
			text = source[c.pos+1:]
			c.column += len(source) - c.pos
			c.pos = len(source)
		} else {
			text = source[c.pos+1 : c.pos+end]
			c.column += end
			c.pos += end
		}
		return Token{Kind: Comment, Text: text}, c, nil

	case b == ' ':
		c.pos++
		c.column++
		return Token{Kind: Space}, c, nil

	case b == '\t':
		c.pos++
		c.column++
		return Token{Kind: Tab}, c, nil

	case b == '\n':
		c.pos++
		c.line++
		c.column = 0
		return Token{Kind: Newline}, c, nil

	case b == '\r':
		if c.pos+1 < len(source) && source[c.pos+1] == '\n' {
			c.pos += 2
			c.line++
			c.column = 0
			return Token{Kind: Newline}, c, nil
		}
		return Token{}, c, &LexerFatalError{Reason: "lone carriage return", Location: loc()}

	case b == '(':
		c.pos++
		c.column++
		return Token{Kind: LeftParen}, c, nil
	case b == ')':
		c.pos++
		c.column++
		return Token{Kind: RightParen}, c, nil
	case b == '[':
		c.pos++
		c.column++
		return Token{Kind: LeftBracket}, c, nil
	case b == ']':
		c.pos++
		c.column++
		return Token{Kind: RightBracket}, c, nil
	case b == '{':
		c.pos++
		c.column++
		return Token{Kind: LeftBrace}, c, nil
	case b == '}':
		c.pos++
		c.column++
		return Token{Kind: RightBrace}, c, nil
	case b == '<':
		c.pos++
		c.column++
		return Token{Kind: LeftAngleBracket}, c, nil
	case b == '>':
		c.pos++
		c.column++
		return Token{Kind: RightAngleBracket}, c, nil
	case b == '^':
		c.pos++
		c.column++
		return Token{Kind: Caret}, c, nil
	case b == ':':
		c.pos++
		c.column++
		return Token{Kind: Colon}, c, nil
	case b == ',':
		c.pos++
		c.column++
		return Token{Kind: Comma}, c, nil
	case b == '.':
		c.pos++
		c.column++
		return Token{Kind: Dot}, c, nil
	case b == '_':
		c.pos++
		c.column++
		return Token{Kind: Underscore}, c, nil
	case b == '-':
		c.pos++
		c.column++
		return Token{Kind: Dash}, c, nil
	case b == '/':
		c.pos++
		c.column++
		return Token{Kind: Slash}, c, nil

	case b == '$':
		if c.pos+1 >= len(source) {
			return Token{}, c, &LexerFatalError{Reason: "unterminated char literal", Location: loc()}
		}
		v := source[c.pos+1]
		c.pos += 2
		c.column += 2
		return Token{Kind: Char, CharValue: v}, c, nil

	case b == '"':
		return lexQuoted(source, c, '"', String, loc)
	case b == '\'':
		return lexQuoted(source, c, '\'', SingleQuotedString, loc)

	case isDigit(b):
		return lexNumber(source, c, loc)

	case b >= 'a' && b <= 'z':
		return lexWord(source, c, LowerSymbol)

	case b >= 'A' && b <= 'Z':
		return lexWord(source, c, UpperSymbol)

	default:
		end := c.pos + MaxSnippetLength
		if end > len(source) {
			end = len(source)
		}
		return Token{}, c, &LexerFatalError{
			Reason:   "unexpected character",
			Snippet:  source[c.pos:end],
			Location: loc(),
		}
	}
}

func lexQuoted(source string, c cursor, quote byte, kind Kind, loc func() Location) (Token, cursor, error) {
	start := c.pos + 1
	end := strings.IndexByte(source[start:], quote)
	if end < 0 {
		return Token{}, c, &LexerFatalError{Reason: "unterminated string", Location: loc()}
	}
	text := source[start : start+end]
	consumed := 2 + end // both quotes plus content
	c.column += consumed
	c.pos += consumed
	return Token{Kind: kind, Text: text}, c, nil
}

func lexNumber(source string, c cursor, loc func() Location) (Token, cursor, error) {
	start := c.pos
	i := c.pos
	hasDot := false
	for i < len(source) && (isDigit(source[i]) || (source[i] == '.' && !hasDot)) {
		if source[i] == '.' {
			hasDot = true
		}
		i++
	}

	if hasDot {
		if f, err := strconv.ParseFloat(source[start:i], 64); err == nil {
			c.column += i - start
			c.pos = i
			return Token{Kind: Float, FloatValue: f}, c, nil
		}
	}

	j := start
	for j < len(source) && isDigit(source[j]) {
		j++
	}
	n, err := strconv.ParseInt(source[start:j], 10, 64)
	if err != nil {
		return Token{}, c, &LexerFatalError{Reason: "malformed integer", Snippet: source[start:j], Location: loc()}
	}
	c.column += j - start
	c.pos = j
	return Token{Kind: Integer, IntValue: n}, c, nil
}

func lexWord(source string, c cursor, kind Kind) (Token, cursor, error) {
	start := c.pos
	i := c.pos + 1
	for i < len(source) && !isSymbolTerminator(source[i]) {
		i++
	}
	text := source[start:i]
	c.column += i - start
	c.pos = i

	if kind == LowerSymbol {
		switch text {
		case "true":
			return Token{Kind: Boolean, BoolValue: true}, c, nil
		case "false":
			return Token{Kind: Boolean, BoolValue: false}, c, nil
		}
	}

	return Token{Kind: kind, Text: text}, c, nil
}
