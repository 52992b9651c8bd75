package token

import (
	"reflect"
	"testing"
)

func TestTokenizerNext(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Token
	}{
		{
			name:   "punctuation",
			source: "(){}[]<>^:,._-/",
			want: []Token{
				{Kind: LeftParen}, {Kind: RightParen}, {Kind: LeftBrace}, {Kind: RightBrace},
				{Kind: LeftBracket}, {Kind: RightBracket}, {Kind: LeftAngleBracket}, {Kind: RightAngleBracket},
				{Kind: Caret}, {Kind: Colon}, {Kind: Comma}, {Kind: Dot}, {Kind: Underscore},
				{Kind: Dash}, {Kind: Slash},
			},
		},
		{
			name:   "whitespace_and_crlf_newline",
			source: " \t\r\n",
			want:   []Token{{Kind: Space}, {Kind: Tab}, {Kind: Newline}},
		},
		{
			name:   "comment_to_eof",
			source: "# hello world",
			want:   []Token{{Kind: Comment, Text: " hello world"}},
		},
		{
			name:   "comment_to_newline",
			source: "#abc\nGET",
			want:   []Token{{Kind: Comment, Text: "abc"}, {Kind: Newline}, {Kind: UpperSymbol, Text: "GET"}},
		},
		{
			name:   "char_literal",
			source: "$X",
			want:   []Token{{Kind: Char, CharValue: 'X'}},
		},
		{
			name:   "integer",
			source: "1234",
			want:   []Token{{Kind: Integer, IntValue: 1234}},
		},
		{
			name:   "float",
			source: "12.5",
			want:   []Token{{Kind: Float, FloatValue: 12.5}},
		},
		{
			name:   "double_quoted_string",
			source: `"hello there"`,
			want:   []Token{{Kind: String, Text: "hello there"}},
		},
		{
			name:   "single_quoted_string",
			source: `'hi'`,
			want:   []Token{{Kind: SingleQuotedString, Text: "hi"}},
		},
		{
			name:   "booleans",
			source: "true false",
			want:   []Token{{Kind: Boolean, BoolValue: true}, {Kind: Space}, {Kind: Boolean, BoolValue: false}},
		},
		{
			name:   "lower_symbol",
			source: "hello(world)",
			want:   []Token{{Kind: LowerSymbol, Text: "hello"}, {Kind: LeftParen}, {Kind: LowerSymbol, Text: "world"}, {Kind: RightParen}},
		},
		{
			name:   "upper_symbol",
			source: "GET /path",
			want: []Token{
				{Kind: UpperSymbol, Text: "GET"}, {Kind: Space}, {Kind: Slash}, {Kind: LowerSymbol, Text: "path"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.source, "")
			var got []Token
			for {
				st, _, ok, err := tok.Next()
				if err != nil {
					t.Fatalf("Next() unexpected error: %v", err)
				}
				if !ok {
					break
				}
				got = append(got, st.Token)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Next() stream = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTokenizerNextEOF(t *testing.T) {
	tok := New("", "")
	st, idx, ok, err := tok.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ok {
		t.Errorf("Next() ok = true at EOF, want false")
	}
	if st.Token.Kind != EOF {
		t.Errorf("Next() kind = %v, want EOF", st.Token.Kind)
	}
	if idx != 0 {
		t.Errorf("Next() index = %d, want 0", idx)
	}
}

func TestTokenizerPeekDoesNotAdvance(t *testing.T) {
	tok := New("GET /", "")
	peeked := tok.Peek()
	if peeked.Kind != UpperSymbol || peeked.Text != "GET" {
		t.Fatalf("Peek() = %v, want UpperSymbol(GET)", peeked)
	}
	st, _, _, err := tok.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if st.Token != peeked {
		t.Errorf("Next() after Peek() = %v, want %v", st.Token, peeked)
	}
}

func TestTokenizerExpect(t *testing.T) {
	tok := New("GET /", "")
	if _, err := tok.Expect(Token{Kind: UpperSymbol}); err != nil {
		t.Fatalf("Expect(UpperSymbol) error = %v", err)
	}
	if _, err := tok.Expect(Token{Kind: UpperSymbol}); err == nil {
		t.Fatalf("Expect(UpperSymbol) on Space token: want error, got nil")
	}
	// Mismatched Expect still consumed the Space token.
	st, _, _, err := tok.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if st.Token.Kind != Slash {
		t.Errorf("state after mismatched Expect = %v, want Slash", st.Token.Kind)
	}
}

func TestTokenizerExpectExact(t *testing.T) {
	tok := New("GET POST", "")
	if _, err := tok.ExpectExact(Token{Kind: UpperSymbol, Text: "GET"}); err != nil {
		t.Fatalf("ExpectExact(GET) error = %v", err)
	}
	tok.SkipAnyOf(Space)
	if _, err := tok.ExpectExact(Token{Kind: UpperSymbol, Text: "GET"}); err == nil {
		t.Fatalf("ExpectExact(GET) against POST: want error, got nil")
	}
}

func TestTokenizerReadStringUntil(t *testing.T) {
	tok := New("name: value\r\nrest", "")
	prefix, err := tok.ReadStringUntil([]string{":"})
	if err != nil {
		t.Fatalf("ReadStringUntil() error = %v", err)
	}
	if prefix != "name" {
		t.Errorf("ReadStringUntil() = %q, want %q", prefix, "name")
	}
	if err := tok.SkipString(":"); err != nil {
		t.Fatalf("SkipString() error = %v", err)
	}
	if tok.pos != len("name:") {
		t.Errorf("pos after ReadStringUntil+SkipString = %d, want %d", tok.pos, len("name:"))
	}
}

func TestTokenizerReadStringUntilMultiline(t *testing.T) {
	tok := New("a\nb\nc: x", "")
	prefix, err := tok.ReadStringUntil([]string{":"})
	if err != nil {
		t.Fatalf("ReadStringUntil() error = %v", err)
	}
	if prefix != "a\nb\nc" {
		t.Errorf("ReadStringUntil() = %q, want %q", prefix, "a\nb\nc")
	}
	if tok.line != 3 {
		t.Errorf("line = %d, want 3", tok.line)
	}
	if tok.column != 1 {
		t.Errorf("column = %d, want 1", tok.column)
	}
}

func TestTokenizerReadStringUntilNoMarker(t *testing.T) {
	tok := New("no marker here", "")
	if _, err := tok.ReadStringUntil([]string{":"}); err == nil {
		t.Fatalf("ReadStringUntil() want error, got nil")
	}
}

func TestTokenizerSkipString(t *testing.T) {
	tok := New("HTTP/1.1", "")
	if err := tok.SkipString("HTTP/1.1"); err != nil {
		t.Fatalf("SkipString() error = %v", err)
	}
	if tok.pos != len("HTTP/1.1") {
		t.Errorf("pos = %d, want %d", tok.pos, len("HTTP/1.1"))
	}
}

func TestTokenizerSkipStringMismatch(t *testing.T) {
	tok := New("HTTP/1.0", "")
	err := tok.SkipString("HTTP/1.1")
	if err == nil {
		t.Fatalf("SkipString() want error, got nil")
	}
	var esErr *ExpectedStringError
	if !asExpectedString(err, &esErr) {
		t.Fatalf("SkipString() error type = %T, want *ExpectedStringError", err)
	}
	if esErr.Actual != "HTTP/1.0" {
		t.Errorf("Actual = %q, want %q", esErr.Actual, "HTTP/1.0")
	}
}

func asExpectedString(err error, target **ExpectedStringError) bool {
	e, ok := err.(*ExpectedStringError)
	if ok {
		*target = e
	}
	return ok
}

func TestTokenizerSkipAnyOf(t *testing.T) {
	tok := New("  \tGET", "")
	tok.SkipAnyOf(Space, Tab)
	st, _, _, err := tok.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if st.Token.Kind != UpperSymbol || st.Token.Text != "GET" {
		t.Errorf("Next() after SkipAnyOf = %v, want UpperSymbol(GET)", st.Token)
	}
}

func TestTokenizerFatalLoneCR(t *testing.T) {
	tok := New("a\rb", "")
	tok.SkipAnyOf() // no-op, just exercising the zero-kinds case
	_, _, _, err := tok.Next()
	if err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	_, _, _, err = tok.Next()
	var fatal *LexerFatalError
	if e, ok := err.(*LexerFatalError); !ok {
		t.Fatalf("Next() error type = %T, want *LexerFatalError", err)
	} else {
		fatal = e
	}
	if fatal.Reason != "lone carriage return" {
		t.Errorf("Reason = %q, want %q", fatal.Reason, "lone carriage return")
	}
}

func TestTokenizerFatalUnterminatedString(t *testing.T) {
	tok := New(`"unterminated`, "")
	_, _, _, err := tok.Next()
	if _, ok := err.(*LexerFatalError); !ok {
		t.Fatalf("Next() error type = %T, want *LexerFatalError", err)
	}
}

func TestTokenizerFatalUnknownByte(t *testing.T) {
	tok := New("\x01", "")
	_, _, _, err := tok.Next()
	if _, ok := err.(*LexerFatalError); !ok {
		t.Fatalf("Next() error type = %T, want *LexerFatalError", err)
	}
}

func TestTokenizerLocationTracksLineAndColumn(t *testing.T) {
	tok := New("ab\ncd", "")
	st1, _, _, _ := tok.Next() // "ab"
	if st1.Location.Line != 1 || st1.Location.Column != 0 {
		t.Errorf("first token location = %+v, want line 1 col 0", st1.Location)
	}
	st2, _, _, _ := tok.Next() // Newline
	if st2.Location.Line != 1 {
		t.Errorf("newline location line = %d, want 1", st2.Location.Line)
	}
	st3, _, _, _ := tok.Next() // "cd"
	if st3.Location.Line != 2 || st3.Location.Column != 0 {
		t.Errorf("third token location = %+v, want line 2 col 0", st3.Location)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	source := `GET /index.html HTTP/1.1` + "\r\n"
	tok := New(source, "")
	for {
		st, _, ok, err := tok.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		if st.Token.Kind == EOF {
			continue
		}
		// Every produced token's lexeme, for the fixed-length kinds, must
		// match what's actually at its recorded source position.
		switch st.Token.Kind {
		case Space:
			if source[st.Location.Position] != ' ' {
				t.Errorf("Space token at %d does not point at a space", st.Location.Position)
			}
		case Slash:
			if source[st.Location.Position] != '/' {
				t.Errorf("Slash token at %d does not point at a slash", st.Location.Position)
			}
		}
	}
}
