package token

import "fmt"

// ExpectedTokenError is returned by [Tokenizer.Expect] and
// [Tokenizer.ExpectExact] when the consumed token doesn't match what the
// caller asked for. The tokenizer has already advanced past Actual by the
// time this error is returned.
type ExpectedTokenError struct {
	Expected Token
	Actual   Token
	Location Location
}

func (e *ExpectedTokenError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Location, e.Expected, e.Actual)
}

// ExpectedStringError is returned by [Tokenizer.SkipString] when the source
// does not start with the expected literal at the current position.
type ExpectedStringError struct {
	Expected string
	Actual   string
	Location Location
}

func (e *ExpectedStringError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.Location, e.Expected, e.Actual)
}

// ExpectedEndMarkerError is returned by [Tokenizer.ReadStringUntil] when
// none of the given markers occur before the end of the source.
type ExpectedEndMarkerError struct {
	Markers  []string
	Location Location
}

func (e *ExpectedEndMarkerError) Error() string {
	return fmt.Sprintf("%s: expected one of %q before end of input", e.Location, e.Markers)
}

// LexerFatalError reports a source condition the tokenizer cannot recover
// from at the character level: a lone carriage return, an unterminated
// string, a digit run that doesn't parse as a number, or a lead byte that
// doesn't start any recognized token. [Tokenizer.Next] returns it as an
// error value; the tokenizer never panics on bad input.
type LexerFatalError struct {
	Reason   string
	Snippet  string
	Location Location
}

func (e *LexerFatalError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Location, e.Reason, e.Snippet)
}
