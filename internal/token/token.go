package token

import "fmt"

// Kind tags the variant carried by a [Token]. Go has no native sum types, so
// dispatch on Kind plays the role exhaustive pattern matching would in a
// language with tagged unions: every switch over Kind in this package (and
// in callers such as pkg/httpmsg) is expected to cover every case below.
type Kind int

const (
	EOF Kind = iota
	Newline
	Tab
	Space
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	LeftBrace
	RightBrace
	LeftAngleBracket
	RightAngleBracket
	Caret
	Colon
	Comma
	Dot
	Underscore
	Dash
	Slash
	Comment
	UpperSymbol
	LowerSymbol
	String
	SingleQuotedString
	Float
	Integer
	Char
	Boolean
)

var kindNames = map[Kind]string{
	EOF:                "EOF",
	Newline:            "Newline",
	Tab:                "Tab",
	Space:              "Space",
	LeftParen:          "LeftParen",
	RightParen:         "RightParen",
	LeftBracket:        "LeftBracket",
	RightBracket:       "RightBracket",
	LeftBrace:          "LeftBrace",
	RightBrace:         "RightBrace",
	LeftAngleBracket:   "LeftAngleBracket",
	RightAngleBracket:  "RightAngleBracket",
	Caret:              "Caret",
	Colon:              "Colon",
	Comma:              "Comma",
	Dot:                "Dot",
	Underscore:         "Underscore",
	Dash:               "Dash",
	Slash:              "Slash",
	Comment:            "Comment",
	UpperSymbol:        "UpperSymbol",
	LowerSymbol:        "LowerSymbol",
	String:             "String",
	SingleQuotedString: "SingleQuotedString",
	Float:              "Float",
	Integer:            "Integer",
	Char:               "Char",
	Boolean:            "Boolean",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a tagged value: Kind selects which of the fields below is
// meaningful. Symbol/string kinds carry Text, Float carries FloatValue,
// Integer carries IntValue, Char carries CharValue, and Boolean carries
// BoolValue. All other kinds carry no payload.
type Token struct {
	Kind       Kind
	Text       string
	FloatValue float64
	IntValue   int64
	CharValue  byte
	BoolValue  bool
}

// SameVariant reports whether two tokens share a Kind, ignoring any payload.
// This backs [Tokenizer.Expect], which only cares about the variant.
func (t Token) SameVariant(other Token) bool {
	return t.Kind == other.Kind
}

func (t Token) String() string {
	switch t.Kind {
	case UpperSymbol, LowerSymbol, String, SingleQuotedString, Comment:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case Float:
		return fmt.Sprintf("Float(%v)", t.FloatValue)
	case Integer:
		return fmt.Sprintf("Integer(%d)", t.IntValue)
	case Char:
		return fmt.Sprintf("Char(%q)", t.CharValue)
	case Boolean:
		return fmt.Sprintf("Boolean(%v)", t.BoolValue)
	default:
		return t.Kind.String()
	}
}

// SourceToken pairs a Token with the Location of its first byte.
type SourceToken struct {
	Token    Token
	Location Location
}
