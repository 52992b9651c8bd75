package httpmsg

import (
	"strconv"
	"strings"

	"github.com/tidewire/tidewire/internal/token"
)

// MaxHeadersLength bounds the length of the data [ParseHeaders] will
// attempt to scan: the header lines, the terminating blank-line CRLF, and
// any bytes that follow it (the request or status line is not included).
// Data exceeding this is rejected outright with a [HeadersTooLongError]
// rather than being tokenized byte by byte.
const MaxHeadersLength = 32768 // 32 KiB

// ParseHeaders reads a CRLF-terminated block of "Name: value" lines,
// stopping at the first bare CRLF (the blank line that ends the header
// section). It returns the parsed headers and the number of bytes of data
// consumed, including the terminating blank line.
//
// Folded (obsolete line-continuation) header values are supported: a
// continuation line starts with a Space or Tab, and its content is joined
// onto the previous line's value with a single "\n".
func ParseHeaders(data []byte) (Headers, int, error) {
	if len(data) > MaxHeadersLength {
		return nil, 0, &HeadersTooLongError{Length: len(data)}
	}

	t := token.New(string(data), "")
	headers := make(Headers)

	for {
		switch t.Peek().Kind {
		case token.EOF:
			return nil, 0, &ExpectedHeaderEndMarkerError{Data: string(data)}
		case token.Newline:
			if _, _, _, err := t.Next(); err != nil {
				return nil, 0, err
			}
			return headers, t.Pos(), nil
		}

		name, err := t.ReadStringUntil([]string{":"})
		if err != nil {
			return nil, 0, &ExpectedHeaderNameEndError{Data: string(data)}
		}
		if err := t.SkipString(":"); err != nil {
			return nil, 0, &ExpectedHeaderNameEndError{Data: string(data)}
		}
		t.SkipAnyOf(token.Space, token.Tab)

		value, err := readHeaderLine(t, name, data)
		if err != nil {
			return nil, 0, err
		}

		for t.Peek().Kind == token.Space || t.Peek().Kind == token.Tab {
			t.SkipAnyOf(token.Space, token.Tab)
			cont, err := readHeaderLine(t, name, data)
			if err != nil {
				return nil, 0, err
			}
			value = value + "\n" + cont
		}

		headers[name] = value
	}
}

// readHeaderLine reads one physical line of a header value (the part up to
// the next CRLF) and consumes that CRLF.
func readHeaderLine(t *token.Tokenizer, name string, data []byte) (string, error) {
	value, err := t.ReadStringUntil([]string{"\r\n"})
	if err != nil {
		return "", &ExpectedHeaderValueEndError{Name: name, Data: string(data)}
	}
	if err := t.SkipString("\r\n"); err != nil {
		return "", &ExpectedHeaderValueEndError{Name: name, Data: string(data)}
	}
	return value, nil
}

// ParseRequest parses a request line of the form "GET <path> <protocol>\r\n"
// followed by a header block. Only the GET method is recognized; any other
// method token yields the [token.ExpectedTokenError] produced by the
// underlying tokenizer.
func ParseRequest(data []byte) (*Request, error) {
	t := token.New(string(data), "")

	if _, err := t.ExpectExact(token.Token{Kind: token.UpperSymbol, Text: "GET"}); err != nil {
		return nil, err
	}
	if _, err := t.Expect(token.Token{Kind: token.Space}); err != nil {
		return nil, err
	}

	path, err := t.ReadStringUntil([]string{" "})
	if err != nil {
		return nil, err
	}
	if err := t.SkipString(" "); err != nil {
		return nil, err
	}

	protocol, err := t.ReadStringUntil([]string{"\r\n"})
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(protocol, "HTTP/") {
		return nil, &InvalidProtocolError{Protocol: protocol}
	}
	if err := t.SkipString("\r\n"); err != nil {
		return nil, err
	}

	headers, _, err := ParseHeaders(data[t.Pos():])
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:   MethodGET,
		Path:     path,
		Protocol: protocol,
		Headers:  headers,
	}, nil
}

// ParseResponse parses a status line of the form
// "<protocol> <status> <message>\r\n" followed by a header block and the
// remaining bytes of data as the body.
func ParseResponse(data []byte) (*Response, error) {
	t := token.New(string(data), "")

	protocol, err := t.ReadStringUntil([]string{" "})
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(protocol, "HTTP/") {
		return nil, &InvalidProtocolError{Protocol: protocol}
	}
	if err := t.SkipString(" "); err != nil {
		return nil, err
	}

	statusText, err := t.ReadStringUntil([]string{" ", "\r\n"})
	if err != nil {
		return nil, err
	}
	status, convErr := strconv.Atoi(statusText)
	if convErr != nil {
		return nil, &InvalidStatusError{StatusText: statusText}
	}

	message := ""
	if t.Peek().Kind != token.Newline {
		if err := t.SkipString(" "); err != nil {
			return nil, err
		}
		message, err = t.ReadStringUntil([]string{"\r\n"})
		if err != nil {
			return nil, err
		}
	}
	if err := t.SkipString("\r\n"); err != nil {
		return nil, err
	}

	headers, consumed, err := ParseHeaders(data[t.Pos():])
	if err != nil {
		return nil, err
	}

	body := data[t.Pos()+consumed:]

	return &Response{
		Protocol: protocol,
		Status:   status,
		Message:  message,
		Headers:  headers,
		Body:     body,
	}, nil
}
