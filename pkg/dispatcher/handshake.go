package dispatcher

import (
	"crypto/sha1" //nolint:gosec // required by RFC 6455, not used for anything security-sensitive.
	"encoding/base64"
	"net"
	"strings"

	"github.com/tidewire/tidewire/pkg/httpmsg"
)

// magicGUID is the fixed value RFC 6455 section 4.2.2 concatenates onto a
// client's Sec-WebSocket-Key before hashing it into the handshake's accept
// value.
const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// IsUpgradeRequest reports whether req carries a non-empty
// Sec-WebSocket-Key header; the other handshake headers (Upgrade,
// Connection, Sec-WebSocket-Version, Host) are not checked here. Use it as
// a [Matcher] to route candidate upgrade requests to a handler that then
// calls [Upgrade] to validate and complete (or reject) the handshake.
func IsUpgradeRequest(req *httpmsg.Request) bool {
	return req.Headers["Sec-WebSocket-Key"] != ""
}

// ValidateUpgrade checks the preconditions RFC 6455 requires for a valid
// upgrade request: Sec-WebSocket-Key present, Connection: Upgrade, Upgrade:
// websocket, Sec-WebSocket-Version: 13, and a Host header. It returns a
// non-nil error describing the first failing precondition.
func ValidateUpgrade(req *httpmsg.Request) error {
	key := req.Headers["Sec-WebSocket-Key"]
	if key == "" {
		return &MissingUpgradeHeaderError{Header: "Sec-WebSocket-Key"}
	}
	if !headerContainsToken(req.Headers["Connection"], "Upgrade") {
		return &InvalidUpgradeHeaderError{Header: "Connection", Value: req.Headers["Connection"], Want: "Upgrade"}
	}
	if !strings.EqualFold(req.Headers["Upgrade"], "websocket") {
		return &InvalidUpgradeHeaderError{Header: "Upgrade", Value: req.Headers["Upgrade"], Want: "websocket"}
	}
	if req.Headers["Sec-WebSocket-Version"] != "13" {
		return &InvalidUpgradeHeaderError{Header: "Sec-WebSocket-Version", Value: req.Headers["Sec-WebSocket-Version"], Want: "13"}
	}
	if req.Headers["Host"] == "" {
		return &MissingUpgradeHeaderError{Header: "Host"}
	}
	return nil
}

// headerContainsToken reports whether value, treated as a comma-separated
// list of tokens (as "Connection: keep-alive, Upgrade" allows), contains
// token case-insensitively.
func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// AcceptValue computes the "Sec-WebSocket-Accept" header value for a
// client's Sec-WebSocket-Key, per RFC 6455 section 4.2.2:
// base64(SHA-1(key ++ magicGUID)).
func AcceptValue(key string) string {
	h := sha1.New() //nolint:gosec // required by RFC 6455.
	h.Write([]byte(key))
	h.Write([]byte(magicGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// writeHandshakeResponse writes the four-line 101 response RFC 6455
// requires for a successful handshake.
func writeHandshakeResponse(conn net.Conn, accept string) error {
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n" +
		"\r\n"
	_, err := conn.Write([]byte(resp))
	return err
}

// Upgrade validates req as a WebSocket upgrade request and, if valid,
// writes the 101 handshake response and returns true. If invalid, it writes
// a bodiless 400 response and returns false. A rejected handshake does not
// take over the connection, so the caller should keep serving HTTP requests
// on it (return false from the wrapping Handler), while a completed
// handshake does (return true).
func Upgrade(conn net.Conn, req *httpmsg.Request) bool {
	if err := ValidateUpgrade(req); err != nil {
		_, _ = conn.Write(simpleResponse(400, "Bad Request"))
		return false
	}

	accept := AcceptValue(req.Headers["Sec-WebSocket-Key"])
	if err := writeHandshakeResponse(conn, accept); err != nil {
		return false
	}
	return true
}
