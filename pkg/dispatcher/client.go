package dispatcher

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/tidewire/tidewire/internal/logger"
	"github.com/tidewire/tidewire/pkg/httpmsg"
)

// HostFromURL extracts the host (and optional port) from a URL of the form
// "[scheme://]host[:port][/path]": everything between "://" (or the start
// of the string, if there's no scheme) and the first '/' (or the end of
// the string, if there's no path).
func HostFromURL(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// PathFromURL extracts the path from a URL of the same form HostFromURL
// accepts: everything from the first '/' after the host onward, or "/" if
// the URL has no path.
func PathFromURL(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return "/"
}

// nonceSize is the length, in raw bytes before base64 encoding, of a
// client's Sec-WebSocket-Key, per RFC 6455 section 4.1: "a randomly
// selected 16-byte value".
const nonceSize = 16

// DialAndUpgrade dials the host of url ("ws://host[:port][/path]") with
// net.Dial on the given network — no TLS is performed, so a "wss://" URL is
// dialed as a plain connection too — and performs the client-side WebSocket
// handshake: a GET request carrying Upgrade, Connection,
// Sec-WebSocket-Version: 13, Host, and a freshly generated
// Sec-WebSocket-Key, followed by validating the server's 101 response.
//
// extraHeaders are copied onto the request as-is; a caller-supplied "Host"
// header is preserved instead of being overwritten by the one this
// function derives from url.
//
// ctx's logger (see [github.com/tidewire/tidewire/internal/logger]) is used
// for the one thing on this path worth logging: a handshake that got a
// connection but failed validation.
func DialAndUpgrade(ctx context.Context, network, url string, extraHeaders map[string]string) (net.Conn, error) {
	l := logger.FromContext(ctx)
	host := HostFromURL(url)
	path := PathFromURL(url)

	conn, err := net.Dial(network, host)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %q: %w", host, err)
	}

	nonce, err := sendUpgradeRequest(conn, host, path, extraHeaders)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := readAndValidateUpgradeResponse(conn, nonce); err != nil {
		l.Warn("WebSocket handshake failed", slog.String("url", url), slog.Any("error", err))
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

func sendUpgradeRequest(conn net.Conn, host, path string, extraHeaders map[string]string) (nonce string, err error) {
	nonce, err = generateNonce()
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)

	headers := map[string]string{}
	for k, v := range extraHeaders {
		headers[k] = v
	}
	if _, ok := headers["Host"]; !ok {
		headers["Host"] = host
	}
	headers["Upgrade"] = "websocket"
	headers["Connection"] = "Upgrade"
	headers["Sec-WebSocket-Version"] = "13"
	headers["Sec-WebSocket-Key"] = nonce

	for k, v := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	b.WriteString("\r\n")

	_, err = conn.Write(b.Bytes())
	return nonce, err
}

func generateNonce() (string, error) {
	var raw [nonceSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// readAndValidateUpgradeResponse reads the server's status line and
// headers (the same way [readRequest] scans a request) and validates that
// it is a correctly-formed 101 upgrade response whose Sec-WebSocket-Accept
// matches what [AcceptValue] derives from the nonce this client sent.
func readAndValidateUpgradeResponse(conn net.Conn, nonce string) error {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		if idx := bytes.Index(buf, []byte("\r\n\r\n")); idx >= 0 {
			break
		}
		if len(buf) >= maxRequestSize {
			return &RequestTooLargeError{Size: len(buf)}
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			return err
		}
	}

	resp, err := httpmsg.ParseResponse(buf)
	if err != nil {
		return err
	}
	if resp.Status != 101 {
		return errors.New("WebSocket handshake failed: status " + resp.Message)
	}
	if !strings.EqualFold(resp.Headers["Upgrade"], "websocket") {
		return errors.New("WebSocket handshake response missing Upgrade: websocket")
	}
	if !headerContainsToken(resp.Headers["Connection"], "Upgrade") {
		return errors.New("WebSocket handshake response missing Connection: Upgrade")
	}
	if want := AcceptValue(nonce); resp.Headers["Sec-WebSocket-Accept"] != want {
		return errors.New("WebSocket handshake response has wrong Sec-WebSocket-Accept")
	}
	return nil
}
