package dispatcher

import (
	"bytes"
	"errors"
	"io"
	"net"

	"github.com/tidewire/tidewire/pkg/httpmsg"
)

// maxRequestSize bounds how much of a request line plus header block the
// dispatcher will accumulate before giving up.
const maxRequestSize = 64 * 1024

// errConnClosed marks a readRequest failure caused by the peer closing the
// connection (0-byte read or io.EOF) rather than a malformed request. The
// caller uses it to decide whether the teardown is worth a log line.
var errConnClosed = errors.New("dispatcher: connection closed by peer")

// readRequest accumulates bytes from conn until the buffer contains the
// header block's terminating "\r\n\r\n", then parses it as an HTTP
// request. Unlike a naive port that checks only the last four bytes of the
// most recent read, this scans the whole accumulated buffer each time,
// so a "\r\n\r\n" split across two reads is never missed.
func readRequest(conn net.Conn) (*httpmsg.Request, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		if idx := bytes.Index(buf, []byte("\r\n\r\n")); idx >= 0 {
			return httpmsg.ParseRequest(buf)
		}
		if len(buf) >= maxRequestSize {
			return nil, &RequestTooLargeError{Size: len(buf)}
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || n == 0 {
				return nil, errConnClosed
			}
			return nil, err
		}
	}
}
