package dispatcher

import (
	"crypto/rand"
	"log/slog"
	"net"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/pkg/httpmsg"
	"github.com/tidewire/tidewire/pkg/wsframe"
)

// wsRecvBufSize is the receive buffer size the WebSocket receive loop reads
// into.
const wsRecvBufSize = 128 * 1024

// FragmentHandler receives one WebSocket data fragment (Continuation,
// Text, or Binary; control fragments are handled internally by
// [ServeWebSocket] and never reach this callback). Reassembling a message
// split across multiple fragments via Continuation opcodes is the
// caller's job: this package hands fragments through one at a time.
type FragmentHandler func(conn net.Conn, frag wsframe.Fragment)

// UpgradeHandler returns a [Handler] that validates a request as a
// WebSocket upgrade, completes (or rejects) the handshake, and — on
// success — runs [ServeWebSocket] until the connection closes. Register it
// against a [Matcher] such as [IsUpgradeRequest]:
//
//	s.Register(dispatcher.IsUpgradeRequest, s.UpgradeHandler(echo))
func (s *Server) UpgradeHandler(onFragment FragmentHandler) Handler {
	return func(conn net.Conn, req *httpmsg.Request, _ *arena.Arena) bool {
		if !Upgrade(conn, req) {
			return false
		}

		l := s.logger.With(slog.String("remote_addr", conn.RemoteAddr().String()))
		ServeWebSocket(conn, l, onFragment)
		return true
	}
}

// ServeWebSocket runs the server-side fragment receive loop: read into a
// 128 KiB buffer, parse fragments from it, and dispatch on variant. A Close
// fragment ends the loop. A Ping fragment gets an immediate masked Pong
// reply built from a freshly generated random mask key — server-to-client
// frames are normally unmasked, but this server masks its Pong replies
// regardless. Text/Binary/Continuation fragments are handed to onFragment,
// which may be nil.
//
// ServeWebSocket returns when the connection closes, a frame fails to
// parse, or a Close fragment is received; it never returns an error, since
// by this point in the connection's life there is nothing left to report
// to but the log l.
func ServeWebSocket(conn net.Conn, l *slog.Logger, onFragment FragmentHandler) {
	buf := make([]byte, wsRecvBufSize)
	scratch := make([]byte, wsRecvBufSize)

	for {
		n, err := conn.Read(buf)
		if err != nil || n == 0 {
			return
		}

		data := buf[:n]
		for len(data) > 0 {
			frag, rest, err := wsframe.ParseFragment(data)
			if err != nil {
				l.Warn("failed to parse WebSocket fragment", slog.Any("error", err))
				return
			}
			data = rest

			switch frag.Kind {
			case wsframe.Close:
				return
			case wsframe.Ping:
				if err := replyPong(conn, scratch, frag.Payload); err != nil {
					l.Warn("failed to send WebSocket pong", slog.Any("error", err))
					return
				}
			case wsframe.Pong:
				// No action: this server never sends unsolicited pings.
			default:
				if onFragment != nil {
					onFragment(conn, frag)
				}
			}
		}
	}
}

// replyPong builds and sends a masked Pong fragment carrying payload.
func replyPong(conn net.Conn, scratch, payload []byte) error {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return err
	}

	pong := wsframe.Fragment{
		Kind:    wsframe.Pong,
		Payload: payload,
		Final:   true,
		Mask:    true,
		MaskKey: key,
	}

	out, err := wsframe.SerializeFragment(scratch, pong)
	if err != nil {
		return err
	}

	_, err = conn.Write(out)
	return err
}
