package dispatcher

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/pkg/httpmsg"
)

// DefaultPoolSize is the number of connections a [Server] processes
// concurrently before additional accepted connections block waiting for a
// worker slot to free up.
const DefaultPoolSize = 1000

// Matcher is a predicate over a parsed request, used to pick which
// [Handler] serves it. The handler table is evaluated in registration
// order; the first matcher that returns true wins.
type Matcher func(req *httpmsg.Request) bool

// Handler serves one matched request. It owns writing the response bytes
// directly to conn. a is the connection's arena, which lives as long as the
// connection; a handler can allocate from it (a.Alloc, a.Copy,
// a.CopyString). req's fields are strings copied out of the receive buffer
// during parsing, and each request is read into a freshly allocated buffer.
//
// A Handler returns true when it has taken over the connection for a
// WebSocket session (via [Upgrade], as [Server.UpgradeHandler] does) and the
// connection's HTTP request loop must not read another request from the
// same socket once the handler returns. It returns false for an ordinary
// request/response exchange, telling the worker to loop back for the next
// request on the same connection.
type Handler func(conn net.Conn, req *httpmsg.Request, a *arena.Arena) bool

type registeredHandler struct {
	matcher Matcher
	handler Handler
}

// Server holds an immutable-after-startup handler table and the
// configuration for the worker pool that drives it. The zero value is not
// usable; construct one with [NewServer].
type Server struct {
	handlers []registeredHandler
	notFound Handler

	poolSize int
	logger   *slog.Logger

	started bool
}

// Option configures a [Server] at construction time.
type Option func(*Server)

// WithPoolSize overrides [DefaultPoolSize].
func WithPoolSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithLogger overrides the base [slog.Logger] that [Server.Serve] derives
// each connection's request-scoped logger from. The default is
// [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotFoundHandler overrides the handler invoked when no registered
// matcher matches a request. The default writes a bare "404 Not Found"
// with an empty body.
func WithNotFoundHandler(h Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.notFound = h
		}
	}
}

// NewServer constructs a [Server] with no registered handlers. Register
// handlers with [Server.Register] before calling [Server.Serve]; the table
// becomes read-only the moment Serve starts accepting connections.
func NewServer(opts ...Option) *Server {
	s := &Server{
		poolSize: DefaultPoolSize,
		logger:   slog.Default(),
		notFound: notFoundHandler,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a handler to the table, consulted in registration order.
// Register must be called before [Server.Serve]; registering after the
// server has started accepting connections panics, since the table is
// meant to be read-only for the dispatcher's lifetime.
func (s *Server) Register(m Matcher, h Handler) {
	if s.started {
		panic("dispatcher: Register called after Serve started accepting connections")
	}
	s.handlers = append(s.handlers, registeredHandler{matcher: m, handler: h})
}

// match returns the first registered handler whose matcher accepts req, or
// the not-found handler if none does.
func (s *Server) match(req *httpmsg.Request) Handler {
	for _, rh := range s.handlers {
		if rh.matcher(req) {
			return rh.handler
		}
	}
	return s.notFound
}

func notFoundHandler(conn net.Conn, _ *httpmsg.Request, _ *arena.Arena) bool {
	_, _ = conn.Write(simpleResponse(404, "Not Found"))
	return false
}

// simpleResponse renders a bodiless HTTP/1.1 response line plus the
// terminating blank-line CRLF. It is used for the dispatcher's own
// built-in responses (404, 400); handlers registered via [Server.Register]
// are free to write whatever bytes they want instead of calling this.
func simpleResponse(status int, reason string) []byte {
	return []byte("HTTP/1.1 " + strconv.Itoa(status) + " " + reason + "\r\n\r\n")
}
