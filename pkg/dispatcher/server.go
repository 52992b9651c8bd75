package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/internal/logger"
	"github.com/tidewire/tidewire/pkg/metrics"
)

// Serve runs the accept loop on ln, handing each accepted connection to a
// worker. It blocks until ln.Accept returns an error wrapping
// [net.ErrClosed] (the listener was closed), at which point it returns that
// error. Every other accept error is logged and the loop continues: a
// single accept failure never brings the listener down.
//
// The handler table becomes read-only the moment Serve starts: concurrent
// calls to [Server.Register] after this point panic.
func (s *Server) Serve(ln net.Listener) error {
	s.started = true

	sem := make(chan struct{}, s.poolSize)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Error().Err(err).Msg("accept failed")
			continue
		}

		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection owns one accepted connection for its entire lifetime: it
// is the single worker goroutine that serializes all of this connection's
// request (and, if upgraded, WebSocket fragment) processing. The
// connection's arena is allocated here and never shared with another
// goroutine.
//
// The connection's logger is carried on a [context.Context] via
// [logger.InContext]/[logger.FromContext] rather than passed as a bare
// parameter.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	connID := shortuuid.New()
	remote := conn.RemoteAddr().String()

	ctx := logger.WithConnID(logger.InContext(context.Background(), s.logger.With(slog.String("remote_addr", remote))), connID)
	l := logger.FromContext(ctx)

	metrics.CountConnection(l, time.Now(), connID, remote)
	log.Info().Str("conn_id", connID).Str("remote_addr", remote).Msg("accepted connection")

	a := arena.New()

	for {
		req, err := readRequest(conn)
		if err != nil {
			if !errors.Is(err, errConnClosed) {
				logger.FromContext(ctx).Warn("failed to read or parse HTTP request", slog.Any("error", err))
			}
			return
		}

		handler := s.match(req)
		if handler(conn, req, a) {
			return // Handler upgraded the connection; it owns the rest of its lifetime.
		}
	}
}
