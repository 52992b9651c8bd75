// Package samplehandlers holds the demo HTTP and WebSocket handlers that
// cmd/tidewired registers against a [github.com/tidewire/tidewire/pkg/dispatcher.Server].
// None of this is part of the core protocol toolkit: the dispatcher only
// needs a Matcher and a Handler, and these are just two of many it could
// be handed.
package samplehandlers

import (
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/pkg/httpmsg"
	"github.com/tidewire/tidewire/pkg/metrics"
)

// Counter serves an in-memory request counter over HTTP: every GET
// increments it and returns the new value as a plain-text body. The
// counter is an atomic.Int64 so concurrent requests across worker
// goroutines never lose an update; synchronization of handler-owned state
// is entirely the handler's own responsibility.
type Counter struct {
	n atomic.Int64
}

// Matcher reports whether req is a GET to path.
func (c *Counter) Matcher(path string) func(*httpmsg.Request) bool {
	return func(req *httpmsg.Request) bool {
		return req.Method == httpmsg.MethodGET && req.Path == path
	}
}

// Handle increments the counter and writes its new value as the plain-text
// body of a 200 response. It never upgrades the connection.
func (c *Counter) Handle(conn net.Conn, _ *httpmsg.Request, _ *arena.Arena) bool {
	n := c.n.Add(1)
	body := strconv.FormatInt(n, 10)

	resp := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: " + strconv.Itoa(len(body)) + "\r\n" +
		"\r\n" + body
	_, _ = conn.Write([]byte(resp))

	metrics.CountRequest(slog.Default(), time.Now(), connID(conn), 200)
	return false
}

// connID derives a metrics identifier from the connection's remote address.
// The Handler signature doesn't carry the dispatcher-assigned short ID, so
// this is the best a handler outside that package can do on its own.
func connID(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return "unknown"
	}
	return conn.RemoteAddr().String()
}
