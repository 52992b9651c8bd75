package samplehandlers

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/pkg/httpmsg"
	"github.com/tidewire/tidewire/pkg/metrics"
)

// StaticFile serves files from a single configured directory over HTTP,
// with an ETag computed once per filename and cached thereafter. The cache
// is guarded by a sync.RWMutex, since nothing else in this package
// serializes access to handler-owned state across connections.
type StaticFile struct {
	dir string

	mu    sync.RWMutex
	etags map[string]string
}

// NewStaticFile constructs a handler that serves files rooted at dir.
func NewStaticFile(dir string) *StaticFile {
	return &StaticFile{dir: dir, etags: make(map[string]string)}
}

// Matcher reports whether req is a GET under prefix (e.g. "/static/").
func (s *StaticFile) Matcher(prefix string) func(*httpmsg.Request) bool {
	return func(req *httpmsg.Request) bool {
		return req.Method == httpmsg.MethodGET && strings.HasPrefix(req.Path, prefix)
	}
}

// Handle serves the file named by the request path's suffix after
// prefix. A missing or unreadable file yields 404; anything else yields
// 200 with the cached ETag header and the file's contents as the body.
func (s *StaticFile) Handle(prefix string) func(net.Conn, *httpmsg.Request, *arena.Arena) bool {
	return func(conn net.Conn, req *httpmsg.Request, _ *arena.Arena) bool {
		name := strings.TrimPrefix(req.Path, prefix)
		if name == "" || strings.Contains(name, "..") {
			writeNotFound(conn)
			metrics.CountRequest(slog.Default(), time.Now(), connID(conn), 404)
			return false
		}

		full := filepath.Join(s.dir, filepath.FromSlash(name))
		data, err := os.ReadFile(full) //gosec:disable G304 // prefix-checked, "..".rejected above.
		if err != nil {
			writeNotFound(conn)
			metrics.CountRequest(slog.Default(), time.Now(), connID(conn), 404)
			return false
		}

		etag := s.etagFor(name, data)

		resp := "HTTP/1.1 200 OK\r\n" +
			"ETag: " + etag + "\r\n" +
			"Content-Length: " + strconv.Itoa(len(data)) + "\r\n" +
			"\r\n"
		_, _ = conn.Write([]byte(resp))
		_, _ = conn.Write(data)
		metrics.CountRequest(slog.Default(), time.Now(), connID(conn), 200)
		return false
	}
}

// etagFor returns the cached ETag for name, computing and storing it (from
// data's SHA-256 digest) on first request.
func (s *StaticFile) etagFor(name string, data []byte) string {
	s.mu.RLock()
	etag, ok := s.etags[name]
	s.mu.RUnlock()
	if ok {
		return etag
	}

	sum := sha256.Sum256(data)
	etag = `"` + hex.EncodeToString(sum[:]) + `"`

	s.mu.Lock()
	s.etags[name] = etag
	s.mu.Unlock()

	return etag
}

func writeNotFound(conn net.Conn) {
	_, _ = conn.Write([]byte("HTTP/1.1 404 Not Found\r\n\r\n"))
}
