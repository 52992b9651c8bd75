package samplehandlers

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidewire/tidewire/internal/arena"
	"github.com/tidewire/tidewire/pkg/httpmsg"
)

func TestStaticFileServesContentAndCachesETag(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStaticFile(dir)
	handle := s.Handle("/static/")
	a := arena.New()
	req := &httpmsg.Request{Method: httpmsg.MethodGET, Path: "/static/hello.txt"}

	server, client := net.Pipe()
	go func() {
		handle(server, req, a)
		_ = server.Close()
	}()

	raw, err := io.ReadAll(client)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	resp := string(raw)
	if !strings.Contains(resp, "200 OK") {
		t.Errorf("response missing 200 OK: %q", resp)
	}
	if !strings.HasSuffix(resp, "hello world") {
		t.Errorf("response missing body: %q", resp)
	}
	if !strings.Contains(resp, "ETag:") {
		t.Errorf("response missing ETag header: %q", resp)
	}

	if _, ok := s.etags["hello.txt"]; !ok {
		t.Errorf("etag not cached after first request")
	}
}

func TestStaticFileMissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	s := NewStaticFile(dir)
	handle := s.Handle("/static/")
	a := arena.New()
	req := &httpmsg.Request{Method: httpmsg.MethodGET, Path: "/static/nope.txt"}

	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		handle(server, req, a)
		_ = server.Close()
		close(done)
	}()

	raw, _ := io.ReadAll(client)
	<-done
	if !strings.Contains(string(raw), "404") {
		t.Errorf("response = %q, want 404", raw)
	}
}

func TestStaticFileRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewStaticFile(dir)
	handle := s.Handle("/static/")
	a := arena.New()
	req := &httpmsg.Request{Method: httpmsg.MethodGET, Path: "/static/../secret.txt"}

	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		handle(server, req, a)
		_ = server.Close()
		close(done)
	}()

	raw, _ := io.ReadAll(client)
	<-done
	if !strings.Contains(string(raw), "404") {
		t.Errorf("response = %q, want 404", raw)
	}
}
