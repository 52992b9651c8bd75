package samplehandlers

import (
	"io"
	"net"
	"testing"

	"github.com/tidewire/tidewire/pkg/wsframe"
)

func TestEchoWritesUnmaskedFinalFragment(t *testing.T) {
	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		Echo(server, wsframe.Fragment{Kind: wsframe.Text, Payload: []byte("hi")})
		_ = server.Close()
		close(done)
	}()

	raw, err := io.ReadAll(client)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	<-done

	frag, rest, err := wsframe.ParseFragment(raw)
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("remaining = %d bytes, want 0", len(rest))
	}
	if frag.Kind != wsframe.Text {
		t.Errorf("Kind = %v, want Text", frag.Kind)
	}
	if string(frag.Payload) != "hi" {
		t.Errorf("Payload = %q, want %q", frag.Payload, "hi")
	}
	if !frag.Final {
		t.Errorf("Final = false, want true")
	}
	if frag.Mask {
		t.Errorf("Mask = true, want false")
	}
}
