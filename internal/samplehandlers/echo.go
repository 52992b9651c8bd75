package samplehandlers

import (
	"net"

	"github.com/tidewire/tidewire/pkg/wsframe"
)

// Echo writes back every Text or Binary fragment it's handed, unmasked and
// marked final — server-to-client frames are not masked. Continuation
// fragments are echoed unchanged too, since reassembling a fragmented
// message is out of this package's scope (and the dispatcher's — see
// pkg/dispatcher's doc comment).
func Echo(conn net.Conn, frag wsframe.Fragment) {
	reply := wsframe.Fragment{
		Kind:    frag.Kind,
		Payload: frag.Payload,
		Final:   true,
	}

	buf := make([]byte, len(frag.Payload)+10)
	out, err := wsframe.SerializeFragment(buf, reply)
	if err != nil {
		return
	}
	_, _ = conn.Write(out)
}
