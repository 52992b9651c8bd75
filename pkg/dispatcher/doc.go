// Package dispatcher is the connection-oriented orchestration layer that
// wires [github.com/tidewire/tidewire/pkg/httpmsg] and
// [github.com/tidewire/tidewire/pkg/wsframe] to a TCP listener.
//
// A [Server] accepts connections on a bound listener and hands each one to
// a bounded worker pool. A worker drives a single connection's state
// machine: it reads an HTTP request, consults a first-match-wins handler
// table, writes a response, and either loops back for the connection's next
// request or — if the matched handler performed a WebSocket upgrade —
// enters the fragment receive loop for the remainder of the connection's
// lifetime. All processing of one connection is serialized on the worker
// goroutine it was assigned to; no two requests on the same socket are ever
// handled concurrently.
//
// This package does no message reassembly across WebSocket fragments: it
// hands each parsed [github.com/tidewire/tidewire/pkg/wsframe.Fragment] to
// the caller's callback one at a time (aside from the built-in ping/pong
// and close handling), matching the wsframe package's own one-fragment
// scope. Assembling a multi-fragment message is the caller's job.
package dispatcher
