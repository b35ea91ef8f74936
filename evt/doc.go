/*
Package evt defines the shared event model for optimistic replication.

Applications declare a fixed set of event kinds, each mapping a name to a payload
type. A commit event is a named payload submitted to a replica; the client replica
stamps it with a short opaque client id before it leaves the process. A committed
event is the server acknowledgement for one commit event: on success it carries
the authoritative sequence slot, on failure the NoSeq sentinel and an error flag,
with name, payload and client id echoed verbatim either way.

The server never interprets client ids, it only echoes them. Only the client that
minted an id can correlate the acknowledgement with its own optimistic apply.
*/
package evt
