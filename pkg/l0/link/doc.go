// Package link provides L0 link protocol support.
package link

// L0 link protocol is communicated between the host and the board firmware
// over raw Ethernet frames, or a local substitute channel during development.
//
// Every frame carries a fixed 14-byte header (destination, source, protocol
// tag) followed by a payload padded to the Ethernet minimum. The protocol is
// strictly stop-and-wait: a sender keeps retransmitting a frame at a fixed
// interval until the peer replies, and the reply echoes the payload back so
// the sender can count corrupted bytes. There are no sequence numbers and no
// checksums beyond the echo comparison.
//
// Before data transfer, one side runs SyncAckFirst (pings until answered)
// and the other runs SyncAckLast (waits for a ping, answers once).
//
// Producer: board firmware
// Consumer: host tools
