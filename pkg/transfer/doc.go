// Package transfer moves whole files over a link.
//
// A file is split into chunks of at most ChunkSize bytes, each exchanged
// with SendAndAck on the sending side and RcvAndAck on the receiving side.
// The sender starts with SyncAckFirst and the receiver with SyncAckLast.
//
// In variable mode the sender first announces the file size in a minimum
// size frame holding a 4-byte little-endian length, so the receiver needs
// no prior knowledge of it.
//
// Frames carry no sequence number. When the receiver starts late, the
// sender's spare handshake pings stay queued and the receiver takes them
// for data: the sender sees them echoed as mismatches in ErrorBytes, and
// the receiver fails with FrameError if the chunk is longer than a ping, or
// silently accepts zeros if it is not. Start the receiver first, or use a
// RetryInterval longer than the receiver's startup delay.
package transfer
