// Package atcmd owns the request/response framing primitive over the
// modem's serial duplex.
//
// Ownership boundary:
// - line framing (CR LF terminated commands and replies)
// - reply parsing into Response
// - mutual exclusion of the serial channel
//
// Responses correlate to commands by temporal ordering alone, so exactly
// one exchange may be in flight per port for the lifetime of a session.
package atcmd
