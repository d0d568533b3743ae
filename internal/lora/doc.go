// Package lora drives a LoRaWAN AT modem on behalf of an application:
// OTAA join, duty-cycle limited background uplinks, and status queries,
// all over one exclusive serial command channel.
//
// Ownership boundary:
// - join controller (configuration sequence + accept polling)
// - transmit worker (queue drain, spacing, bounded retries)
// - session state (joined flag, send clock)
//
// Join always completes, success or failure, before the worker starts,
// so the two never contend for the channel. After Start the channel
// lock alone arbitrates between the worker and foreground status
// queries.
package lora
