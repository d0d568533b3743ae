// Package queue holds uplink payloads awaiting transmission.
package queue

import "time"

// MaxPayload is the LoRaWAN application-payload ceiling in bytes.
const MaxPayload = 242

// DefaultCapacity bounds how many uplinks may wait at once.
const DefaultCapacity = 20

// Message is one pending uplink. Attempts is advanced only by the
// transmit worker after it has taken ownership of the message.
type Message struct {
	Payload  []byte
	Attempts int
}

// Queue is a fixed-capacity strict-FIFO buffer. Producers never block:
// when the queue is full new messages are refused, existing entries are
// never overwritten.
type Queue struct {
	items chan Message
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{items: make(chan Message, capacity)}
}

// Enqueue admits payload without blocking. Empty and oversized payloads
// are refused before admission.
func (q *Queue) Enqueue(payload []byte) bool {
	if len(payload) == 0 || len(payload) > MaxPayload {
		return false
	}
	owned := make([]byte, len(payload))
	copy(owned, payload)
	select {
	case q.items <- Message{Payload: owned}:
		return true
	default:
		return false
	}
}

// Dequeue waits up to timeout for the oldest pending message.
func (q *Queue) Dequeue(timeout time.Duration) (Message, bool) {
	select {
	case msg := <-q.items:
		return msg, true
	case <-time.After(timeout):
		return Message{}, false
	}
}

// Len reports how many messages are waiting.
func (q *Queue) Len() int {
	return len(q.items)
}
