package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a fixed-capacity FIFO holding messages produced while the
// broker is unreachable. Oldest messages are dropped on overflow.
// Not safe for concurrent use; the caller must synchronize.
type offlineQueue struct {
	buf      []queuedMsg
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	return &offlineQueue{buf: make([]queuedMsg, capacity)}
}

func (q *offlineQueue) enqueue(msg queuedMsg) {
	if q.count == len(q.buf) {
		if !q.overflow {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", len(q.buf))
			q.overflow = true
		}
		// head already points at the oldest entry; overwrite it
		q.buf[q.head] = msg
		q.head = (q.head + 1) % len(q.buf)
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % len(q.buf)
	q.count++
}

// drain returns the queued messages oldest-first and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.count == 0 {
		return nil
	}

	out := make([]queuedMsg, q.count)
	start := (q.head - q.count + len(q.buf)) % len(q.buf)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(start+i)%len(q.buf)]
	}

	q.count = 0
	q.head = 0
	q.overflow = false
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
