package notifications

import "sync"

// Status records how a delivery attempt ended.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Record is one entry of the delivery history.
type Record struct {
	Delivery Delivery `json:"delivery"`
	Status   Status   `json:"status"`
	Error    string   `json:"error,omitempty"`
}

// History keeps a bounded list of recent delivery attempts.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []Record
}

// NewHistory constructs a history with the provided capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{capacity: capacity}
}

// Add records an attempt, evicting the oldest entries past capacity.
func (h *History) Add(record Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, record)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Recent returns the stored attempts in chronological order.
func (h *History) Recent() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snapshot := make([]Record, len(h.entries))
	copy(snapshot, h.entries)
	return snapshot
}
