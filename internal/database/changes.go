package database

import (
	"sync"
	"time"
)

// ChangeOp is the kind of row mutation.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Table names published on the feed.
const (
	TableTasks     = "tasks"
	TableEntries   = "time_entries"
	TableChecklist = "checklist_items"
	TableComments  = "comments"
	TableProfiles  = "profiles"
)

// ChangeEvent says a row changed. It carries keys for filtering, not the row;
// subscribers refetch.
type ChangeEvent struct {
	Table string            `json:"table"`
	Op    ChangeOp          `json:"op"`
	RowID string            `json:"row_id"`
	Keys  map[string]string `json:"keys,omitempty"`
	At    time.Time         `json:"at"`
}

// Filter narrows a subscription to rows whose Column equals Value.
// The zero Filter matches every row of the table.
type Filter struct {
	Column string
	Value  string
}

func (f Filter) matches(ev ChangeEvent) bool {
	if f.Column == "" {
		return true
	}
	if f.Column == "id" {
		return ev.RowID == f.Value
	}
	return ev.Keys[f.Column] == f.Value
}

type subscription struct {
	table  string
	filter Filter
	ch     chan ChangeEvent
}

// Feed fans out change events to table subscribers.
type Feed struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	buffer int
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 16
	}
	return &Feed{subs: make(map[int]*subscription), buffer: buffer}
}

// Subscribe registers interest in table rows matching filter. The returned
// cancel func is idempotent and closes the channel.
func (f *Feed) Subscribe(table string, filter Filter) (<-chan ChangeEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	sub := &subscription{table: table, filter: filter, ch: make(chan ChangeEvent, f.buffer)}
	f.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if s, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(s.ch)
			}
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev without blocking. A subscriber with a full buffer
// misses the event but will still see the change on its next refetch.
func (f *Feed) Publish(ev ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs {
		if sub.table != ev.Table || !sub.filter.matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribers returns the live subscription count.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sub := range f.subs {
		delete(f.subs, id)
		close(sub.ch)
	}
}

func (d *Database) publish(table string, op ChangeOp, rowID string, keys map[string]string) {
	d.feed.Publish(ChangeEvent{Table: table, Op: op, RowID: rowID, Keys: keys, At: d.now()})
}
