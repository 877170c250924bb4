// Package live turns table-level change notifications into observable
// query results. The store publishes the tables it touched after a commit;
// subscribers re-run their query and deliver the fresh result.
package live

import "sync"

// Table names a ledger table that queries can depend on.
type Table string

const (
	Accounts     Table = "accounts"
	Transactions Table = "transactions"
	IncomeGroups Table = "income_groups"
)

// AllTables lists every ledger table.
var AllTables = []Table{Accounts, Transactions, IncomeGroups}

type subscription struct {
	tables map[Table]struct{}
	ch     chan struct{}
}

func (s *subscription) watches(tables []Table) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

// Hub fans change notifications out to subscribers. Publishing never blocks:
// each subscriber has a one-slot buffer, so bursts coalesce into a single
// pending notification.
type Hub struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*subscription
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscription)}
}

// Subscribe registers interest in the given tables. The returned channel
// receives a value after each publish touching any of them and is closed by
// cancel. cancel is safe to call more than once.
func (h *Hub) Subscribe(tables ...Table) (<-chan struct{}, func()) {
	sub := &subscription{
		tables: make(map[Table]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(sub.ch)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish notifies every subscriber watching at least one of tables.
func (h *Hub) Publish(tables ...Table) {
	if h == nil || len(tables) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if !sub.watches(tables) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
