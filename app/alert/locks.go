package alert

import "sync"

// keyedLocks serializes work per alert identity so overlapping batch runs
// inside one process cannot dispatch the same alert twice. Entries are never
// removed; the alert population is small and stable.
type keyedLocks struct {
	locks sync.Map // alert ID -> *sync.Mutex
}

func (k *keyedLocks) lock(id string) func() {
	mu, _ := k.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
