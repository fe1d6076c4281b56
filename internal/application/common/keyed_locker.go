package common

import (
	"fmt"
	"sort"
	"sync"
)

// KeyedLocker serializes writers per entity key. Keys passed together are
// acquired in sorted order, so callers locking overlapping sets of products
// never deadlock.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates a new KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock acquires every key and returns the function releasing them
func (l *KeyedLocker) Lock(keys ...string) (unlock func()) {
	keys = uniqueSorted(keys)

	held := make([]*keyedLock, 0, len(keys))
	for _, key := range keys {
		kl := l.acquire(key)
		kl.mu.Lock()
		held = append(held, kl)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				l.release(keys[i])
			}
		})
	}
}

// Len returns the number of keys currently held or waited on
func (l *KeyedLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *KeyedLocker) acquire(key string) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ProductKey is the lock key of a product's stock counter
func ProductKey(id int64) string {
	return fmt.Sprintf("product:%019d", id)
}

// ProductKeys returns the lock keys of several products
func ProductKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	return keys
}

// SessionKey is the lock key of a cash session's balance
func SessionKey(id int64) string {
	return fmt.Sprintf("session:%019d", id)
}

// OperatorKey guards opening sessions for one operator
func OperatorKey(id int64) string {
	return fmt.Sprintf("operator:%019d", id)
}

// SaleKey is the lock key of a sale
func SaleKey(id int64) string {
	return fmt.Sprintf("sale:%019d", id)
}

// OrderKey is the lock key of an order
func OrderKey(id int64) string {
	return fmt.Sprintf("order:%019d", id)
}

// PurchaseKey is the lock key of a purchase
func PurchaseKey(id int64) string {
	return fmt.Sprintf("purchase:%019d", id)
}
