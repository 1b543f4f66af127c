package csl

import "sync/atomic"

// Less is a total, strict less-than comparator over a key type. It
// must be pure and side-effect-free; the engine never calls it
// concurrently with a mutation of either argument (keys are passed by
// value into the comparator, never by reference into live nodes).
type Less[K Key] func(a, b K) bool

// List is a concurrent ordered multiset: many goroutines may Insert,
// TryPop, CompareTryPop and TryPeekTopKey at once without a global
// lock. It does not implement Insert/Pop ordering fairness across equal
// keys, does not support iteration or range queries, and does not
// deduplicate equal keys — see SPEC_FULL.md §1 for the full list of
// non-goals.
type List[K Key, V any] struct {
	sentinel *node[K, V]
	size     counter
	pool     *pool[K, V]
	epoch    *epochRegistry
	retired  *retireList[K, V]
	less     Less[K]

	insertRetries atomic.Uint64
	popMisses     atomic.Uint64
}

// Stats is a point-in-time snapshot of internal counters a caller can
// poll and surface through whatever metrics backend it uses. The core
// itself never imports one, so Stats is the seam: MultisetService
// reads it from a ticker and updates Prometheus collectors from the
// values, the same way AdvanceEpoch itself is driven from the outside.
type Stats struct {
	InsertRetries        uint64
	PopMisses            uint64
	PoolBlockAllocations uint64
	RetireBacklog        uint64
}

// Stats returns the current counter values.
func (l *List[K, V]) Stats() Stats {
	return Stats{
		InsertRetries:        l.insertRetries.Load(),
		PopMisses:            l.popMisses.Load(),
		PoolBlockAllocations: l.pool.blockAllocations(),
		RetireBacklog:        l.retired.size(),
	}
}

// New constructs an empty list ordered by less. A nil less defaults to
// the key type's natural "<" ordering.
func New[K Key, V any](less Less[K]) *List[K, V] {
	if less == nil {
		less = func(a, b K) bool { return a < b }
	}
	p := newPool[K, V](defaultBlockSize)
	return &List[K, V]{
		sentinel: p.acquire(),
		pool:     p,
		epoch:    newEpochRegistry(),
		retired:  &retireList[K, V]{},
		less:     less,
	}
}

// NewOrdered constructs an empty list using the key type's natural
// ordering.
func NewOrdered[K Key, V any]() *List[K, V] {
	return New[K, V](nil)
}

// Size returns the advisory current element count. It is not a source
// of truth for membership — the chain is — but is consistent with some
// interleaving of the mutations that produced it.
func (l *List[K, V]) Size() uint64 {
	return l.size.load()
}

// Insert adds (key, value) to the list. It always succeeds; there is no
// failure mode visible to the caller — internally it retries until a
// CAS wins.
func (l *List[K, V]) Insert(key K, value V) {
	entry := l.pool.acquire()
	entry.key = key
	entry.value = value
	entry.next.Store(nil)

	for !l.tryInsert(entry) {
		l.insertRetries.Add(1)
	}
	l.size.incr()
}

// tryInsert attempts one insertion pass from the sentinel. It returns
// false if it lost a race and must be retried from scratch.
func (l *List[K, V]) tryInsert(entry *node[K, V]) bool {
	guard := l.epoch.enter()
	defer guard.exit()

	prev := l.sentinel
	curLink := prev.next.Load()
	cur := curLink.target()

	for cur != nil && !l.less(entry.key, cur.key) {
		nextLink := cur.next.Load()

		if nextLink.tagged() {
			// cur is logically removed by some pop. Help splice it out
			// before continuing the walk.
			spliced := &link[K, V]{node: nextLink.target()}
			if prev.next.CompareAndSwap(curLink, spliced) {
				cur.next.Store(&link[K, V]{tag: true})
				l.retire(cur)
			}

			curLink = prev.next.Load()
			if curLink.tagged() {
				// prev itself was removed from under us; the chain
				// shifted underneath this traversal. Restart entirely.
				return false
			}
			cur = curLink.target()
			continue
		}

		prev = cur
		curLink = nextLink
		cur = curLink.target()
	}

	entry.next.Store(curLink)
	return prev.next.CompareAndSwap(curLink, &link[K, V]{node: entry})
}

// TryPop removes and returns the current minimum (key, value), or
// reports false if the list is empty.
func (l *List[K, V]) TryPop() (key K, value V, ok bool) {
	value, ok = l.tryPopInternal(&key, false)
	return key, value, ok
}

// TryPopValue removes and returns the current minimum value, or
// reports false if the list is empty.
func (l *List[K, V]) TryPopValue() (value V, ok bool) {
	var key K
	return l.tryPopInternal(&key, false)
}

// CompareTryPop removes the current minimum only if its key equals
// expected. On success it reports the popped key (equal to expected)
// and writes the popped value to out. On failure — an empty list, or a
// head key that does not match — it reports the observed head key
// (unchanged on an empty list) and leaves out untouched.
func (l *List[K, V]) CompareTryPop(expected K, out *V) (actual K, ok bool) {
	v, ok := l.tryPopInternal(&expected, true)
	if ok {
		*out = v
	}
	return expected, ok
}

// TryPeekTopKey returns the key of the current minimum without
// removing it, or false if the list is empty. The key is a hint: it
// may already have been popped by the time the caller observes it.
func (l *List[K, V]) TryPeekTopKey() (key K, ok bool) {
	guard := l.epoch.enter()
	defer guard.exit()

	head := l.sentinel.next.Load().target()
	if head == nil {
		return key, false
	}
	return head.key, true
}

// tryPopInternal implements both TryPop and CompareTryPop. Admission
// (the speculative size decrement) always happens before the key-match
// check, so an empty list is reported as "empty" rather than
// "mismatch" even when matchKey is set — see SPEC_FULL.md §9.
func (l *List[K, V]) tryPopInternal(expectedKey *K, matchKey bool) (value V, ok bool) {
	if !l.size.tryAcquire() {
		return value, false
	}

	guard := l.epoch.enter()
	defer guard.exit()

	for {
		headLink := l.sentinel.next.Load()
		head := headLink.target()
		if head == nil {
			// Admission succeeded, so the chain should be non-empty.
			// A transient nil here signals a size/chain inconsistency
			// that should not occur in a correct run; restore the
			// ticket and report empty rather than loop forever.
			l.size.release()
			return value, false
		}

		if matchKey && *expectedKey != head.key {
			*expectedKey = head.key
			l.size.release()
			return value, false
		}

		nextTarget, mine := loadAndTag(&head.next)
		splice := &link[K, V]{node: nextTarget}

		if l.sentinel.next.CompareAndSwap(headLink, splice) {
			head.next.Store(&link[K, V]{tag: true})
			l.retire(head)
		}

		if mine {
			*expectedKey = head.key
			value = head.value
			return value, true
		}
		// Someone else already tagged this head; loop to target the
		// (possibly already advanced) new head.
		l.popMisses.Add(1)
	}
}

// retire hands a physically-unlinked node to the epoch reclaimer rather
// than returning it to the pool immediately — a concurrent traversal
// that loaded it before the splice may still be dereferencing it.
func (l *List[K, V]) retire(n *node[K, V]) {
	l.retired.push(n, l.epoch.global.Load())
}

// AdvanceEpoch advances the global epoch and reclaims every retired
// node whose retirement predates every currently active operation,
// returning it to the pool. Callers typically drive this periodically
// (a ticker) or after a burst of pops; it is safe to call from any
// goroutine and concurrently with all public List operations.
func (l *List[K, V]) AdvanceEpoch() {
	l.epoch.advance()
	min := l.epoch.minActiveEpoch()

	for e := l.retired.drain(); e != nil; {
		next := e.next.Load()
		l.retired.release()
		if min == inactiveEpoch || e.epoch < min {
			l.pool.release(e.n)
		} else {
			l.retired.push(e.n, e.epoch)
		}
		e = next
	}
}

// UnsafeClear removes every node from the list and resets the size
// counter to zero. The caller must guarantee no concurrent operation
// is in flight; behavior is undefined otherwise.
//
// The source design's unsafe_clear never resets the sentinel's own next
// pointer, relying on the cleared nodes' reference counts to eventually
// be dropped — which leaves the sentinel pointing at a now-truncated
// one-node tail rather than an empty chain. That is corrected here: the
// sentinel's next is explicitly cleared so the list is genuinely empty
// afterward, matching this port's testable contract (Size() == 0 implies
// an empty chain).
func (l *List[K, V]) UnsafeClear() {
	n := l.size.load()
	nodes := make([]*node[K, V], 0, n)

	prev := l.sentinel
	for i := uint64(0); i < n; i++ {
		cur := prev.next.Load().target()
		if cur == nil {
			break
		}
		nodes = append(nodes, cur)
		prev = cur
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].next.Store(nil)
	}
	l.sentinel.next.Store(nil)
	l.size.store(0)

	for _, n := range nodes {
		l.pool.release(n)
	}
}
