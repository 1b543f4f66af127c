package csl

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Key restricts key types to integers and floating point numbers,
// mirroring the restriction in the source design (there, the
// sentinel's placeholder key is constructed as the type's minimum
// value and trivial comparability is assumed). In this port the
// sentinel's own key is never read — traversal always starts at
// sentinel.next — so the restriction is carried forward for fidelity
// rather than necessity.
type Key interface {
	constraints.Integer | constraints.Float
}

// link is an immutable snapshot of a next pointer: the node it targets
// (nil for "nothing follows") and the logical-removal tag. Every
// mutation of a next slot allocates a new link rather than mutating one
// in place, which is what makes pointer-identity comparison on *link a
// safe CAS witness (see doc.go).
type link[K Key, V any] struct {
	node *node[K, V]
	tag  bool
}

func (l *link[K, V]) target() *node[K, V] {
	if l == nil {
		return nil
	}
	return l.node
}

func (l *link[K, V]) tagged() bool {
	return l != nil && l.tag
}

// node is the heap cell: a (key, value) pair plus the atomic, tagged
// reference to the next node.
type node[K Key, V any] struct {
	key   K
	value V
	next  atomic.Pointer[link[K, V]]
}

// loadAndTag atomically sets the tag bit of *p if it is not already
// set, and reports whether this call was the one that set it ("mine").
// The returned node pointer is always the current target, regardless of
// who ultimately owns the tag — tagging never changes the target.
func loadAndTag[K Key, V any](p *atomic.Pointer[link[K, V]]) (target *node[K, V], mine bool) {
	for {
		cur := p.Load()
		if cur.tagged() {
			return cur.target(), false
		}
		tagged := &link[K, V]{node: cur.target(), tag: true}
		if p.CompareAndSwap(cur, tagged) {
			return tagged.node, true
		}
	}
}
