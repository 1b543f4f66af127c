// Package csl implements a concurrent ordered multiset on top of a
// lock-free, singly-linked, key-ordered chain.
//
// The chain is anchored at a permanent front sentinel. Removal is a
// two-phase protocol: a node is first tagged ("logically removed") and
// later physically spliced out by whichever operation notices the tag.
// Memory safety across concurrent traversers comes from an epoch-based
// reclaimer (see epoch.go), not from reference counting: a node is only
// returned to the pool once no active operation could still be holding
// a pointer into it.
//
// Every next pointer is published through a small immutable link value
// (see node.go) rather than an in-place tagged pointer. Because every
// mutation of a next slot allocates a fresh link, pointer identity on
// the link itself already distinguishes "the same logical value, loaded
// twice" from "a different value that happens to target the same,
// pool-recycled node address" — the ABA guard the original design gets
// from a versioned double-wide CAS comes for free from Go's allocator.
package csl
