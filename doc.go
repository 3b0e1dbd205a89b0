// Package scuckoo implements a scalable cuckoo filter: an approximate
// set-membership data structure with zero false negatives and a bounded,
// configurable false-positive rate, sized dynamically as insertions
// arrive rather than fixed up front.
//
// A ScalableCuckooFilter is an ordered stack of fixed-capacity cuckoo
// filters. Inserts target the newest (active) filter; when it cannot
// accept another item a new, larger filter with a tighter per-filter
// false-positive budget is appended and the insert retried there.
// Membership queries fan out across the whole stack.
//
// Typical use is a memory-compact negative cache in front of a slower
// authoritative lookup — a storage index, a dedup table, a routing
// table.
package scuckoo
