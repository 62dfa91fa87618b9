// Package sessioncache persists reusable agent session IDs keyed by review
// context.
//
// The store is a single JSON file holding the whole key -> entry map. Writes
// are read-modify-write of the full map with an atomic rename; concurrent
// runs against the same file race and the last writer wins. Entries older
// than [TTL] are treated as absent on read and removed by [Store.Compact].
package sessioncache
