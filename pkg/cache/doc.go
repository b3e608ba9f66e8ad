// Package cache provides a generic bounded LRU cache with a synchronous
// eviction callback.
//
// The eviction callback is the contract: it fires, before the triggering
// operation returns, for every entry that leaves the cache for any reason
// (capacity eviction, key replacement, Delete, Clear). Owners that attach
// resources to cached values (in-flight requests, ownership scopes) release
// them exclusively from that callback.
package cache
