/*
Package store provides an in-memory, ordered key value store and the cache
wrap used to make a group of writes all-or-nothing.

Every state transition of a payment channel is executed against a
CacheWrap of the main store. When the transition succeeds the cache is
written to the parent in one step. When it fails the cache is discarded and
the parent never observes any of the writes.
*/
package store
