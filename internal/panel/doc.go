// Package panel caches the collection each resource panel last loaded for a
// client session, so searches filter locally and mutations can either patch
// the collection in place or invalidate it for a refetch.
package panel
