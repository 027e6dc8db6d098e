// Package cache provides the bounded memo the quantizer uses for
// nearest-color lookups.
//
//	c := cache.New[uint32, uint8](4096)
//	idx := c.GetOrCreate(key, func() uint8 { return search(key) })
//
// A Cache is not copied after creation (it holds a mutex) and is safe for
// concurrent use, although the encoder gives each frame its own.
package cache
