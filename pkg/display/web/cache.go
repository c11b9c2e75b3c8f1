package web

import (
	"encoding/binary"
	"sync"
)

type cacheEntry struct {
	hash uint64
	data []byte
}

// cache is a ring of recently sent frames, keyed by the xxhash of
// their uncompressed pixels. Clients mirror it slot for slot.
type cache struct {
	cache []*cacheEntry
	idx   int
	size  int
	sync.RWMutex
}

func newCache(size int) *cache {
	c := &cache{
		cache: make([]*cacheEntry, size),
		size:  size,
	}
	for i := 0; i < size; i++ {
		c.cache[i] = &cacheEntry{}
	}

	return c
}

// index returns the slot holding hash, or -1.
func (c *cache) index(hash uint64) int {
	c.RLock()
	defer c.RUnlock()
	for i, e := range c.cache {
		if e.data != nil && e.hash == hash {
			return i
		}
	}

	return -1
}

// add stores a frame in the next slot, evicting the oldest, and
// returns the slot used.
func (c *cache) add(hash uint64, data []byte) int {
	c.Lock()
	defer c.Unlock()
	slot := c.idx
	c.cache[slot].data = data
	c.cache[slot].hash = hash

	c.idx = (c.idx + 1) % c.size
	return slot
}

// appendEntries appends the count of filled slots and then each
// of them, in the FrameSync layout.
func (c *cache) appendEntries(msg []byte) []byte {
	c.RLock()
	defer c.RUnlock()
	count := 0
	for _, e := range c.cache {
		if e.data != nil {
			count++
		}
	}
	msg = append(msg, uint8(count))
	for i, e := range c.cache {
		if e.data == nil {
			continue
		}
		msg = append(msg, uint8(i))
		msg = binary.LittleEndian.AppendUint32(msg, uint32(len(e.data)))
		msg = append(msg, e.data...)
	}
	return msg
}
