package buffer

import (
	"container/list"

	"github.com/sasha-s/go-deadlock"
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/storage/disk"
	"github.com/ymakino/TsubameDB/types"
)

type pageKey struct {
	file   string
	pageID types.PageID
}

type cacheEntry struct {
	key  pageKey
	data *[common.PageSize]byte
}

// BufferCache is a fixed-capacity LRU cache of heap file pages keyed by
// (file path, page id). It performs no writeback: after mutating a
// cached buffer the caller writes the page through the disk manager and
// invalidates the entry.
type BufferCache struct {
	diskManager disk.DiskManager
	capacity    uint32
	entries     map[pageKey]*list.Element
	lruList     *list.List
	mutex       deadlock.Mutex
}

func NewBufferCache(diskManager disk.DiskManager, capacity uint32) *BufferCache {
	common.SH_Assert(capacity > 0, "buffer cache capacity must be positive")
	return &BufferCache{
		diskManager: diskManager,
		capacity:    capacity,
		entries:     make(map[pageKey]*list.Element),
		lruList:     list.New(),
	}
}

// GetPage returns the cached buffer for (file, pageID), loading it from
// disk on miss. A page at or past end of file comes back zeroed and is
// cached like any other page.
func (b *BufferCache) GetPage(file string, pageID types.PageID) (*[common.PageSize]byte, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	key := pageKey{file, pageID}
	if elem, ok := b.entries[key]; ok {
		b.lruList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).data, nil
	}

	data := new([common.PageSize]byte)
	if err := b.diskManager.ReadPage(file, pageID, data[:]); err != nil {
		return nil, err
	}

	elem := b.lruList.PushFront(&cacheEntry{key, data})
	b.entries[key] = elem
	if uint32(b.lruList.Len()) > b.capacity {
		victim := b.lruList.Back()
		b.lruList.Remove(victim)
		delete(b.entries, victim.Value.(*cacheEntry).key)
	}
	return data, nil
}

// Invalidate drops the cache entry for (file, pageID) if present.
func (b *BufferCache) Invalidate(file string, pageID types.PageID) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.removeEntry(pageKey{file, pageID})
}

// InvalidateRange drops the entries for page ids in [startPageID, endPageID].
func (b *BufferCache) InvalidateRange(file string, startPageID types.PageID, endPageID types.PageID) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for pid := startPageID; pid <= endPageID; pid++ {
		b.removeEntry(pageKey{file, pid})
	}
}

func (b *BufferCache) removeEntry(key pageKey) {
	if elem, ok := b.entries[key]; ok {
		b.lruList.Remove(elem)
		delete(b.entries, key)
	}
}

// NumCachedPages is the number of resident pages, for tests and stats.
func (b *BufferCache) NumCachedPages() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.lruList.Len()
}
