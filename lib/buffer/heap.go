package buffer

import "container/heap"

// cleanHeapItem is one slot in the clean-entry eviction queue: a key plus
// the touch-time priority it was enqueued with. The queue only ever holds
// clean entries — a dirty entry is removed from it (see Buffer.Write)
// so GC can never select a dirty entry for eviction.
type cleanHeapItem struct {
	key     string
	touched int64
	index   int
}

// cleanHeap is a binary min-heap over cleanHeapItem ordered by touched
// ascending (oldest first). A companion map gives O(1) lookup of an item
// by key so Buffer can remove or re-prioritize a specific entry without
// scanning the heap.
type cleanHeap struct {
	items []*cleanHeapItem
	byKey map[string]*cleanHeapItem
}

func newCleanHeap() *cleanHeap {
	h := &cleanHeap{
		items: make([]*cleanHeapItem, 0),
		byKey: make(map[string]*cleanHeapItem),
	}
	heap.Init(h)
	return h
}

// --------------------------------------------------------------------------
// container/heap.Interface
// --------------------------------------------------------------------------

func (h *cleanHeap) Len() int { return len(h.items) }

func (h *cleanHeap) Less(i, j int) bool {
	return h.items[i].touched < h.items[j].touched
}

func (h *cleanHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *cleanHeap) Push(x any) {
	it := x.(*cleanHeapItem)
	it.index = len(h.items)
	h.items = append(h.items, it)
	h.byKey[it.key] = it
}

func (h *cleanHeap) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	h.items = old[:n-1]
	delete(h.byKey, it.key)
	return it
}

// --------------------------------------------------------------------------
// Convenience API used by Buffer
// --------------------------------------------------------------------------

// upsert adds key to the heap with priority touched, or updates its
// priority and re-heapifies if already present.
func (h *cleanHeap) upsert(key string, touched int64) {
	if it, ok := h.byKey[key]; ok {
		it.touched = touched
		heap.Fix(h, it.index)
		return
	}
	heap.Push(h, &cleanHeapItem{key: key, touched: touched})
}

// remove drops key from the heap if present. No-op otherwise.
func (h *cleanHeap) remove(key string) {
	it, ok := h.byKey[key]
	if !ok {
		return
	}
	heap.Remove(h, it.index)
}

// popOldest removes and returns the key with the smallest touch time.
func (h *cleanHeap) popOldest() (string, bool) {
	if h.Len() == 0 {
		return "", false
	}
	it := heap.Pop(h).(*cleanHeapItem)
	return it.key, true
}
