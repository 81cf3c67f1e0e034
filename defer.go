package gqlcore

import "sync"

// deferWork is one pending unit captured when a field carrying @defer
// is encountered with an active defer list: the environment/registry/
// data handles plus the field AST node and the path/result key it
// would have occupied inline.
type deferWork struct {
	path    *PathNode
	resolve func() (value interface{}, childDefers *DeferList, err error)
}

// DeferredResponse is the partial QueryResponse a drained defer item
// yields: the path it belongs at, its data, and its error.
type DeferredResponse struct {
	Path []interface{}
	Data interface{}
	Err  error
}

// DeferList is a shared-ownership, mutex-guarded append-only list of
// pending work items. Nested defers push onto whichever DeferList was
// active in their capturing context.
type DeferList struct {
	mu    sync.Mutex
	items []deferWork
}

func NewDeferList() *DeferList { return &DeferList{} }

func (d *DeferList) push(w deferWork) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, w)
}

// drain removes and returns every item currently queued, leaving the
// list empty; items pushed afterwards are returned by the next drain.
// It does not resolve the items.
func (d *DeferList) drain() []deferWork {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := d.items
	d.items = nil
	return items
}

// isEmpty reports whether any work is currently queued.
func (d *DeferList) isEmpty() bool {
	if d == nil {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items) == 0
}
