// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync"
	"sync/atomic"
)

// Ref identifies a slot in a Table together with the generation
// it was issued for. Once the slot is reused the Ref goes stale.
// The zero Ref never resolves.
type Ref struct {
	Index      uint32
	Generation uint32
}

// Instance is the record of one live feature instance. Handle and
// Parameters belong to the vendor, the table only indexes them.
type Instance struct {
	Handle     Handle
	Parameters Parameters
	Feature    Feature

	ref       Ref
	seq       uint64
	released  atomic.Bool
	lastFrame atomic.Uint64
}

// Ref returns the slot reference of the record.
func (i *Instance) Ref() Ref {
	return i.ref
}

// Released reports whether the record was removed from its table.
func (i *Instance) Released() bool {
	return i.released.Load()
}

// LastFrame returns the frame this instance was last evaluated on.
func (i *Instance) LastFrame() uint64 {
	return i.lastFrame.Load()
}

type slot struct {
	generation uint32
	instance   *Instance
}

// Table indexes live instances by their vendor handle.
// Lookups may run concurrently with insertion and removal,
// a record is complete before any reader can see it.
type Table struct {
	mu sync.RWMutex

	slots    []slot
	free     []uint32
	byHandle map[Handle]uint32
	byParams map[Parameters]uint32
	seq      uint64

	// evict runs with the write lock held whenever a record leaves the table.
	evict func(*Instance)
}

// NewTable creates an empty table. evict may be nil.
func NewTable(evict func(*Instance)) *Table {
	return &Table{
		byHandle: make(map[Handle]uint32),
		byParams: make(map[Parameters]uint32),
		evict:    evict,
	}
}

// Has reports whether handle is indexed.
func (t *Table) Has(handle Handle) bool {
	t.mu.RLock()
	_, ok := t.byHandle[handle]
	t.mu.RUnlock()
	return ok
}

// Get returns the record for handle, or nil.
func (t *Table) Get(handle Handle) *Instance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.byHandle[handle]
	if !ok {
		return nil
	}
	return t.slots[idx].instance
}

// ByParameters returns the most recently inserted record
// using the parameter block, or nil.
func (t *Table) ByParameters(params Parameters) *Instance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.byParams[params]
	if !ok {
		return nil
	}
	return t.slots[idx].instance
}

// Resolve returns the record ref points to if it's still live.
func (t *Table) Resolve(ref Ref) *Instance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if ref.Generation == 0 || int(ref.Index) >= len(t.slots) {
		return nil
	}
	s := t.slots[ref.Index]
	if s.generation != ref.Generation {
		return nil
	}
	return s.instance
}

// Insert indexes a new record for handle. A record already present
// for the same handle is evicted first.
func (t *Table) Insert(handle Handle, params Parameters, feature Feature) *Instance {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.byHandle[handle]; ok {
		t.removeLocked(idx)
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{generation: 1})
	}

	t.seq++
	inst := &Instance{
		seq:        t.seq,
		Handle:     handle,
		Parameters: params,
		Feature:    feature,
		ref: Ref{
			Index:      idx,
			Generation: t.slots[idx].generation,
		},
	}
	t.slots[idx].instance = inst
	t.byHandle[handle] = idx
	if params != 0 {
		t.byParams[params] = idx
	}
	return inst
}

// Remove drops the record for handle and reports whether there was one.
func (t *Table) Remove(handle Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byHandle[handle]
	if !ok {
		return false
	}
	t.removeLocked(idx)
	return true
}

func (t *Table) removeLocked(idx uint32) {
	inst := t.slots[idx].instance

	inst.released.Store(true)
	t.slots[idx].instance = nil
	t.slots[idx].generation++
	if t.slots[idx].generation == 0 {
		t.slots[idx].generation = 1
	}
	t.free = append(t.free, idx)

	delete(t.byHandle, inst.Handle)
	if cur, ok := t.byParams[inst.Parameters]; ok && cur == idx {
		t.repointLocked(inst.Parameters)
	}

	if t.evict != nil {
		t.evict(inst)
	}
}

// repointLocked indexes params to the newest remaining record using it,
// or drops the entry when there is none.
func (t *Table) repointLocked(params Parameters) {
	var newest *Instance
	for _, s := range t.slots {
		if s.instance != nil && s.instance.Parameters == params &&
			(newest == nil || s.instance.seq > newest.seq) {
			newest = s.instance
		}
	}
	if newest == nil {
		delete(t.byParams, params)
		return
	}
	t.byParams[params] = newest.ref.Index
}

// Len returns the number of live records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byHandle)
}

// Range calls fn for every record live at the time of the call,
// stopping early when fn returns false. fn may call back into the table.
func (t *Table) Range(fn func(*Instance) bool) {
	t.mu.RLock()
	live := make([]*Instance, 0, len(t.byHandle))
	for _, s := range t.slots {
		if s.instance != nil {
			live = append(live, s.instance)
		}
	}
	t.mu.RUnlock()

	for _, inst := range live {
		if !fn(inst) {
			return
		}
	}
}

// Clear evicts every record.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx := range t.slots {
		if t.slots[idx].instance != nil {
			t.removeLocked(uint32(idx))
		}
	}
}
