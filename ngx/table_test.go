// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"sync"
	"testing"
)

func TestTableGetAbsent(t *testing.T) {
	tbl := NewTable(nil)
	if tbl.Get(42) != nil {
		t.Error("absent handle returned a record")
	}
	if tbl.Has(42) {
		t.Error("absent handle reported present")
	}
	if tbl.Remove(42) {
		t.Error("removing an absent handle reported success")
	}
}

func TestTableInsertGet(t *testing.T) {
	tbl := NewTable(nil)
	inst := tbl.Insert(1, 0x1000, FeatureSuperSampling)

	got := tbl.Get(1)
	if got != inst {
		t.Fatalf("Get returned %p, want %p", got, inst)
	}
	if got.Handle != 1 || got.Parameters != 0x1000 || got.Feature != FeatureSuperSampling {
		t.Errorf("record has wrong fields: %+v", got)
	}
	if tbl.ByParameters(0x1000) != inst {
		t.Error("parameter index doesn't find the record")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestTableReplace(t *testing.T) {
	var evicted []*Instance
	tbl := NewTable(func(i *Instance) { evicted = append(evicted, i) })

	first := tbl.Insert(1, 0x1000, FeatureSuperSampling)
	second := tbl.Insert(1, 0x2000, FeatureRayReconstruction)

	if tbl.Get(1) != second {
		t.Fatal("Get doesn't return the last inserted record")
	}
	if !first.Released() {
		t.Error("replaced record not marked released")
	}
	if len(evicted) != 1 || evicted[0] != first {
		t.Errorf("evict called with %v", evicted)
	}
	if tbl.ByParameters(0x1000) != nil {
		t.Error("old parameter block still indexed")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestTableStaleRef(t *testing.T) {
	tbl := NewTable(nil)

	old := tbl.Insert(1, 0x1000, FeatureSuperSampling)
	ref := old.Ref()
	if tbl.Resolve(ref) != old {
		t.Fatal("live ref doesn't resolve")
	}

	tbl.Remove(1)
	if tbl.Resolve(ref) != nil {
		t.Fatal("removed ref still resolves")
	}

	// reuses the freed slot
	fresh := tbl.Insert(2, 0x2000, FeatureSuperSampling)
	if fresh.Ref().Index != ref.Index {
		t.Fatalf("slot not reused: %d vs %d", fresh.Ref().Index, ref.Index)
	}
	if tbl.Resolve(ref) != nil {
		t.Error("stale ref aliases the new occupant")
	}
	if tbl.Resolve(fresh.Ref()) != fresh {
		t.Error("new ref doesn't resolve")
	}
	if tbl.Resolve(Ref{}) != nil {
		t.Error("zero ref resolves")
	}
}

func TestTableSharedParameters(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.Insert(1, 0x1000, FeatureSuperSampling)
	b := tbl.Insert(2, 0x1000, FeatureSuperSampling)

	if tbl.ByParameters(0x1000) != b {
		t.Fatal("parameter index should point to the newest record")
	}
	tbl.Remove(1)
	if tbl.ByParameters(0x1000) != b {
		t.Error("removing an older user dropped the index")
	}
	tbl.Remove(2)
	if tbl.ByParameters(0x1000) != nil {
		t.Error("parameter index outlived its records")
	}
	_ = a
}

func TestTableSharedParametersRemoveNewest(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.Insert(1, 0x1000, FeatureSuperSampling)
	b := tbl.Insert(2, 0x1000, FeatureSuperSampling)
	tbl.Insert(3, 0x2000, FeatureSuperSampling)
	c := tbl.Insert(4, 0x1000, FeatureSuperSampling)

	tbl.Remove(c.Handle)
	if got := tbl.ByParameters(0x1000); got != b {
		t.Fatalf("after removing the newest user the index points to %+v, want handle 2", got)
	}
	tbl.Remove(b.Handle)
	if got := tbl.ByParameters(0x1000); got != a {
		t.Fatalf("older live user not indexed, got %+v", got)
	}
	if tbl.ByParameters(0x2000) == nil {
		t.Error("unrelated block lost its index")
	}
	tbl.Remove(a.Handle)
	if tbl.ByParameters(0x1000) != nil {
		t.Error("parameter index outlived its records")
	}
}

func TestTableRangeAndClear(t *testing.T) {
	tbl := NewTable(nil)
	for h := Handle(1); h <= 5; h++ {
		tbl.Insert(h, Parameters(h*0x100), FeatureSuperSampling)
	}

	seen := 0
	tbl.Range(func(i *Instance) bool {
		seen++
		// calling back into the table must not deadlock
		return tbl.Has(i.Handle)
	})
	if seen != 5 {
		t.Errorf("Range visited %d records, want 5", seen)
	}

	tbl.Clear()
	if tbl.Len() != 0 {
		t.Errorf("Len after Clear = %d", tbl.Len())
	}
}

func TestTableConcurrentAccess(t *testing.T) {
	tbl := NewTable(nil)
	const writers, perWriter = 4, 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				h := Handle(w*perWriter + i + 1)
				inst := tbl.Insert(h, Parameters(h), FeatureSuperSampling)
				if got := tbl.Get(h); got != inst {
					t.Errorf("handle %d: Get returned %p, want %p", h, got, inst)
					return
				}
				if i%2 == 0 {
					tbl.Remove(h)
				}
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < writers*perWriter; i++ {
				if inst := tbl.Get(Handle(i + 1)); inst != nil && inst.Handle != Handle(i+1) {
					t.Errorf("handle %d maps to record of %d", i+1, inst.Handle)
					return
				}
			}
		}()
	}
	wg.Wait()

	if tbl.Len() != writers*perWriter/2 {
		t.Errorf("Len = %d, want %d", tbl.Len(), writers*perWriter/2)
	}
}

func BenchmarkTableGet(b *testing.B) {
	tbl := NewTable(nil)
	for h := Handle(1); h <= 64; h++ {
		tbl.Insert(h, Parameters(h), FeatureSuperSampling)
	}
	b.ResetTimer()
	for idx := 0; idx < b.N; idx++ {
		tbl.Get(Handle(idx%64 + 1))
	}
}
