package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/reyharighy/cba/store"
)

func TestTurnMemory(t *testing.T) {
	m := New()

	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
	if m.Last() != nil {
		t.Fatalf("Last() = %v, want nil", m.Last())
	}

	m.Append(&store.Turn{Seq: 1, Query: "first"})
	m.Append(&store.Turn{Seq: 2, Query: "second"})

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if got := m.Last(); got == nil || got.Seq != 2 {
		t.Errorf("Last() = %v, want seq 2", got)
	}

	all := m.All()
	if len(all) != 2 || all[0].Seq != 1 || all[1].Seq != 2 {
		t.Errorf("All() = %v, want chronological order", all)
	}

	// The returned slice is a copy.
	all[0] = &store.Turn{Seq: 99}
	if m.All()[0].Seq != 1 {
		t.Error("mutating All() result changed the memory")
	}
}

func TestTurnMemoryLoad(t *testing.T) {
	m := New()
	m.Append(&store.Turn{Seq: 1})

	loaded := []*store.Turn{
		{Seq: 1, Query: "a"},
		{Seq: 2, Query: "b"},
		{Seq: 3, Query: "c"},
	}
	m.Load(loaded)

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	// Load copies the input slice.
	loaded[0] = &store.Turn{Seq: 99}
	if m.All()[0].Seq != 1 {
		t.Error("mutating the loaded slice changed the memory")
	}
}

func TestTurnMemoryConcurrent(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.Append(&store.Turn{Seq: int32(i), Query: fmt.Sprintf("q%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = m.All()
			_ = m.Len()
			_ = m.Last()
		}()
	}
	wg.Wait()

	if m.Len() != 10 {
		t.Errorf("Len() = %d, want 10", m.Len())
	}
}
